package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/chromedriver-installer/internal/logger"
	"github.com/oshokin/chromedriver-installer/internal/release"
)

// Config holds the installer settings.
type Config struct {
	// LatestReleaseURL is the prefix the truncated browser version is appended to.
	LatestReleaseURL string `yaml:"latest_release_url"`
	// CatalogURL is the known-good-versions-with-downloads catalog.
	CatalogURL string `yaml:"catalog_url"`
	// Platform forces a download platform; detected from the host when empty.
	Platform string `yaml:"platform,omitempty"`
	// TargetDir is where the driver is installed; the executable's directory when empty.
	TargetDir string `yaml:"target_dir,omitempty"`
	// BrowserPath overrides the browser executable used for version detection.
	BrowserPath string `yaml:"browser_path,omitempty"`
	// Timeout bounds every HTTP request.
	Timeout time.Duration `yaml:"timeout"`
	// IgnoreStderr stops treating stderr output of spawned commands as a failure.
	IgnoreStderr bool `yaml:"ignore_stderr"`
	// KillRunning terminates running drivers before the binary is replaced.
	KillRunning bool `yaml:"kill_running"`
	// Log configures logging.
	Log Log `yaml:"log"`
}

// Log holds logging settings.
type Log struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// File enables a rotated log file when set.
	File string `yaml:"file,omitempty"`
	// MaxSizeMB is the size at which the log file is rotated.
	MaxSizeMB int `yaml:"max_size_mb"`
	// MaxBackups is the number of rotated files kept.
	MaxBackups int `yaml:"max_backups"`
	// MaxAgeDays is how long rotated files are kept.
	MaxAgeDays int `yaml:"max_age_days"`
	// Compress gzips rotated files.
	Compress bool `yaml:"compress"`
}

const (
	// DefaultConfigFilename is the default settings file name.
	DefaultConfigFilename = "chromedriver-installer.yaml"

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the permission of saved settings files.
	DefaultFilePermissions = 0o600

	// Log rotation defaults.
	defaultLogMaxSizeMB  = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 28
)

var (
	// ErrConfigExists is returned when WriteDefault would replace an existing file.
	ErrConfigExists = errors.New("configuration file already exists")
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidLogLevel is returned for unknown log levels.
	errInvalidLogLevel = errors.New("invalid log level")
)

// Default returns settings pointing at the public Chrome for Testing endpoints.
func Default() *Config {
	cfg := new(Config)

	// Defaults always validate.
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err = Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOptional behaves like Load but returns the defaults when the file does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// WriteDefault saves the default settings to path.
// An existing file is kept unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if path == "" {
		path = DefaultConfigFilename
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s: %w", path, ErrConfigExists)
		}
	}

	return Save(path, Default())
}

// Save writes the settings to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate fills in defaults and checks URLs, platform and log level.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.LatestReleaseURL == "" {
		cfg.LatestReleaseURL = release.DefaultLatestReleaseURL
	}

	if cfg.CatalogURL == "" {
		cfg.CatalogURL = release.DefaultCatalogURL
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = release.DefaultTimeout
	}

	if _, err := url.ParseRequestURI(cfg.LatestReleaseURL); err != nil {
		return fmt.Errorf("invalid latest release URL: %w", err)
	}

	if _, err := url.ParseRequestURI(cfg.CatalogURL); err != nil {
		return fmt.Errorf("invalid catalog URL: %w", err)
	}

	if cfg.Platform != "" {
		if _, err := release.ParsePlatform(cfg.Platform); err != nil {
			return err
		}
	}

	return validateLog(&cfg.Log)
}

// validateLog fills in log defaults and checks the level.
func validateLog(log *Log) error {
	if log.Level == "" {
		log.Level = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(log.Level); !ok {
		return fmt.Errorf("%q: %w", log.Level, errInvalidLogLevel)
	}

	if log.MaxSizeMB <= 0 {
		log.MaxSizeMB = defaultLogMaxSizeMB
	}

	if log.MaxBackups <= 0 {
		log.MaxBackups = defaultLogMaxBackups
	}

	if log.MaxAgeDays <= 0 {
		log.MaxAgeDays = defaultLogMaxAgeDays
	}

	return nil
}

// LoggerSettings converts the log section into logger settings.
func (l *Log) LoggerSettings() *logger.Settings {
	level, _ := logger.ParseLogLevel(l.Level)

	return &logger.Settings{
		Level:      level,
		File:       l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}
