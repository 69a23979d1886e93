package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/chromedriver-installer/internal/release"
)

// TestValidate checks defaults and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	// Defaults.
	cfg := new(Config)
	require.NoError(t, Validate(cfg))
	require.Equal(t, release.DefaultLatestReleaseURL, cfg.LatestReleaseURL)
	require.Equal(t, release.DefaultCatalogURL, cfg.CatalogURL)
	require.Equal(t, release.DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultLogLevel, cfg.Log.Level)
	require.Positive(t, cfg.Log.MaxSizeMB)

	// Bad URL.
	cfg = &Config{CatalogURL: "not a url"}
	require.Error(t, Validate(cfg))

	// Unknown platform.
	cfg = &Config{Platform: "solaris"}
	require.ErrorIs(t, Validate(cfg), release.ErrUnsupportedPlatform)

	// Unknown log level.
	cfg = &Config{Log: Log{Level: "loud"}}
	require.ErrorIs(t, Validate(cfg), errInvalidLogLevel)

	// Okay with overrides.
	cfg = &Config{
		LatestReleaseURL: "https://mirror.example.com/LATEST_RELEASE_",
		Platform:         "mac-arm64",
		Timeout:          time.Minute,
	}
	require.NoError(t, Validate(cfg))
	require.Equal(t, time.Minute, cfg.Timeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		CatalogURL:  "https://mirror.example.com/catalog.json",
		Platform:    "win64",
		TargetDir:   "C:\\tools",
		KillRunning: true,
		Log:         Log{Level: "debug", File: "installer.log"},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadOptional returns defaults only for a missing file.
func TestLoadOptional(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := LoadOptional(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("timeout: [oops"), DefaultFilePermissions))

	_, err = LoadOptional(broken)
	require.Error(t, err)
}

// TestLoggerSettings converts the log section.
func TestLoggerSettings(t *testing.T) {
	t.Parallel()

	log := Log{Level: "warn", File: "x.log", MaxSizeMB: 5, MaxBackups: 2, MaxAgeDays: 7, Compress: true}
	settings := log.LoggerSettings()

	require.Equal(t, zapcore.WarnLevel, settings.Level)
	require.Equal(t, "x.log", settings.File)
	require.Equal(t, 5, settings.MaxSizeMB)
	require.Equal(t, 2, settings.MaxBackups)
	require.Equal(t, 7, settings.MaxAgeDays)
	require.True(t, settings.Compress)
}

// TestWriteDefault writes loadable defaults and keeps an existing file.
func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)

	require.NoError(t, WriteDefault(path, false))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Default(), loaded)

	require.ErrorIs(t, WriteDefault(path, false), ErrConfigExists)
	require.NoError(t, WriteDefault(path, true))
}
