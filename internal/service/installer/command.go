package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/chromedriver-installer/internal/browser"
	"github.com/oshokin/chromedriver-installer/internal/config"
	"github.com/oshokin/chromedriver-installer/internal/logger"
	"github.com/oshokin/chromedriver-installer/internal/release"
	"github.com/oshokin/chromedriver-installer/internal/service/common"
)

// Options are inputs accepted by the installer entry points.
// Non-empty values override the configuration file.
type Options struct {
	// ConfigPath is the settings YAML file and must exist when set.
	// When empty, the default file is read if present.
	ConfigPath string
	// Platform forces the download platform, e.g. "mac-arm64".
	Platform string
	// ChromeVersion skips browser detection.
	ChromeVersion string
	// TargetDir is where the driver is installed.
	TargetDir string
	// LogLevel overrides the configured log level.
	LogLevel string
	// Force downloads the driver even if the installed one matches.
	Force bool
	// KillRunning terminates running drivers before replacing the binary.
	KillRunning bool
}

// Resolution is the driver release matching the installed browser.
type Resolution struct {
	// Platform is the download platform.
	Platform release.Platform
	// BrowserVersion is the detected or requested browser version.
	BrowserVersion string
	// DriverVersion is the matching driver release.
	DriverVersion string
}

// Result describes what an install run did.
type Result struct {
	Resolution

	// TargetPath is the installed driver.
	TargetPath string
	// Downloaded is false when the installed driver already matched.
	Downloaded bool
}

// releaseSource is the part of release.Client the installer needs.
type releaseSource interface {
	LatestRelease(ctx context.Context, prefix string) (string, error)
	DownloadURL(ctx context.Context, release string, platform release.Platform) (string, error)
	DownloadArchive(ctx context.Context, url string) ([]byte, error)
}

// installer holds the collaborators of a single run.
type installer struct {
	// cfg is the merged configuration.
	cfg *config.Config
	// detector reads the installed browser version.
	detector browser.Detector
	// releases resolves and downloads driver releases.
	releases releaseSource
	// runner starts the driver probe and chmod.
	runner common.Runner
	// listProcesses snapshots the process table.
	listProcesses processLister
	// hostPlatform detects the platform of this host.
	hostPlatform func() (release.Platform, error)
	// goos is the operating system the installer runs on.
	goos string
}

// Run installs the driver matching the local browser and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) (*Result, error) {
	inst, closeLogs, err := prepare(opts)
	if err != nil {
		return nil, err
	}

	defer closeLogs()

	// The logger is taken after prepare so it writes to the configured outputs.
	ctx = logger.WithName(ctx, "chromedriver-installer")

	result, err := inst.install(ctx, opts.ChromeVersion, opts.Force)
	if err != nil {
		logger.ErrorKV(ctx, "Installation failed", "error", err)
		return nil, err
	}

	return result, nil
}

// Resolve returns the driver release and archive URL without installing anything.
func Resolve(ctx context.Context, opts *Options) (*Resolution, string, error) {
	inst, closeLogs, err := prepare(opts)
	if err != nil {
		return nil, "", err
	}

	defer closeLogs()

	ctx = logger.WithName(ctx, "chromedriver-resolver")

	resolution, err := inst.resolve(ctx, opts.ChromeVersion)
	if err != nil {
		return nil, "", err
	}

	url, err := inst.releases.DownloadURL(ctx, resolution.DriverVersion, resolution.Platform)
	if err != nil {
		return nil, "", err
	}

	return resolution, url, nil
}

// DetectBrowserVersion returns the installed browser version.
func DetectBrowserVersion(ctx context.Context, opts *Options) (string, error) {
	inst, closeLogs, err := prepare(opts)
	if err != nil {
		return "", err
	}

	defer closeLogs()

	ctx = logger.WithName(ctx, "browser-detector")

	return inst.detector.Version(ctx)
}

// prepare merges options into the configuration, sets up logging and wires collaborators.
func prepare(opts *Options) (*installer, func(), error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	closeLogs := logger.Configure(cfg.Log.LoggerSettings())

	runner := common.NewCommandRunner(common.WithIgnoreStderr(cfg.IgnoreStderr))

	inst := &installer{
		cfg:      cfg,
		detector: browser.NewDetector(runner, cfg.BrowserPath),
		releases: release.NewClient(
			release.WithTimeout(cfg.Timeout),
			release.WithLatestReleaseURL(cfg.LatestReleaseURL),
			release.WithCatalogURL(cfg.CatalogURL),
		),
		runner:        runner,
		listProcesses: ps.Processes,
		hostPlatform:  release.DetectPlatform,
		goos:          runtime.GOOS,
	}

	return inst, closeLogs, nil
}

// loadConfig reads the settings file and applies command line overrides.
func loadConfig(opts *Options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if opts.ConfigPath == "" {
		cfg, err = config.LoadOptional(config.DefaultConfigFilename)
	} else {
		cfg, err = config.Load(opts.ConfigPath)
	}

	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	if opts.Platform != "" {
		cfg.Platform = opts.Platform
	}

	if opts.TargetDir != "" {
		cfg.TargetDir = opts.TargetDir
	}

	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	if opts.KillRunning {
		cfg.KillRunning = true
	}

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate configuration: %w", err)
	}

	return cfg, nil
}

// install runs the whole workflow.
func (i *installer) install(ctx context.Context, chromeVersion string, force bool) (*Result, error) {
	resolution, err := i.resolve(ctx, chromeVersion)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithKV(ctx, "platform", resolution.Platform.String(), "driver_version", resolution.DriverVersion)

	target, err := i.targetPath(resolution.Platform)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Resolution: *resolution,
		TargetPath: target,
	}

	if !force {
		upToDate, err := i.isUpToDate(ctx, target, resolution)
		if err != nil {
			return nil, err
		}

		if upToDate {
			logger.InfoKV(ctx, "ChromeDriver is up to date", "path", target)
			return result, nil
		}
	}

	url, err := i.releases.DownloadURL(ctx, resolution.DriverVersion, resolution.Platform)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Downloading ChromeDriver", "url", url)

	archive, err := i.releases.DownloadArchive(ctx, url)
	if err != nil {
		return nil, err
	}

	name := resolution.Platform.ExecutableName()

	binary, err := extractDriver(archive, name)
	if err != nil {
		return nil, err
	}

	if err = i.stopRunningDrivers(ctx, name); err != nil {
		return nil, err
	}

	if err = writeDriver(ctx, target, binary); err != nil {
		return nil, err
	}

	if i.goos != "windows" {
		if err = i.makeExecutable(ctx, target); err != nil {
			return nil, err
		}
	}

	result.Downloaded = true

	logger.InfoKV(ctx, "ChromeDriver installed", "path", target)

	return result, nil
}

// resolve determines platform, browser version and driver release.
func (i *installer) resolve(ctx context.Context, chromeVersion string) (*Resolution, error) {
	platform, err := i.platform()
	if err != nil {
		return nil, err
	}

	chromeVersion = strings.TrimSpace(chromeVersion)
	if chromeVersion == "" {
		chromeVersion, err = i.detector.Version(ctx)
		if err != nil {
			return nil, fmt.Errorf("detect chrome version: %w", err)
		}

		logger.InfoKV(ctx, "Chrome version detected", "version", chromeVersion)
	}

	prefix, err := release.TruncateVersion(chromeVersion)
	if err != nil {
		return nil, err
	}

	driverVersion, err := i.releases.LatestRelease(ctx, prefix)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "ChromeDriver release resolved",
		"chrome_version", chromeVersion, "driver_version", driverVersion, "platform", platform.String())

	return &Resolution{
		Platform:       platform,
		BrowserVersion: chromeVersion,
		DriverVersion:  driverVersion,
	}, nil
}

// platform returns the configured platform or the one of this host.
func (i *installer) platform() (release.Platform, error) {
	if i.cfg.Platform != "" {
		return release.ParsePlatform(i.cfg.Platform)
	}

	return release.DetectPlatform()
}

// targetPath returns where the driver for the platform is installed.
func (i *installer) targetPath(platform release.Platform) (string, error) {
	dir := i.cfg.TargetDir
	if dir == "" {
		var err error

		dir, err = executableDir()
		if err != nil {
			return "", err
		}
	}

	return filepath.Join(dir, platform.ExecutableName()), nil
}

// isUpToDate probes an installed driver and compares its version with the release.
// A driver that reports the expected version is accepted even if it also wrote to stderr.
func (i *installer) isUpToDate(ctx context.Context, target string, resolution *Resolution) (bool, error) {
	info, err := os.Stat(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}

		return false, fmt.Errorf("stat %s: %w", target, err)
	}

	// An empty file is a placeholder left by an interrupted install.
	if info.Size() == 0 {
		logger.InfoKV(ctx, "Installed driver is empty, replacing it", "path", target)
		return false, nil
	}

	if !i.runsOnHost(resolution.Platform) {
		logger.InfoKV(ctx, "Installed driver cannot run on this host, replacing it", "path", target)
		return false, nil
	}

	output, runErr := i.runner.Run(ctx, target, "--version")
	if output != nil {
		existing, parseErr := ParseDriverVersion(output.Stdout)
		if parseErr == nil && existing == resolution.DriverVersion {
			return true, nil
		}

		if parseErr == nil {
			logger.InfoKV(ctx, "Installed driver differs", "installed_version", existing)
		}
	}

	if runErr != nil {
		return false, fmt.Errorf("failed to execute %s --version: %w", filepath.Base(target), runErr)
	}

	return false, nil
}

// runsOnHost reports whether a driver built for platform can be started here.
func (i *installer) runsOnHost(platform release.Platform) bool {
	host, err := i.hostPlatform()
	if err != nil {
		return false
	}

	// 64-bit Windows runs win32 binaries.
	return host == platform || (host == release.Win64 && platform == release.Win32)
}
