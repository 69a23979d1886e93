package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	"github.com/oshokin/chromedriver-installer/internal/logger"
	"github.com/oshokin/chromedriver-installer/internal/service/common"
)

var (
	// ErrBrowserNotFound is returned when Google Chrome is not installed.
	ErrBrowserNotFound = errors.New("google chrome not found")
	// ErrUnsupportedPlatform is returned on operating systems without a detector.
	ErrUnsupportedPlatform = errors.New("your operating system is not supported")
	// ErrInvalidVersionOutput is returned when the browser prints no version.
	ErrInvalidVersionOutput = errors.New("invalid browser version output")
)

// versionPattern matches a four component Chrome version.
var versionPattern = regexp.MustCompile(`\d+(?:\.\d+){3}`)

// Detector reads the installed browser version.
type Detector interface {
	Version(ctx context.Context) (string, error)
}

// commandDetector asks the browser executable for its version.
type commandDetector struct {
	// runner starts the browser.
	runner common.Runner
	// candidates are executable names or absolute paths tried in order.
	candidates []string
	// args make the browser print its version and exit.
	args []string
	// lookPath resolves candidate names on PATH.
	lookPath func(file string) (string, error)
}

// Version implements Detector.
func (d *commandDetector) Version(ctx context.Context) (string, error) {
	path, err := d.locate()
	if err != nil {
		return "", err
	}

	logger.DebugKV(ctx, "Querying browser version", "path", path)

	output, err := d.runner.Run(ctx, path, d.args...)
	if err != nil {
		return "", fmt.Errorf("query browser version: %w", err)
	}

	return parseBrowserVersion(output.Stdout)
}

// locate returns the first candidate that exists.
func (d *commandDetector) locate() (string, error) {
	lookPath := d.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	for _, candidate := range d.candidates {
		if candidate == "" {
			continue
		}

		if filepath.IsAbs(candidate) {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}

			continue
		}

		if path, err := lookPath(candidate); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("tried %v: %w", d.candidates, ErrBrowserNotFound)
}

// parseBrowserVersion extracts the version from output such as
// "Google Chrome 120.0.6099.109" or "120.0.6099.109".
func parseBrowserVersion(output string) (string, error) {
	version := versionPattern.FindString(output)
	if version == "" {
		return "", fmt.Errorf("%q: %w", output, ErrInvalidVersionOutput)
	}

	return version, nil
}

// withOverride puts an explicitly configured browser path in front of the defaults.
// A configured path is the only candidate.
func withOverride(browserPath string, defaults []string) []string {
	if browserPath == "" {
		return defaults
	}

	return []string{browserPath}
}
