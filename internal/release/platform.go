package release

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// Platform selects which archive of a release is downloaded.
type Platform int

// Platforms published by Chrome for Testing.
const (
	Linux64 Platform = iota + 1
	MacArm64
	MacX64
	Win32
	Win64
)

// ErrUnsupportedPlatform is returned for platforms without ChromeDriver builds.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

//nolint:gochecknoglobals // Read-only lookup table.
var platformNames = map[Platform]string{
	Linux64:  "linux64",
	MacArm64: "mac-arm64",
	MacX64:   "mac-x64",
	Win32:    "win32",
	Win64:    "win64",
}

// String returns the name used in the release catalog.
func (p Platform) String() string {
	if name, ok := platformNames[p]; ok {
		return name
	}

	return fmt.Sprintf("Platform(%d)", int(p))
}

// IsWindows reports whether the platform ships chromedriver.exe.
func (p Platform) IsWindows() bool {
	return p == Win32 || p == Win64
}

// ExecutableName returns the driver file name inside the archive.
func (p Platform) ExecutableName() string {
	if p.IsWindows() {
		return "chromedriver.exe"
	}

	return "chromedriver"
}

// Platforms lists every known platform in catalog order.
func Platforms() []Platform {
	return []Platform{Linux64, MacArm64, MacX64, Win32, Win64}
}

// ParsePlatform converts a catalog name such as "mac-arm64" into a Platform.
func ParsePlatform(s string) (Platform, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	known := Platforms()
	names := make([]string, 0, len(known))

	for _, platform := range known {
		if platform.String() == s {
			return platform, nil
		}

		names = append(names, platform.String())
	}

	return 0, fmt.Errorf("%q, expected one of %s: %w", s, strings.Join(names, ", "), ErrUnsupportedPlatform)
}

// DetectPlatform returns the platform of the running program.
func DetectPlatform() (Platform, error) {
	return platformFor(runtime.GOOS, runtime.GOARCH)
}

func platformFor(goos, goarch string) (Platform, error) {
	switch goos {
	case "linux":
		if goarch == "amd64" {
			return Linux64, nil
		}
	case "darwin":
		if goarch == "arm64" {
			return MacArm64, nil
		}

		return MacX64, nil
	case "windows":
		if goarch == "386" {
			return Win32, nil
		}

		return Win64, nil
	}

	return 0, fmt.Errorf("%s/%s: %w", goos, goarch, ErrUnsupportedPlatform)
}
