//go:build windows

package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/oshokin/chromedriver-installer/internal/logger"
	"github.com/oshokin/chromedriver-installer/internal/service/common"
)

// appPathsKey is where the Chrome installer registers chrome.exe.
const appPathsKey = `SOFTWARE\Microsoft\Windows\CurrentVersion\App Paths\chrome.exe`

// registryDetector reads chrome.exe's location from the registry and its
// version from the file version resource.
type registryDetector struct {
	// browserPath skips the registry lookup when set.
	browserPath string
}

// NewDetector returns the Windows detector. No process is started on Windows.
//
//nolint:ireturn // The implementation is picked per operating system.
func NewDetector(_ common.Runner, browserPath string) Detector {
	return &registryDetector{browserPath: browserPath}
}

// Version implements Detector.
func (d *registryDetector) Version(ctx context.Context) (string, error) {
	path := d.browserPath
	if path == "" {
		var err error

		path, err = lookupAppPath()
		if err != nil {
			return "", err
		}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, ErrBrowserNotFound)
		}

		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	logger.DebugKV(ctx, "Reading browser file version", "path", path)

	return fileVersion(path)
}

// lookupAppPath returns the default value of the App Paths key, machine-wide first.
func lookupAppPath() (string, error) {
	for _, root := range []registry.Key{registry.LOCAL_MACHINE, registry.CURRENT_USER} {
		key, err := registry.OpenKey(root, appPathsKey, registry.QUERY_VALUE)
		if err != nil {
			continue
		}

		path, _, err := key.GetStringValue("")
		_ = key.Close()

		if err == nil && path != "" {
			return path, nil
		}
	}

	return "", fmt.Errorf("google chrome not found in registry: %w", ErrBrowserNotFound)
}

// fileVersion reads the fixed file version of an executable as a dotted string.
func fileVersion(path string) (string, error) {
	size, err := windows.GetFileVersionInfoSize(path, nil)
	if err != nil {
		return "", fmt.Errorf("get version info size of %s: %w", path, err)
	}

	info := make([]byte, size)
	if err = windows.GetFileVersionInfo(path, 0, size, unsafe.Pointer(&info[0])); err != nil {
		return "", fmt.Errorf("get version info of %s: %w", path, err)
	}

	var (
		fixed    *windows.VS_FIXEDFILEINFO
		fixedLen uint32
	)

	err = windows.VerQueryValue(unsafe.Pointer(&info[0]), `\`, unsafe.Pointer(&fixed), &fixedLen)
	if err != nil {
		return "", fmt.Errorf("query fixed file info of %s: %w", path, err)
	}

	if fixed == nil || fixedLen == 0 {
		return "", fmt.Errorf("%s has no version resource: %w", path, ErrInvalidVersionOutput)
	}

	return fmt.Sprintf("%d.%d.%d.%d",
		fixed.FileVersionMS>>16,
		fixed.FileVersionMS&0xffff,
		fixed.FileVersionLS>>16,
		fixed.FileVersionLS&0xffff,
	), nil
}
