package installer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultFileMode is the permission of the installed driver.
	DefaultFileMode os.FileMode = 0o755

	// maxDriverSize limits the extracted driver binary.
	maxDriverSize = 256 << 20
)

var (
	// ErrDriverNotInArchive is returned when the archive has no driver executable.
	ErrDriverNotInArchive = errors.New("driver executable not found in archive")
	// ErrInvalidVersionOutput is returned when the driver prints something unexpected.
	ErrInvalidVersionOutput = errors.New("invalid driver version output")
	// errMultipleDrivers is returned when several archive entries carry the driver name.
	errMultipleDrivers = errors.New("archive contains several driver executables")
	// errDriverTooLarge is returned when the extracted driver exceeds maxDriverSize.
	errDriverTooLarge = errors.New("driver executable exceeds size limit")
)

// ParseDriverVersion isolates the version from `chromedriver --version` output, e.g.
// "ChromeDriver 88.0.4324.96 (68dba2d8a0b149a1d3afac56fa74648032bcf46b-refs/branch-heads/4324@{#1784})".
func ParseDriverVersion(output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) < 2 {
		return "", fmt.Errorf("%q: %w", output, ErrInvalidVersionOutput)
	}

	return fields[1], nil
}

// executableDir returns the directory of the running program with symlinks resolved.
func executableDir() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate executable: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(executable); err == nil {
		executable = resolved
	}

	return filepath.Dir(executable), nil
}
