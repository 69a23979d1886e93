package release

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidVersion is returned for versions that cannot be truncated.
var ErrInvalidVersion = errors.New("invalid version")

// TruncateVersion drops the last component of a dotted version:
// "72.0.3626.81" becomes "72.0.3626".
func TruncateVersion(version string) (string, error) {
	version = strings.TrimSpace(version)

	idx := strings.LastIndex(version, ".")
	if idx <= 0 {
		return "", fmt.Errorf("%q: %w", version, ErrInvalidVersion)
	}

	return version[:idx], nil
}
