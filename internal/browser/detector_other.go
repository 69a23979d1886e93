//go:build !linux && !darwin && !windows

package browser

import (
	"context"
	"fmt"
	"runtime"

	"github.com/oshokin/chromedriver-installer/internal/service/common"
)

// unsupportedDetector fails on every call.
type unsupportedDetector struct{}

// NewDetector returns a detector reporting ErrUnsupportedPlatform.
//
//nolint:ireturn // The implementation is picked per operating system.
func NewDetector(_ common.Runner, _ string) Detector {
	return unsupportedDetector{}
}

// Version implements Detector.
func (unsupportedDetector) Version(_ context.Context) (string, error) {
	return "", fmt.Errorf("%s: %w", runtime.GOOS, ErrUnsupportedPlatform)
}
