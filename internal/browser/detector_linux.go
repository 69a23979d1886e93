//go:build linux

package browser

import "github.com/oshokin/chromedriver-installer/internal/service/common"

// NewDetector returns the Linux detector, which runs the first Chrome binary
// found on PATH with --product-version.
//
//nolint:ireturn // The implementation is picked per operating system.
func NewDetector(runner common.Runner, browserPath string) Detector {
	return &commandDetector{
		runner: runner,
		candidates: withOverride(browserPath, []string{
			"google-chrome",
			"google-chrome-stable",
			"chromium",
			"chromium-browser",
		}),
		args: []string{"--product-version"},
	}
}
