//go:build darwin

package browser

import "github.com/oshokin/chromedriver-installer/internal/service/common"

// defaultMacOSPath is where the Google Chrome bundle keeps its executable.
const defaultMacOSPath = "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"

// NewDetector returns the macOS detector, which runs the application bundle
// executable with --version.
//
//nolint:ireturn // The implementation is picked per operating system.
func NewDetector(runner common.Runner, browserPath string) Detector {
	return &commandDetector{
		runner:     runner,
		candidates: withOverride(browserPath, []string{defaultMacOSPath}),
		args:       []string{"--version"},
	}
}
