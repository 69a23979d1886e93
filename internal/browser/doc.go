// Package browser detects the version of the locally installed Google Chrome.
//
// NewDetector returns the implementation for the operating system the binary
// was built for: the registry and file version resource on Windows, the browser
// executable queried with a version flag on Linux and macOS.
package browser
