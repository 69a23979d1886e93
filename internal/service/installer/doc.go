// Package installer keeps a ChromeDriver matching the local Google Chrome
// next to the running program.
//
// It detects the browser version, resolves the driver release published for it,
// probes an already installed driver, and when needed downloads the archive,
// extracts the driver and swaps it in atomically with the executable bit set.
package installer
