// Package version exposes build metadata for chromedriver-installer.
//
// Version, Commit and BuildTime are injected at build time via Go ldflags.
// Full renders them for the `version` subcommand and UserAgent for HTTP requests.
package version
