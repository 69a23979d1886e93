// Package release resolves ChromeDriver releases published by Chrome for Testing.
//
// It maps a browser version to the matching driver release through the
// LATEST_RELEASE_<major.minor.build> endpoint, looks up per-platform archive URLs
// in the known-good-versions catalog and downloads the archive.
package release
