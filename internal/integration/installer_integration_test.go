package integration

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/chromedriver-installer/internal/config"
	"github.com/oshokin/chromedriver-installer/internal/release"
	"github.com/oshokin/chromedriver-installer/internal/service/installer"
)

const (
	chromeVersion = "120.0.6099.71"
	driverVersion = "120.0.6099.109"
)

// releaseServer emulates the Chrome for Testing endpoints.
type releaseServer struct {
	*httptest.Server

	archiveHits atomic.Int32
}

// newReleaseServer serves a driver archive holding the provided script.
func newReleaseServer(t *testing.T, platform release.Platform, driver []byte) *releaseServer {
	t.Helper()

	var buffer bytes.Buffer

	writer := zip.NewWriter(&buffer)
	entry, err := writer.Create(fmt.Sprintf("chromedriver-%s/%s", platform, platform.ExecutableName()))
	require.NoError(t, err)

	_, err = entry.Write(driver)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	archive := buffer.Bytes()
	server := new(releaseServer)

	mux := http.NewServeMux()
	mux.HandleFunc("/LATEST_RELEASE_120.0.6099", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(driverVersion))
	})
	mux.HandleFunc("/known-good-versions-with-downloads.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w,
			`{"versions":[{"version":%q,"downloads":{"chromedriver":[{"platform":%q,"url":%q}]}}]}`,
			driverVersion, platform.String(), server.URL+"/archive.zip")
	})
	mux.HandleFunc("/archive.zip", func(w http.ResponseWriter, _ *http.Request) {
		server.archiveHits.Add(1)
		_, _ = w.Write(archive)
	})

	server.Server = httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

// writeConfig saves settings pointing at the test server.
func writeConfig(t *testing.T, dir string, server *releaseServer) string {
	t.Helper()

	path := filepath.Join(dir, config.DefaultConfigFilename)
	cfg := &config.Config{
		LatestReleaseURL: server.URL + "/LATEST_RELEASE_",
		CatalogURL:       server.URL + "/known-good-versions-with-downloads.json",
		Log: config.Log{
			Level: "debug",
			File:  filepath.Join(dir, "installer.log"),
		},
	}

	require.NoError(t, config.Save(path, cfg))

	return path
}

// TestRun_InstallsAndIsIdempotent installs a fake driver, then runs again without downloading.
//
//nolint:paralleltest // Run replaces the global logger.
func TestRun_InstallsAndIsIdempotent(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("the fake driver is a shell script")
	}

	platform, err := release.DetectPlatform()
	if err != nil {
		t.Skipf("no ChromeDriver builds for this host: %v", err)
	}

	driver := []byte("#!/bin/sh\necho 'ChromeDriver " + driverVersion + " (0123abcd-refs/branch-heads/6099@{#1})'\n")
	server := newReleaseServer(t, platform, driver)

	dir := t.TempDir()
	targetDir := filepath.Join(dir, "bin")

	options := &installer.Options{
		ConfigPath:    writeConfig(t, dir, server),
		ChromeVersion: chromeVersion,
		TargetDir:     targetDir,
	}

	result, err := installer.Run(context.Background(), options)
	require.NoError(t, err)
	require.True(t, result.Downloaded)
	require.Equal(t, driverVersion, result.DriverVersion)
	require.Equal(t, int32(1), server.archiveHits.Load())

	target := filepath.Join(targetDir, platform.ExecutableName())
	require.Equal(t, target, result.TargetPath)

	contents, err := os.ReadFile(target)
	require.NoError(t, err)
	require.Equal(t, driver, contents)

	info, err := os.Stat(target)
	require.NoError(t, err)
	require.NotZero(t, info.Mode().Perm()&0o100)

	// Second run probes the installed driver and skips the download.
	result, err = installer.Run(context.Background(), options)
	require.NoError(t, err)
	require.False(t, result.Downloaded)
	require.Equal(t, int32(1), server.archiveHits.Load())

	// Forced run downloads again.
	options.Force = true

	result, err = installer.Run(context.Background(), options)
	require.NoError(t, err)
	require.True(t, result.Downloaded)
	require.Equal(t, int32(2), server.archiveHits.Load())

	logs, err := os.ReadFile(filepath.Join(dir, "installer.log"))
	require.NoError(t, err)
	require.Contains(t, string(logs), "ChromeDriver installed")
}

// TestRun_VersionNotFound reports a browser version without a driver release.
//
//nolint:paralleltest // Run replaces the global logger.
func TestRun_VersionNotFound(t *testing.T) {
	server := newReleaseServer(t, release.Linux64, []byte("driver"))
	dir := t.TempDir()

	options := &installer.Options{
		ConfigPath:    writeConfig(t, dir, server),
		ChromeVersion: "72.0.3626.81",
		Platform:      release.Linux64.String(),
		TargetDir:     dir,
	}

	_, err := installer.Run(context.Background(), options)
	require.ErrorIs(t, err, release.ErrVersionNotFound)
	require.ErrorContains(t, err, "72.0.3626")
	require.Zero(t, server.archiveHits.Load())
}

// TestResolve prints the release and URL without downloading.
//
//nolint:paralleltest // Resolve replaces the global logger.
func TestResolve(t *testing.T) {
	server := newReleaseServer(t, release.Win64, []byte("driver"))
	dir := t.TempDir()

	options := &installer.Options{
		ConfigPath:    writeConfig(t, dir, server),
		ChromeVersion: chromeVersion,
		Platform:      release.Win64.String(),
	}

	resolution, url, err := installer.Resolve(context.Background(), options)
	require.NoError(t, err)
	require.Equal(t, driverVersion, resolution.DriverVersion)
	require.Equal(t, release.Win64, resolution.Platform)
	require.Equal(t, server.URL+"/archive.zip", url)
	require.Zero(t, server.archiveHits.Load())
}
