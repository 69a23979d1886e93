package release

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/chromedriver-installer/internal/version"
)

const testCatalog = `{
  "timestamp": "2024-01-01T00:00:00.000Z",
  "versions": [
    {"version": "113.0.5672.0", "revision": "1121455", "downloads": {"chrome": [{"platform": "linux64", "url": "https://example.com/chrome-linux64.zip"}]}},
    {"version": "120.0.6099.109", "revision": "1217362", "downloads": {
      "chrome": [{"platform": "linux64", "url": "https://example.com/chrome-linux64.zip"}],
      "chromedriver": [
        {"platform": "linux64", "url": "https://example.com/120/chromedriver-linux64.zip"},
        {"platform": "win64", "url": "https://example.com/120/chromedriver-win64.zip"}
      ]
    }}
  ]
}`

// newTestServer serves a latest release file, the catalog and an archive.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/LATEST_RELEASE_120.0.6099", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != version.UserAgent() {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		_, _ = w.Write([]byte("120.0.6099.109\n"))
	})
	mux.HandleFunc("/LATEST_RELEASE_121.0.1", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/catalog.json", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testCatalog))
	})
	mux.HandleFunc("/archive.zip", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("zip-bytes"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func newTestClient(server *httptest.Server) *Client {
	return NewClient(
		WithHTTPClient(server.Client()),
		WithLatestReleaseURL(server.URL+"/LATEST_RELEASE_"),
		WithCatalogURL(server.URL+"/catalog.json"),
	)
}

// TestClient_LatestRelease trims the release body.
func TestClient_LatestRelease(t *testing.T) {
	t.Parallel()

	client := newTestClient(newTestServer(t))

	release, err := client.LatestRelease(context.Background(), "120.0.6099")
	require.NoError(t, err)
	require.Equal(t, "120.0.6099.109", release)
}

// TestClient_LatestRelease_NotFound maps 404 to ErrVersionNotFound naming the version.
func TestClient_LatestRelease_NotFound(t *testing.T) {
	t.Parallel()

	client := newTestClient(newTestServer(t))

	_, err := client.LatestRelease(context.Background(), "72.0.3626")
	require.ErrorIs(t, err, ErrVersionNotFound)
	require.Contains(t, err.Error(), "72.0.3626")
}

// TestClient_LatestRelease_RequestError carries status code and reason for other failures.
func TestClient_LatestRelease_RequestError(t *testing.T) {
	t.Parallel()

	client := newTestClient(newTestServer(t))

	_, err := client.LatestRelease(context.Background(), "121.0.1")

	var requestErr *RequestError
	require.ErrorAs(t, err, &requestErr)
	require.Equal(t, http.StatusServiceUnavailable, requestErr.StatusCode)
	require.Equal(t, "Service Unavailable", requestErr.Reason())
	require.NotErrorIs(t, err, ErrVersionNotFound)
}

// TestClient_DownloadURL finds the chromedriver archive for a platform.
func TestClient_DownloadURL(t *testing.T) {
	t.Parallel()

	client := newTestClient(newTestServer(t))

	url, err := client.DownloadURL(context.Background(), "120.0.6099.109", Linux64)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/120/chromedriver-linux64.zip", url)

	url, err = client.DownloadURL(context.Background(), "120.0.6099.109", Win64)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/120/chromedriver-win64.zip", url)
}

// TestClient_DownloadURL_Missing surfaces missing releases and platforms as ErrDownloadNotFound.
func TestClient_DownloadURL_Missing(t *testing.T) {
	t.Parallel()

	client := newTestClient(newTestServer(t))

	_, err := client.DownloadURL(context.Background(), "1.0.0.0", Linux64)
	require.ErrorIs(t, err, ErrDownloadNotFound)

	_, err = client.DownloadURL(context.Background(), "120.0.6099.109", MacArm64)
	require.ErrorIs(t, err, ErrDownloadNotFound)

	// Releases published before chromedriver joined the catalog.
	_, err = client.DownloadURL(context.Background(), "113.0.5672.0", Linux64)
	require.ErrorIs(t, err, ErrDownloadNotFound)
}

// TestClient_DownloadArchive reads the archive body and reports HTTP failures.
func TestClient_DownloadArchive(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	client := newTestClient(server)

	body, err := client.DownloadArchive(context.Background(), server.URL+"/archive.zip")
	require.NoError(t, err)
	require.Equal(t, []byte("zip-bytes"), body)

	_, err = client.DownloadArchive(context.Background(), server.URL+"/missing.zip")

	var requestErr *RequestError
	require.ErrorAs(t, err, &requestErr)
	require.Equal(t, http.StatusNotFound, requestErr.StatusCode)
}

// TestRequestError_Message includes code and reason.
func TestRequestError_Message(t *testing.T) {
	t.Parallel()

	err := &RequestError{URL: "https://example.com/x", StatusCode: http.StatusBadGateway}
	require.Equal(t,
		"request https://example.com/x failed with status code: 502, reason phrase: Bad Gateway",
		err.Error())
}
