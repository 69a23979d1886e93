package release

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oshokin/chromedriver-installer/internal/logger"
	"github.com/oshokin/chromedriver-installer/internal/version"
)

const (
	// DefaultLatestReleaseURL is the prefix of the per-version latest release endpoint.
	DefaultLatestReleaseURL = "https://googlechromelabs.github.io/chrome-for-testing/LATEST_RELEASE_"

	// DefaultCatalogURL is the catalog of releases with per-platform downloads.
	DefaultCatalogURL = "https://googlechromelabs.github.io/chrome-for-testing/known-good-versions-with-downloads.json"

	// DefaultTimeout bounds a single HTTP request including reading the body.
	DefaultTimeout = 30 * time.Second

	// Response size limits.
	maxReleaseSize = 1 << 10
	maxCatalogSize = 64 << 20
	maxArchiveSize = 128 << 20
)

var (
	// ErrVersionNotFound is returned when no driver release matches the browser version.
	ErrVersionNotFound = errors.New("chromedriver version not found")
	// ErrDownloadNotFound is returned when the catalog has no archive for the release and platform.
	ErrDownloadNotFound = errors.New("chromedriver download not found")
	// ErrResponseTooLarge is returned when a body exceeds its size limit.
	ErrResponseTooLarge = errors.New("response exceeds size limit")
	// errEmptyRelease is returned when the latest release endpoint answers with an empty body.
	errEmptyRelease = errors.New("empty release version")
)

// RequestError is returned for non-successful HTTP responses.
type RequestError struct {
	// URL is the requested address.
	URL string
	// StatusCode is the HTTP status code.
	StatusCode int
	// Status is the status line, e.g. "503 Service Unavailable".
	Status string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("request %s failed with status code: %d, reason phrase: %s", e.URL, e.StatusCode, e.Reason())
}

// Reason returns the reason phrase of the status line.
func (e *RequestError) Reason() string {
	prefix := fmt.Sprintf("%d ", e.StatusCode)
	if reason, ok := strings.CutPrefix(e.Status, prefix); ok {
		return reason
	}

	return http.StatusText(e.StatusCode)
}

// Client talks to the Chrome for Testing endpoints.
type Client struct {
	// httpClient performs the requests.
	httpClient *http.Client
	// latestReleaseURL is the prefix the truncated browser version is appended to.
	latestReleaseURL string
	// catalogURL points to the known-good-versions catalog.
	catalogURL string
	// userAgent is sent with every request.
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithLatestReleaseURL overrides the latest release endpoint prefix.
func WithLatestReleaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.latestReleaseURL = url
		}
	}
}

// WithCatalogURL overrides the catalog endpoint.
func WithCatalogURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.catalogURL = url
		}
	}
}

// NewClient creates a client for the public Chrome for Testing endpoints.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:       &http.Client{Timeout: DefaultTimeout},
		latestReleaseURL: DefaultLatestReleaseURL,
		catalogURL:       DefaultCatalogURL,
		userAgent:        version.UserAgent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// LatestRelease returns the newest driver release for a major.minor.build prefix.
func (c *Client) LatestRelease(ctx context.Context, prefix string) (string, error) {
	endpoint := c.latestReleaseURL + prefix

	body, err := c.fetch(ctx, endpoint, maxReleaseSize)
	if err != nil {
		var requestErr *RequestError
		if errors.As(err, &requestErr) && requestErr.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("chrome version %s: %w", prefix, ErrVersionNotFound)
		}

		return "", fmt.Errorf("get latest release for %s: %w", prefix, err)
	}

	release := strings.TrimSpace(string(body))
	if release == "" {
		return "", fmt.Errorf("chrome version %s: %w", prefix, errEmptyRelease)
	}

	logger.DebugKV(ctx, "Resolved latest release", "prefix", prefix, "release", release)

	return release, nil
}

// Catalog downloads and decodes the release catalog.
func (c *Client) Catalog(ctx context.Context) (*Catalog, error) {
	body, err := c.fetch(ctx, c.catalogURL, maxCatalogSize)
	if err != nil {
		return nil, fmt.Errorf("get release catalog: %w", err)
	}

	var catalog Catalog
	if err = json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("decode release catalog: %w", err)
	}

	return &catalog, nil
}

// DownloadURL returns the chromedriver archive URL of a release for the platform.
func (c *Client) DownloadURL(ctx context.Context, release string, platform Platform) (string, error) {
	catalog, err := c.Catalog(ctx)
	if err != nil {
		return "", err
	}

	entry, ok := catalog.find(release)
	if !ok {
		return "", fmt.Errorf("release %s is not in the catalog: %w", release, ErrDownloadNotFound)
	}

	url, ok := entry.driverURL(platform)
	if !ok {
		return "", fmt.Errorf("release %s, platform %s: %w", release, platform, ErrDownloadNotFound)
	}

	return url, nil
}

// DownloadArchive reads the archive at url into memory.
func (c *Client) DownloadArchive(ctx context.Context, url string) ([]byte, error) {
	body, err := c.fetch(ctx, url, maxArchiveSize)
	if err != nil {
		return nil, fmt.Errorf("download archive: %w", err)
	}

	logger.DebugKV(ctx, "Downloaded archive", "url", url, "bytes", len(body))

	return body, nil
}

// fetch performs a GET request and returns at most limit bytes of the body.
func (c *Client) fetch(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, &RequestError{
			URL:        url,
			StatusCode: response.StatusCode,
			Status:     response.Status,
		}
	}

	var buffer bytes.Buffer

	n, err := io.Copy(&buffer, io.LimitReader(response.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}

	if n > limit {
		return nil, fmt.Errorf("%s: %w", url, ErrResponseTooLarge)
	}

	return buffer.Bytes(), nil
}
