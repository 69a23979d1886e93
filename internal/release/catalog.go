package release

// Catalog is the known-good-versions-with-downloads document.
type Catalog struct {
	Timestamp string         `json:"timestamp"`
	Versions  []CatalogEntry `json:"versions"`
}

// CatalogEntry describes a single Chrome for Testing release.
type CatalogEntry struct {
	Version   string    `json:"version"`
	Revision  string    `json:"revision"`
	Downloads Downloads `json:"downloads"`
}

// Downloads groups archives by binary. Old releases have no chromedriver archives.
type Downloads struct {
	Chrome       []Download `json:"chrome,omitempty"`
	ChromeDriver []Download `json:"chromedriver,omitempty"`
}

// Download is a single per-platform archive.
type Download struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// find returns the entry for an exact release version.
func (c *Catalog) find(version string) (*CatalogEntry, bool) {
	for i := range c.Versions {
		if c.Versions[i].Version == version {
			return &c.Versions[i], true
		}
	}

	return nil, false
}

// driverURL returns the chromedriver archive URL for the platform.
func (e *CatalogEntry) driverURL(platform Platform) (string, bool) {
	name := platform.String()

	for _, download := range e.Downloads.ChromeDriver {
		if download.Platform == name && download.URL != "" {
			return download.URL, true
		}
	}

	return "", false
}
