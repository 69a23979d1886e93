package installer

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
)

// extractDriver returns the contents of the single archive entry named name.
// Chrome for Testing archives keep the driver in a platform folder, so only
// the base name of each entry is compared.
func extractDriver(archive []byte, name string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	var driver *zip.File

	for _, file := range reader.File {
		if file.FileInfo().IsDir() || path.Base(file.Name) != name {
			continue
		}

		if driver != nil {
			return nil, fmt.Errorf("%s and %s: %w", driver.Name, file.Name, errMultipleDrivers)
		}

		driver = file
	}

	if driver == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrDriverNotInArchive)
	}

	entry, err := driver.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver.Name, err)
	}

	defer func() {
		_ = entry.Close()
	}()

	contents, err := io.ReadAll(io.LimitReader(entry, maxDriverSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", driver.Name, err)
	}

	if len(contents) > maxDriverSize {
		return nil, fmt.Errorf("%s: %w", driver.Name, errDriverTooLarge)
	}

	return contents, nil
}
