package installer

import (
	"bytes"
	"context"
	"crypto"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/chromedriver-installer/internal/logger"
)

// writeDriver swaps the target for the new binary. go-update writes a sibling
// file first and renames it into place, so a failure leaves the previous driver intact.
func writeDriver(ctx context.Context, target string, binary []byte) error {
	created, err := ensureTargetExists(target)
	if err != nil {
		return err
	}

	checksum := sha256.Sum256(binary)

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: DefaultFileMode,
		Checksum:   checksum[:],
		Hash:       crypto.SHA256,
	}

	logger.DebugKV(ctx, "Applying driver binary", "path", target, "bytes", len(binary))

	if err = goupdate.Apply(bytes.NewReader(binary), options); err != nil {
		if created {
			_ = os.Remove(target)
		}

		return fmt.Errorf("replace %s: %w", target, err)
	}

	// go-update hides the old binary when Windows refuses to delete it.
	oldPath := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".old")
	if _, err = os.Stat(oldPath); err == nil {
		_ = os.Remove(oldPath)
	}

	return nil
}

// ensureTargetExists creates an empty placeholder for a first install because
// go-update renames the current file out of the way before moving the new one in.
func ensureTargetExists(target string) (bool, error) {
	if _, err := os.Stat(target); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", target, err)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return false, fmt.Errorf("create %s: %w", filepath.Dir(target), err)
	}

	placeholder, err := os.OpenFile(filepath.Clean(target), os.O_CREATE|os.O_WRONLY, DefaultFileMode)
	if err != nil {
		return false, fmt.Errorf("create %s: %w", target, err)
	}

	if err = placeholder.Close(); err != nil {
		return false, fmt.Errorf("close %s: %w", target, err)
	}

	return true, nil
}

// makeExecutable runs `chmod +x` on the installed driver.
func (i *installer) makeExecutable(ctx context.Context, target string) error {
	if _, err := i.runner.Run(ctx, "chmod", "+x", target); err != nil {
		return fmt.Errorf("failed to make %s executable: %w", filepath.Base(target), err)
	}

	return nil
}
