package perfrun

import (
	"fmt"
	"os"
	"time"
)

// FreshnessWindow bounds how old a capture artifact may be and still be
// considered the product of the current invocation.
const FreshnessWindow = 30 * time.Second

// RemoveArtifact deletes the capture file at path, but only when its
// last-modified time is within the freshness window relative to now. An
// older file may belong to a concurrent invocation that happened to pick the
// same path, so it is left alone. A missing file is not an error.
func RemoveArtifact(path string, now time.Time) error {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat capture artifact: %w", err)
	}

	if now.Sub(fi.ModTime()) >= FreshnessWindow {
		return nil
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove capture artifact: %w", err)
	}
	return nil
}
