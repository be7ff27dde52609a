package tool

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// TempImagePath returns a unique path inside dir for an incoming photo.
// Unique names keep two uploads from the same user from colliding on disk.
func TempImagePath(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create temp folder %s: %v", dir, err)
	}
	return filepath.Join(dir, uuid.NewString()+".jpg"), nil
}

// RemoveIfExists deletes path, ignoring the file already being gone.
func RemoveIfExists(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		DefaultLogger.Warnf("Failed to remove temp file %s: %v", path, err)
	}
}

// SweepTempDir removes files in dir older than maxAge. Sessions evicted by the
// TTL cache leave their temp file behind; the sweep reclaims those.
func SweepTempDir(dir string, maxAge time.Duration) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			DefaultLogger.Warnf("Failed to sweep temp folder %s: %v", dir, err)
		}
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			RemoveIfExists(filepath.Join(dir, entry.Name()))
			DefaultLogger.Debugf("Swept stale temp file %s", entry.Name())
		}
	}
}
