package tool

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTempImagePathUnique(t *testing.T) {
	dir := t.TempDir()

	a, err := TempImagePath(dir)
	if err != nil {
		t.Fatalf("TempImagePath failed: %v", err)
	}
	b, err := TempImagePath(dir)
	if err != nil {
		t.Fatalf("TempImagePath failed: %v", err)
	}
	if a == b {
		t.Errorf("Two temp paths collided: %s", a)
	}
}

func TestRemoveIfExistsMissingFile(t *testing.T) {
	// Must not log-spam or panic on an already-gone file.
	RemoveIfExists(filepath.Join(t.TempDir(), "never-created.jpg"))
	RemoveIfExists("")
}

func TestSweepTempDir(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "stale.jpg")
	fresh := filepath.Join(dir, "fresh.jpg")
	for _, p := range []string{stale, fresh} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", p, err)
		}
	}
	old := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("Failed to age %s: %v", stale, err)
	}

	SweepTempDir(dir, time.Hour)

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("Stale file should have been swept")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("Fresh file should survive the sweep: %v", err)
	}
}

func TestSweepTempDirMissingFolder(t *testing.T) {
	SweepTempDir(filepath.Join(t.TempDir(), "nope"), time.Hour)
}
