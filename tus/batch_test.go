package tus

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandGlob(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"a.mp4", "b.mp4", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.mp4"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	matches, err := ExpandGlob(dir, "*.mp4")
	if err != nil {
		t.Fatalf("ExpandGlob: %v", err)
	}

	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d: %v", len(matches), matches)
	}
}

func TestExpandGlob_InvalidPattern(t *testing.T) {
	dir := t.TempDir()
	if _, err := ExpandGlob(dir, "[invalid"); err == nil {
		t.Error("expected error for invalid glob pattern")
	}
}
