package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "snapshot.json")
	if err := os.WriteFile(file, []byte("0123456789"), 0644); err != nil {
		t.Fatal(err)
	}

	nested := filepath.Join(dir, "data", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data", "a.db"), []byte("abcd"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "b.db"), []byte("ef"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("single file", func(t *testing.T) {
		got, err := DiskUsageBytes(file)
		if err != nil {
			t.Fatal(err)
		}
		if got != 10 {
			t.Errorf("got %d bytes, want 10", got)
		}
	})

	t.Run("directory is summed recursively", func(t *testing.T) {
		got, err := DiskUsageBytes(filepath.Join(dir, "data"))
		if err != nil {
			t.Fatal(err)
		}
		if got != 6 {
			t.Errorf("got %d bytes, want 6", got)
		}
	})

	t.Run("multiple paths", func(t *testing.T) {
		got, err := DiskUsageBytes(file, filepath.Join(dir, "data"))
		if err != nil {
			t.Fatal(err)
		}
		if got != 16 {
			t.Errorf("got %d bytes, want 16", got)
		}
	})

	t.Run("missing and empty paths are skipped", func(t *testing.T) {
		got, err := DiskUsageBytes("", filepath.Join(dir, "gone"), file)
		if err != nil {
			t.Fatal(err)
		}
		if got != 10 {
			t.Errorf("got %d bytes, want 10", got)
		}
	})
}
