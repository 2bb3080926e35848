package discover

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScanner_walksRecursivelyAndFilters(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "skip.bin"), "binary")
	writeFile(t, filepath.Join(dir, "sub", "deep", "b.md"), "beta")
	writeFile(t, filepath.Join(dir, "sub", "c.TXT"), "case insensitive")

	s := NewScanner([]string{".txt", ".md"})
	got := s.Discover([]string{dir})

	if len(got) != 3 {
		paths := make([]string, 0, len(got))
		for _, f := range got {
			paths = append(paths, f.Path)
		}
		t.Fatalf("discovered %d files: %v, want 3", len(got), paths)
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Path < got[j].Path }) {
		t.Error("results not sorted by path")
	}
	for _, f := range got {
		if !filepath.IsAbs(f.Path) {
			t.Errorf("path not absolute: %s", f.Path)
		}
		if f.Size == 0 || f.ModTimeNS == 0 {
			t.Errorf("fingerprint not populated for %s: %+v", f.Path, f)
		}
		if f.Name != filepath.Base(f.Path) {
			t.Errorf("name %s does not match path %s", f.Name, f.Path)
		}
	}
}

func TestScanner_missingDirectoryIsSkipped(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")

	s := NewScanner([]string{".txt"})
	got := s.Discover([]string{filepath.Join(dir, "does-not-exist"), dir})
	if len(got) != 1 {
		t.Fatalf("discovered %d files, want 1", len(got))
	}
}

func TestScanner_directoryWithMatchingNameIsNotAFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "folder.txt"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "folder.txt", "inner.txt"), "alpha")

	s := NewScanner([]string{".txt"})
	got := s.Discover([]string{dir})
	if len(got) != 1 {
		t.Fatalf("discovered %d files, want 1", len(got))
	}
	if got[0].Name != "inner.txt" {
		t.Errorf("discovered %s, want inner.txt", got[0].Name)
	}
}

func TestScanner_overlappingRootsDeduplicate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")

	s := NewScanner([]string{".txt"})
	got := s.Discover([]string{dir, dir})
	if len(got) != 1 {
		t.Fatalf("discovered %d files, want 1", len(got))
	}
}

func TestScanner_emptyExtensionListAcceptsEverything(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "b.anything"), "beta")
	writeFile(t, filepath.Join(dir, "noext"), "gamma")

	s := NewScanner(nil)
	if got := s.Discover([]string{dir}); len(got) != 3 {
		t.Fatalf("discovered %d files, want 3", len(got))
	}
}

func TestNewScanner_normalizesExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), "x")
	writeFile(t, filepath.Join(dir, "b.txt"), "y")

	// Bare names and mixed case are accepted in config.
	s := NewScanner([]string{"PDF", " .Txt "})
	if got := s.Discover([]string{dir}); len(got) != 2 {
		t.Fatalf("discovered %d files, want 2", len(got))
	}
}

func TestScanner_stableAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.txt", "a.txt", "b.txt"} {
		writeFile(t, filepath.Join(dir, name), name)
	}
	s := NewScanner([]string{".txt"})
	first := s.Discover([]string{dir})
	second := s.Discover([]string{dir})
	if len(first) != len(second) {
		t.Fatal("runs disagree on file count")
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("runs disagree at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
