package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_fileWriteTriggersChange(t *testing.T) {
	dir := t.TempDir()
	var fires atomic.Int32
	w := NewWatcher([]string{dir}, []string{".txt"}, func() { fires.Add(1) },
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("alpha"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 3*time.Second, func() bool { return fires.Load() >= 1 }) {
		t.Fatal("change never signalled")
	}
}

func TestWatcher_burstCoalescesToOneSignal(t *testing.T) {
	dir := t.TempDir()
	var fires atomic.Int32
	w := NewWatcher([]string{dir}, []string{".txt"}, func() { fires.Add(1) },
		WithDebounce(150*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	for i := 0; i < 5; i++ {
		name := filepath.Join(dir, "f"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(name, []byte("x"), 0o600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !waitFor(t, 3*time.Second, func() bool { return fires.Load() >= 1 }) {
		t.Fatal("change never signalled")
	}
	// Allow any stray timer to fire before counting.
	time.Sleep(300 * time.Millisecond)
	if got := fires.Load(); got != 1 {
		t.Errorf("burst produced %d signals, want 1", got)
	}
}

func TestWatcher_ignoredExtensionDoesNotTrigger(t *testing.T) {
	dir := t.TempDir()
	var fires atomic.Int32
	w := NewWatcher([]string{dir}, []string{".txt"}, func() { fires.Add(1) },
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "scratch.tmp"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := fires.Load(); got != 0 {
		t.Errorf("ignored extension produced %d signals", got)
	}
}

func TestWatcher_newSubdirectoryIsWatched(t *testing.T) {
	dir := t.TempDir()
	var fires atomic.Int32
	w := NewWatcher([]string{dir}, []string{".txt"}, func() { fires.Add(1) },
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Creating the directory itself signals once; wait for it to settle.
	waitFor(t, 3*time.Second, func() bool { return fires.Load() >= 1 })
	before := fires.Load()

	if err := os.WriteFile(filepath.Join(sub, "inner.txt"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 3*time.Second, func() bool { return fires.Load() > before }) {
		t.Fatal("write inside new subdirectory not observed")
	}
}

func TestWatcher_removeTriggersChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(path, []byte("alpha"), 0o600); err != nil {
		t.Fatal(err)
	}

	var fires atomic.Int32
	w := NewWatcher([]string{dir}, []string{".txt"}, func() { fires.Add(1) },
		WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if !waitFor(t, 3*time.Second, func() bool { return fires.Load() >= 1 }) {
		t.Fatal("removal never signalled")
	}
}

func TestWatcher_stopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewWatcher([]string{dir}, nil, func() {})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
}
