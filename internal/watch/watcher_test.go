package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func collectChanges(t *testing.T, dir string) (*Watcher, func() []Change) {
	t.Helper()
	w := New(Config{Paths: []string{dir}, Interval: 10 * time.Millisecond})
	var mu sync.Mutex
	var changes []Change
	w.OnChange(func(c Change) {
		mu.Lock()
		changes = append(changes, c)
		mu.Unlock()
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx)
	return w, func() []Change {
		mu.Lock()
		defer mu.Unlock()
		return append([]Change(nil), changes...)
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestWatcherReportsNewFile(t *testing.T) {
	dir := t.TempDir()
	_, got := collectChanges(t, dir)

	// Give the initial scan a moment so the new file counts as new.
	time.Sleep(50 * time.Millisecond)
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("<div></div>"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 2*time.Second, func() bool {
		for _, c := range got() {
			if c.Path == path && !c.Deleted {
				return true
			}
		}
		return false
	})
}

func TestWatcherReportsDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.html")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, got := collectChanges(t, dir)

	time.Sleep(50 * time.Millisecond)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 2*time.Second, func() bool {
		for _, c := range got() {
			if c.Path == path && c.Deleted {
				return true
			}
		}
		return false
	})
}

func TestWatcherIgnoresPatterns(t *testing.T) {
	dir := t.TempDir()
	_, got := collectChanges(t, dir)

	time.Sleep(50 * time.Millisecond)
	ignored := filepath.Join(dir, "scratch.tmp")
	if err := os.WriteFile(ignored, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	kept := filepath.Join(dir, "real.html")
	if err := os.WriteFile(kept, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitFor(t, 2*time.Second, func() bool {
		for _, c := range got() {
			if c.Path == kept {
				return true
			}
		}
		return false
	})
	for _, c := range got() {
		if c.Path == ignored {
			t.Errorf("ignored file reported: %+v", c)
		}
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w := New(Config{Paths: []string{t.TempDir()}})
	go w.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	w.Stop()
}
