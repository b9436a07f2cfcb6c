// Package watch implements a polling file watcher. Polling avoids
// platform-specific notification APIs and their edge cases (editor
// rename-and-replace, NFS, containers) at the cost of a short fixed
// latency.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Change is one detected file change.
type Change struct {
	Path    string
	Deleted bool
}

// Config configures the watcher.
type Config struct {
	// Paths are the files or directories to watch.
	Paths []string

	// Ignore patterns to skip, matched against the base name.
	Ignore []string

	// Interval is the polling period.
	Interval time.Duration
}

// DefaultIgnore contains the patterns skipped by default.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// DefaultConfig fills in the defaults for unset fields.
func DefaultConfig(c Config) Config {
	if c.Interval == 0 {
		c.Interval = 200 * time.Millisecond
	}
	if len(c.Ignore) == 0 {
		c.Ignore = DefaultIgnore
	}
	return c
}

// Watcher polls a set of paths and reports modified and deleted files.
type Watcher struct {
	config Config

	mu          sync.Mutex
	onChange    func(Change)
	running     bool
	initialized bool
	stopCh      chan struct{}
	timestamps  map[string]time.Time
}

// New creates a watcher over the configured paths.
func New(config Config) *Watcher {
	return &Watcher{
		config:     DefaultConfig(config),
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback invoked for each change. The callback runs
// on the watcher's goroutine.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until the context is cancelled or Stop is called. The
// first scan only records timestamps; pre-existing files do not fire
// the callback.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.mu.Unlock()

	w.scanInitial()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			w.poll()
		}
	}
}

// Stop stops a running watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

func (w *Watcher) scanInitial() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.walk(func(p string, mod time.Time) {
		w.timestamps[p] = mod
	})
	w.initialized = true
}

// poll scans for modified and deleted files and reports them through
// the callback.
func (w *Watcher) poll() {
	w.mu.Lock()
	callback := w.onChange
	initialized := w.initialized
	w.mu.Unlock()
	if callback == nil {
		return
	}

	var changes []Change
	seen := make(map[string]bool)
	w.walk(func(p string, mod time.Time) {
		seen[p] = true
		w.mu.Lock()
		last, exists := w.timestamps[p]
		if !exists || mod.After(last) {
			w.timestamps[p] = mod
		}
		w.mu.Unlock()
		if (!exists && initialized) || (exists && mod.After(last)) {
			changes = append(changes, Change{Path: p})
		}
	})

	w.mu.Lock()
	for p := range w.timestamps {
		if !seen[p] {
			delete(w.timestamps, p)
			changes = append(changes, Change{Path: p, Deleted: true})
		}
	}
	w.mu.Unlock()

	for _, c := range changes {
		callback(c)
	}
}

// walk visits every watched file that is not ignored.
func (w *Watcher) walk(visit func(path string, mod time.Time)) {
	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if p != root && w.ignored(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.ignored(p) {
				visit(p, info.ModTime())
			}
			return nil
		})
	}
}

func (w *Watcher) ignored(p string) bool {
	name := filepath.Base(p)
	for _, pattern := range w.config.Ignore {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
