// Package watch runs a callback whenever one of a set of files changes on disk.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"resumepdf/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when a zero delay is configured.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called after the watched files settle. An error is logged
// and watching continues.
type ChangeFunc func(ctx context.Context) error

// Watcher debounces filesystem events for a fixed set of files. Editors
// often save by writing a temp file and renaming it, so the parent
// directories are watched rather than the files themselves.
type Watcher struct {
	files         []string
	debounceDelay time.Duration
	logger        *errors.Logger

	mu          sync.Mutex
	lastModTime map[string]time.Time
}

// New creates a watcher for files. Paths are made absolute so events can
// be matched exactly.
func New(files []string, debounceDelay time.Duration, logger *errors.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounceDelay <= 0 {
		debounceDelay = DefaultDebounce
	}
	if logger == nil {
		logger = errors.Discard()
	}

	abs := make([]string, 0, len(files))
	for _, f := range files {
		p, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		abs = append(abs, filepath.Clean(p))
	}

	w := &Watcher{
		files:         abs,
		debounceDelay: debounceDelay,
		logger:        logger,
		lastModTime:   make(map[string]time.Time),
	}
	w.updateModTimes()
	return w, nil
}

// Files returns the absolute paths being watched.
func (w *Watcher) Files() []string {
	return append([]string(nil), w.files...)
}

// Run blocks until ctx is cancelled, calling onChange once per burst of
// changes to the watched files.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if closeErr := fsWatcher.Close(); closeErr != nil {
			w.logger.LogError(closeErr, "Failed to close file watcher")
		}
	}()

	dirs := make(map[string]bool)
	for _, f := range w.files {
		dir := filepath.Dir(f)
		if dirs[dir] {
			continue
		}
		if err := fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	w.logger.Info("Watching files for changes", "files", w.files, "debounce_delay", w.debounceDelay)

	// Stopped timer; Reset arms it on the first relevant event.
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if w.shouldProcessEvent(event) {
				timer.Reset(w.debounceDelay)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.LogError(err, "File watcher error")

		case <-timer.C:
			if !w.hasAnyFileChanged() {
				continue
			}
			w.logger.Info("Watched files changed")
			if err := onChange(ctx); err != nil {
				w.logger.LogError(err, "Change handler failed")
			}
		}
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	for _, f := range w.files {
		if name == f {
			return true
		}
	}
	return false
}

func (w *Watcher) updateModTimes() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range w.files {
		if stat, err := os.Stat(f); err == nil {
			w.lastModTime[f] = stat.ModTime()
		}
	}
}

// hasAnyFileChanged updates the recorded modification times and reports
// whether any file was created, modified or removed since the last check.
func (w *Watcher) hasAnyFileChanged() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := false
	for _, f := range w.files {
		stat, err := os.Stat(f)
		if err != nil {
			if _, existed := w.lastModTime[f]; existed {
				delete(w.lastModTime, f)
				changed = true
			}
			continue
		}
		if last, ok := w.lastModTime[f]; !ok || !stat.ModTime().Equal(last) {
			w.lastModTime[f] = stat.ModTime()
			changed = true
		}
	}
	return changed
}
