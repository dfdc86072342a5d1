// Package watch reruns tasks when watched files change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet window before a rerun triggers
const DefaultDebounce = 300 * time.Millisecond

// defaultIgnoreDirs are never watched
var defaultIgnoreDirs = map[string]bool{
	".git":         true,
	".chore":       true,
	".venv":        true,
	"node_modules": true,
	"__pycache__":  true,
}

// Options configure a watcher
type Options struct {
	// Root is the directory watched recursively
	Root string
	// Globs are doublestar patterns, relative to Root, that select which
	// changed files trigger a rerun. Empty means every change triggers.
	Globs []string
	// Debounce is the quiet window; zero means DefaultDebounce
	Debounce time.Duration
}

// Watcher watches a directory tree and reports matching changes in
// debounced batches
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	opts      Options
}

// New creates a watcher over opts.Root. onChange receives each debounced
// batch of changed paths (relative to Root).
func New(opts Options, onChange func(paths []string)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		opts:      opts,
		debouncer: NewDebouncer(opts.Debounce, 0, onChange),
	}

	if err := w.addRecursive(opts.Root); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if !d.IsDir() {
			return nil
		}
		if defaultIgnoreDirs[d.Name()] && path != root {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// Run processes events until the context is canceled
func (w *Watcher) Run(ctx context.Context) error {
	defer w.debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("file watcher error: %w", err)
		}
	}
}

// Close releases the underlying watcher
func (w *Watcher) Close() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	rel, err := filepath.Rel(w.opts.Root, event.Name)
	if err != nil {
		return
	}

	// New directories join the watch set
	if event.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(event.Name); statErr == nil && info.IsDir() {
			if !defaultIgnoreDirs[filepath.Base(event.Name)] {
				_ = w.addRecursive(event.Name)
			}
			return
		}
	}

	if w.matches(rel) {
		w.debouncer.Add(rel)
	}
}

func (w *Watcher) matches(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if defaultIgnoreDirs[part] {
			return false
		}
	}

	if len(w.opts.Globs) == 0 {
		return true
	}
	for _, glob := range w.opts.Globs {
		if ok, err := doublestar.Match(glob, filepath.ToSlash(rel)); err == nil && ok {
			return true
		}
	}
	return false
}
