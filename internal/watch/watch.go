// Package watch turns file-system writes under a root directory into
// debounced save events.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 300 * time.Millisecond

type Options struct {
	// Debounce is how long a path must stay quiet before it is reported.
	Debounce time.Duration
	// IgnorePatterns are base names or globs; matching directories are not
	// descended into.
	IgnorePatterns []string
	// Match selects the files worth reporting. Nil reports every file.
	Match func(path string) bool
}

// Handlers are called from the Run goroutine, one path at a time.
type Handlers struct {
	Saved   func(ctx context.Context, path string)
	Removed func(path string)
}

type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	ignore   []string
	match    func(string) bool
	logger   *zap.Logger
}

func New(root string, opts Options, logger *zap.Logger) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Match == nil {
		opts.Match = func(string) bool { return true }
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		root:     abs,
		watcher:  fw,
		debounce: opts.Debounce,
		ignore:   opts.IgnorePatterns,
		match:    opts.Match,
		logger:   logger.Named("watch"),
	}, nil
}

func (w *Watcher) Root() string {
	return w.root
}

// Files lists the matching files currently under root, sorted.
func (w *Watcher) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if w.shouldIgnore(path) {
			if d.IsDir() && path != w.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && w.match(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files under %s: %w", w.root, err)
	}
	return files, nil
}

// Run watches until ctx is done. Events are collected until the debounce
// window passes without new ones, then each path is reported once, in path
// order: as saved when it still exists, as removed otherwise. Editors that
// save by rename therefore produce a single save.
func (w *Watcher) Run(ctx context.Context, h Handlers) error {
	defer w.watcher.Close()

	if err := w.addRecursive(w.root); err != nil {
		return err
	}
	w.logger.Info("watching", zap.String("root", w.root), zap.Duration("debounce", w.debounce))

	pending := make(map[string]bool)
	var timer *time.Timer
	var timerC <-chan time.Time

	flush := func() {
		paths := make([]string, 0, len(pending))
		for path := range pending {
			paths = append(paths, path)
		}
		clear(pending)
		slices.Sort(paths)

		for _, path := range paths {
			if ctx.Err() != nil {
				return
			}
			if isFile(path) {
				if h.Saved != nil {
					h.Saved(ctx, path)
				}
			} else if h.Removed != nil {
				h.Removed(path)
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if w.shouldIgnore(event.Name) {
				continue
			}

			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := w.addRecursive(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", zap.String("path", event.Name), zap.Error(err))
				}
				continue
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.match(event.Name) {
				continue
			}

			pending[event.Name] = true
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != w.root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." {
		return false
	}

	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		for _, pattern := range w.ignore {
			if part == pattern {
				return true
			}
			if matched, _ := filepath.Match(pattern, part); matched {
				return true
			}
		}
	}
	return false
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
