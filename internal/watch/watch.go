// Package watch re-runs a callback when module sources under a project root
// change. Events are batched so a save that touches several files triggers
// one run.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for more events before
// reporting a batch.
const DefaultDebounce = 150 * time.Millisecond

// ChangeFunc receives the project-relative, slash-separated paths that
// changed since the last call, sorted.
type ChangeFunc func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	Root       string
	Extensions []string
	Debounce   time.Duration
}

// Watcher watches a source tree.
type Watcher struct {
	root     string
	exts     map[string]bool
	debounce time.Duration
	logger   *slog.Logger
}

// New creates a watcher.
func New(opts Options, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	exts := make(map[string]bool, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return &Watcher{
		root:     opts.Root,
		exts:     exts,
		debounce: opts.Debounce,
		logger:   logger,
	}
}

// Run watches until ctx is done. onChange runs on the calling goroutine,
// never concurrently with itself. An error from onChange is logged and
// watching continues.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	if err := w.addTree(fw, w.root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.root, err)
	}

	w.logger.Info("watching for changes", slog.String("root", w.root))
	return w.loop(ctx, fw.Events, fw.Errors, func(dir string) {
		if err := w.addTree(fw, dir); err != nil {
			w.logger.Warn("failed to watch new directory", slog.String("path", dir), slog.String("error", err.Error()))
		}
	}, onChange)
}

func (w *Watcher) loop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	addDir func(string),
	onChange ChangeFunc,
) error {
	pending := make(map[string]bool)
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Op.Has(fsnotify.Create) && addDir != nil && isDir(event.Name) {
				addDir(event.Name)
				continue
			}
			rel, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			pending[rel] = true
			timer.Reset(w.debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", slog.String("error", err.Error()))

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)

			w.logger.Debug("change detected", slog.Int("files", len(changed)))
			if err := onChange(ctx, changed); err != nil {
				w.logger.Error("rerun failed", slog.String("error", err.Error()))
			}
		}
	}
}

// relevant filters events down to module files and returns their
// project-relative path.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return "", false
	}
	if len(w.exts) > 0 && !w.exts[strings.ToLower(filepath.Ext(event.Name))] {
		return "", false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// addTree adds dir and its subdirectories, skipping node_modules and
// hidden directories.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != dir && (name == "node_modules" || strings.HasPrefix(name, ".")) {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
