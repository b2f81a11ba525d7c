// Package watch re-runs analysis when source files change.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/panbanda/codepulse/pkg/config"
	"github.com/panbanda/codepulse/pkg/parser"
)

// DefaultDebounce is how long a file must stay quiet before its callback
// fires.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors files for changes and triggers analysis.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	logger    *slog.Logger
	debounce  time.Duration
	roots     []string
	files     map[string]bool // explicitly watched files, by clean path
	callback  func(path string)
	mu        sync.Mutex
	pending   map[string]time.Time
}

// NewWatcher creates a watcher over paths, which may be directories
// (watched recursively) or single files.
func NewWatcher(paths []string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		logger:    slog.New(slog.DiscardHandler),
		debounce:  debounce,
		roots:     paths,
		files:     make(map[string]bool),
		pending:   make(map[string]time.Time),
	}, nil
}

// SetLogger sets the logger for watch errors.
func (w *Watcher) SetLogger(l *slog.Logger) {
	if l != nil {
		w.logger = l
	}
}

// SetCallback sets the function to call when a file changes. Callbacks run
// one at a time.
func (w *Watcher) SetCallback(cb func(path string)) {
	w.callback = cb
}

// Start registers the watch roots and processes events until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.roots {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			w.files[filepath.Clean(root)] = true
			if err := w.fsWatcher.Add(filepath.Dir(root)); err != nil {
				return err
			}
			continue
		}
		if err := w.addTree(root); err != nil {
			return err
		}
	}

	go w.processDebounced(ctx)

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
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// addTree watches root and every directory below it that is not excluded.
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excludedDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) excludedDir(name string) bool {
	return slices.Contains(w.config.Exclude.Dirs, name)
}

// handleEvent records writes and creates of supported source files. New
// directories are added to the watch.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}

	path := event.Name

	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if !w.excludedDir(info.Name()) {
				if err := w.addTree(path); err != nil {
					w.logger.Warn("failed to watch directory", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !w.wants(path) {
		return
	}

	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// wants reports whether changes to path should trigger the callback.
func (w *Watcher) wants(path string) bool {
	if len(w.files) > 0 && w.files[filepath.Clean(path)] {
		return true
	}
	if w.config.ShouldExclude(path) {
		return false
	}
	return parser.DetectLanguage(path) != parser.LangUnknown
}

// processDebounced processes pending changes after debounce period.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending runs the callback for files that have been stable for the
// debounce period, in path order.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if w.callback == nil {
		return
	}
	slices.Sort(ready)
	for _, path := range ready {
		w.callback(path)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedPaths returns the directories being watched.
func (w *Watcher) WatchedPaths() []string {
	return w.fsWatcher.WatchList()
}
