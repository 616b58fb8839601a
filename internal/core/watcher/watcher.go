// # internal/core/watcher/watcher.go
package watcher

import (
	"codeflow/internal/shared/observability"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// Watcher reports debounced changes to files whose base name matches one of
// its patterns. Directories are watched rather than files so editors that
// save by rename keep triggering events.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	debounce   time.Duration
	patterns   []glob.Glob
	onChange   func([]string)
	callbackMu sync.Mutex

	pending   map[string]time.Time
	pendingMu sync.Mutex
	timer     *time.Timer
}

func NewWatcher(debounce time.Duration, patterns []string, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}

	compiled := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, g)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		debounce:  debounce,
		patterns:  compiled,
		onChange:  onChange,
		pending:   make(map[string]time.Time),
	}, nil
}

// ForFile watches a single document, matching it by base name.
func ForFile(path string, debounce time.Duration, onChange func([]string)) (*Watcher, error) {
	w, err := NewWatcher(debounce, []string{glob.QuoteMeta(filepath.Base(path))}, onChange)
	if err != nil {
		return nil, err
	}
	if err := w.Watch([]string{filepath.Dir(path)}); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// Watch adds each directory (or the directory of each file) and starts the
// event loop.
func (w *Watcher) Watch(paths []string) error {
	for _, path := range paths {
		dir := path
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			dir = filepath.Dir(path)
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()

			if !w.matches(event.Name) {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create ||
				event.Op&fsnotify.Remove == fsnotify.Remove ||
				event.Op&fsnotify.Rename == fsnotify.Rename {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = time.Now()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		w.flushChanges()
	})
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]time.Time)
	w.pendingMu.Unlock()

	if len(paths) > 0 {
		w.callbackMu.Lock()
		defer w.callbackMu.Unlock()
		w.onChange(paths)
	}
}

func (w *Watcher) matches(path string) bool {
	if len(w.patterns) == 0 {
		return true
	}
	base := filepath.Base(path)
	for _, g := range w.patterns {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}
