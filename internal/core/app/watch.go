package app

import (
	"codeflow/internal/core/watcher"
	"context"
	"log/slog"
)

// StartWatcher reloads the graph whenever its document changes.
func (a *App) StartWatcher() error {
	w, err := watcher.ForFile(a.Config.Graph.Path, a.Config.Graph.Debounce, func(paths []string) {
		slog.Debug("graph document changed", "paths", paths)
		_ = a.Reload(context.Background())
	})
	if err != nil {
		return err
	}
	a.watchMu.Lock()
	a.activeWatcher = w
	a.watchMu.Unlock()
	return nil
}

func (a *App) StopWatcher() {
	a.watchMu.Lock()
	w := a.activeWatcher
	a.activeWatcher = nil
	a.watchMu.Unlock()
	if w != nil {
		_ = w.Close()
	}
}
