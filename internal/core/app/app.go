// # internal/core/app/app.go
package app

import (
	"codeflow/internal/core/config"
	"codeflow/internal/core/ports"
	"codeflow/internal/core/suite"
	"codeflow/internal/core/watcher"
	"codeflow/internal/data/modelstore"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/usermodel"
	"codeflow/internal/shared/observability"
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// App owns the loaded graph, the user model and its persistence, and the
// suite built over them.
type App struct {
	Config  *config.Config
	Graph   *graph.Holder
	Model   *usermodel.Model
	Suite   *suite.Suite
	Content *FileContent

	store   *modelstore.Store
	flusher *usermodel.Flusher

	closeOnce sync.Once
	closeErr  error

	watchMu       sync.Mutex
	activeWatcher *watcher.Watcher
	onReload      func(*graph.Graph)
}

// New loads the graph document, opens the store when enabled, restores the
// user model and builds the configured suite. A store that cannot be opened
// disables persistence instead of failing.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	g, err := graph.LoadFile(cfg.Graph.Path, graphOptions(cfg))
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:  cfg,
		Graph:   graph.NewHolder(g),
		Content: NewFileContent(cfg.Graph.ContentRoot, contentCacheSize),
	}

	var persistence usermodel.Persistence
	if cfg.DB.Enabled {
		store, err := modelstore.Open(cfg.DB.Path, cfg.DB.BusyTimeout)
		if err != nil {
			slog.Warn("user model store unavailable, running without persistence", "path", cfg.DB.Path, "error", err)
		} else {
			a.store = store
			persistence = store
			a.flusher = usermodel.NewFlusher(store, usermodel.FlusherConfig{
				QueueCapacity: cfg.Persistence.QueueCapacity,
				Rate:          cfg.Persistence.FlushRate,
				Burst:         cfg.Persistence.FlushBurst,
				SaveTimeout:   cfg.Persistence.SaveTimeout,
			})
		}
	}

	opts := usermodel.Options{UserID: cfg.User.ID, FlushEvery: cfg.Persistence.FlushEvery}
	if a.flusher != nil {
		opts.OnFlush = a.flusher.Submit
	}
	a.Model = usermodel.Load(ctx, persistence, opts, cfg.Persistence.LoadTimeout)

	mode, err := suite.ParseMode(cfg.Suite.Mode)
	if err != nil {
		a.Close()
		return nil, err
	}
	s, err := suite.New(mode, SuiteConfig(cfg), suite.Deps{
		Model:   a.Model,
		Catalog: a.Graph,
		Lookup:  a.Graph,
		Content: a.Content,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Suite = s

	slog.Info("codeflow ready",
		"mode", mode,
		"user", cfg.User.ID,
		"files", g.NodeCount(),
		"edges", g.EdgeCount(),
		"persistence", a.store != nil,
	)
	return a, nil
}

func graphOptions(cfg *config.Config) graph.Options {
	return graph.Options{Betweenness: graph.BetweennessMode(cfg.Importance.Betweenness)}
}

// Ingest feeds one UI event into the user model.
func (a *App) Ingest(in usermodel.Interaction) bool {
	return a.Model.Ingest(in)
}

// Bookmarks returns the bookmark store, or nil without persistence.
func (a *App) Bookmarks() ports.BookmarkStore {
	if a.store == nil {
		return nil
	}
	return a.store
}

// OnReload registers a callback run after every successful reload.
func (a *App) OnReload(fn func(*graph.Graph)) {
	a.watchMu.Lock()
	defer a.watchMu.Unlock()
	a.onReload = fn
}

// Reload re-reads the graph document and swaps it in. On error the current
// graph stays in place.
func (a *App) Reload(ctx context.Context) error {
	_, span := observability.Tracer.Start(ctx, "app.Reload")
	defer span.End()
	span.SetAttributes(attribute.String("graph.path", a.Config.Graph.Path))

	g, err := graph.LoadFile(a.Config.Graph.Path, graphOptions(a.Config))
	if err != nil {
		observability.GraphReloadsTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.Warn("graph reload failed, keeping previous graph", "path", a.Config.Graph.Path, "error", err)
		return err
	}
	a.Graph.Swap(g)
	a.Content.Purge()
	observability.GraphReloadsTotal.WithLabelValues("ok").Inc()
	span.SetAttributes(attribute.Int("graph.nodes", g.NodeCount()))
	slog.Info("graph reloaded", "files", g.NodeCount(), "edges", g.EdgeCount())

	a.watchMu.Lock()
	fn := a.onReload
	a.watchMu.Unlock()
	if fn != nil {
		fn(g)
	}
	return nil
}

// Close stops the watcher, saves the final model state and closes the store.
// Calls after the first return the first result.
func (a *App) Close() error {
	a.closeOnce.Do(func() { a.closeErr = a.close() })
	return a.closeErr
}

func (a *App) close() error {
	a.StopWatcher()
	if a.flusher != nil {
		_ = a.flusher.Close()
	}
	if a.store == nil {
		return nil
	}
	if a.Model != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.Config.Persistence.SaveTimeout)
		if err := a.store.SaveModel(ctx, a.Model.Snapshot()); err != nil {
			slog.Warn("final user model save failed", "user", a.Config.User.ID, "error", err)
		}
		cancel()
	}
	return a.store.Close()
}
