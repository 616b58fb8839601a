// # internal/engine/usermodel/flusher.go
package usermodel

import (
	"codeflow/internal/data/queue"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

type FlusherConfig struct {
	// QueueCapacity bounds pending snapshots; extra submissions are dropped.
	// Defaults to 4.
	QueueCapacity int
	// Rate is saves per second; <= 0 means unlimited.
	Rate  float64
	Burst int
	// SaveTimeout bounds a single save. Defaults to 5s.
	SaveTimeout time.Duration
}

func (c FlusherConfig) capacity() int {
	if c.QueueCapacity <= 0 {
		return 4
	}
	return c.QueueCapacity
}

func (c FlusherConfig) saveTimeout() time.Duration {
	if c.SaveTimeout <= 0 {
		return 5 * time.Second
	}
	return c.SaveTimeout
}

// Flusher persists snapshots off the ingestion path. Submit never blocks; a
// single goroutine coalesces queued snapshots and saves only the newest.
type Flusher struct {
	store   Persistence
	cfg     FlusherConfig
	queue   *queue.MemoryQueue[Snapshot]
	limiter *util.Limiter

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// NewFlusher starts the save loop. Close stops it after draining.
func NewFlusher(store Persistence, cfg FlusherConfig) *Flusher {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Flusher{
		store:   store,
		cfg:     cfg,
		queue:   queue.NewMemoryQueue[Snapshot](cfg.capacity()),
		limiter: util.NewLimiter(cfg.Rate, cfg.Burst),
		cancel:  cancel,
	}
	f.wg.Add(1)
	go f.run(ctx)
	return f
}

// Submit queues snap for saving. It is a FlushFunc.
func (f *Flusher) Submit(snap Snapshot) {
	if f == nil {
		return
	}
	if f.queue.Enqueue(snap) == queue.EnqueueDropped {
		observability.ModelFlushDroppedTotal.Inc()
		slog.Debug("model flush dropped, queue full", "user", snap.UserID, "version", snap.Version)
		return
	}
	observability.ModelFlushQueueDepth.Set(float64(f.queue.Len()))
}

// Pending returns the number of queued snapshots.
func (f *Flusher) Pending() int {
	return f.queue.Len()
}

func (f *Flusher) run(ctx context.Context) {
	defer f.wg.Done()
	for {
		batch, err := f.queue.DequeueBatch(ctx, f.cfg.capacity(), time.Second)
		if len(batch) > 0 {
			observability.ModelFlushQueueDepth.Set(float64(f.queue.Len()))
			f.save(latest(batch))
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
				slog.Warn("model flush loop stopped", "error", err)
			}
			return
		}
	}
}

func (f *Flusher) save(snap Snapshot) {
	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.saveTimeout())
	defer cancel()

	if err := f.limiter.Wait(ctx, 1); err != nil {
		observability.ModelFlushTotal.WithLabelValues("throttled").Inc()
		slog.Warn("model flush throttled", "user", snap.UserID, "error", err)
		return
	}
	if err := f.store.SaveModel(ctx, snap); err != nil {
		observability.ModelFlushTotal.WithLabelValues("error").Inc()
		slog.Warn("failed to save user model", "user", snap.UserID, "version", snap.Version, "error", err)
		return
	}
	observability.ModelFlushTotal.WithLabelValues("ok").Inc()
	slog.Debug("user model saved", "user", snap.UserID, "version", snap.Version, "files", len(snap.Files))
}

// latest picks the snapshot with the highest version.
func latest(batch []Snapshot) Snapshot {
	best := batch[0]
	for _, s := range batch[1:] {
		if s.Version >= best.Version {
			best = s
		}
	}
	return best
}

// Close drains queued snapshots and stops the loop.
func (f *Flusher) Close() error {
	if f == nil {
		return nil
	}
	f.once.Do(func() {
		_ = f.queue.Close()
		f.wg.Wait()
		f.cancel()
	})
	return nil
}
