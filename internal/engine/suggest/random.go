package suggest

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/shared/observability"
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

const contextualRandomCount = 5

var reasons = []string{
	"Randomly suggested",
	"Might be interesting",
	"Found in project",
	"Available file",
	"Consider checking",
}

var _ ports.Suggestions = (*Random)(nil)

// Random samples files uniformly and attaches a meaningless confidence and
// reason. Only Config.Max applies; confidences are never filtered.
type Random struct {
	cfg     Config
	catalog ports.Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(cfg Config, catalog ports.Catalog, rng *rand.Rand) *Random {
	return &Random{cfg: cfg, catalog: catalog, rng: rng}
}

func (r *Random) Mode() ports.Mode { return ports.ModeRandom }

func (r *Random) Suggest(ctx context.Context, current *graph.Node, sctx ports.SuggestionContext) []ports.Suggestion {
	if current == nil {
		return nil
	}
	started := time.Now()
	defer func() {
		observability.SuggestionDuration.WithLabelValues(string(ports.ModeRandom)).Observe(time.Since(started).Seconds())
	}()
	_, span := observability.Tracer.Start(ctx, "suggest.Random")
	defer span.End()

	excluded := exclusions(current, sctx)
	var pool []*graph.Node
	for _, n := range r.catalog.Files() {
		if !excluded[n.Path] {
			pool = append(pool, n)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	picked := r.sample(pool, r.cfg.Max)
	out := make([]ports.Suggestion, 0, len(picked))
	for _, n := range picked {
		out = append(out, ports.Suggestion{
			File:       n.Path,
			Name:       nodeName(n),
			Confidence: 0.2 + r.rng.Float64()*0.6,
			Reason:     reasons[r.rng.IntN(len(reasons))],
			Type:       ports.SuggestRandom,
		})
	}
	record(out)
	return out
}

func (r *Random) Contextual(ctx context.Context) []ports.Suggestion {
	_, span := observability.Tracer.Start(ctx, "suggest.RandomContextual")
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()
	picked := r.sample(r.catalog.Files(), contextualRandomCount)
	out := make([]ports.Suggestion, 0, len(picked))
	for _, n := range picked {
		out = append(out, ports.Suggestion{
			File:       n.Path,
			Name:       nodeName(n),
			Confidence: 0.3 + r.rng.Float64()*0.5,
			Reason:     "Random suggestion",
			Type:       ports.SuggestRandom,
		})
	}
	record(out)
	return out
}

// sample returns up to n distinct nodes. Callers hold r.mu.
func (r *Random) sample(pool []*graph.Node, n int) []*graph.Node {
	if n <= 0 || len(pool) == 0 {
		return nil
	}
	out := make([]*graph.Node, 0, min(n, len(pool)))
	for _, i := range r.rng.Perm(len(pool)) {
		if len(out) == n {
			break
		}
		out = append(out, pool[i])
	}
	return out
}
