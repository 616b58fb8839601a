package search

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/shared/observability"
	"context"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	randomPrefixScore   = 1.0
	randomContainsScore = 0.7
	randomDefaultScore  = 0.5
)

var _ ports.Search = (*Random)(nil)

// Random matches by substring, orders alphabetically, then shuffles.
type Random struct {
	catalog ports.Catalog
	history *queryHistory

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(historySize int, catalog ports.Catalog, rng *rand.Rand) *Random {
	return &Random{catalog: catalog, history: newQueryHistory(historySize), rng: rng}
}

func (r *Random) Mode() ports.Mode { return ports.ModeRandom }

func (r *Random) History() []string { return r.history.list() }

func (r *Random) Search(ctx context.Context, query string) []ports.SearchResult {
	started := time.Now()
	defer func() {
		observability.SearchDuration.WithLabelValues(string(ports.ModeRandom)).Observe(time.Since(started).Seconds())
	}()
	_, span := observability.Tracer.Start(ctx, "search.Random")
	defer span.End()

	r.history.add(query)
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	results := make([]ports.SearchResult, 0)
	for _, n := range r.catalog.Files() {
		name := strings.ToLower(displayName(n))
		if !strings.Contains(name, q) && !strings.Contains(strings.ToLower(n.Path), q) {
			continue
		}
		score := randomDefaultScore
		switch idx := strings.Index(name, q); {
		case idx == 0:
			score = randomPrefixScore
		case idx > 0:
			score = randomContainsScore
		}
		results = append(results, ports.SearchResult{Node: n, Path: n.Path, RelevanceScore: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return displayName(results[i].Node) < displayName(results[j].Node)
	})

	r.mu.Lock()
	r.rng.Shuffle(len(results), func(i, j int) { results[i], results[j] = results[j], results[i] })
	r.mu.Unlock()
	return results
}
