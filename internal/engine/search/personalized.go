package search

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/scoring"
	"codeflow/internal/shared/observability"
	"context"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"go.opentelemetry.io/otel/attribute"
)

const (
	textWeight        = 0.4
	interactionWeight = 0.25
	recencyWeight     = 0.15
	languageWeight    = 0.1
	contextWeight     = 0.1

	rerankFrequencyBoost = 0.1
	rerankRecencyBoost   = 0.1
	rerankLanguageBoost  = 0.1
)

var _ ports.Search = (*Personalized)(nil)

// Personalized first asks whether a file matches, then how much this user is
// likely to want it, then re-sorts with small frequency, recency and
// language boosts.
type Personalized struct {
	cfg     Config
	model   ports.UserModelReader
	catalog ports.Catalog
	content ports.ContentSource
	history *queryHistory
}

// NewPersonalized builds the search. content may be nil, in which case
// results carry no preview.
func NewPersonalized(cfg Config, model ports.UserModelReader, catalog ports.Catalog, content ports.ContentSource) *Personalized {
	return &Personalized{
		cfg:     cfg,
		model:   model,
		catalog: catalog,
		content: content,
		history: newQueryHistory(cfg.HistorySize),
	}
}

func (p *Personalized) Mode() ports.Mode { return ports.ModePersonalized }

func (p *Personalized) History() []string { return p.history.list() }

type candidate struct {
	node  *graph.Node
	score float64
	rank  float64
}

func (p *Personalized) Search(ctx context.Context, query string) []ports.SearchResult {
	started := time.Now()
	defer func() {
		observability.SearchDuration.WithLabelValues(string(ports.ModePersonalized)).Observe(time.Since(started).Seconds())
	}()
	ctx, span := observability.Tracer.Start(ctx, "search.Personalized")
	defer span.End()

	p.history.add(query)
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	files := p.catalog.Files()
	fuzzyHits := fuzzyMatches(query, files)

	candidates := make([]candidate, 0)
	for i, n := range files {
		text := textRelevance(n, query)
		if text == 0 && fuzzyHits[i] {
			text = fuzzyMatchScore
		}
		if text == 0 {
			continue
		}
		score := text
		if p.cfg.UseML {
			score = p.personalScore(n, text)
			if score <= p.cfg.MinScore {
				continue
			}
		}
		candidates = append(candidates, candidate{node: n, score: score, rank: score})
	}

	if p.cfg.UseML && p.cfg.PersonalizeResults {
		for i := range candidates {
			candidates[i].rank = p.rerankScore(candidates[i])
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].rank != candidates[j].rank {
			return candidates[i].rank > candidates[j].rank
		}
		return candidates[i].node.Path < candidates[j].node.Path
	})

	results := make([]ports.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		res := ports.SearchResult{Node: c.node, Path: c.node.Path, RelevanceScore: c.score}
		if p.cfg.UseML {
			res.Preview = p.preview(ctx, c.node, query)
		}
		results = append(results, res)
	}
	span.SetAttributes(attribute.Int("search.results", len(results)))
	return results
}

// personalScore = text*0.4 + interactions*0.25 + recency*0.15 +
// language*0.1 + context*0.1, capped at 1.
func (p *Personalized) personalScore(n *graph.Node, text float64) float64 {
	contextual := 0.0
	if p.cfg.ContextAware {
		contextual = scoring.ContextualRelevance(p.model, p.catalog, n)
	}
	score := text*textWeight +
		p.model.FileAffinity(n.Path)*interactionWeight +
		p.model.FileRecency(n.Path)*recencyWeight +
		p.model.LanguagePreference(n.Language)*languageWeight +
		contextual*contextWeight
	return math.Min(1, score)
}

func (p *Personalized) rerankScore(c candidate) float64 {
	n := c.node
	return c.score +
		p.model.FileAffinity(n.Path)*rerankFrequencyBoost +
		p.model.FileRecency(n.Path)*rerankRecencyBoost +
		(p.model.LanguagePreference(n.Language)-0.5)*rerankLanguageBoost
}

func (p *Personalized) preview(ctx context.Context, n *graph.Node, query string) string {
	if p.content == nil {
		return ""
	}
	content, err := p.content.ReadFile(ctx, n.Path)
	if err != nil {
		observability.LookupFailuresTotal.WithLabelValues("content").Inc()
		slog.Debug("search preview unavailable", "path", n.Path, "error", err)
		return ""
	}
	return preview(content, query)
}

// fuzzyMatches marks the files whose name contains the query's characters in
// order.
func fuzzyMatches(query string, files []*graph.Node) map[int]bool {
	names := make([]string, len(files))
	for i, n := range files {
		names[i] = displayName(n)
	}
	hits := make(map[int]bool)
	for _, m := range fuzzy.Find(query, names) {
		hits[m.Index] = true
	}
	return hits
}
