package suggest

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/scoring"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/attribute"
)

const (
	dependencyBase    = 0.8
	dependencyAff     = 0.2
	reverseBase       = 0.7
	reverseAff        = 0.3
	patternScale      = 1.2
	patternCap        = 0.9
	patternMin        = 0.3
	similarityMin     = 0.4
	similarityWeight  = 0.7
	languageWeight    = 0.3
	centralityLimit   = 3
	centralityWeight  = 0.6
	centralityAff     = 0.4
	recentLimit       = 5
	recentTop         = 0.8
	recentStep        = 0.1
	frequentLimit     = 3
	frequentConfident = 0.7
)

var _ ports.Suggestions = (*Personalized)(nil)

type cacheKey struct {
	path       string
	version    uint64
	generation uint64
	exclude    string
}

type Personalized struct {
	cfg     Config
	model   ports.UserModelReader
	catalog ports.Catalog
	lookup  ports.DependencyLookup
	cache   *lru.Cache[cacheKey, []ports.Suggestion]
}

// NewPersonalized validates the configured strategies. lookup may be nil, in
// which case reverse dependencies and centrality contribute nothing.
func NewPersonalized(cfg Config, model ports.UserModelReader, catalog ports.Catalog, lookup ports.DependencyLookup) (*Personalized, error) {
	if err := ValidateAlgorithms(cfg.Algorithms); err != nil {
		return nil, err
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultConfig().CacheSize
	}
	cache, err := lru.New[cacheKey, []ports.Suggestion](size)
	if err != nil {
		return nil, fmt.Errorf("create suggestion cache: %w", err)
	}
	return &Personalized{cfg: cfg, model: model, catalog: catalog, lookup: lookup, cache: cache}, nil
}

func (p *Personalized) Mode() ports.Mode { return ports.ModePersonalized }

func (p *Personalized) enabled(name string) bool {
	for _, a := range p.cfg.Algorithms {
		if a == name {
			return true
		}
	}
	return false
}

func (p *Personalized) Suggest(ctx context.Context, current *graph.Node, sctx ports.SuggestionContext) []ports.Suggestion {
	if current == nil {
		return nil
	}
	started := time.Now()
	defer func() {
		observability.SuggestionDuration.WithLabelValues(string(ports.ModePersonalized)).Observe(time.Since(started).Seconds())
	}()
	ctx, span := observability.Tracer.Start(ctx, "suggest.Personalized")
	defer span.End()

	excluded := exclusions(current, sctx)
	key := cacheKey{path: current.Path, version: p.model.Version(), generation: p.catalog.Generation(), exclude: excludeKey(sctx)}
	if cached, ok := p.cache.Get(key); ok {
		span.SetAttributes(attribute.Bool("suggest.cached", true))
		return append([]ports.Suggestion(nil), cached...)
	}

	var all []ports.Suggestion
	if p.enabled(StrategyDependency) {
		all = append(all, p.dependencies(ctx, current)...)
	}
	if p.enabled(StrategyPattern) {
		all = append(all, p.patterns(current)...)
	}
	if p.enabled(StrategySimilarity) {
		all = append(all, p.similar(current)...)
	}
	if p.enabled(StrategyCentrality) {
		all = append(all, p.central(ctx)...)
	}

	kept := all[:0]
	for _, s := range all {
		if !excluded[s.File] {
			kept = append(kept, s)
		}
	}
	out := finalize(kept, p.cfg.Threshold, p.cfg.Max)
	p.cache.Add(key, out)
	record(out)
	span.SetAttributes(attribute.Int("suggest.results", len(out)))
	return append([]ports.Suggestion(nil), out...)
}

func (p *Personalized) dependencies(ctx context.Context, current *graph.Node) []ports.Suggestion {
	var out []ports.Suggestion
	for _, dep := range p.catalog.DependenciesOf(current) {
		out = append(out, ports.Suggestion{
			File:       dep.Path,
			Name:       nodeName(dep),
			Confidence: dependencyBase + p.model.FileAffinity(dep.Path)*dependencyAff,
			Reason:     "Direct dependency of " + nodeName(current),
			Type:       ports.SuggestDependency,
		})
	}
	if p.lookup == nil {
		return out
	}
	reverse, err := p.lookup.ReverseDependencies(ctx, current.Path)
	if err != nil {
		observability.LookupFailuresTotal.WithLabelValues("reverse_dependencies").Inc()
		slog.Warn("reverse dependency lookup failed", "path", current.Path, "error", err)
		return out
	}
	for _, dep := range reverse {
		out = append(out, ports.Suggestion{
			File:       dep.Path,
			Name:       nodeName(dep),
			Confidence: reverseBase + p.model.FileAffinity(dep.Path)*reverseAff,
			Reason:     "Depends on " + nodeName(current),
			Type:       ports.SuggestReverseDependency,
		})
	}
	return out
}

func (p *Personalized) patterns(current *graph.Node) []ports.Suggestion {
	co := p.model.CoAccessedFiles(current.Path)
	var out []ports.Suggestion
	for _, path := range util.SortedStringKeys(co) {
		confidence := math.Min(patternCap, co[path]*patternScale)
		if confidence <= patternMin {
			continue
		}
		out = append(out, ports.Suggestion{
			File:       path,
			Name:       p.nameOf(path),
			Confidence: confidence,
			Reason:     "Often accessed together with " + nodeName(current),
			Type:       ports.SuggestPattern,
		})
	}
	return out
}

func (p *Personalized) similar(current *graph.Node) []ports.Suggestion {
	var out []ports.Suggestion
	for _, n := range p.catalog.Files() {
		if n.Path == current.Path {
			continue
		}
		sim := scoring.FileSimilarity(current, n)
		if sim <= similarityMin {
			continue
		}
		out = append(out, ports.Suggestion{
			File:       n.Path,
			Name:       nodeName(n),
			Confidence: util.Clamp01(sim*similarityWeight + p.model.LanguagePreference(n.Language)*languageWeight),
			Reason:     "Similar to " + nodeName(current),
			Type:       ports.SuggestSimilarity,
		})
	}
	return out
}

func (p *Personalized) central(ctx context.Context) []ports.Suggestion {
	if p.lookup == nil {
		return nil
	}
	files, err := p.lookup.HighCentralityFiles(ctx, centralityLimit)
	if err != nil {
		observability.LookupFailuresTotal.WithLabelValues("centrality").Inc()
		slog.Warn("centrality lookup failed", "error", err)
		return nil
	}
	if len(files) > centralityLimit {
		files = files[:centralityLimit]
	}
	out := make([]ports.Suggestion, 0, len(files))
	for _, f := range files {
		if f.Node == nil {
			continue
		}
		out = append(out, ports.Suggestion{
			File:       f.Node.Path,
			Name:       nodeName(f.Node),
			Confidence: util.Clamp01(f.Importance.TotalScore*centralityWeight + p.model.FileAffinity(f.Node.Path)*centralityAff),
			Reason:     fmt.Sprintf("Important file in codebase (rank #%d)", f.Importance.Rank),
			Type:       ports.SuggestCentrality,
		})
	}
	return out
}

// Contextual suggests recently and frequently used files without a focus
// file.
func (p *Personalized) Contextual(ctx context.Context) []ports.Suggestion {
	_, span := observability.Tracer.Start(ctx, "suggest.Contextual")
	defer span.End()

	var out []ports.Suggestion
	for i, f := range p.model.RecentFiles(recentLimit) {
		out = append(out, ports.Suggestion{
			File:       f.Path,
			Name:       p.nameOf(f.Path),
			Confidence: recentTop - float64(i)*recentStep,
			Reason:     "Recently accessed",
			Type:       ports.SuggestRecent,
		})
	}
	for _, f := range p.model.FrequentFiles(frequentLimit) {
		out = append(out, ports.Suggestion{
			File:       f.Path,
			Name:       p.nameOf(f.Path),
			Confidence: frequentConfident,
			Reason:     "Frequently accessed",
			Type:       ports.SuggestFrequent,
		})
	}
	out = dedupe(out)
	record(out)
	return out
}

func (p *Personalized) nameOf(path string) string {
	if n, ok := p.catalog.FileByPath(path); ok {
		return nodeName(n)
	}
	return util.BaseName(path)
}

func exclusions(current *graph.Node, sctx ports.SuggestionContext) map[string]bool {
	out := map[string]bool{current.Path: true}
	for _, p := range sctx.Exclude {
		out[util.NormalizePath(p)] = true
	}
	return out
}

func excludeKey(sctx ports.SuggestionContext) string {
	if len(sctx.Exclude) == 0 {
		return ""
	}
	list := make([]string, len(sctx.Exclude))
	for i, p := range sctx.Exclude {
		list[i] = util.NormalizePath(p)
	}
	sort.Strings(list)
	return strings.Join(list, "\x00")
}
