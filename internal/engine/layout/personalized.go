package layout

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/scoring"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/prng"
	"codeflow/internal/shared/util"
	"math"
)

var _ ports.Layout = (*Personalized)(nil)

// Personalized pulls important and hot files toward the center.
type Personalized struct {
	cfg     Config
	model   ports.UserModelReader
	catalog ports.Catalog
	cache   *memo
}

func NewPersonalized(cfg Config, model ports.UserModelReader, catalog ports.Catalog) *Personalized {
	cfg = cfg.normalized()
	return &Personalized{
		cfg:     cfg,
		model:   model,
		catalog: catalog,
		cache:   newMemo(cfg.CacheSize),
	}
}

func (p *Personalized) Mode() ports.Mode { return ports.ModePersonalized }

// Position places n at a radius that shrinks with its combined score, an
// angle from its importance rank on the golden-angle spiral, and a height
// from its folder depth plus jitter that fades as importance grows.
func (p *Personalized) Position(n *graph.Node) ports.Position {
	return p.place(n).position
}

// Size maps interaction share (0.7) and structural importance (0.3) into
// [MinSize, MaxSize].
func (p *Personalized) Size(n *graph.Node) float64 {
	return p.place(n).size
}

func (p *Personalized) Importance(n *graph.Node) graph.ImportanceScore {
	if n == nil {
		return graph.MissingScore()
	}
	return p.catalog.Importance(n.ID)
}

// Annotate attaches importance, temperature and the personalized score to
// each node.
func (p *Personalized) Annotate(nodes []*graph.Node) []ports.AnnotatedNode {
	out := make([]ports.AnnotatedNode, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, ports.AnnotatedNode{
			Node:              n,
			Importance:        p.Importance(n),
			Temperature:       p.model.FileTemperature(n.Path),
			PersonalizedScore: scoring.NodeImportance(p.model, p.catalog, n),
		})
	}
	return out
}

func (p *Personalized) place(n *graph.Node) placement {
	if n == nil {
		return placement{size: p.cfg.MinSize}
	}
	key := memoKey{nodeID: n.ID, version: p.model.Version(), generation: p.catalog.Generation()}
	if cached, ok := p.cache.get(key); ok {
		observability.LayoutCacheTotal.WithLabelValues("hit").Inc()
		return cached
	}
	observability.LayoutCacheTotal.WithLabelValues("miss").Inc()

	structural := p.catalog.Importance(n.ID)
	importance := scoring.NodeImportance(p.model, p.catalog, n)
	combined := util.Clamp01(importance*radiusImportanceWeight + p.model.FileTemperature(n.Path)*radiusTemperatureWeight)

	radius := p.cfg.MaxRadius - combined*(p.cfg.MaxRadius-p.cfg.MinRadius)
	angle := float64(structural.Rank) * goldenAngle
	jitter := (prng.NewWithSalt(n.ID, "layout-jitter").Float64() - 0.5) * jitterAmplitude * (1 - importance)
	height := float64(util.PathDepth(n.Path))*levelHeight + jitter

	sizeFactor := p.model.FileAffinity(n.Path)*sizeInteractionWeight + structural.TotalScore*sizeImportanceWeight
	result := placement{
		position: ports.Position{
			X: radius * math.Cos(angle),
			Y: height,
			Z: radius * math.Sin(angle),
		},
		size: p.cfg.MinSize + util.Clamp01(sizeFactor)*(p.cfg.MaxSize-p.cfg.MinSize),
	}
	p.cache.put(key, result)
	return result
}
