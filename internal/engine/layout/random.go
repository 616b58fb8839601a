package layout

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/shared/prng"
	"math"
)

var _ ports.Layout = (*Random)(nil)

const (
	randomSpreadX   = 800.0
	randomSpreadY   = 600.0
	randomSpreadZ   = 800.0
	randomSizeRange = 10.0
)

// Random derives position, size, importance and temperature from a stream
// keyed by the node id. The values are stable per id and meaningless.
type Random struct {
	cfg     Config
	catalog ports.Catalog
}

func NewRandom(cfg Config, catalog ports.Catalog) *Random {
	return &Random{cfg: cfg.normalized(), catalog: catalog}
}

func (r *Random) Mode() ports.Mode { return ports.ModeRandom }

func (r *Random) Position(n *graph.Node) ports.Position {
	if n == nil {
		return ports.Position{}
	}
	s := prng.NewWithSalt(n.ID, "layout-position")
	return ports.Position{
		X: (s.Float64() - 0.5) * randomSpreadX,
		Y: (s.Float64() - 0.5) * randomSpreadY,
		Z: (s.Float64() - 0.5) * randomSpreadZ,
	}
}

func (r *Random) Size(n *graph.Node) float64 {
	if n == nil {
		return r.cfg.MinSize
	}
	return r.cfg.MinSize + prng.NewWithSalt(n.ID, "layout-size").Float64()*randomSizeRange
}

// Importance returns a random score whose rank stays within the node count.
func (r *Random) Importance(n *graph.Node) graph.ImportanceScore {
	if n == nil {
		return graph.MissingScore()
	}
	s := prng.NewWithSalt(n.ID, "layout-importance")
	total := s.Float64()
	count := 1
	if r.catalog != nil {
		count = max(1, len(r.catalog.Files()))
	}
	return graph.ImportanceScore{
		TotalScore: total,
		Rank:       int(math.Floor(s.Float64()*float64(count))) + 1,
	}
}

func (r *Random) temperature(n *graph.Node) float64 {
	return prng.NewWithSalt(n.ID, "layout-temperature").Float64()
}

func (r *Random) Annotate(nodes []*graph.Node) []ports.AnnotatedNode {
	out := make([]ports.AnnotatedNode, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		out = append(out, ports.AnnotatedNode{
			Node:              n,
			Importance:        r.Importance(n),
			Temperature:       r.temperature(n),
			PersonalizedScore: prng.NewWithSalt(n.ID, "layout-score").Float64(),
		})
	}
	return out
}
