package coloring

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/shared/prng"
)

var _ ports.Coloring = (*Random)(nil)

// Random colors every node from the palette by id and draws all edges alike.
type Random struct{}

func NewRandom() *Random { return &Random{} }

func (r *Random) Mode() ports.Mode { return ports.ModeRandom }

func (r *Random) NodeColor(n *graph.Node) string {
	if n == nil {
		return Palette[0]
	}
	return Palette[prng.Index(n.ID, len(Palette))]
}

func (r *Random) EdgeColor(graph.Edge) string { return neutralEdgeColor }

func (r *Random) EdgeWidth(graph.Edge) float64 { return defaultEdgeWidth }

func (r *Random) Scheme() ports.ColorScheme {
	return ports.ColorScheme{
		Temperature: append([]string(nil), Palette...),
		Languages:   append([]string(nil), Palette...),
	}
}
