// # internal/ui/report/scene.go
package report

import (
	"codeflow/internal/core/suite"
	"codeflow/internal/engine/graph"
	"codeflow/internal/ui/report/formats"
)

// BuildScene places, sizes and colors every node of g with the suite's
// layout and coloring. Nodes and edges on a dependency cycle are flagged.
func BuildScene(g *graph.Graph, s *suite.Suite) formats.Scene {
	scene := formats.Scene{Mode: s.Mode}

	inCycle := make(map[string]bool)
	cycleEdges := make(map[[2]string]bool)
	for _, cycle := range g.DetectCycles() {
		ids := make([]string, 0, len(cycle))
		for _, p := range cycle {
			if n, ok := g.NodeByPath(p); ok {
				ids = append(ids, n.ID)
				inCycle[n.ID] = true
			}
		}
		for i := range ids {
			cycleEdges[[2]string{ids[i], ids[(i+1)%len(ids)]}] = true
		}
	}

	for _, a := range s.Layout.Annotate(g.Nodes()) {
		n := a.Node
		scene.Nodes = append(scene.Nodes, formats.NodeView{
			ID:          n.ID,
			Path:        n.Path,
			Name:        n.Name,
			Language:    n.Language,
			Position:    s.Layout.Position(n),
			Size:        s.Layout.Size(n),
			Color:       s.Coloring.NodeColor(n),
			Importance:  a.Importance.TotalScore,
			Temperature: a.Temperature,
			InCycle:     inCycle[n.ID],
		})
	}
	for _, e := range g.Edges() {
		scene.Edges = append(scene.Edges, formats.EdgeView{
			Source:  e.Source,
			Target:  e.Target,
			Color:   s.Coloring.EdgeColor(e),
			Width:   s.Coloring.EdgeWidth(e),
			InCycle: cycleEdges[[2]string{e.Source, e.Target}],
		})
	}
	return scene
}

// Render formats a scene as "dot", "tsv" or "tsv-edges".
func Render(scene formats.Scene, format string) (string, error) {
	switch format {
	case "dot":
		return formats.NewDOTGenerator(scene).Generate()
	case "tsv":
		return formats.NewTSVGenerator(scene).Generate()
	case "tsv-edges":
		return formats.NewTSVGenerator(scene).GenerateEdges()
	}
	return "", UnsupportedFormatError(format)
}
