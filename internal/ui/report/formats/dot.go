// # internal/ui/report/formats/dot.go
package formats

import (
	"fmt"
	"strings"
)

type DOTGenerator struct {
	scene Scene
}

func NewDOTGenerator(scene Scene) *DOTGenerator {
	return &DOTGenerator{scene: scene}
}

// Generate renders the scene as a Graphviz digraph. Node widths follow the
// layout size, fill colors follow the coloring and cycle edges are marked.
func (d *DOTGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph codeflow {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8];\n")
	buf.WriteString("  overlap=false;\n")
	buf.WriteString(fmt.Sprintf("  label=\"%s view\";\n\n", escapeLabel(string(d.scene.Mode))))

	names := make([]string, 0, len(d.scene.Nodes))
	for _, n := range d.scene.Nodes {
		names = append(names, n.ID)
	}
	ids := makeIDs(names)

	for _, n := range d.scene.Nodes {
		label := fmt.Sprintf("%s\\n(imp=%.2f temp=%.2f)", escapeLabel(n.Path), n.Importance, n.Temperature)
		width := n.Size / 10
		if n.InCycle {
			buf.WriteString(fmt.Sprintf("  %s [label=\"%s\", fillcolor=\"%s\", color=\"red\", penwidth=2.0, width=%.2f];\n",
				ids[n.ID], label, dotColor(n.Color), width))
			continue
		}
		buf.WriteString(fmt.Sprintf("  %s [label=\"%s\", fillcolor=\"%s\", width=%.2f];\n",
			ids[n.ID], label, dotColor(n.Color), width))
	}
	buf.WriteString("\n")

	for _, e := range d.scene.Edges {
		from, ok := ids[e.Source]
		if !ok {
			continue
		}
		to, ok := ids[e.Target]
		if !ok {
			continue
		}
		if e.InCycle {
			buf.WriteString(fmt.Sprintf("  %s -> %s [color=\"red\", penwidth=%.1f, label=\"CYCLE\"];\n", from, to, max(e.Width, 2)))
			continue
		}
		buf.WriteString(fmt.Sprintf("  %s -> %s [color=\"%s\", penwidth=%.1f];\n", from, to, dotColor(e.Color), e.Width))
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}
