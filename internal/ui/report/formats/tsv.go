// # internal/ui/report/formats/tsv.go
package formats

import (
	"fmt"
	"strings"
)

type TSVGenerator struct {
	scene Scene
}

func NewTSVGenerator(scene Scene) *TSVGenerator {
	return &TSVGenerator{scene: scene}
}

// Generate writes one row per node.
func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Path\tLanguage\tX\tY\tZ\tSize\tColor\tImportance\tTemperature\tCycle\n")
	for _, n := range t.scene.Nodes {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%.3f\t%.3f\t%.3f\t%.2f\t%s\t%.4f\t%.4f\t%t\n",
			n.Path, n.Language,
			n.Position.X, n.Position.Y, n.Position.Z,
			n.Size, n.Color, n.Importance, n.Temperature, n.InCycle))
	}
	return buf.String(), nil
}

// GenerateEdges writes one row per edge.
func (t *TSVGenerator) GenerateEdges() (string, error) {
	var buf strings.Builder

	buf.WriteString("Source\tTarget\tColor\tWidth\tCycle\n")
	for _, e := range t.scene.Edges {
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%.2f\t%t\n", e.Source, e.Target, e.Color, e.Width, e.InCycle))
	}
	return buf.String(), nil
}
