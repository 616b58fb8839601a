package report

import (
	"strings"
	"testing"

	"codeflow/internal/core/errors"
	"codeflow/internal/core/ports"
	"codeflow/internal/core/suite"
	"codeflow/internal/engine/graph"
)

func cyclicSuite(t *testing.T) (*graph.Graph, *suite.Suite) {
	t.Helper()
	g := graph.New([]*graph.Node{
		{ID: "a", Path: "/a.go", Name: "a.go", Language: "go"},
		{ID: "b", Path: "/b.go", Name: "b.go", Language: "go"},
		{ID: "c", Path: "/c.go", Name: "c.go", Language: "go"},
	}, []graph.Edge{
		{Source: "a", Target: "b"},
		{Source: "b", Target: "a"},
		{Source: "b", Target: "c"},
	}, graph.Options{Betweenness: graph.BetweennessPlaceholder})

	cfg := suite.DefaultConfig()
	cfg.Seed = 7
	s, err := suite.New(ports.ModeRandom, cfg, suite.Deps{Catalog: graph.NewHolder(g)})
	if err != nil {
		t.Fatalf("suite.New: %v", err)
	}
	return g, s
}

func TestBuildScene_MarksCycles(t *testing.T) {
	g, s := cyclicSuite(t)
	scene := BuildScene(g, s)

	if scene.Mode != ports.ModeRandom || len(scene.Nodes) != 3 || len(scene.Edges) != 3 {
		t.Fatalf("unexpected scene: mode=%s nodes=%d edges=%d", scene.Mode, len(scene.Nodes), len(scene.Edges))
	}
	flags := map[string]bool{}
	for _, n := range scene.Nodes {
		flags[n.ID] = n.InCycle
		if n.Size <= 0 || n.Color == "" {
			t.Errorf("node %s missing size or color: %+v", n.ID, n)
		}
	}
	if !flags["a"] || !flags["b"] || flags["c"] {
		t.Fatalf("unexpected cycle flags: %v", flags)
	}
	if !scene.Edges[0].InCycle || !scene.Edges[1].InCycle || scene.Edges[2].InCycle {
		t.Fatalf("unexpected edge cycle flags: %+v", scene.Edges)
	}
}

func TestRender(t *testing.T) {
	g, s := cyclicSuite(t)
	scene := BuildScene(g, s)

	out, err := Render(scene, "dot")
	if err != nil || !strings.HasPrefix(out, "digraph codeflow") {
		t.Fatalf("dot render: %v %q", err, out)
	}
	out, err = Render(scene, "tsv-edges")
	if err != nil || !strings.HasPrefix(out, "Source\tTarget") {
		t.Fatalf("tsv-edges render: %v %q", err, out)
	}
	if _, err := Render(scene, "mermaid"); !errors.IsCode(err, errors.CodeNotSupported) {
		t.Fatalf("expected NOT_SUPPORTED, got %v", err)
	}
}
