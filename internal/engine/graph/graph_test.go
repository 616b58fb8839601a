// # internal/engine/graph/graph_test.go
package graph

import (
	"context"
	"errors"
	"testing"
)

func sampleGraph() *Graph {
	nodes := []*Node{
		{ID: "app", Path: "/src/app.js", Name: "app.js", Language: "javascript", Dependencies: []string{"util", "/src/lib/db.js"}},
		{ID: "util", Path: "/src/util.js", Name: "util.js", Language: "javascript"},
		{ID: "db", Path: "/src/lib/db.js", Name: "db.js", Language: "javascript"},
		{ID: "model", Path: "/py/model.py", Name: "model.py", Language: "python", Dependencies: []string{"db"}},
	}
	edges := []Edge{
		{Source: "app", Target: "util"},
		{Source: "app", Target: "db"},
		{Source: "model", Target: "db"},
	}
	return New(nodes, edges, Options{})
}

func TestGraph_Lookups(t *testing.T) {
	g := sampleGraph()

	if g.NodeCount() != 4 || g.EdgeCount() != 3 {
		t.Fatalf("unexpected counts: nodes=%d edges=%d", g.NodeCount(), g.EdgeCount())
	}
	n, ok := g.NodeByPath("/src/lib/db.js")
	if !ok || n.ID != "db" {
		t.Fatalf("expected db by path, got %v %v", n, ok)
	}
	if _, ok := g.Node("missing"); ok {
		t.Fatal("expected miss for unknown id")
	}
	if got := g.Languages(); len(got) != 2 || got[0] != "javascript" || got[1] != "python" {
		t.Fatalf("unexpected languages: %v", got)
	}
}

func TestGraph_DependenciesAndDependents(t *testing.T) {
	g := sampleGraph()
	app, _ := g.Node("app")
	db, _ := g.Node("db")

	deps := g.DependenciesOf(app)
	if len(deps) != 2 || deps[0].ID != "util" || deps[1].ID != "db" {
		t.Fatalf("unexpected dependencies: %v", ids(deps))
	}
	dependents := g.DependentsOf(db)
	if len(dependents) != 2 || dependents[0].ID != "app" || dependents[1].ID != "model" {
		t.Fatalf("unexpected dependents: %v", ids(dependents))
	}
}

func TestGraph_DependenciesFallBackToNodeList(t *testing.T) {
	nodes := []*Node{
		{ID: "a", Path: "/a.js", Dependencies: []string{"b", "/c.js", "nope", "a"}},
		{ID: "b", Path: "/b.js"},
		{ID: "c", Path: "/c.js"},
	}
	g := New(nodes, nil, Options{})
	deps := g.DependenciesOf(nodes[0])
	if len(deps) != 2 || deps[0].ID != "b" || deps[1].ID != "c" {
		t.Fatalf("unexpected dependencies: %v", ids(deps))
	}
}

func TestGraph_Related(t *testing.T) {
	g := sampleGraph()
	app, _ := g.Node("app")
	util, _ := g.Node("util")
	db, _ := g.Node("db")
	model, _ := g.Node("model")

	tests := []struct {
		name string
		a, b *Node
		want bool
	}{
		{"same directory", app, util, true},
		{"dependency edge", app, db, true},
		{"reverse edge", db, model, true},
		{"unrelated", util, model, false},
		{"nil", nil, app, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Related(tt.a, tt.b); got != tt.want {
				t.Fatalf("Related = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGraph_TopByImportance(t *testing.T) {
	g := sampleGraph()
	top := g.TopByImportance(2)
	if len(top) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(top))
	}
	if top[0].ID != "db" {
		t.Fatalf("expected db first, got %s", top[0].ID)
	}
	if g.Importance(top[0].ID).Rank != 1 || g.Importance(top[1].ID).Rank != 2 {
		t.Fatal("expected ranks 1 and 2")
	}
	if len(g.TopByImportance(100)) != 4 {
		t.Fatal("expected limit to clamp to node count")
	}
	if g.TopByImportance(0) != nil {
		t.Fatal("expected nil for zero limit")
	}
}

func TestHolder_Lookups(t *testing.T) {
	h := NewHolder(sampleGraph())
	ctx := context.Background()

	rev, err := h.ReverseDependencies(ctx, "/src/lib/db.js")
	if err != nil {
		t.Fatalf("ReverseDependencies: %v", err)
	}
	if len(rev) != 2 {
		t.Fatalf("expected 2 reverse deps, got %v", ids(rev))
	}

	_, err = h.ReverseDependencies(ctx, "/nope.js")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}

	central, err := h.HighCentralityFiles(ctx, 3)
	if err != nil {
		t.Fatalf("HighCentralityFiles: %v", err)
	}
	if len(central) != 3 || central[0].Importance.Rank != 1 {
		t.Fatalf("unexpected centrality result: %+v", central)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := h.HighCentralityFiles(cancelled, 3); err == nil {
		t.Fatal("expected error on cancelled context")
	}
}

func TestHolder_Swap(t *testing.T) {
	h := NewHolder(nil)
	if h.Current().NodeCount() != 0 {
		t.Fatal("expected empty graph")
	}
	prev := h.Swap(sampleGraph())
	if prev.NodeCount() != 0 || h.Current().NodeCount() != 4 {
		t.Fatal("swap did not install new graph")
	}
	if h.Generation() != 1 {
		t.Fatalf("expected generation 1 after one swap, got %d", h.Generation())
	}
	h.Swap(nil)
	if h.Generation() != 2 || h.Current().NodeCount() != 0 {
		t.Fatalf("expected generation 2 and an empty graph, got %d", h.Generation())
	}
}

func ids(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}
