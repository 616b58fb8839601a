// # internal/engine/graph/loader_test.go
package graph

import (
	"codeflow/internal/core/errors"
	"os"
	"path/filepath"
	"testing"
)

const jsonDoc = `{
  "nodes": [
    {"id": "a", "path": "src/a.js", "language": "javascript", "size": 120, "lines": 10, "dependencies": ["b", "src/c.js"]},
    {"id": "b", "path": "src/b.js", "name": "b.js", "language": "javascript"},
    {"id": "c", "path": "src/c.js", "metrics": {"complexity": "low", "testCoverage": 80, "issueCount": 1}}
  ]
}`

const yamlDoc = `
nodes:
  - id: a
    path: src/a.py
    language: python
  - id: b
    path: src/b.py
    language: python
edges:
  - source: a
    target: b
  - source: a
    target: b
`

func TestParse_JSONDerivesEdges(t *testing.T) {
	g, err := Parse([]byte(jsonDoc), "json", Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("unexpected counts: nodes=%d edges=%d", g.NodeCount(), g.EdgeCount())
	}
	a, _ := g.Node("a")
	if a.Name != "a.js" {
		t.Fatalf("expected derived name a.js, got %q", a.Name)
	}
	c, _ := g.Node("c")
	if c.Metrics == nil || c.Metrics.TestCoverage != 80 {
		t.Fatalf("expected metrics to decode, got %+v", c.Metrics)
	}
}

func TestParse_YAMLKeepsDuplicateEdges(t *testing.T) {
	g, err := Parse([]byte(yamlDoc), "yaml", Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Fatalf("expected duplicate edges to be kept, got %d", g.EdgeCount())
	}
	a, _ := g.Node("a")
	if len(g.DependenciesOf(a)) != 1 {
		t.Fatal("expected deduplicated dependency view")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format string
		code   errors.ErrorCode
	}{
		{"missing id", `{"nodes":[{"path":"a.js"}]}`, "json", errors.CodeValidationError},
		{"duplicate id", `{"nodes":[{"id":"a","path":"a.js"},{"id":"a","path":"b.js"}]}`, "json", errors.CodeValidationError},
		{"duplicate path", `{"nodes":[{"id":"a","path":"a.js"},{"id":"b","path":"./a.js"}]}`, "json", errors.CodeValidationError},
		{"bad coverage", `{"nodes":[{"id":"a","path":"a.js","metrics":{"testCoverage":140}}]}`, "json", errors.CodeValidationError},
		{"malformed", `{"nodes":`, "json", errors.CodeValidationError},
		{"unknown format", `nodes = []`, "toml", errors.CodeNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format, Options{})
			if !errors.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.yml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	g, err := LoadFile(path, Options{Betweenness: BetweennessPlaceholder})
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Fatalf("expected 2 nodes, got %d", g.NodeCount())
	}

	_, err = LoadFile(filepath.Join(dir, "missing.json"), Options{})
	if !errors.IsCode(err, errors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}
