// # internal/engine/graph/graph.go
package graph

import (
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"
	"sort"
)

// Metrics carries optional per-file quality data supplied by the graph provider.
type Metrics struct {
	Complexity   string  `json:"complexity,omitempty" yaml:"complexity,omitempty"`
	TestCoverage float64 `json:"testCoverage,omitempty" yaml:"testCoverage,omitempty" validate:"gte=0,lte=100"`
	IssueCount   int     `json:"issueCount,omitempty" yaml:"issueCount,omitempty" validate:"gte=0"`
}

// Node is a file in the loaded project. Nodes are immutable once a Graph is
// built; derived scores live in the Graph's importance map.
type Node struct {
	ID           string   `json:"id" yaml:"id" validate:"required"`
	Path         string   `json:"path" yaml:"path" validate:"required"`
	Name         string   `json:"name" yaml:"name"`
	Language     string   `json:"language,omitempty" yaml:"language,omitempty"`
	Size         int64    `json:"size" yaml:"size" validate:"gte=0"`
	Lines        int      `json:"lines" yaml:"lines" validate:"gte=0"`
	LastModified int64    `json:"lastModified" yaml:"lastModified"`
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Metrics      *Metrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Dir returns the node's parent directory.
func (n *Node) Dir() string {
	if n == nil {
		return ""
	}
	return util.ParentDir(n.Path)
}

// Edge is a directed dependency: Source depends on Target.
type Edge struct {
	Source string `json:"source" yaml:"source" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`
}

// Options tune graph construction.
type Options struct {
	Betweenness BetweennessMode
}

// Graph is a read-only snapshot of one project load: nodes, edges, lookup
// indexes and the importance scores computed for them. A reload builds a new
// Graph rather than mutating this one.
type Graph struct {
	nodes []*Node
	edges []Edge

	byID       map[string]*Node
	byPath     map[string]*Node
	dependents map[string][]string // target id -> source ids, first-seen order
	outgoing   map[string][]string // source id -> target ids, first-seen order

	importance map[string]ImportanceScore
	byRank     []string // node ids ordered by rank
}

// New indexes nodes and edges and computes importance. Later nodes with a
// duplicate id shadow earlier ones in the lookup indexes only.
func New(nodes []*Node, edges []Edge, opts Options) *Graph {
	g := &Graph{
		nodes:      make([]*Node, 0, len(nodes)),
		edges:      append([]Edge(nil), edges...),
		byID:       make(map[string]*Node, len(nodes)),
		byPath:     make(map[string]*Node, len(nodes)),
		dependents: make(map[string][]string),
		outgoing:   make(map[string][]string),
	}
	for _, n := range nodes {
		if n == nil {
			continue
		}
		g.nodes = append(g.nodes, n)
		g.byID[n.ID] = n
		g.byPath[n.Path] = n
	}

	seenDependent := make(map[Edge]bool, len(g.edges))
	for _, e := range g.edges {
		if seenDependent[e] {
			continue
		}
		seenDependent[e] = true
		g.dependents[e.Target] = append(g.dependents[e.Target], e.Source)
		g.outgoing[e.Source] = append(g.outgoing[e.Source], e.Target)
	}

	g.importance = ComputeImportance(g.nodes, g.edges, opts)
	g.byRank = make([]string, 0, len(g.nodes))
	for _, n := range g.nodes {
		if _, ok := g.importance[n.ID]; ok && g.byID[n.ID] == n {
			g.byRank = append(g.byRank, n.ID)
		}
	}
	sort.SliceStable(g.byRank, func(i, j int) bool {
		return g.importance[g.byRank[i]].Rank < g.importance[g.byRank[j]].Rank
	})

	observability.GraphNodes.Set(float64(len(g.nodes)))
	observability.GraphEdges.Set(float64(len(g.edges)))
	return g
}

// Empty returns a graph with no nodes.
func Empty() *Graph {
	return New(nil, nil, Options{})
}

// Nodes returns the nodes in load order. The slice must not be modified.
func (g *Graph) Nodes() []*Node {
	if g == nil {
		return nil
	}
	return g.nodes
}

// Edges returns the edges in load order. The slice must not be modified.
func (g *Graph) Edges() []Edge {
	if g == nil {
		return nil
	}
	return g.edges
}

func (g *Graph) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	if g == nil {
		return 0
	}
	return len(g.edges)
}

func (g *Graph) Node(id string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.byID[id]
	return n, ok
}

func (g *Graph) NodeByPath(path string) (*Node, bool) {
	if g == nil {
		return nil, false
	}
	n, ok := g.byPath[path]
	return n, ok
}

// Importance returns the score for id; a missing node gets rank 999, score 0.
func (g *Graph) Importance(id string) ImportanceScore {
	if g != nil {
		if s, ok := g.importance[id]; ok {
			return s
		}
	}
	return MissingScore()
}

// ImportanceScores returns a copy of the full score map.
func (g *Graph) ImportanceScores() map[string]ImportanceScore {
	out := make(map[string]ImportanceScore)
	if g == nil {
		return out
	}
	for id, s := range g.importance {
		out[id] = s
	}
	return out
}

// DependenciesOf returns the nodes n depends on: its outgoing edges, or when
// it has none, its Dependencies entries resolved by id or path. Unknown
// entries are skipped.
func (g *Graph) DependenciesOf(n *Node) []*Node {
	if g == nil || n == nil {
		return nil
	}
	refs := g.outgoing[n.ID]
	if len(refs) == 0 {
		refs = n.Dependencies
	}
	out := make([]*Node, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, dep := range refs {
		target, ok := g.byID[dep]
		if !ok {
			target, ok = g.byPath[dep]
		}
		if !ok || seen[target.ID] || target.ID == n.ID {
			continue
		}
		seen[target.ID] = true
		out = append(out, target)
	}
	return out
}

// DependentsOf returns the nodes with an edge pointing at n.
func (g *Graph) DependentsOf(n *Node) []*Node {
	if g == nil || n == nil {
		return nil
	}
	ids := g.dependents[n.ID]
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if src, ok := g.byID[id]; ok && src.ID != n.ID {
			out = append(out, src)
		}
	}
	return out
}

// Related reports whether a and b share a parent directory or a dependency
// edge in either direction.
func (g *Graph) Related(a, b *Node) bool {
	if a == nil || b == nil {
		return false
	}
	if a.Dir() == b.Dir() {
		return true
	}
	for _, dep := range g.DependenciesOf(a) {
		if dep.ID == b.ID {
			return true
		}
	}
	for _, dep := range g.DependenciesOf(b) {
		if dep.ID == a.ID {
			return true
		}
	}
	return false
}

// TopByImportance returns up to limit nodes in rank order.
func (g *Graph) TopByImportance(limit int) []*Node {
	if g == nil || limit <= 0 {
		return nil
	}
	if limit > len(g.byRank) {
		limit = len(g.byRank)
	}
	out := make([]*Node, 0, limit)
	for _, id := range g.byRank[:limit] {
		out = append(out, g.byID[id])
	}
	return out
}

// Languages returns the distinct non-empty languages in sorted order.
func (g *Graph) Languages() []string {
	if g == nil {
		return nil
	}
	set := make(map[string]bool)
	for _, n := range g.nodes {
		if n.Language != "" {
			set[n.Language] = true
		}
	}
	return util.SortedStringKeys(set)
}
