package graph

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

var ErrNodeNotFound = errors.New("node not found")

// NodeNotFoundError names the path or id that failed to resolve.
type NodeNotFoundError struct {
	Target string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("%v: %s", ErrNodeNotFound, e.Target)
}

func (e *NodeNotFoundError) Unwrap() error {
	return ErrNodeNotFound
}

// CentralFile is a node paired with its importance, as returned by the
// centrality lookup.
type CentralFile struct {
	Node       *Node
	Importance ImportanceScore
}

// Holder publishes the current Graph to readers. Reloads swap the pointer so
// a reader always sees one consistent snapshot.
type Holder struct {
	current    atomic.Pointer[Graph]
	generation atomic.Uint64
}

func NewHolder(g *Graph) *Holder {
	h := &Holder{}
	if g == nil {
		g = Empty()
	}
	h.current.Store(g)
	return h
}

// Current returns the graph snapshot in use.
func (h *Holder) Current() *Graph {
	return h.current.Load()
}

// Swap installs g and returns the previous snapshot. The generation is
// bumped after the new graph is visible.
func (h *Holder) Swap(g *Graph) *Graph {
	if g == nil {
		g = Empty()
	}
	prev := h.current.Swap(g)
	h.generation.Add(1)
	return prev
}

// Generation counts the swaps since the holder was created.
func (h *Holder) Generation() uint64 {
	return h.generation.Load()
}

// Files returns every node of the current snapshot.
func (h *Holder) Files() []*Node {
	return h.Current().Nodes()
}

func (h *Holder) FileByPath(path string) (*Node, bool) {
	return h.Current().NodeByPath(path)
}

func (h *Holder) FileByID(id string) (*Node, bool) {
	return h.Current().Node(id)
}

func (h *Holder) Importance(id string) ImportanceScore {
	return h.Current().Importance(id)
}

func (h *Holder) DependenciesOf(n *Node) []*Node {
	return h.Current().DependenciesOf(n)
}

func (h *Holder) Related(a, b *Node) bool {
	return h.Current().Related(a, b)
}

func (h *Holder) Languages() []string {
	return h.Current().Languages()
}

// ReverseDependencies returns the files that depend on path.
func (h *Holder) ReverseDependencies(ctx context.Context, path string) ([]*Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g := h.Current()
	n, ok := g.NodeByPath(path)
	if !ok {
		return nil, &NodeNotFoundError{Target: path}
	}
	return g.DependentsOf(n), nil
}

// HighCentralityFiles returns up to limit files in importance-rank order.
func (h *Holder) HighCentralityFiles(ctx context.Context, limit int) ([]CentralFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g := h.Current()
	top := g.TopByImportance(limit)
	out := make([]CentralFile, 0, len(top))
	for _, n := range top {
		out = append(out, CentralFile{Node: n, Importance: g.Importance(n.ID)})
	}
	return out, nil
}
