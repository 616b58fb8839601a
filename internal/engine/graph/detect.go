// # internal/engine/graph/detect.go
package graph

// DetectCycles returns every dependency cycle reachable in a depth-first walk
// of the graph, each as node paths starting at the file the walk reached first.
// Walk order follows load order so the result is stable across runs.
func (g *Graph) DetectCycles() [][]string {
	if g == nil {
		return nil
	}
	var cycles [][]string
	visited := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]bool)

	for _, n := range g.nodes {
		if g.byID[n.ID] != n || visited[n.ID] {
			continue
		}
		g.findCycles(n.ID, visited, onStack, nil, &cycles)
	}
	return cycles
}

func (g *Graph) findCycles(curr string, visited, onStack map[string]bool, path []string, cycles *[][]string) {
	visited[curr] = true
	onStack[curr] = true
	path = append(path, curr)

	for _, next := range g.outgoing[curr] {
		if _, ok := g.byID[next]; !ok {
			continue
		}
		if onStack[next] {
			start := -1
			for i, id := range path {
				if id == next {
					start = i
					break
				}
			}
			if start != -1 {
				cycle := make([]string, 0, len(path)-start)
				for _, id := range path[start:] {
					cycle = append(cycle, g.byID[id].Path)
				}
				*cycles = append(*cycles, cycle)
			}
		} else if !visited[next] {
			g.findCycles(next, visited, onStack, path, cycles)
		}
	}

	onStack[curr] = false
}

// DependencyChain returns the shortest chain of file paths leading from one
// file to another along dependency edges.
func (g *Graph) DependencyChain(fromPath, toPath string) ([]string, bool) {
	from, ok := g.NodeByPath(fromPath)
	if !ok {
		return nil, false
	}
	to, ok := g.NodeByPath(toPath)
	if !ok {
		return nil, false
	}
	if from.ID == to.ID {
		return []string{from.Path}, true
	}

	queue := []string{from.ID}
	visited := map[string]bool{from.ID: true}
	prev := make(map[string]string)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, next := range g.outgoing[curr] {
			if _, ok := g.byID[next]; !ok || visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr

			if next == to.ID {
				chain := []string{to.Path}
				for id := to.ID; id != from.ID; {
					id = prev[id]
					chain = append(chain, g.byID[id].Path)
				}
				for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
					chain[i], chain[j] = chain[j], chain[i]
				}
				return chain, true
			}
			queue = append(queue, next)
		}
	}
	return nil, false
}
