package graph

// internal/engine/graph/importance.go

import (
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/prng"
	"codeflow/internal/shared/util"
	"sort"
	"time"

	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"
)

const (
	pageRankDamping    = 0.85
	pageRankIterations = 100

	pageRankWeight    = 0.5
	betweennessWeight = 0.3
	degreeWeight      = 0.2

	// MissingRank is reported for nodes absent from the importance map.
	MissingRank = 999
)

// BetweennessMode selects how the betweenness component is produced.
type BetweennessMode string

const (
	// BetweennessBrandes computes shortest-path betweenness, normalized by
	// the largest value in the graph.
	BetweennessBrandes BetweennessMode = "brandes"
	// BetweennessPlaceholder reproduces the legacy stand-in: a value in
	// [0, 0.1) derived from the node id.
	BetweennessPlaceholder BetweennessMode = "placeholder"
)

// ImportanceScore is the structural importance of one node.
//
//	TotalScore = PageRank*0.5 + Betweenness*0.3 + Degree*0.2
//
// Rank is dense and 1-based over all scored nodes, ordered by TotalScore
// descending with ties kept in load order.
type ImportanceScore struct {
	TotalScore  float64 `json:"total_score"`
	PageRank    float64 `json:"pagerank"`
	Betweenness float64 `json:"betweenness"`
	Degree      float64 `json:"degree"`
	Rank        int     `json:"rank"`
}

// MissingScore is the score reported for a node with no entry.
func MissingScore() ImportanceScore {
	return ImportanceScore{Rank: MissingRank}
}

// ComputeImportance scores every node from the graph structure alone. It is
// a pure function of its inputs: edges referencing unknown ids are ignored,
// and duplicate edges count once for PageRank but once per occurrence for
// degree.
func ComputeImportance(nodes []*Node, edges []Edge, opts Options) map[string]ImportanceScore {
	started := time.Now()
	defer func() {
		observability.ImportanceDuration.Observe(time.Since(started).Seconds())
	}()

	index := make(map[string]int, len(nodes))
	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if _, dup := index[n.ID]; dup {
			continue
		}
		index[n.ID] = len(ids)
		ids = append(ids, n.ID)
	}
	count := len(ids)
	scores := make(map[string]ImportanceScore, count)
	if count == 0 {
		return scores
	}

	adj := buildAdjacency(index, edges, count)
	pagerank := pageRank(adj, count)
	degree := degreeCentrality(index, edges, count)

	var betweenness []float64
	switch opts.Betweenness {
	case BetweennessPlaceholder:
		betweenness = placeholderBetweenness(ids)
	default:
		betweenness = brandesBetweenness(adj, count)
	}

	for i, id := range ids {
		total := pagerank[i]*pageRankWeight + betweenness[i]*betweennessWeight + degree[i]*degreeWeight
		scores[id] = ImportanceScore{
			TotalScore:  util.Clamp01(total),
			PageRank:    pagerank[i],
			Betweenness: betweenness[i],
			Degree:      degree[i],
		}
	}

	order := make([]int, count)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[ids[order[a]]].TotalScore > scores[ids[order[b]]].TotalScore
	})
	for pos, i := range order {
		s := scores[ids[i]]
		s.Rank = pos + 1
		scores[ids[i]] = s
	}
	return scores
}

// adjacency is the sparse form of the N×N indicator matrix: out[i] lists each
// j with an edge i->j exactly once, in first-seen order. in[j] lists the
// sources of j in ascending index order so PageRank sums do not depend on edge
// order.
type adjacency struct {
	out [][]int
	in  [][]int
}

func (a adjacency) hasEdges() bool {
	for _, targets := range a.out {
		if len(targets) > 0 {
			return true
		}
	}
	return false
}

func buildAdjacency(index map[string]int, edges []Edge, count int) adjacency {
	adj := adjacency{
		out: make([][]int, count),
		in:  make([][]int, count),
	}
	present := make(map[[2]int]bool, len(edges))
	for _, e := range edges {
		from, okFrom := index[e.Source]
		to, okTo := index[e.Target]
		if !okFrom || !okTo {
			continue
		}
		key := [2]int{from, to}
		if present[key] {
			continue
		}
		present[key] = true
		adj.out[from] = append(adj.out[from], to)
		adj.in[to] = append(adj.in[to], from)
	}
	for _, sources := range adj.in {
		sort.Ints(sources)
	}
	return adj
}

// pageRank runs exactly pageRankIterations rounds. Dangling nodes (no
// outgoing edges) leak their mass rather than redistributing it. A graph with
// no edges keeps the uniform 1/N start.
func pageRank(adj adjacency, count int) []float64 {
	n := float64(count)
	ranks := make([]float64, count)
	for i := range ranks {
		ranks[i] = 1 / n
	}
	if !adj.hasEdges() {
		return ranks
	}

	next := make([]float64, count)
	for iter := 0; iter < pageRankIterations; iter++ {
		for i := 0; i < count; i++ {
			linkSum := 0.0
			for _, j := range adj.in[i] {
				if outLinks := len(adj.out[j]); outLinks > 0 {
					linkSum += ranks[j] / float64(outLinks)
				}
			}
			next[i] = (1-pageRankDamping)/n + pageRankDamping*linkSum
		}
		ranks, next = next, ranks
	}
	return ranks
}

// degreeCentrality counts in+out edge occurrences per node and divides by the
// largest count (floor 1).
func degreeCentrality(index map[string]int, edges []Edge, count int) []float64 {
	degrees := make([]int, count)
	for _, e := range edges {
		if i, ok := index[e.Source]; ok {
			degrees[i]++
		}
		if i, ok := index[e.Target]; ok {
			degrees[i]++
		}
	}
	maxDegree := 1
	for _, d := range degrees {
		if d > maxDegree {
			maxDegree = d
		}
	}
	out := make([]float64, count)
	for i, d := range degrees {
		out[i] = float64(d) / float64(maxDegree)
	}
	return out
}

func brandesBetweenness(adj adjacency, count int) []float64 {
	g := simple.NewDirectedGraph()
	for i := 0; i < count; i++ {
		g.AddNode(simple.Node(int64(i)))
	}
	for from, targets := range adj.out {
		for _, to := range targets {
			if from == to {
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(int64(from)), simple.Node(int64(to))))
		}
	}

	raw := network.Betweenness(g)
	out := make([]float64, count)
	maxValue := 0.0
	for id, v := range raw {
		out[id] = v
		if v > maxValue {
			maxValue = v
		}
	}
	if maxValue > 0 {
		for i := range out {
			out[i] /= maxValue
		}
	}
	return out
}

func placeholderBetweenness(ids []string) []float64 {
	out := make([]float64, len(ids))
	for i, id := range ids {
		out[i] = prng.NewWithSalt(id, "betweenness").Float64() * 0.1
	}
	return out
}
