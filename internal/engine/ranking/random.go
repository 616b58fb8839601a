package ranking

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"math/rand/v2"
	"sync"
)

var _ ports.Ranking = (*Random)(nil)

// Random sorts by name and date for real and shuffles everything else.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) Mode() ports.Mode { return ports.ModeRandom }

func (r *Random) SortBookmarks(list []ports.Bookmark, criterion ports.BookmarkCriterion) []ports.Bookmark {
	out := append([]ports.Bookmark(nil), list...)
	switch criterion {
	case ports.ByName:
		byName(out)
	case ports.ByDate:
		byDate(out)
	default:
		r.mu.Lock()
		r.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		r.mu.Unlock()
	}
	return out
}

func (r *Random) BookmarkStats(ports.Bookmark) string { return "Added recently" }

func (r *Random) RankFiles(nodes []*graph.Node) []*graph.Node {
	out := append([]*graph.Node(nil), nodes...)
	r.mu.Lock()
	r.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	r.mu.Unlock()
	return out
}
