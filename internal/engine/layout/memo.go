// # internal/engine/layout/memo.go
package layout

import (
	"codeflow/internal/core/ports"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memoKey ties a placement to the model version and graph generation it was
// computed against, so any new interaction or graph reload makes older
// entries unreachable.
type memoKey struct {
	nodeID     string
	version    uint64
	generation uint64
}

type placement struct {
	position ports.Position
	size     float64
}

// memo is a bounded least-recently-used map of placements. Unreachable
// entries from old keys age out through normal eviction.
type memo struct {
	cache *lru.Cache[memoKey, placement]
}

func newMemo(capacity int) *memo {
	if capacity <= 0 {
		capacity = 1
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[memoKey, placement](capacity)
	return &memo{cache: cache}
}

func (m *memo) get(key memoKey) (placement, bool) {
	return m.cache.Get(key)
}

func (m *memo) put(key memoKey, value placement) {
	m.cache.Add(key, value)
}

func (m *memo) len() int {
	return m.cache.Len()
}
