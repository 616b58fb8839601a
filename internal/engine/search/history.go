package search

import (
	"strings"
	"sync"
)

// queryHistory keeps distinct queries, most recent first.
type queryHistory struct {
	mu      sync.Mutex
	limit   int
	queries []string
}

func newQueryHistory(limit int) *queryHistory {
	if limit <= 0 {
		limit = 1
	}
	return &queryHistory{limit: limit}
}

func (h *queryHistory) add(query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	next := make([]string, 0, h.limit)
	next = append(next, query)
	for _, q := range h.queries {
		if q != query && len(next) < h.limit {
			next = append(next, q)
		}
	}
	h.queries = next
}

func (h *queryHistory) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.queries...)
}
