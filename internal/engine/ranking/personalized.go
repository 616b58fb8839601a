package ranking

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/scoring"
	"fmt"
	"math"
	"sort"
)

const (
	rankInteractionWeight = 0.3
	rankTimeWeight        = 0.2
	rankRecencyWeight     = 0.2
	rankGraphWeight       = 0.3
)

var _ ports.Ranking = (*Personalized)(nil)

type Personalized struct {
	model   ports.UserModelReader
	catalog ports.Catalog
}

func NewPersonalized(model ports.UserModelReader, catalog ports.Catalog) *Personalized {
	return &Personalized{model: model, catalog: catalog}
}

func (p *Personalized) Mode() ports.Mode { return ports.ModePersonalized }

// SortBookmarks returns a sorted copy. Unknown criteria keep the input order.
func (p *Personalized) SortBookmarks(list []ports.Bookmark, criterion ports.BookmarkCriterion) []ports.Bookmark {
	out := append([]ports.Bookmark(nil), list...)
	switch criterion {
	case ports.ByUsage:
		sort.SliceStable(out, func(i, j int) bool {
			return p.model.FileInteractionCount(out[i].Path) > p.model.FileInteractionCount(out[j].Path)
		})
	case ports.ByDate:
		byDate(out)
	case ports.ByName:
		byName(out)
	case ports.ByImportance:
		scores := make(map[string]float64, len(out))
		for _, b := range out {
			scores[b.Path] = p.importance(b.Path)
		}
		sort.SliceStable(out, func(i, j int) bool { return scores[out[i].Path] > scores[out[j].Path] })
	}
	return out
}

// importance blends graph and usage importance for files in the catalog and
// falls back to usage alone for bookmarks the graph no longer has.
func (p *Personalized) importance(path string) float64 {
	if n, ok := p.catalog.FileByPath(path); ok {
		return scoring.NodeImportance(p.model, p.catalog, n)
	}
	return p.model.FileImportance(path)
}

// BookmarkStats renders "N clicks" plus how long ago the file was last used.
func (p *Personalized) BookmarkStats(b ports.Bookmark) string {
	stats := fmt.Sprintf("%d clicks", p.model.FileInteractionCount(b.Path))
	hours := p.model.HoursSinceAccess(b.Path)
	switch h := int(math.Floor(hours)); {
	case math.IsInf(hours, 1):
	case h < 1:
		stats += ", just now"
	case h < 24:
		stats += fmt.Sprintf(", %dh ago", h)
	default:
		stats += fmt.Sprintf(", %dd ago", h/24)
	}
	return stats
}

// RankFiles orders nodes by interactions (0.3), time spent (0.2), recency
// (0.2) and graph importance (0.3).
func (p *Personalized) RankFiles(nodes []*graph.Node) []*graph.Node {
	out := append([]*graph.Node(nil), nodes...)
	maxTime := float64(p.model.MaxTimeSpent())
	scores := make(map[*graph.Node]float64, len(out))
	for _, n := range out {
		if n == nil {
			continue
		}
		scores[n] = p.model.FileAffinity(n.Path)*rankInteractionWeight +
			float64(p.model.TotalTimeSpent(n.Path))/maxTime*rankTimeWeight +
			p.model.FileRecency(n.Path)*rankRecencyWeight +
			p.catalog.Importance(n.ID).TotalScore*rankGraphWeight
	}
	sort.SliceStable(out, func(i, j int) bool { return scores[out[i]] > scores[out[j]] })
	return out
}
