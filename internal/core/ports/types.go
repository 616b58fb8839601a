package ports

import "codeflow/internal/engine/graph"

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// AnnotatedNode carries the per-node scores attached for rendering.
type AnnotatedNode struct {
	Node              *graph.Node           `json:"node"`
	Importance        graph.ImportanceScore `json:"importance"`
	Temperature       float64               `json:"temperature"`
	PersonalizedScore float64               `json:"personalizedScore"`
}

type SearchResult struct {
	Node           *graph.Node `json:"node"`
	Path           string      `json:"path"`
	RelevanceScore float64     `json:"relevanceScore"`
	Preview        string      `json:"preview,omitempty"`
}

type SuggestionType string

const (
	SuggestDependency        SuggestionType = "dependency"
	SuggestReverseDependency SuggestionType = "reverse_dependency"
	SuggestPattern           SuggestionType = "pattern"
	SuggestSimilarity        SuggestionType = "similarity"
	SuggestCentrality        SuggestionType = "centrality"
	SuggestRecent            SuggestionType = "recent"
	SuggestFrequent          SuggestionType = "frequent"
	SuggestRandom            SuggestionType = "random"
)

type Suggestion struct {
	File       string         `json:"file"`
	Name       string         `json:"name"`
	Confidence float64        `json:"confidence"`
	Reason     string         `json:"reason"`
	Type       SuggestionType `json:"type"`
}

// SuggestionContext narrows a suggestion request.
type SuggestionContext struct {
	Exclude []string `json:"exclude,omitempty"`
}

type Bookmark struct {
	ID        string `json:"id"`
	UserID    string `json:"userId" validate:"required"`
	Path      string `json:"path" validate:"required"`
	Name      string `json:"name"`
	Note      string `json:"note,omitempty" validate:"max=500"`
	CreatedAt int64  `json:"createdAt" validate:"gte=0"`
}

type BookmarkCriterion string

const (
	ByUsage      BookmarkCriterion = "usage"
	ByDate       BookmarkCriterion = "date"
	ByName       BookmarkCriterion = "name"
	ByImportance BookmarkCriterion = "importance"
)

// ParseBookmarkCriterion returns false for unknown criteria.
func ParseBookmarkCriterion(s string) (BookmarkCriterion, bool) {
	switch c := BookmarkCriterion(s); c {
	case ByUsage, ByDate, ByName, ByImportance:
		return c, true
	}
	return "", false
}

// FilterPreferences are normalized preference scores keyed by language,
// folder and file extension.
type FilterPreferences struct {
	Languages  map[string]float64 `json:"languages"`
	Folders    map[string]float64 `json:"folders"`
	Extensions map[string]float64 `json:"extensions"`
}

// ColorScheme names the scales a coloring uses.
type ColorScheme struct {
	Temperature []string `json:"temperature"`
	Importance  []string `json:"importance"`
	Usage       []string `json:"usage"`
	Languages   []string `json:"languages"`
}
