// Package scoring blends structural importance with the user model into the
// composite scores used by the suite components. Every function is pure and
// returns a value in [0,1].
package scoring

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/shared/util"
	"math"
	"strings"
)

const (
	graphImportanceWeight = 0.4
	userImportanceWeight  = 0.6

	heatInteractionWeight = 0.35
	heatRecencyWeight     = 0.25
	heatTimeWeight        = 0.25
	heatLanguageWeight    = 0.15
	heatDecayHours        = 12.0

	sameLanguageBonus  = 0.3
	sameDirectoryBonus = 0.4
	nameOverlapWeight  = 0.3

	inSessionRelevance = 0.3
	relatedRelevance   = 0.2
)

// PersonalizedImportance = graph*0.4 + user*0.6.
func PersonalizedImportance(graphScore, userScore float64) float64 {
	return util.Clamp01(graphScore*graphImportanceWeight + userScore*userImportanceWeight)
}

// NodeImportance looks up both inputs of PersonalizedImportance for n.
func NodeImportance(model ports.UserModelReader, catalog ports.Catalog, n *graph.Node) float64 {
	if n == nil {
		return 0
	}
	graphScore := 0.0
	if catalog != nil {
		graphScore = catalog.Importance(n.ID).TotalScore
	}
	userScore := 0.0
	if model != nil {
		userScore = model.FileImportance(n.Path)
	}
	return PersonalizedImportance(graphScore, userScore)
}

// PersonalizedTemperature is the node "heat": interaction frequency against
// a tenth of the busiest file (0.35), exp(-hours/12) recency (0.25), time
// against a tenth of the longest-viewed file (0.25) and language preference
// (0.15). Without a model it is 0.5.
func PersonalizedTemperature(model ports.UserModelReader, n *graph.Node) float64 {
	if model == nil || n == nil {
		return 0.5
	}
	interactions := float64(model.FileInteractionCount(n.Path))
	interactionScore := math.Min(1, interactions/math.Max(1, float64(model.MaxInteractionCount())*0.1))

	recency := math.Exp(-model.HoursSinceAccess(n.Path) / heatDecayHours)

	spent := float64(model.TotalTimeSpent(n.Path))
	timeScore := math.Min(1, spent/math.Max(1, float64(model.MaxTimeSpent())*0.1))

	language := model.LanguagePreference(n.Language)

	return util.Clamp01(interactionScore*heatInteractionWeight +
		recency*heatRecencyWeight +
		timeScore*heatTimeWeight +
		language*heatLanguageWeight)
}

// FileSimilarity adds 0.3 for a shared (non-empty) language, 0.4 for a
// shared parent directory and 0.3 times the file-name token overlap.
func FileSimilarity(a, b *graph.Node) float64 {
	if a == nil || b == nil {
		return 0
	}
	score := 0.0
	if a.Language != "" && a.Language == b.Language {
		score += sameLanguageBonus
	}
	if a.Dir() == b.Dir() {
		score += sameDirectoryBonus
	}
	score += NameSimilarity(displayName(a), displayName(b)) * nameOverlapWeight
	return math.Min(1, score)
}

// NameSimilarity is the Jaccard index of the lower-cased name tokens split on
// '.', '_' and '-'.
func NameSimilarity(a, b string) float64 {
	left := nameTokens(a)
	right := nameTokens(b)
	union := make(map[string]bool, len(left)+len(right))
	shared := 0
	for tok := range left {
		union[tok] = true
		if right[tok] {
			shared++
		}
	}
	for tok := range right {
		union[tok] = true
	}
	if len(union) == 0 {
		return 0
	}
	return float64(shared) / float64(len(union))
}

func nameTokens(name string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		out[f] = true
	}
	return out
}

func displayName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return util.BaseName(n.Path)
}

// ContextualRelevance is 0.3 for a file opened this session, 0.2 for a file
// sharing a directory or dependency edge with one, and 0 otherwise.
func ContextualRelevance(model ports.UserModelReader, catalog ports.Catalog, n *graph.Node) float64 {
	if model == nil || n == nil {
		return 0
	}
	if model.InSession(n.Path) {
		return inSessionRelevance
	}
	if catalog == nil {
		return 0
	}
	for _, path := range model.SessionFiles() {
		open, ok := catalog.FileByPath(path)
		if !ok {
			continue
		}
		if catalog.Related(n, open) {
			return relatedRelevance
		}
	}
	return 0
}

// CappedRelatedness reads the co-access strength of b relative to a, capped
// at 1.
func CappedRelatedness(model ports.UserModelReader, a, b string) float64 {
	if model == nil {
		return 0
	}
	return util.Clamp01(model.FileRelatedness(a, b))
}
