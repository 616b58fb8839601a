// Package search ranks files against a text query.
package search

import (
	"codeflow/internal/engine/graph"
	"codeflow/internal/shared/util"
	"strings"
)

const (
	exactMatchScore  = 1.0
	prefixMatchScore = 0.8
	nameMatchScore   = 0.6
	pathMatchScore   = 0.4
	fuzzyMatchScore  = 0.2

	previewMaxChars = 150
	previewSuffix   = "..."
)

type Config struct {
	UseML              bool
	PersonalizeResults bool
	ContextAware       bool
	HistorySize        int
	MinScore           float64
}

func DefaultConfig() Config {
	return Config{
		UseML:              true,
		PersonalizeResults: true,
		ContextAware:       true,
		HistorySize:        20,
		MinScore:           0.1,
	}
}

func displayName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return util.BaseName(n.Path)
}

// textRelevance scores how the query matches a file: exact name 1.0, name
// prefix 0.8, name substring 0.6, path substring 0.4, else 0.
func textRelevance(n *graph.Node, query string) float64 {
	q := strings.ToLower(query)
	name := strings.ToLower(displayName(n))
	switch {
	case name == q:
		return exactMatchScore
	case strings.HasPrefix(name, q):
		return prefixMatchScore
	case strings.Contains(name, q):
		return nameMatchScore
	case strings.Contains(strings.ToLower(n.Path), q):
		return pathMatchScore
	}
	return 0
}

// preview returns the first line containing the query with one line of
// context either side, or the first three lines when nothing matches,
// truncated to 150 characters and suffixed with "...".
func preview(content, query string) string {
	if content == "" {
		return ""
	}
	lines := strings.Split(content, "\n")
	q := strings.ToLower(query)
	start, end := 0, min(3, len(lines))
	for i, line := range lines {
		if strings.Contains(strings.ToLower(line), q) {
			start = max(0, i-1)
			end = min(len(lines), i+2)
			break
		}
	}
	snippet := strings.Join(lines[start:end], "\n")
	if runes := []rune(snippet); len(runes) > previewMaxChars {
		snippet = string(runes[:previewMaxChars])
	}
	return snippet + previewSuffix
}
