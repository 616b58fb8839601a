// Package suggest proposes files to look at next, given the file in focus.
package suggest

import (
	"codeflow/internal/core/errors"
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/shared/observability"
	"codeflow/internal/shared/util"
	"sort"
)

const (
	StrategyDependency = "dependency"
	StrategyPattern    = "pattern"
	StrategySimilarity = "similarity"
	StrategyCentrality = "centrality"
)

// Strategies lists every strategy in the order they run.
var Strategies = []string{StrategyDependency, StrategyPattern, StrategySimilarity, StrategyCentrality}

type Config struct {
	Max        int
	Threshold  float64
	Algorithms []string
	CacheSize  int
}

func DefaultConfig() Config {
	return Config{
		Max:        8,
		Threshold:  0.3,
		Algorithms: append([]string(nil), Strategies...),
		CacheSize:  256,
	}
}

func DefaultRandomConfig() Config {
	return Config{Max: 5}
}

// ValidateAlgorithms rejects strategy names this package does not know.
func ValidateAlgorithms(names []string) error {
	for _, name := range names {
		known := false
		for _, s := range Strategies {
			if s == name {
				known = true
				break
			}
		}
		if !known {
			return errors.AddContext(
				errors.Newf(errors.CodeValidationError, "unknown suggestion strategy %q", name),
				errors.CtxOperation, "suggest",
			)
		}
	}
	return nil
}

func nodeName(n *graph.Node) string {
	if n.Name != "" {
		return n.Name
	}
	return util.BaseName(n.Path)
}

// finalize dedupes by file (first wins), drops anything under threshold,
// sorts by confidence and truncates to max.
func finalize(in []ports.Suggestion, threshold float64, max int) []ports.Suggestion {
	seen := make(map[string]bool, len(in))
	out := make([]ports.Suggestion, 0, len(in))
	for _, s := range in {
		if seen[s.File] {
			continue
		}
		seen[s.File] = true
		if s.Confidence < threshold {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if max >= 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

func dedupe(in []ports.Suggestion) []ports.Suggestion {
	seen := make(map[string]bool, len(in))
	out := make([]ports.Suggestion, 0, len(in))
	for _, s := range in {
		if !seen[s.File] {
			seen[s.File] = true
			out = append(out, s)
		}
	}
	return out
}

func record(list []ports.Suggestion) {
	for _, s := range list {
		observability.SuggestionsEmittedTotal.WithLabelValues(string(s.Type)).Inc()
	}
}
