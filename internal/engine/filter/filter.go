// Package filter decides which nodes are visible by language and path.
package filter

import (
	"codeflow/internal/core/errors"
	"codeflow/internal/engine/graph"
	"codeflow/internal/shared/util"

	"github.com/gobwas/glob"
)

type Config struct {
	// Exclude holds glob patterns matched against the full path and the base
	// name. "**" crosses directories, "*" does not.
	Exclude []string
}

type excludes []glob.Glob

func compileExcludes(patterns []string) (excludes, error) {
	out := make(excludes, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, errors.AddContext(
				errors.Wrap(err, errors.CodeValidationError, "invalid exclude pattern "+p),
				errors.CtxOperation, "filter",
			)
		}
		out = append(out, g)
	}
	return out, nil
}

func (ex excludes) match(path string) bool {
	base := util.BaseName(path)
	for _, g := range ex {
		if g.Match(path) || g.Match(base) {
			return true
		}
	}
	return false
}

// apply drops excluded paths, then keeps nodes whose language is active.
// Nodes without a language always pass, and an empty active list passes
// every language.
func apply(nodes []*graph.Node, active []string, ex excludes) []*graph.Node {
	allowed := make(map[string]bool, len(active))
	for _, lang := range active {
		allowed[lang] = true
	}
	out := make([]*graph.Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil || ex.match(n.Path) {
			continue
		}
		if len(allowed) > 0 && n.Language != "" && !allowed[n.Language] {
			continue
		}
		out = append(out, n)
	}
	return out
}
