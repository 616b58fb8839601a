package filter

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
)

var _ ports.Filtering = (*Random)(nil)

// Random shows every language and records no preferences.
type Random struct {
	catalog  ports.Catalog
	excludes excludes
}

func NewRandom(cfg Config, catalog ports.Catalog) (*Random, error) {
	ex, err := compileExcludes(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return &Random{catalog: catalog, excludes: ex}, nil
}

func (r *Random) Mode() ports.Mode { return ports.ModeRandom }

func (r *Random) DefaultLanguages() []string { return r.catalog.Languages() }

func (r *Random) Apply(nodes []*graph.Node, active []string) []*graph.Node {
	return apply(nodes, active, r.excludes)
}

func (r *Random) Preferences() ports.FilterPreferences {
	return ports.FilterPreferences{}
}
