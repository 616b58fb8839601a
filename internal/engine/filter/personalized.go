package filter

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/shared/util"
	"sort"
)

const (
	topLanguages        = 5
	preferredLanguageAt = 0.3
)

var _ ports.Filtering = (*Personalized)(nil)

type Personalized struct {
	model    ports.UserModelReader
	catalog  ports.Catalog
	excludes excludes
}

func NewPersonalized(cfg Config, model ports.UserModelReader, catalog ports.Catalog) (*Personalized, error) {
	ex, err := compileExcludes(cfg.Exclude)
	if err != nil {
		return nil, err
	}
	return &Personalized{model: model, catalog: catalog, excludes: ex}, nil
}

func (p *Personalized) Mode() ports.Mode { return ports.ModePersonalized }

// DefaultLanguages returns the five most used languages followed by any other
// catalog language above 0.3 normalized usage. With no usage recorded every
// catalog language is returned.
func (p *Personalized) DefaultLanguages() []string {
	prefs := p.model.LanguagePreferences()
	if len(prefs) == 0 {
		return p.catalog.Languages()
	}
	langs := util.SortedStringKeys(prefs)
	sort.SliceStable(langs, func(i, j int) bool {
		return prefs[langs[i]].UsageScore > prefs[langs[j]].UsageScore
	})
	if len(langs) > topLanguages {
		langs = langs[:topLanguages]
	}
	seen := make(map[string]bool, len(langs))
	for _, l := range langs {
		seen[l] = true
	}
	for _, l := range p.catalog.Languages() {
		if seen[l] {
			continue
		}
		if _, ok := prefs[l]; ok && p.model.LanguagePreference(l) > preferredLanguageAt {
			seen[l] = true
			langs = append(langs, l)
		}
	}
	return langs
}

func (p *Personalized) Apply(nodes []*graph.Node, active []string) []*graph.Node {
	return apply(nodes, active, p.excludes)
}

// Preferences normalizes language usage and the click counts aggregated per
// folder and per extension, each against its own maximum.
func (p *Personalized) Preferences() ports.FilterPreferences {
	out := ports.FilterPreferences{
		Languages:  make(map[string]float64),
		Folders:    make(map[string]float64),
		Extensions: make(map[string]float64),
	}
	for lang := range p.model.LanguagePreferences() {
		out.Languages[lang] = p.model.LanguagePreference(lang)
	}
	for _, rec := range p.model.Records() {
		if rec.ClickCount == 0 {
			continue
		}
		out.Folders[util.ParentDir(rec.Path)] += float64(rec.ClickCount)
		if ext := util.Extension(rec.Path); ext != "" {
			out.Extensions[ext] += float64(rec.ClickCount)
		}
	}
	normalize(out.Folders)
	normalize(out.Extensions)
	return out
}

func normalize(m map[string]float64) {
	best := 0.0
	for _, v := range m {
		if v > best {
			best = v
		}
	}
	if best == 0 {
		return
	}
	for k, v := range m {
		m[k] = v / best
	}
}
