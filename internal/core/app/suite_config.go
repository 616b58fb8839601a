package app

import (
	"codeflow/internal/core/config"
	"codeflow/internal/core/suite"
	"codeflow/internal/engine/coloring"
	"codeflow/internal/engine/filter"
	"codeflow/internal/engine/layout"
	"codeflow/internal/engine/search"
	"codeflow/internal/engine/suggest"
)

// SuiteConfig maps the file configuration onto the component settings.
func SuiteConfig(cfg *config.Config) suite.Config {
	return suite.Config{
		Layout: layout.Config{
			MinRadius: cfg.Layout.MinRadius,
			MaxRadius: cfg.Layout.MaxRadius,
			MinSize:   cfg.Layout.MinSize,
			MaxSize:   cfg.Layout.MaxSize,
			CacheSize: cfg.Layout.CacheSize,
		},
		Coloring: coloring.Config{
			Temperature: cfg.Coloring.Temperature,
			Importance:  cfg.Coloring.Importance,
			Usage:       cfg.Coloring.Usage,
		},
		Search: search.Config{
			UseML:              cfg.Search.UseML,
			PersonalizeResults: cfg.Search.PersonalizeResults,
			ContextAware:       cfg.Search.ContextAware,
			HistorySize:        cfg.Search.HistorySize,
			MinScore:           cfg.Search.MinScore,
		},
		Suggestions: suggest.Config{
			Max:        cfg.Suggestions.Max,
			Threshold:  cfg.Suggestions.Threshold,
			Algorithms: cfg.Suggestions.Algorithms,
			CacheSize:  cfg.Suggestions.CacheSize,
		},
		RandomSuggestions: suggest.Config{Max: cfg.Suggestions.RandomMax},
		Filter:            filter.Config{Exclude: cfg.Filter.Exclude},
		Seed:              cfg.Suite.Seed,
	}
}
