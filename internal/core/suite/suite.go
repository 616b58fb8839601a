// Package suite builds the six behavior components for one mode.
package suite

import (
	"codeflow/internal/core/errors"
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/coloring"
	"codeflow/internal/engine/filter"
	"codeflow/internal/engine/layout"
	"codeflow/internal/engine/ranking"
	"codeflow/internal/engine/search"
	"codeflow/internal/engine/suggest"
	"math/rand/v2"
	"strings"
)

const randomHistorySize = 10

// Config carries the per-component settings. Personalized and random
// suggestions keep separate limits.
type Config struct {
	Layout            layout.Config
	Coloring          coloring.Config
	Search            search.Config
	Suggestions       suggest.Config
	RandomSuggestions suggest.Config
	Filter            filter.Config
	// Seed fixes the random variants' sequences. Zero picks a fresh seed.
	Seed uint64
}

func DefaultConfig() Config {
	return Config{
		Layout:            layout.DefaultConfig(),
		Coloring:          coloring.DefaultConfig(),
		Search:            search.DefaultConfig(),
		Suggestions:       suggest.DefaultConfig(),
		RandomSuggestions: suggest.DefaultRandomConfig(),
	}
}

// Deps are the collaborators shared by every component. Model is only read
// by the personalized variants; Lookup and Content may be nil.
type Deps struct {
	Model   ports.UserModelReader
	Catalog ports.Catalog
	Lookup  ports.DependencyLookup
	Content ports.ContentSource
}

type Suite struct {
	Mode        ports.Mode
	Layout      ports.Layout
	Coloring    ports.Coloring
	Search      ports.Search
	Suggestions ports.Suggestions
	Filtering   ports.Filtering
	Ranking     ports.Ranking
}

// ParseMode accepts "personalized" and "random", case-insensitively.
func ParseMode(s string) (ports.Mode, error) {
	switch m := ports.Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ports.ModePersonalized, ports.ModeRandom:
		return m, nil
	}
	return "", errors.AddContext(
		errors.Newf(errors.CodeValidationError, "unknown suite mode %q", s),
		errors.CtxMode, s,
	)
}

// New builds every component for mode. An unknown mode or an invalid
// component setting is returned as a VALIDATION_ERROR.
func New(mode ports.Mode, cfg Config, deps Deps) (*Suite, error) {
	if deps.Catalog == nil {
		return nil, errors.New(errors.CodeValidationError, "suite requires a file catalog")
	}
	switch mode {
	case ports.ModePersonalized:
		return newPersonalized(cfg, deps)
	case ports.ModeRandom:
		return newRandom(cfg, deps)
	}
	return nil, errors.AddContext(
		errors.Newf(errors.CodeValidationError, "unknown suite mode %q", mode),
		errors.CtxMode, string(mode),
	)
}

func newPersonalized(cfg Config, deps Deps) (*Suite, error) {
	if deps.Model == nil {
		return nil, errors.New(errors.CodeValidationError, "personalized suite requires a user model")
	}
	suggestions, err := suggest.NewPersonalized(cfg.Suggestions, deps.Model, deps.Catalog, deps.Lookup)
	if err != nil {
		return nil, err
	}
	filtering, err := filter.NewPersonalized(cfg.Filter, deps.Model, deps.Catalog)
	if err != nil {
		return nil, err
	}
	return &Suite{
		Mode:        ports.ModePersonalized,
		Layout:      layout.NewPersonalized(cfg.Layout, deps.Model, deps.Catalog),
		Coloring:    coloring.NewPersonalized(cfg.Coloring, deps.Model, deps.Catalog),
		Search:      search.NewPersonalized(cfg.Search, deps.Model, deps.Catalog, deps.Content),
		Suggestions: suggestions,
		Filtering:   filtering,
		Ranking:     ranking.NewPersonalized(deps.Model, deps.Catalog),
	}, nil
}

// newRandom gives each component its own stream so they never contend for
// one generator.
func newRandom(cfg Config, deps Deps) (*Suite, error) {
	filtering, err := filter.NewRandom(cfg.Filter, deps.Catalog)
	if err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	stream := func(n uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, n)) }
	return &Suite{
		Mode:        ports.ModeRandom,
		Layout:      layout.NewRandom(cfg.Layout, deps.Catalog),
		Coloring:    coloring.NewRandom(),
		Search:      search.NewRandom(randomHistorySize, deps.Catalog, stream(1)),
		Suggestions: suggest.NewRandom(cfg.RandomSuggestions, deps.Catalog, stream(2)),
		Filtering:   filtering,
		Ranking:     ranking.NewRandom(stream(3)),
	}, nil
}
