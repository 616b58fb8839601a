package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var (
	knownModes       = []string{"personalized", "random"}
	knownBetweenness = []string{"brandes", "placeholder"}
	knownStrategies  = []string{"dependency", "pattern", "similarity", "centrality"}
)

// Validate returns every problem found rather than stopping at the first.
func Validate(cfg *Config) []error {
	var errs []error
	errs = append(errs, validateVersion(cfg)...)
	errs = append(errs, validateSuite(cfg)...)
	errs = append(errs, validateGraph(cfg)...)
	errs = append(errs, validateLayout(cfg)...)
	errs = append(errs, validateSearch(cfg)...)
	errs = append(errs, validateSuggestions(cfg)...)
	errs = append(errs, validateFilter(cfg)...)
	errs = append(errs, validateDatabase(cfg)...)
	errs = append(errs, validatePersistence(cfg)...)
	errs = append(errs, validateObservability(cfg)...)
	return errs
}

func validateVersion(cfg *Config) []error {
	if cfg.Version != CurrentVersion {
		return []error{fmt.Errorf("unsupported config version %d; supported version is %d", cfg.Version, CurrentVersion)}
	}
	return nil
}

func validateSuite(cfg *Config) []error {
	if !oneOf(cfg.Suite.Mode, knownModes) {
		return []error{fmt.Errorf("suite.mode must be one of: %s, got %q", strings.Join(knownModes, ", "), cfg.Suite.Mode)}
	}
	return nil
}

func validateGraph(cfg *Config) []error {
	var errs []error
	if strings.TrimSpace(cfg.Graph.Path) == "" {
		errs = append(errs, fmt.Errorf("graph.path must not be empty"))
	}
	if !oneOf(cfg.Importance.Betweenness, knownBetweenness) {
		errs = append(errs, fmt.Errorf("importance.betweenness must be one of: %s", strings.Join(knownBetweenness, ", ")))
	}
	return errs
}

func validateLayout(cfg *Config) []error {
	var errs []error
	l := cfg.Layout
	if l.MinRadius < 0 || l.MaxRadius <= l.MinRadius {
		errs = append(errs, fmt.Errorf("layout radius must satisfy 0 <= min_radius < max_radius, got %g and %g", l.MinRadius, l.MaxRadius))
	}
	if l.MinSize <= 0 || l.MaxSize < l.MinSize {
		errs = append(errs, fmt.Errorf("layout size must satisfy 0 < min_size <= max_size, got %g and %g", l.MinSize, l.MaxSize))
	}
	return errs
}

func validateSearch(cfg *Config) []error {
	if cfg.Search.MinScore < 0 || cfg.Search.MinScore > 1 {
		return []error{fmt.Errorf("search.min_score must be within [0,1], got %g", cfg.Search.MinScore)}
	}
	return nil
}

func validateSuggestions(cfg *Config) []error {
	var errs []error
	s := cfg.Suggestions
	if s.Max < 0 || s.RandomMax < 0 {
		errs = append(errs, fmt.Errorf("suggestions.max and suggestions.random_max must be >= 0"))
	}
	if s.Threshold < 0 || s.Threshold > 1 {
		errs = append(errs, fmt.Errorf("suggestions.threshold must be within [0,1], got %g", s.Threshold))
	}
	for _, a := range s.Algorithms {
		if !oneOf(a, knownStrategies) {
			errs = append(errs, fmt.Errorf("suggestions.algorithms: unknown strategy %q", a))
		}
	}
	return errs
}

func validateFilter(cfg *Config) []error {
	var errs []error
	for _, p := range cfg.Filter.Exclude {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("invalid filter.exclude pattern %q: %w", p, err))
		}
	}
	return errs
}

func validateDatabase(cfg *Config) []error {
	if cfg.DB.Enabled && strings.TrimSpace(cfg.DB.Path) == "" {
		return []error{fmt.Errorf("db.path must not be empty when db.enabled=true")}
	}
	return nil
}

func validatePersistence(cfg *Config) []error {
	var errs []error
	if cfg.Persistence.FlushRate < 0 {
		errs = append(errs, fmt.Errorf("persistence.flush_rate must be >= 0"))
	}
	if cfg.Persistence.FlushBurst < 0 {
		errs = append(errs, fmt.Errorf("persistence.flush_burst must be >= 0"))
	}
	return errs
}

func validateObservability(cfg *Config) []error {
	if cfg.Observability.EnableTracing && strings.TrimSpace(cfg.Observability.OTLPEndpoint) == "" {
		return []error{fmt.Errorf("observability.otlp_endpoint must be set when enable_tracing=true")}
	}
	return nil
}

func oneOf(v string, list []string) bool {
	for _, item := range list {
		if v == item {
			return true
		}
	}
	return false
}
