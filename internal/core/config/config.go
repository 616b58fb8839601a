// # internal/core/config/config.go
package config

import (
	"codeflow/internal/core/errors"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const CurrentVersion = 1

type Config struct {
	Version       int           `toml:"version"`
	Suite         Suite         `toml:"suite"`
	User          User          `toml:"user"`
	Graph         Graph         `toml:"graph"`
	Importance    Importance    `toml:"importance"`
	Layout        Layout        `toml:"layout"`
	Coloring      Coloring      `toml:"coloring"`
	Search        Search        `toml:"search"`
	Suggestions   Suggestions   `toml:"suggestions"`
	Filter        Filter        `toml:"filter"`
	DB            Database      `toml:"db"`
	Persistence   Persistence   `toml:"persistence"`
	Observability Observability `toml:"observability"`
}

type Suite struct {
	Mode string `toml:"mode"`
	// Seed fixes the random suite's sequences; 0 draws a fresh seed per run.
	Seed uint64 `toml:"seed"`
}

type User struct {
	ID string `toml:"id"`
}

type Graph struct {
	Path        string        `toml:"path"`
	ContentRoot string        `toml:"content_root"`
	Watch       bool          `toml:"watch"`
	Debounce    time.Duration `toml:"debounce"`
}

type Importance struct {
	Betweenness string `toml:"betweenness"`
}

type Layout struct {
	MinRadius float64 `toml:"min_radius"`
	MaxRadius float64 `toml:"max_radius"`
	MinSize   float64 `toml:"min_size"`
	MaxSize   float64 `toml:"max_size"`
	CacheSize int     `toml:"cache_size"`
}

type Coloring struct {
	Temperature bool `toml:"temperature"`
	Importance  bool `toml:"importance"`
	Usage       bool `toml:"usage"`
}

type Search struct {
	UseML              bool    `toml:"use_ml"`
	PersonalizeResults bool    `toml:"personalize_results"`
	ContextAware       bool    `toml:"context_aware"`
	HistorySize        int     `toml:"history_size"`
	MinScore           float64 `toml:"min_score"`
}

type Suggestions struct {
	Max        int      `toml:"max"`
	RandomMax  int      `toml:"random_max"`
	Threshold  float64  `toml:"threshold"`
	Algorithms []string `toml:"algorithms"`
	CacheSize  int      `toml:"cache_size"`
}

type Filter struct {
	Exclude []string `toml:"exclude"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Persistence struct {
	FlushEvery    int           `toml:"flush_every"`
	QueueCapacity int           `toml:"queue_capacity"`
	FlushRate     float64       `toml:"flush_rate"`
	FlushBurst    int           `toml:"flush_burst"`
	LoadTimeout   time.Duration `toml:"load_timeout"`
	SaveTimeout   time.Duration `toml:"save_timeout"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Addr          string `toml:"addr"`
	EnableTracing bool   `toml:"enable_tracing"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
}

// DefaultConfig is the configuration used when no file exists. Load decodes
// on top of it, so keys missing from a file keep these values.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Suite:   Suite{Mode: "personalized"},
		User:    User{ID: "default"},
		Graph: Graph{
			Path:     "graph.json",
			Debounce: 500 * time.Millisecond,
		},
		Importance: Importance{Betweenness: "brandes"},
		Layout: Layout{
			MinRadius: 50,
			MaxRadius: 400,
			MinSize:   6,
			MaxSize:   20,
			CacheSize: 4096,
		},
		Coloring: Coloring{Temperature: true, Importance: true, Usage: true},
		Search: Search{
			UseML:              true,
			PersonalizeResults: true,
			ContextAware:       true,
			HistorySize:        20,
			MinScore:           0.1,
		},
		Suggestions: Suggestions{
			Max:        8,
			RandomMax:  5,
			Threshold:  0.3,
			Algorithms: []string{"dependency", "pattern", "similarity", "centrality"},
			CacheSize:  256,
		},
		DB: Database{
			Enabled:     true,
			Path:        "codeflow.db",
			BusyTimeout: 5 * time.Second,
		},
		Persistence: Persistence{
			FlushEvery:    10,
			QueueCapacity: 4,
			FlushRate:     2,
			FlushBurst:    1,
			LoadTimeout:   3 * time.Second,
			SaveTimeout:   5 * time.Second,
		},
		Observability: Observability{Addr: "127.0.0.1:9464"},
	}
}

// Load reads a TOML file, applies the sibling .env file and CODEFLOW_*
// overrides, resolves relative paths against the file's directory and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		code := errors.CodeInternal
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.CodeNotFound
		}
		return nil, errors.AddContext(errors.Wrap(err, code, "read config"), errors.CtxPath, path)
	}

	cfg := DefaultConfig()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeValidationError, "decode config"), errors.CtxPath, path)
	}
	return finish(cfg, filepath.Dir(path))
}

// LoadOrDefault behaves like Load but falls back to DefaultConfig when the
// file does not exist. Paths then resolve against the working directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil || !errors.IsCode(err, errors.CodeNotFound) {
		return cfg, err
	}
	return finish(DefaultConfig(), filepath.Dir(path))
}

func finish(cfg *Config, dir string) (*Config, error) {
	LoadDotEnv(dir)
	ApplyEnvOverrides(cfg)
	applyDefaults(cfg)
	normalize(cfg)
	resolvePaths(cfg, dir)

	if errs := Validate(cfg); len(errs) > 0 {
		return nil, errors.Wrap(stderrors.Join(errs...), errors.CodeValidationError, "invalid config")
	}
	return cfg, nil
}

// applyDefaults repairs zero values a file may set explicitly.
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if strings.TrimSpace(cfg.Suite.Mode) == "" {
		cfg.Suite.Mode = def.Suite.Mode
	}
	if strings.TrimSpace(cfg.User.ID) == "" {
		cfg.User.ID = def.User.ID
	}
	if cfg.Graph.Debounce <= 0 {
		cfg.Graph.Debounce = def.Graph.Debounce
	}
	if strings.TrimSpace(cfg.Importance.Betweenness) == "" {
		cfg.Importance.Betweenness = def.Importance.Betweenness
	}
	if cfg.Layout.CacheSize <= 0 {
		cfg.Layout.CacheSize = def.Layout.CacheSize
	}
	if cfg.Search.HistorySize <= 0 {
		cfg.Search.HistorySize = def.Search.HistorySize
	}
	if cfg.Suggestions.CacheSize <= 0 {
		cfg.Suggestions.CacheSize = def.Suggestions.CacheSize
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = def.DB.BusyTimeout
	}
	if cfg.Persistence.FlushEvery <= 0 {
		cfg.Persistence.FlushEvery = def.Persistence.FlushEvery
	}
	if cfg.Persistence.QueueCapacity <= 0 {
		cfg.Persistence.QueueCapacity = def.Persistence.QueueCapacity
	}
	if cfg.Persistence.LoadTimeout <= 0 {
		cfg.Persistence.LoadTimeout = def.Persistence.LoadTimeout
	}
	if cfg.Persistence.SaveTimeout <= 0 {
		cfg.Persistence.SaveTimeout = def.Persistence.SaveTimeout
	}
	if strings.TrimSpace(cfg.Observability.Addr) == "" {
		cfg.Observability.Addr = def.Observability.Addr
	}
}

func normalize(cfg *Config) {
	cfg.Suite.Mode = strings.ToLower(strings.TrimSpace(cfg.Suite.Mode))
	cfg.Importance.Betweenness = strings.ToLower(strings.TrimSpace(cfg.Importance.Betweenness))
	algorithms := make([]string, 0, len(cfg.Suggestions.Algorithms))
	for _, a := range cfg.Suggestions.Algorithms {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			algorithms = append(algorithms, a)
		}
	}
	cfg.Suggestions.Algorithms = algorithms
}
