package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads dir/.env into the process environment. Variables that are
// already set win, and a missing file is not an error.
func LoadDotEnv(dir string) {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		slog.Warn("failed to load .env", "path", path, "error", err)
	}
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CODEFLOW_[SECTION]_[KEY] (e.g., CODEFLOW_SUITE_MODE).
func ApplyEnvOverrides(cfg *Config) {
	// Suite
	setEnvString(&cfg.Suite.Mode, "CODEFLOW_SUITE_MODE")
	setEnvUint64(&cfg.Suite.Seed, "CODEFLOW_SUITE_SEED")
	setEnvString(&cfg.User.ID, "CODEFLOW_USER_ID")

	// Graph
	setEnvString(&cfg.Graph.Path, "CODEFLOW_GRAPH_PATH")
	setEnvString(&cfg.Graph.ContentRoot, "CODEFLOW_GRAPH_CONTENT_ROOT")
	setEnvBool(&cfg.Graph.Watch, "CODEFLOW_GRAPH_WATCH")
	setEnvDuration(&cfg.Graph.Debounce, "CODEFLOW_GRAPH_DEBOUNCE")
	setEnvString(&cfg.Importance.Betweenness, "CODEFLOW_IMPORTANCE_BETWEENNESS")

	// Search and suggestions
	setEnvBool(&cfg.Search.UseML, "CODEFLOW_SEARCH_USE_ML")
	setEnvFloat64(&cfg.Search.MinScore, "CODEFLOW_SEARCH_MIN_SCORE")
	setEnvInt(&cfg.Suggestions.Max, "CODEFLOW_SUGGESTIONS_MAX")
	setEnvFloat64(&cfg.Suggestions.Threshold, "CODEFLOW_SUGGESTIONS_THRESHOLD")
	setEnvList(&cfg.Suggestions.Algorithms, "CODEFLOW_SUGGESTIONS_ALGORITHMS")
	setEnvList(&cfg.Filter.Exclude, "CODEFLOW_FILTER_EXCLUDE")

	// Database
	setEnvBool(&cfg.DB.Enabled, "CODEFLOW_DB_ENABLED")
	setEnvString(&cfg.DB.Path, "CODEFLOW_DB_PATH")
	setEnvDuration(&cfg.DB.BusyTimeout, "CODEFLOW_DB_BUSY_TIMEOUT")
	setEnvInt(&cfg.Persistence.FlushEvery, "CODEFLOW_PERSISTENCE_FLUSH_EVERY")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "CODEFLOW_OBSERVABILITY_ENABLED")
	setEnvString(&cfg.Observability.Addr, "CODEFLOW_OBSERVABILITY_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CODEFLOW_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "CODEFLOW_OBSERVABILITY_ENABLE_TRACING")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		var out []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*target = out
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvUint64(target *uint64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.ParseUint(val, 10, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
