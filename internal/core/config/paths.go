package config

import (
	"path/filepath"
	"strings"
)

func resolvePaths(cfg *Config, base string) {
	if strings.TrimSpace(cfg.Graph.Path) != "" {
		cfg.Graph.Path = ResolveRelative(base, cfg.Graph.Path)
	}
	if strings.TrimSpace(cfg.Graph.ContentRoot) != "" {
		cfg.Graph.ContentRoot = ResolveRelative(base, cfg.Graph.ContentRoot)
	}
	if strings.TrimSpace(cfg.DB.Path) != "" && cfg.DB.Path != ":memory:" {
		cfg.DB.Path = ResolveRelative(base, cfg.DB.Path)
	}
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
