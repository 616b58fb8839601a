package util

import (
	"path"
	"sort"
	"strings"
)

// NormalizePath cleans a slash-separated project path. Backslashes are
// converted and a leading "./" is dropped; "." becomes "".
func NormalizePath(s string) string {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, "\\", "/"))
	if trimmed == "" {
		return ""
	}
	clean := path.Clean(trimmed)
	if clean == "." {
		return ""
	}
	return strings.TrimPrefix(clean, "./")
}

// ParentDir returns everything before the last slash, or "" for top-level
// files. It works on the raw path so "/x.js" and "x.js" stay distinct.
func ParentDir(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// BaseName returns the segment after the last slash.
func BaseName(p string) string {
	idx := strings.LastIndex(p, "/")
	if idx < 0 {
		return p
	}
	return p[idx+1:]
}

// PathDepth counts the slashes in p.
func PathDepth(p string) int {
	return strings.Count(p, "/")
}

// Extension returns the lower-cased extension of the base name including
// the dot, or "" when there is none.
func Extension(p string) string {
	base := BaseName(p)
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		return ""
	}
	return strings.ToLower(base[idx:])
}

// HasPathPrefix returns true when path equals prefix or is contained within prefix.
func HasPathPrefix(p, prefix string) bool {
	p = NormalizePath(p)
	prefix = NormalizePath(prefix)
	if p == "" || prefix == "" {
		return p == prefix
	}
	if p == prefix {
		return true
	}
	return strings.HasPrefix(p, prefix+"/")
}

// SortedStringKeys returns the map's keys in sorted order.
func SortedStringKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clamp01 bounds v to [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// MinFloat returns the smaller of a and b.
func MinFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
