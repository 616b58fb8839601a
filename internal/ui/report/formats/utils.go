package formats

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/lucasb-eyer/go-colorful"
)

func sanitizeID(name string) string {
	if name == "" {
		return "n"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if unicode.IsDigit(rune(out[0])) {
		return "n_" + out
	}
	return out
}

func makeIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		if _, ok := ids[name]; ok {
			continue
		}
		base := sanitizeID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// dotColor converts the "#rrggbb", "#rrggbbaa" and "rgba(r, g, b, a)" forms
// produced by the colorings into a Graphviz "#rrggbbaa" color. Unparseable
// input falls back to grey.
func dotColor(css string) string {
	css = strings.TrimSpace(css)
	if strings.HasPrefix(css, "rgba(") {
		var r, g, b int
		var a float64
		if _, err := fmt.Sscanf(css, "rgba(%d, %d, %d, %g)", &r, &g, &b, &a); err != nil {
			return "#808080ff"
		}
		return fmt.Sprintf("#%02x%02x%02x%02x", clampByte(r), clampByte(g), clampByte(b), clampByte(int(math.Round(a*255))))
	}
	if len(css) == 9 && css[0] == '#' {
		if _, err := colorful.Hex(css[:7]); err == nil {
			return strings.ToLower(css)
		}
		return "#808080ff"
	}
	c, err := colorful.Hex(css)
	if err != nil {
		return "#808080ff"
	}
	return c.Hex() + "ff"
}

func clampByte(v int) int {
	return max(0, min(255, v))
}
