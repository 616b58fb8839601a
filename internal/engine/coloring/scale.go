// Package coloring maps scores to node and edge colors.
package coloring

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Scale is a sequential color scale over [0,1], interpolated in RGB between
// evenly spaced stops.
type Scale struct {
	name  string
	stops []colorful.Color
	hex   []string
}

func mustScale(name string, hexStops ...string) Scale {
	s := Scale{name: name, hex: hexStops}
	for _, h := range hexStops {
		c, err := colorful.Hex(h)
		if err != nil {
			panic(fmt.Sprintf("coloring: bad stop %q in %s: %v", h, name, err))
		}
		s.stops = append(s.stops, c)
	}
	return s
}

var (
	// YlOrRd runs pale yellow (cold) to dark red (hot).
	YlOrRd = mustScale("YlOrRd", "#ffffcc", "#fed976", "#fd8d3c", "#e31a1c", "#800026")
	// Viridis runs purple (low) to yellow (high).
	Viridis = mustScale("Viridis", "#440154", "#3b528b", "#21918c", "#5ec962", "#fde725")
	// Cool runs violet to green.
	Cool = mustScale("Cool", "#6e40aa", "#417de0", "#1ac7c2", "#40f373", "#aff05b")

	Category10 = []string{
		"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
		"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
	}

	// Palette backs the id-keyed colors of the random coloring and of
	// personalized coloring with temperature turned off.
	Palette = []string{
		"#69b3ff", "#ff6b6b", "#4ecdc4", "#45b7d1", "#f9ca24", "#f0932b",
		"#eb4d4b", "#6c5ce7", "#a29bfe", "#fd79a8", "#e17055", "#00b894",
	}
)

const neutralEdgeColor = "#ffffff40"

func (s Scale) Name() string { return s.name }

// Stops returns the hex stops of the scale.
func (s Scale) Stops() []string {
	return append([]string(nil), s.hex...)
}

// At returns the color at t, clamped to [0,1].
func (s Scale) At(t float64) colorful.Color {
	if len(s.stops) == 0 {
		return colorful.Color{}
	}
	if t != t || t <= 0 {
		return s.stops[0]
	}
	if t >= 1 {
		return s.stops[len(s.stops)-1]
	}
	pos := t * float64(len(s.stops)-1)
	i := int(math.Floor(pos))
	return s.stops[i].BlendRgb(s.stops[i+1], pos-float64(i))
}

// blend mixes a*ratio + b*(1-ratio).
func blend(a, b colorful.Color, ratio float64) colorful.Color {
	return a.BlendRgb(b, 1-ratio).Clamped()
}

func rgba(c colorful.Color, alpha float64) string {
	r, g, b := c.Clamped().RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatAlpha(alpha))
}

func formatAlpha(a float64) string {
	a = math.Max(0, math.Min(1, a))
	return fmt.Sprintf("%g", math.Round(a*1000)/1000)
}
