// Package layout places and sizes nodes. The personalized variant is driven
// by graph importance and the user model; the random variant derives every
// value from a stream keyed by the node id.
package layout

import "math"

// Config bounds the geometry shared by both variants.
type Config struct {
	MinRadius float64
	MaxRadius float64
	MinSize   float64
	MaxSize   float64
	CacheSize int
}

func DefaultConfig() Config {
	return Config{
		MinRadius: 50,
		MaxRadius: 400,
		MinSize:   6,
		MaxSize:   20,
		CacheSize: 4096,
	}
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MaxRadius <= 0 {
		c.MaxRadius = d.MaxRadius
	}
	if c.MinRadius < 0 || c.MinRadius > c.MaxRadius {
		c.MinRadius = math.Min(d.MinRadius, c.MaxRadius)
	}
	if c.MaxSize <= 0 {
		c.MaxSize = d.MaxSize
	}
	if c.MinSize <= 0 || c.MinSize > c.MaxSize {
		c.MinSize = math.Min(d.MinSize, c.MaxSize)
	}
	if c.CacheSize <= 0 {
		c.CacheSize = d.CacheSize
	}
	return c
}

// goldenAngle spreads successive ranks evenly around the circle.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

const (
	levelHeight     = 30.0
	jitterAmplitude = 100.0

	sizeInteractionWeight = 0.7
	sizeImportanceWeight  = 0.3

	radiusImportanceWeight  = 0.6
	radiusTemperatureWeight = 0.4
)
