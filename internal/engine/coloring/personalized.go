package coloring

import (
	"codeflow/internal/core/ports"
	"codeflow/internal/engine/graph"
	"codeflow/internal/engine/scoring"
	"codeflow/internal/shared/prng"
	"math"
)

const (
	usageBlendRatio      = 0.7
	importanceBlendRatio = 0.6
	edgeBaseAlpha        = 0.4
	edgeCoAccessAlpha    = 0.4
	edgeWidthScale       = 5.0
	defaultEdgeWidth     = 2.0
)

var _ ports.Coloring = (*Personalized)(nil)

// Config toggles the channels personalized coloring blends.
type Config struct {
	Temperature bool
	Importance  bool
	Usage       bool
}

func DefaultConfig() Config {
	return Config{Temperature: true, Importance: true, Usage: true}
}

type Personalized struct {
	cfg     Config
	model   ports.UserModelReader
	catalog ports.Catalog
}

func NewPersonalized(cfg Config, model ports.UserModelReader, catalog ports.Catalog) *Personalized {
	return &Personalized{cfg: cfg, model: model, catalog: catalog}
}

func (p *Personalized) Mode() ports.Mode { return ports.ModePersonalized }

// NodeColor starts from the node's heat on YlOrRd. Edited files blend with
// their edit share on Cool; otherwise structural importance blends in on
// Viridis.
func (p *Personalized) NodeColor(n *graph.Node) string {
	if n == nil {
		return Palette[0]
	}
	if !p.cfg.Temperature {
		return Palette[prng.Index(n.ID, len(Palette))]
	}

	heat := YlOrRd.At(scoring.PersonalizedTemperature(p.model, n))
	usage := p.usage(n)
	switch {
	case p.cfg.Usage && usage > 0:
		return blend(heat, Cool.At(usage), usageBlendRatio).Hex()
	case p.cfg.Importance:
		return blend(heat, Viridis.At(p.catalog.Importance(n.ID).TotalScore), importanceBlendRatio).Hex()
	}
	return heat.Hex()
}

func (p *Personalized) usage(n *graph.Node) float64 {
	edits := float64(p.model.FileEditCount(n.Path))
	return math.Min(1, edits/float64(p.model.MaxEditCount()))
}

// EdgeColor shades an edge by the mean temperature of its ends, with opacity
// rising with how often the two files are opened together.
func (p *Personalized) EdgeColor(e graph.Edge) string {
	if !p.cfg.Temperature {
		return neutralEdgeColor
	}
	src, tgt := p.endpoints(e)
	avg := (p.model.FileTemperature(src) + p.model.FileTemperature(tgt)) / 2
	co := scoring.CappedRelatedness(p.model, src, tgt)
	return rgba(YlOrRd.At(avg), edgeBaseAlpha+co*edgeCoAccessAlpha)
}

// EdgeWidth is max(1, 5*co-access) for co-accessed pairs and 2 otherwise.
func (p *Personalized) EdgeWidth(e graph.Edge) float64 {
	src, tgt := p.endpoints(e)
	strength := scoring.CappedRelatedness(p.model, src, tgt)
	if strength <= 0 {
		return defaultEdgeWidth
	}
	return math.Max(1, strength*edgeWidthScale)
}

// endpoints resolves edge ids to paths; unknown ids are used verbatim.
func (p *Personalized) endpoints(e graph.Edge) (string, string) {
	resolve := func(id string) string {
		if n, ok := p.catalog.FileByID(id); ok {
			return n.Path
		}
		return id
	}
	return resolve(e.Source), resolve(e.Target)
}

func (p *Personalized) Scheme() ports.ColorScheme {
	return ports.ColorScheme{
		Temperature: YlOrRd.Stops(),
		Importance:  Viridis.Stops(),
		Usage:       Cool.Stops(),
		Languages:   append([]string(nil), Category10...),
	}
}

// LanguageColor gives each language a stable Category10 color.
func LanguageColor(lang string) string {
	if lang == "" {
		return Category10[len(Category10)-3]
	}
	return Category10[prng.Index(lang, len(Category10))]
}
