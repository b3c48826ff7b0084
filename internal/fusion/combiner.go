package fusion

import (
	"github.com/minsuk/triblend/internal/contracts"
)

// Inputs is everything one day contributes to the blend: the three head
// scores plus the gate input features.
type Inputs struct {
	PPrice  float64
	PNews   float64
	PSocial float64

	NewsIntensity   float64
	NewsNovelty     float64
	SocialIntensity float64
	SocialNovelty   float64
}

// Combiner scores days under a frozen FusionParams. The params are fit
// once per window on the validation slice; the combiner itself is
// stateless beyond them.
type Combiner struct {
	Params contracts.FusionParams
}

// NewCombiner wraps fitted params.
func NewCombiner(p contracts.FusionParams) *Combiner {
	return &Combiner{Params: p}
}

// Gates returns the two activations for a day.
func (c *Combiner) Gates(in Inputs) (gNews, gSocial float64) {
	gNews = Gate{Alpha: c.Params.AlphaNews}.Activation(in.NewsIntensity, in.NewsNovelty)
	gSocial = Gate{Alpha: c.Params.AlphaSocial}.Activation(in.SocialIntensity, in.SocialNovelty)
	return gNews, gSocial
}

// Weights returns the renormalized convex weights for a day. The tilt
// factors are floored at zero so convexity survives any beta/gate
// combination, and the renormalization makes the weights sum to one.
func (c *Combiner) Weights(in Inputs) (wPrice, wNews, wSocial float64) {
	p := c.Params
	gNews, gSocial := c.Gates(in)

	tp := p.WPrice * posPart(1-p.BetaNews*gNews) * posPart(1-p.BetaSocial*gSocial)
	tn := p.WNews * (1 + p.BetaNews*gNews)
	ts := p.WSocial * (1 + p.BetaSocial*gSocial)

	sum := tp + tn + ts
	if sum <= 0 {
		// Degenerate prior (all mass on a fully suppressed modality);
		// fall back to the static weights.
		return p.WPrice, p.WNews, p.WSocial
	}
	return tp / sum, tn / sum, ts / sum
}

// Score blends the three head scores for a day.
func (c *Combiner) Score(in Inputs) float64 {
	wp, wn, ws := c.Weights(in)
	return wp*in.PPrice + wn*in.PNews + ws*in.PSocial
}

func posPart(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
