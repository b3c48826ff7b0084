package fusion

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/pipelineconfig"
)

func TestGate_Activation(t *testing.T) {
	g := Gate{Alpha: [3]float64{0, 1, 1}}

	// Zero inputs reduce to sigmoid(alpha0).
	assert.InDelta(t, 0.5, g.Activation(0, 0), 1e-12)

	// Monotone in both inputs.
	assert.Greater(t, g.Activation(1, 0), g.Activation(0, 0))
	assert.Greater(t, g.Activation(0, 1), g.Activation(0, 0))

	// Ceiling binds for extreme activity.
	assert.Equal(t, GateCeiling, g.Activation(100, 100))

	// Bounded below by zero.
	assert.GreaterOrEqual(t, g.Activation(-100, -100), 0.0)
}

func defaultParams() contracts.FusionParams {
	return contracts.FusionParams{
		WPrice: 0.6, WNews: 0.2, WSocial: 0.2,
		BetaNews: 1, BetaSocial: 1,
	}
}

func TestCombiner_WeightsAreConvex(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for trial := 0; trial < 500; trial++ {
		p := defaultParams()
		p.AlphaNews = [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		p.AlphaSocial = [3]float64{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		p.BetaNews = rng.Float64()
		p.BetaSocial = rng.Float64()

		c := NewCombiner(p)
		in := Inputs{
			NewsIntensity: rng.NormFloat64() * 3, NewsNovelty: rng.NormFloat64() * 3,
			SocialIntensity: rng.NormFloat64() * 3, SocialNovelty: rng.NormFloat64() * 3,
		}

		wp, wn, ws := c.Weights(in)
		assert.GreaterOrEqual(t, wp, 0.0)
		assert.GreaterOrEqual(t, wn, 0.0)
		assert.GreaterOrEqual(t, ws, 0.0)
		assert.InDelta(t, 1.0, wp+wn+ws, 1e-9, "weights must renormalize to a convex combination")
	}
}

func TestCombiner_GatesTiltTowardTextModalities(t *testing.T) {
	p := defaultParams()
	p.AlphaNews = [3]float64{0, 2, 0}
	c := NewCombiner(p)

	quiet := Inputs{NewsIntensity: -3}
	busy := Inputs{NewsIntensity: 3}

	_, wnQuiet, _ := c.Weights(quiet)
	_, wnBusy, _ := c.Weights(busy)

	assert.Greater(t, wnBusy, wnQuiet, "high news intensity must up-weight news")

	wpQuiet, _, _ := c.Weights(quiet)
	wpBusy, _, _ := c.Weights(busy)
	assert.Less(t, wpBusy, wpQuiet, "price weight gives way on busy news days")
}

func TestCombiner_ZeroGateInputsGiveConstantWeights(t *testing.T) {
	// alpha = 0 everywhere: gates are the constant sigmoid(0) = 0.5,
	// so the blend reduces to the static prior renormalized.
	c := NewCombiner(defaultParams())

	base := Inputs{}
	wp1, wn1, ws1 := c.Weights(base)
	wp2, wn2, ws2 := c.Weights(Inputs{PPrice: 0.9, PNews: 0.1, PSocial: 0.4})

	assert.Equal(t, wp1, wp2)
	assert.Equal(t, wn1, wn2)
	assert.Equal(t, ws1, ws2)

	// Expected: tilt factors (1-0.5)^2=0.25 on price, 1.5 on both texts.
	tp, tn, ts := 0.6*0.25, 0.2*1.5, 0.2*1.5
	sum := tp + tn + ts
	assert.InDelta(t, tp/sum, wp1, 1e-12)
	assert.InDelta(t, tn/sum, wn1, 1e-12)
	assert.InDelta(t, ts/sum, ws1, 1e-12)
}

func TestCombiner_Score(t *testing.T) {
	p := contracts.FusionParams{WPrice: 1, WNews: 0, WSocial: 0}
	c := NewCombiner(p)

	in := Inputs{PPrice: 0.8, PNews: 0.1, PSocial: 0.2}
	// All weight on price; gates cannot resurrect zero-weight modalities.
	assert.InDelta(t, 0.8, c.Score(in), 1e-9)
}

// fusionSamples builds validation days where the price head is
// informative and the news head becomes informative only on
// high-intensity days.
func fusionSamples(n int, seed int64) []Sample {
	rng := rand.New(rand.NewSource(seed))
	samples := make([]Sample, 0, n)

	for i := 0; i < n; i++ {
		up := rng.Float64() < 0.5
		y := 0.0
		if up {
			y = 1
		}

		busy := rng.Float64() < 0.3
		intensity := -1.0
		if busy {
			intensity = 2.0
		}

		pPrice := noisyProb(up, 0.35, rng)
		pNews := 0.5
		if busy {
			pNews = noisyProb(up, 0.25, rng)
		}

		samples = append(samples, Sample{
			In: Inputs{
				PPrice:        pPrice,
				PNews:         pNews,
				PSocial:       0.5,
				NewsIntensity: intensity,
			},
			Y: y,
		})
	}
	return samples
}

func noisyProb(up bool, noise float64, rng *rand.Rand) float64 {
	base := 0.3
	if up {
		base = 0.7
	}
	p := base + rng.NormFloat64()*noise
	return math.Min(0.95, math.Max(0.05, p))
}

func TestFit_ImprovesOnPrior(t *testing.T) {
	samples := fusionSamples(400, 7)
	cfg := pipelineconfig.Default().Fusion

	res, err := Fit(samples, cfg, pipelineconfig.ObjectiveClassification, 10)
	require.NoError(t, err)
	require.True(t, res.Converged)
	require.NoError(t, res.Params.Validate())

	prior := priorParams(cfg)
	priorLoss := objectiveValue(encode(prior, cfg.GateBetaMax), samples, cfg, pipelineconfig.ObjectiveClassification)
	assert.LessOrEqual(t, res.Loss, priorLoss, "fit must not be worse than its starting point")
}

func TestFit_Deterministic(t *testing.T) {
	samples := fusionSamples(300, 8)
	cfg := pipelineconfig.Default().Fusion

	a, err := Fit(samples, cfg, pipelineconfig.ObjectiveClassification, 10)
	require.NoError(t, err)
	b, err := Fit(samples, cfg, pipelineconfig.ObjectiveClassification, 10)
	require.NoError(t, err)

	assert.Equal(t, a.Params, b.Params, "identical inputs must give bit-identical params")
}

func TestFit_UselessModalityWeightShrinks(t *testing.T) {
	// Social head is a constant 0.5 in every sample; its fused weight
	// should head toward zero through normal optimization.
	samples := fusionSamples(600, 9)
	cfg := pipelineconfig.Default().Fusion

	res, err := Fit(samples, cfg, pipelineconfig.ObjectiveClassification, 10)
	require.NoError(t, err)
	require.True(t, res.Converged)

	assert.Less(t, res.Params.WSocial, 0.2, "uninformative modality should lose weight from its 0.2 prior")
	assert.False(t, math.IsNaN(res.Params.WSocial))
}

func TestFit_TooFewSamplesFallsBackToPrior(t *testing.T) {
	samples := fusionSamples(5, 10)
	cfg := pipelineconfig.Default().Fusion

	res, err := Fit(samples, cfg, pipelineconfig.ObjectiveClassification, 10)
	require.Error(t, err)

	var ide *contracts.InsufficientDataError
	assert.ErrorAs(t, err, &ide)
	assert.False(t, res.Converged)
	assert.Equal(t, priorParams(cfg), res.Params)
}

func TestFit_Regression(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	samples := make([]Sample, 0, 300)
	for i := 0; i < 300; i++ {
		ret := rng.NormFloat64() * 50
		samples = append(samples, Sample{
			In: Inputs{PPrice: ret + rng.NormFloat64()*10, PNews: 0, PSocial: 0},
			Y:  ret,
		})
	}

	cfg := pipelineconfig.Default().Fusion
	res, err := Fit(samples, cfg, pipelineconfig.ObjectiveRegression, 10)
	require.NoError(t, err)
	require.True(t, res.Converged)

	assert.Greater(t, res.Params.WPrice, 0.6, "the only informative head should gain weight")
}
