package fusion

import (
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/pipelineconfig"
)

// Sample is one validation day used to fit the blend.
type Sample struct {
	In Inputs
	// Y is the direction (0/1) for classification or return_bps for
	// regression.
	Y float64
}

// FitResult carries the fitted params and whether the optimizer
// converged; a non-converged fit falls back to the configured prior and
// is flagged in window metadata.
type FitResult struct {
	Params    contracts.FusionParams
	Converged bool
	Loss      float64
}

// Fit solves for the blend parameters on the validation slice:
// minimize mean log-loss (classification) or mean squared error
// (regression) of the fused score, plus an L2 penalty on the gate
// alphas and an L1 penalty on the betas.
//
// The simplex and non-negativity constraints are enforced by
// reparameterization: weights go through a softmax, betas through a
// scaled sigmoid bounded by gate_beta_max. L-BFGS then runs
// unconstrained with finite-difference gradients, which keeps the fit
// deterministic for a fixed starting point.
func Fit(samples []Sample, cfg pipelineconfig.Fusion, objective string, minSamples int) (FitResult, error) {
	prior := priorParams(cfg)

	if len(samples) < minSamples {
		return FitResult{Params: prior, Converged: false},
			&contracts.InsufficientDataError{What: "fusion fit", Need: minSamples, Got: len(samples)}
	}

	obj := func(theta []float64) float64 {
		return objectiveValue(theta, samples, cfg, objective)
	}

	problem := optimize.Problem{Func: obj}
	x0 := encode(prior, cfg.GateBetaMax)

	settings := &optimize.Settings{
		MajorIterations: cfg.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Iterations: 20,
		},
	}

	startLoss := obj(x0)
	result, err := optimize.Minimize(problem, x0, settings, &optimize.LBFGS{})

	// Non-convergence is not fatal: the window runs on the prior. A
	// line-search failure that still improved on the start is accepted.
	if result == nil || !finite(result.X) {
		return FitResult{Params: prior, Converged: false, Loss: startLoss}, nil
	}
	if err != nil && result.F >= startLoss {
		return FitResult{Params: prior, Converged: false, Loss: startLoss}, nil
	}

	params := decode(result.X, cfg.GateBetaMax)
	if err := params.Validate(); err != nil {
		return FitResult{Params: prior, Converged: false, Loss: startLoss}, nil
	}

	return FitResult{Params: params, Converged: true, Loss: result.F}, nil
}

// priorParams expands the configured prior into full FusionParams
// (alpha = 0, beta = prior tilt bounded by gate_beta_max).
func priorParams(cfg pipelineconfig.Fusion) contracts.FusionParams {
	beta := math.Min(1.0, cfg.GateBetaMax)
	return contracts.FusionParams{
		WPrice:     cfg.WeightPrior.Price,
		WNews:      cfg.WeightPrior.News,
		WSocial:    cfg.WeightPrior.Social,
		BetaNews:   beta,
		BetaSocial: beta,
	}
}

// theta layout: [u_price, u_news, u_social, aNews0..2, aSoc0..2, bNews, bSocial]
const thetaLen = 11

func objectiveValue(theta []float64, samples []Sample, cfg pipelineconfig.Fusion, objective string) float64 {
	params := decode(theta, cfg.GateBetaMax)
	c := NewCombiner(params)

	var loss float64
	for _, s := range samples {
		fused := c.Score(s.In)
		if objective == pipelineconfig.ObjectiveClassification {
			p := clampProb(fused)
			if s.Y > 0.5 {
				loss -= math.Log(p)
			} else {
				loss -= math.Log(1 - p)
			}
		} else {
			d := fused - s.Y
			loss += d * d
		}
	}
	loss /= float64(len(samples))

	// L2 on gate alphas discourages over-reactive gating surfaces.
	for i := 0; i < 3; i++ {
		loss += cfg.GateAlphaL2 * (params.AlphaNews[i]*params.AlphaNews[i] +
			params.AlphaSocial[i]*params.AlphaSocial[i])
	}
	// Betas are non-negative, so the L1 penalty is just their sum.
	loss += cfg.GateBetaL1 * (params.BetaNews + params.BetaSocial)

	return loss
}

// encode maps FusionParams into the unconstrained theta space.
func encode(p contracts.FusionParams, betaMax float64) []float64 {
	theta := make([]float64, thetaLen)
	theta[0] = math.Log(p.WPrice + 1e-9)
	theta[1] = math.Log(p.WNews + 1e-9)
	theta[2] = math.Log(p.WSocial + 1e-9)
	for i := 0; i < 3; i++ {
		theta[3+i] = p.AlphaNews[i]
		theta[6+i] = p.AlphaSocial[i]
	}
	theta[9] = logit(betaRatio(p.BetaNews, betaMax))
	theta[10] = logit(betaRatio(p.BetaSocial, betaMax))
	return theta
}

// decode maps theta back to valid FusionParams: softmax for the simplex,
// scaled sigmoid for the betas.
func decode(theta []float64, betaMax float64) contracts.FusionParams {
	wp, wn, ws := softmax3(theta[0], theta[1], theta[2])
	p := contracts.FusionParams{
		WPrice:     wp,
		WNews:      wn,
		WSocial:    ws,
		BetaNews:   betaMax * sigmoid(theta[9]),
		BetaSocial: betaMax * sigmoid(theta[10]),
	}
	for i := 0; i < 3; i++ {
		p.AlphaNews[i] = theta[3+i]
		p.AlphaSocial[i] = theta[6+i]
	}
	return p
}

func softmax3(a, b, c float64) (float64, float64, float64) {
	m := math.Max(a, math.Max(b, c))
	ea := math.Exp(a - m)
	eb := math.Exp(b - m)
	ec := math.Exp(c - m)
	sum := ea + eb + ec
	return ea / sum, eb / sum, ec / sum
}

// betaRatio keeps the logit argument inside (0,1) so encoding a beta at
// the bound stays finite.
func betaRatio(beta, betaMax float64) float64 {
	r := beta / betaMax
	if r > 0.95 {
		r = 0.95
	}
	if r < 0.05 {
		r = 0.05
	}
	return r
}

func logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

func clampProb(p float64) float64 {
	const eps = 1e-9
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}

func finite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
