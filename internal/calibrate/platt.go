package calibrate

import (
	"math"
)

// Platt fits the two-parameter logistic p = sigmoid(a*score + b) by
// Newton iterations on the log-loss. Targets use Platt's smoothing so a
// perfectly separated validation slice cannot push the parameters to
// infinity.
type Platt struct {
	A float64
	B float64
}

const (
	plattMaxIter = 100
	plattTol     = 1e-9
)

// Fit estimates A and B from validation scores and binary outcomes.
func (p *Platt) Fit(scores, outcomes []float64) error {
	if err := checkFit(scores, outcomes); err != nil {
		return err
	}

	n := len(scores)
	var nPos float64
	for _, y := range outcomes {
		if y > 0.5 {
			nPos++
		}
	}
	nNeg := float64(n) - nPos

	// Smoothed targets per Platt (1999).
	tPos := (nPos + 1) / (nPos + 2)
	tNeg := 1 / (nNeg + 2)

	targets := make([]float64, n)
	for i, y := range outcomes {
		if y > 0.5 {
			targets[i] = tPos
		} else {
			targets[i] = tNeg
		}
	}

	a, b := 0.0, math.Log((nPos+1)/(nNeg+1))

	for iter := 0; iter < plattMaxIter; iter++ {
		var ga, gb float64   // gradient
		var haa, hab, hbb float64 // Hessian

		for i, s := range scores {
			pi := sigmoid(a*s + b)
			d := pi - targets[i]
			w := pi * (1 - pi)

			ga += d * s
			gb += d
			haa += w * s * s
			hab += w * s
			hbb += w
		}

		// Tiny ridge keeps the Hessian invertible on degenerate slices.
		haa += 1e-9
		hbb += 1e-9

		det := haa*hbb - hab*hab
		if det <= 0 {
			break
		}
		da := (hbb*ga - hab*gb) / det
		db := (haa*gb - hab*ga) / det

		a -= da
		b -= db

		if math.Abs(da) < plattTol && math.Abs(db) < plattTol {
			break
		}
	}

	if math.IsNaN(a) || math.IsNaN(b) {
		return &DivergedError{}
	}

	p.A = a
	p.B = b
	return nil
}

// Apply maps a score to the fitted probability.
func (p *Platt) Apply(score float64) float64 {
	return sigmoid(p.A*score + p.B)
}

// Method returns "platt".
func (p *Platt) Method() string { return "platt" }

// DivergedError reports a calibration fit that produced non-finite
// parameters. The orchestrator falls back to raw scores.
type DivergedError struct{}

func (e *DivergedError) Error() string { return "platt calibration diverged" }

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
