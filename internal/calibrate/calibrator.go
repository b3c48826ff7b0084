// Package calibrate remaps raw head scores to well-calibrated
// probabilities. A calibrator is fit once per window on the validation
// slice only; applying one to the train slice would leak
// validation-period label information backward and is not supported by
// the orchestrator.
package calibrate

import (
	"fmt"

	"github.com/minsuk/triblend/internal/contracts"
)

// Calibrator is a monotonic score-to-probability remapping.
type Calibrator interface {
	// Fit estimates the mapping from validation scores / outcomes.
	Fit(scores, outcomes []float64) error
	// Apply maps one raw score to a probability in [0,1].
	Apply(score float64) float64
	// Method returns the calibration method name.
	Method() string
}

// minSamplesDefault is the floor below which fitting is refused and the
// orchestrator falls back to raw scores.
const minSamplesDefault = 10

// New constructs a calibrator by method name. "none" returns an
// identity passthrough.
func New(method string) (Calibrator, error) {
	switch method {
	case "none", "":
		return &identity{}, nil
	case "platt":
		return &Platt{}, nil
	case "isotonic":
		return &Isotonic{}, nil
	default:
		return nil, fmt.Errorf("unknown calibration method %q", method)
	}
}

// identity passes raw scores through, clamped to [0,1].
type identity struct{}

func (identity) Fit(_, _ []float64) error { return nil }

func (identity) Apply(score float64) float64 {
	return clamp01(score)
}

func (identity) Method() string { return "none" }

func checkFit(scores, outcomes []float64) error {
	if len(scores) != len(outcomes) {
		return fmt.Errorf("misaligned calibration data: %d scores, %d outcomes", len(scores), len(outcomes))
	}
	if len(scores) < minSamplesDefault {
		return &contracts.InsufficientDataError{What: "calibration", Need: minSamplesDefault, Got: len(scores)}
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
