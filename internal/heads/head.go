// Package heads implements the per-modality scoring models. The
// orchestrator only sees the Model contract; families are selected per
// head in the pipeline config and are interchangeable.
package heads

import (
	"fmt"
	"math"

	"github.com/minsuk/triblend/internal/contracts"
)

// Task distinguishes the two supported objectives.
type Task int

const (
	// Classification scores are probabilities of an up day.
	Classification Task = iota
	// Regression scores are expected returns in bps.
	Regression
)

// Dataset is an aligned feature matrix and target vector. For
// classification Y holds 0/1 direction, for regression return_bps.
type Dataset struct {
	X [][]float64
	Y []float64
}

// Len returns the number of samples.
func (d Dataset) Len() int { return len(d.Y) }

// Model is a trainable single-modality scorer.
type Model interface {
	// Family returns the model family name ("gbm", "mlp", "constant").
	Family() string
	// Fit trains on the dataset. Training is deterministic given the
	// seed the model was constructed with.
	Fit(ds Dataset) error
	// Score maps one feature vector to a raw score: a probability for
	// classification, a signed real for regression.
	Score(x []float64) float64
}

// minFitSamples is the hard floor below which any family refuses to fit.
// The orchestrator applies the configured (higher) minimum before this.
const minFitSamples = 10

// New constructs a model of the given family.
func New(family string, hyper map[string]float64, task Task, seed int64) (Model, error) {
	switch family {
	case "gbm":
		return newGBM(hyper, task), nil
	case "mlp":
		return newMLP(hyper, task, seed), nil
	case "constant":
		return newConstant(task), nil
	default:
		return nil, fmt.Errorf("unknown head family %q", family)
	}
}

// FallbackHyper returns the conservative hyperparameters used for the
// single retry after a fit failure.
func FallbackHyper(family string) map[string]float64 {
	switch family {
	case "gbm":
		return map[string]float64{"rounds": 25, "learning_rate": 0.05}
	case "mlp":
		return map[string]float64{"hidden": 2, "learning_rate": 0.01, "epochs": 100}
	}
	return nil
}

// checkFit validates a dataset before any family-specific work.
func checkFit(ds Dataset) error {
	if ds.Len() < minFitSamples {
		return &contracts.InsufficientDataError{What: "head fit", Need: minFitSamples, Got: ds.Len()}
	}
	if len(ds.X) != len(ds.Y) {
		return fmt.Errorf("misaligned dataset: %d feature rows, %d targets", len(ds.X), len(ds.Y))
	}
	return nil
}

// sanitize replaces undefined inputs with 0 so a single missing feature
// on a scoring day cannot poison the whole score.
func sanitize(x []float64) []float64 {
	clean := x
	copied := false
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if !copied {
				clean = make([]float64, len(x))
				copy(clean, x)
				copied = true
			}
			clean[i] = 0
		}
	}
	return clean
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func hyperOr(hyper map[string]float64, key string, fallback float64) float64 {
	if v, ok := hyper[key]; ok {
		return v
	}
	return fallback
}
