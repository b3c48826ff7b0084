// Package standardize converts raw numeric features into leakage-safe
// rolling z-scores. The moments behind z_t come exclusively from
// observations strictly before t, which makes the output invariant to
// extending the series with later data.
package standardize

import (
	"math"

	"github.com/minsuk/triblend/internal/contracts"
)

// Undefined marks a z-score that cannot be computed yet (warmup) or an
// input that was missing. Consumers must check IsDefined rather than
// treat the value as zero.
var Undefined = math.NaN()

// IsDefined reports whether a transformed value is usable.
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// Rolling computes causal z-scores over a fixed window of strictly-past
// observations.
type Rolling struct {
	window int
	clip   float64
}

// NewRolling creates a standardizer with window length w and clip bound c.
func NewRolling(w int, c float64) *Rolling {
	return &Rolling{window: w, clip: c}
}

// Transform maps a day-indexed series to z-scores. Input slots may be
// Undefined (missing day); those produce Undefined outputs and do not
// enter any window. z_t is Undefined until the window is full: fewer
// than `window` defined observations strictly before t.
//
// The left-exclusive window is materialized explicitly (last `window`
// defined values before t) so the no-look-ahead property is mechanically
// checkable: Transform(xs)[t] depends only on xs[:t+1].
func (r *Rolling) Transform(xs []float64) []float64 {
	out := make([]float64, len(xs))

	// past holds every defined observation before the current index.
	past := make([]float64, 0, len(xs))

	for t, x := range xs {
		out[t] = Undefined

		if len(past) >= r.window && IsDefined(x) {
			win := past[len(past)-r.window:]
			mean, std := moments(win)
			if std > 0 {
				z := (x - mean) / std
				out[t] = clamp(z, -r.clip, r.clip)
			}
		}

		if IsDefined(x) {
			past = append(past, x)
		}
	}

	return out
}

// Apply transforms a series according to its declared kind. Bounded,
// binary and pre-standardized features are exempt and pass through.
func (r *Rolling) Apply(kind contracts.FeatureKind, xs []float64) []float64 {
	if kind != contracts.RawKind {
		out := make([]float64, len(xs))
		copy(out, xs)
		return out
	}
	return r.Transform(xs)
}

func moments(win []float64) (mean, std float64) {
	n := float64(len(win))
	var sum float64
	for _, v := range win {
		sum += v
	}
	mean = sum / n

	var ss float64
	for _, v := range win {
		d := v - mean
		ss += d * d
	}
	// Population std over the window; the window length is fixed so the
	// estimator choice only rescales z uniformly.
	std = math.Sqrt(ss / n)
	return mean, std
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
