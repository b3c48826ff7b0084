// Package fusion blends the three head scores into one signal through a
// gated, convex weighted sum. Gate activations tilt the blend toward a
// text modality on high-activity days; the weights are renormalized so
// the output stays a convex combination for every admissible activation.
package fusion

import "math"

// GateCeiling caps activations so no single modality can fully dominate
// the blend.
const GateCeiling = 0.95

// Gate computes a [0, GateCeiling] activation from a text modality's
// same-day intensity and novelty signals. Pure function, no state.
type Gate struct {
	Alpha [3]float64 // alpha0 + alpha1*intensity + alpha2*novelty
}

// Activation returns the clipped sigmoid activation.
func (g Gate) Activation(intensity, novelty float64) float64 {
	z := g.Alpha[0] + g.Alpha[1]*intensity + g.Alpha[2]*novelty
	a := sigmoid(z)
	if a > GateCeiling {
		return GateCeiling
	}
	return a
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
