package calibrate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsuk/triblend/internal/contracts"
)

// miscalibrated generates outcomes whose true probability is a squashed
// version of the score, so raw scores are overconfident.
func miscalibrated(n int, seed int64) (scores, outcomes []float64) {
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		s := rng.Float64()
		p := 0.25 + 0.5*s // true prob compressed into [0.25, 0.75]
		scores = append(scores, s)
		if rng.Float64() < p {
			outcomes = append(outcomes, 1)
		} else {
			outcomes = append(outcomes, 0)
		}
	}
	return scores, outcomes
}

func TestNew(t *testing.T) {
	for _, method := range []string{"none", "platt", "isotonic"} {
		c, err := New(method)
		require.NoError(t, err)
		assert.Equal(t, method, c.Method())
	}

	_, err := New("beta")
	assert.Error(t, err)
}

func TestIdentity_ClampsOnly(t *testing.T) {
	c, _ := New("none")
	require.NoError(t, c.Fit(nil, nil))

	assert.Equal(t, 0.3, c.Apply(0.3))
	assert.Equal(t, 0.0, c.Apply(-2))
	assert.Equal(t, 1.0, c.Apply(2))
}

func TestPlatt_RecalibratesOverconfidentScores(t *testing.T) {
	scores, outcomes := miscalibrated(2000, 1)

	p := &Platt{}
	require.NoError(t, p.Fit(scores, outcomes))

	// Extreme raw scores should be pulled toward the true squashed range.
	assert.InDelta(t, 0.27, p.Apply(0.02), 0.08)
	assert.InDelta(t, 0.73, p.Apply(0.98), 0.08)

	// Monotone by construction (A should be positive here).
	assert.Greater(t, p.A, 0.0)
	assert.Less(t, p.Apply(0.2), p.Apply(0.8))
}

func TestIsotonic_MonotoneAndBounded(t *testing.T) {
	scores, outcomes := miscalibrated(2000, 2)

	ic := &Isotonic{}
	require.NoError(t, ic.Fit(scores, outcomes))

	prev := -1.0
	for s := 0.0; s <= 1.0; s += 0.01 {
		p := ic.Apply(s)
		assert.GreaterOrEqual(t, p, prev-1e-12, "isotonic curve must be non-decreasing")
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		prev = p
	}

	// Beyond the fitted range the curve is flat.
	assert.Equal(t, ic.Apply(-10), ic.Apply(-100))
	assert.Equal(t, ic.Apply(10), ic.Apply(100))
}

func TestIsotonic_PerfectSeparation(t *testing.T) {
	scores := []float64{0.1, 0.2, 0.3, 0.4, 0.6, 0.7, 0.8, 0.9, 0.95, 0.99}
	outcomes := []float64{0, 0, 0, 0, 1, 1, 1, 1, 1, 1}

	ic := &Isotonic{}
	require.NoError(t, ic.Fit(scores, outcomes))

	assert.InDelta(t, 0.0, ic.Apply(0.05), 1e-12)
	assert.InDelta(t, 1.0, ic.Apply(0.97), 1e-12)
}

func TestFit_InsufficientData(t *testing.T) {
	scores := []float64{0.2, 0.8}
	outcomes := []float64{0, 1}

	for _, method := range []string{"platt", "isotonic"} {
		c, err := New(method)
		require.NoError(t, err)

		err = c.Fit(scores, outcomes)
		var ide *contracts.InsufficientDataError
		assert.ErrorAs(t, err, &ide, "%s must refuse tiny slices", method)
	}
}

func TestPlatt_Deterministic(t *testing.T) {
	scores, outcomes := miscalibrated(500, 3)

	a := &Platt{}
	require.NoError(t, a.Fit(scores, outcomes))
	b := &Platt{}
	require.NoError(t, b.Fit(scores, outcomes))

	assert.Equal(t, a.A, b.A)
	assert.Equal(t, a.B, b.B)
}
