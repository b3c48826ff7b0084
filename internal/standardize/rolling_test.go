package standardize

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsuk/triblend/internal/contracts"
)

func TestRolling_WarmupIsUndefined(t *testing.T) {
	r := NewRolling(5, 4.0)
	xs := []float64{1, 2, 3, 4, 5, 6, 7}

	zs := r.Transform(xs)
	require.Len(t, zs, len(xs))

	for i := 0; i < 5; i++ {
		assert.False(t, IsDefined(zs[i]), "index %d should be in warmup", i)
	}
	assert.True(t, IsDefined(zs[5]))
	assert.True(t, IsDefined(zs[6]))
}

func TestRolling_UsesStrictlyPastWindow(t *testing.T) {
	r := NewRolling(3, 10.0)
	// Window for index 3 is {1, 2, 3}: mean 2, std sqrt(2/3).
	xs := []float64{1, 2, 3, 10}

	zs := r.Transform(xs)

	mean := 2.0
	std := math.Sqrt(2.0 / 3.0)
	want := (10.0 - mean) / std
	assert.InDelta(t, want, zs[3], 1e-12)
}

func TestRolling_Clip(t *testing.T) {
	r := NewRolling(3, 2.0)
	xs := []float64{1, 2, 3, 1000, -1000}

	zs := r.Transform(xs)
	assert.Equal(t, 2.0, zs[3])
	assert.Equal(t, -2.0, zs[4])
}

func TestRolling_NoLookAhead(t *testing.T) {
	r := NewRolling(20, 4.0)
	rng := rand.New(rand.NewSource(7))

	xs := make([]float64, 120)
	for i := range xs {
		xs[i] = rng.NormFloat64() * 10
	}

	base := r.Transform(xs)

	// Appending any future data must not change a single past output.
	extended := append(append([]float64{}, xs...), 1e9, -1e9, 0, 42)
	got := r.Transform(extended)

	for i := range xs {
		if IsDefined(base[i]) {
			assert.Equal(t, base[i], got[i], "index %d changed after future extension", i)
		} else {
			assert.False(t, IsDefined(got[i]))
		}
	}
}

func TestRolling_MissingObservationsSkipWindow(t *testing.T) {
	r := NewRolling(3, 4.0)
	xs := []float64{1, Undefined, 2, 3, Undefined, 4, 5}

	zs := r.Transform(xs)

	// Missing days produce Undefined and never enter a window.
	assert.False(t, IsDefined(zs[1]))
	assert.False(t, IsDefined(zs[4]))

	// Index 5 has exactly three defined priors {1,2,3}.
	mean := 2.0
	std := math.Sqrt(2.0 / 3.0)
	assert.InDelta(t, (4.0-mean)/std, zs[5], 1e-12)
}

func TestRolling_ZeroVarianceIsUndefined(t *testing.T) {
	r := NewRolling(3, 4.0)
	xs := []float64{5, 5, 5, 7}

	zs := r.Transform(xs)
	assert.False(t, IsDefined(zs[3]), "z is undefined when the window has no variance")
}

func TestApply_PassthroughKinds(t *testing.T) {
	r := NewRolling(60, 4.0)
	xs := []float64{0.1, 0.9, 0.5}

	for _, kind := range []contracts.FeatureKind{contracts.BoundedKind, contracts.BinaryKind, contracts.ZScoreKind} {
		got := r.Apply(kind, xs)
		assert.Equal(t, xs, got, "kind %s must pass through", kind)
	}

	raw := r.Apply(contracts.RawKind, xs)
	for _, v := range raw {
		assert.False(t, IsDefined(v), "raw series shorter than window is all warmup")
	}
}
