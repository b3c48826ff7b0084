package heads

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsuk/triblend/internal/contracts"
)

// separableDataset builds a binary problem where feature 0 carries the
// signal and feature 1 is seeded noise.
func separableDataset(n int, seed int64) Dataset {
	rng := rand.New(rand.NewSource(seed))
	ds := Dataset{X: make([][]float64, n), Y: make([]float64, n)}
	for i := 0; i < n; i++ {
		signal := rng.NormFloat64()
		ds.X[i] = []float64{signal, rng.NormFloat64()}
		if signal > 0 {
			ds.Y[i] = 1
		}
	}
	return ds
}

func TestGBM_LearnsSeparableSignal(t *testing.T) {
	ds := separableDataset(300, 1)

	model, err := New("gbm", map[string]float64{"rounds": 50, "learning_rate": 0.1}, Classification, 42)
	require.NoError(t, err)
	require.NoError(t, model.Fit(ds))

	up := model.Score([]float64{2.0, 0})
	down := model.Score([]float64{-2.0, 0})

	assert.Greater(t, up, 0.7)
	assert.Less(t, down, 0.3)
}

func TestGBM_Regression(t *testing.T) {
	ds := Dataset{}
	for i := 0; i < 100; i++ {
		x := float64(i%20) - 10
		ds.X = append(ds.X, []float64{x})
		ds.Y = append(ds.Y, 3*x)
	}

	model, err := New("gbm", map[string]float64{"rounds": 100, "learning_rate": 0.2}, Regression, 42)
	require.NoError(t, err)
	require.NoError(t, model.Fit(ds))

	assert.Greater(t, model.Score([]float64{8}), 10.0)
	assert.Less(t, model.Score([]float64{-8}), -10.0)
}

func TestMLP_LearnsSeparableSignal(t *testing.T) {
	ds := separableDataset(300, 2)

	model, err := New("mlp", map[string]float64{"hidden": 4, "learning_rate": 0.5, "epochs": 300}, Classification, 42)
	require.NoError(t, err)
	require.NoError(t, model.Fit(ds))

	assert.Greater(t, model.Score([]float64{2.0, 0}), 0.6)
	assert.Less(t, model.Score([]float64{-2.0, 0}), 0.4)
}

func TestFit_Deterministic(t *testing.T) {
	ds := separableDataset(200, 3)
	probe := [][]float64{{0.5, -0.3}, {-1.2, 0.8}, {0, 0}}

	for _, family := range []string{"gbm", "mlp"} {
		t.Run(family, func(t *testing.T) {
			a, err := New(family, nil, Classification, 99)
			require.NoError(t, err)
			require.NoError(t, a.Fit(ds))

			b, err := New(family, nil, Classification, 99)
			require.NoError(t, err)
			require.NoError(t, b.Fit(ds))

			for _, x := range probe {
				assert.Equal(t, a.Score(x), b.Score(x), "same seed must score identically")
			}
		})
	}
}

func TestMLP_SeedChangesModel(t *testing.T) {
	ds := separableDataset(200, 4)

	a, _ := New("mlp", nil, Classification, 1)
	require.NoError(t, a.Fit(ds))
	b, _ := New("mlp", nil, Classification, 2)
	require.NoError(t, b.Fit(ds))

	assert.NotEqual(t, a.Score([]float64{0.3, 0.1}), b.Score([]float64{0.3, 0.1}))
}

func TestFit_InsufficientData(t *testing.T) {
	tiny := Dataset{X: [][]float64{{1}, {2}}, Y: []float64{0, 1}}

	for _, family := range []string{"gbm", "mlp"} {
		model, err := New(family, nil, Classification, 1)
		require.NoError(t, err)

		err = model.Fit(tiny)
		var ide *contracts.InsufficientDataError
		assert.ErrorAs(t, err, &ide, "%s must refuse tiny datasets", family)
	}
}

func TestConstant(t *testing.T) {
	ds := Dataset{
		X: [][]float64{{1}, {2}, {3}, {4}},
		Y: []float64{1, 1, 1, 0},
	}

	model, err := New("constant", nil, Classification, 0)
	require.NoError(t, err)
	require.NoError(t, model.Fit(ds))

	assert.InDelta(t, 0.75, model.Score([]float64{100}), 1e-12)
	assert.Equal(t, model.Score([]float64{-5}), model.Score([]float64{5}), "stub ignores input")
}

func TestNew_UnknownFamily(t *testing.T) {
	_, err := New("transformer", nil, Classification, 0)
	assert.Error(t, err)
}

func TestSanitize(t *testing.T) {
	ds := separableDataset(100, 5)
	model, err := New("gbm", nil, Classification, 1)
	require.NoError(t, err)
	require.NoError(t, model.Fit(ds))

	nan := model.Score([]float64{math.NaN(), math.NaN()})
	zero := model.Score([]float64{0, 0})
	assert.Equal(t, zero, nan, "undefined inputs are scored as zeros")
}
