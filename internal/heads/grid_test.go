package heads

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	grid := map[string][]float64{
		"rounds":        {50, 100},
		"learning_rate": {0.05, 0.1},
	}

	points := Expand(grid, 10)
	require.Len(t, points, 4)

	// Axes expand in sorted name order, so the sequence is stable.
	assert.Equal(t, map[string]float64{"learning_rate": 0.05, "rounds": 50}, points[0])
	assert.Equal(t, map[string]float64{"learning_rate": 0.05, "rounds": 100}, points[1])
	assert.Equal(t, map[string]float64{"learning_rate": 0.1, "rounds": 50}, points[2])
}

func TestExpand_Cap(t *testing.T) {
	grid := map[string][]float64{
		"a": {1, 2, 3},
		"b": {1, 2, 3},
		"c": {1, 2, 3},
	}
	points := Expand(grid, 5)
	assert.Len(t, points, 5)

	assert.Nil(t, Expand(nil, 5))
}

func TestSearch_PicksLowestValidationLoss(t *testing.T) {
	train := separableDataset(300, 10)
	val := separableDataset(80, 11)

	grid := map[string][]float64{
		// One useless configuration and one workable one.
		"rounds":        {1, 80},
		"learning_rate": {0.1},
	}

	best, err := Search("gbm", grid, 8, train, val, Classification, 42)
	require.NoError(t, err)
	require.NotNil(t, best.Model)

	assert.Equal(t, float64(80), best.Hyper["rounds"], "deeper ensemble should win on validation loss")
	assert.Less(t, best.ValLoss, 0.6)
}

func TestSearch_AllCandidatesFail(t *testing.T) {
	tiny := Dataset{X: [][]float64{{1}}, Y: []float64{1}}
	val := Dataset{X: [][]float64{{1}}, Y: []float64{1}}

	_, err := Search("gbm", map[string][]float64{"rounds": {10}}, 8, tiny, val, Classification, 1)
	assert.Error(t, err)
}
