package walkforward

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/featurestore"
	"github.com/minsuk/triblend/internal/standardize"
)

func TestAssembleRespectsEmbargo(t *testing.T) {
	cfg := testConfig()
	cfg.Windows.EmbargoDays = 5

	store := featurestore.Synthetic(featurestore.SyntheticOptions{
		Start: day(2020, 1, 1), Months: 12, Seed: 3,
	})
	specs, err := Partition(testHistory(), cfg.Windows)
	require.NoError(t, err)
	spec := specs[0]

	data, err := assemble(context.Background(), store, cfg, spec)
	require.NoError(t, err)

	trainCut := spec.Train.End.AddDate(0, 0, -5)
	valCut := spec.Val.End.AddDate(0, 0, -5)

	for _, s := range data.train {
		assert.True(t, spec.Train.Contains(s.date))
		assert.True(t, s.date.Before(trainCut), "train day %s inside the embargo gap", s.date)
	}
	for _, s := range data.val {
		assert.True(t, spec.Val.Contains(s.date))
		assert.True(t, s.date.Before(valCut), "val day %s inside the embargo gap", s.date)
	}
	for _, s := range data.test {
		assert.True(t, spec.Test.Contains(s.date))
	}
}

func TestAssembleStandardizesRawFeaturesOnly(t *testing.T) {
	cfg := testConfig()
	store := featurestore.Synthetic(featurestore.SyntheticOptions{
		Start: day(2020, 1, 1), Months: 12, Seed: 3,
	})
	specs, err := Partition(testHistory(), cfg.Windows)
	require.NoError(t, err)

	data, err := assemble(context.Background(), store, cfg, specs[0])
	require.NoError(t, err)
	require.NotEmpty(t, data.test)

	for _, s := range data.test {
		// Raw features come out clipped to the configured z bound.
		z := s.features["ret_1d"]
		if standardize.IsDefined(z) {
			assert.LessOrEqual(t, z, cfg.Standardizer.Clip)
			assert.GreaterOrEqual(t, z, -cfg.Standardizer.Clip)
		}

		// Bounded features pass through untouched.
		raw, ok := rowValue(t, store, s.date, "news_sent_mean")
		require.True(t, ok)
		assert.Equal(t, raw, s.features["news_sent_mean"])
	}
}

func TestAssembleEmptySliceIsRecoverable(t *testing.T) {
	cfg := testConfig()
	// A store with no rows in the window produces an empty-window error,
	// never a crash or a silent artifact.
	store := featurestore.NewMemory(nil, nil)
	specs, err := Partition(testHistory(), cfg.Windows)
	require.NoError(t, err)

	_, err = assemble(context.Background(), store, cfg, specs[0])
	var empty *contracts.EmptyWindowError
	require.ErrorAs(t, err, &empty)
}

func rowValue(t *testing.T, store *featurestore.Memory, date time.Time, name string) (float64, bool) {
	t.Helper()
	rows, err := store.Rows(context.Background(), date, date.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	v, ok := rows[0].Values[name]
	return v, ok
}
