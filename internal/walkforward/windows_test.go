package walkforward

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/pipelineconfig"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPartitionCount(t *testing.T) {
	history := contracts.DateRange{Start: day(2020, 1, 1), End: day(2023, 1, 1)}
	geometry := pipelineconfig.Windows{
		TrainMonths:    12,
		ValMonths:      1,
		TestMonths:     1,
		RollStepMonths: 1,
		EmbargoDays:    1,
	}

	specs, err := Partition(history, geometry)
	require.NoError(t, err)

	// 36 months of history, 14 months per window, rolling monthly.
	assert.Len(t, specs, 23)

	first := specs[0]
	assert.Equal(t, day(2020, 1, 1), first.Train.Start)
	assert.Equal(t, day(2021, 1, 1), first.Train.End)
	assert.Equal(t, day(2021, 1, 1), first.Val.Start)
	assert.Equal(t, day(2021, 2, 1), first.Val.End)
	assert.Equal(t, day(2021, 2, 1), first.Test.Start)
	assert.Equal(t, day(2021, 3, 1), first.Test.End)

	last := specs[len(specs)-1]
	assert.Equal(t, day(2023, 1, 1), last.Test.End)
}

func TestPartitionWindowsAreContiguousAndValid(t *testing.T) {
	history := contracts.DateRange{Start: day(2021, 3, 1), End: day(2022, 6, 1)}
	geometry := pipelineconfig.Windows{
		TrainMonths:    6,
		ValMonths:      2,
		TestMonths:     1,
		RollStepMonths: 2,
		EmbargoDays:    3,
	}

	specs, err := Partition(history, geometry)
	require.NoError(t, err)
	require.NotEmpty(t, specs)

	for i, spec := range specs {
		assert.Equal(t, i, spec.ID)
		require.NoError(t, spec.Validate())
		assert.Equal(t, spec.Train.End, spec.Val.Start)
		assert.Equal(t, spec.Val.End, spec.Test.Start)
		assert.Equal(t, 3, spec.EmbargoDays)
		if i > 0 {
			assert.Equal(t, specs[i-1].Train.Start.AddDate(0, 2, 0), spec.Train.Start)
		}
	}
}

func TestPartitionHistoryTooShort(t *testing.T) {
	history := contracts.DateRange{Start: day(2022, 1, 1), End: day(2022, 6, 1)}
	_, err := Partition(history, pipelineconfig.Windows{
		TrainMonths: 12, ValMonths: 1, TestMonths: 1, RollStepMonths: 1,
	})
	assert.Error(t, err)
}

func TestPartitionRejectsBadGeometry(t *testing.T) {
	history := contracts.DateRange{Start: day(2020, 1, 1), End: day(2023, 1, 1)}

	cases := []pipelineconfig.Windows{
		{TrainMonths: 0, ValMonths: 1, TestMonths: 1, RollStepMonths: 1},
		{TrainMonths: 12, ValMonths: 1, TestMonths: 1, RollStepMonths: 0},
		{TrainMonths: 12, ValMonths: -1, TestMonths: 1, RollStepMonths: 1},
	}
	for _, geometry := range cases {
		_, err := Partition(history, geometry)
		assert.Error(t, err)
	}

	_, err := Partition(contracts.DateRange{}, pipelineconfig.Windows{
		TrainMonths: 1, ValMonths: 1, TestMonths: 1, RollStepMonths: 1,
	})
	assert.Error(t, err)
}
