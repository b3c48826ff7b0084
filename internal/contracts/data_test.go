package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDay_NormalizesClock(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	ts := time.Date(2024, 3, 15, 16, 30, 12, 999, loc)
	got := Day(ts)

	assert.Equal(t, date(2024, 3, 15), got)
	assert.Equal(t, time.UTC, got.Location())
}

func TestDateRange_Contains(t *testing.T) {
	r := DateRange{Start: date(2024, 1, 1), End: date(2024, 2, 1)}

	assert.True(t, r.Contains(date(2024, 1, 1)), "start is inclusive")
	assert.True(t, r.Contains(date(2024, 1, 31)))
	assert.False(t, r.Contains(date(2024, 2, 1)), "end is exclusive")
	assert.False(t, r.Contains(date(2023, 12, 31)))
}

func TestDateRange_Overlaps(t *testing.T) {
	a := DateRange{Start: date(2024, 1, 1), End: date(2024, 2, 1)}

	tests := []struct {
		name string
		b    DateRange
		want bool
	}{
		{"disjoint after", DateRange{date(2024, 2, 1), date(2024, 3, 1)}, false},
		{"disjoint before", DateRange{date(2023, 11, 1), date(2024, 1, 1)}, false},
		{"partial", DateRange{date(2024, 1, 15), date(2024, 2, 15)}, true},
		{"contained", DateRange{date(2024, 1, 10), date(2024, 1, 20)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(a))
		})
	}
}

func TestWindowSpec_Validate(t *testing.T) {
	valid := WindowSpec{
		ID:          3,
		Train:       DateRange{date(2023, 1, 1), date(2024, 1, 1)},
		Val:         DateRange{date(2024, 1, 1), date(2024, 2, 1)},
		Test:        DateRange{date(2024, 2, 1), date(2024, 3, 1)},
		EmbargoDays: 1,
	}
	assert.NoError(t, valid.Validate())

	overlapping := valid
	overlapping.Train.End = date(2024, 1, 15)
	assert.Error(t, overlapping.Validate())

	empty := valid
	empty.Val = DateRange{date(2024, 1, 1), date(2024, 1, 1)}
	assert.Error(t, empty.Validate())
}

func TestFusionParams_Validate(t *testing.T) {
	ok := FusionParams{WPrice: 0.6, WNews: 0.2, WSocial: 0.2, BetaNews: 1, BetaSocial: 1}
	assert.NoError(t, ok.Validate())

	notSimplex := ok
	notSimplex.WPrice = 0.7
	assert.Error(t, notSimplex.Validate())

	negative := ok
	negative.WNews = -0.1
	negative.WPrice = 0.9
	assert.Error(t, negative.Validate())

	negBeta := ok
	negBeta.BetaSocial = -0.5
	assert.Error(t, negBeta.Validate())
}

func TestHeadScore_Value(t *testing.T) {
	s := HeadScore{Raw: 0.3}
	assert.Equal(t, 0.3, s.Value())

	cal := 0.55
	s.Calibrated = &cal
	assert.Equal(t, 0.55, s.Value())
}
