// Package walkforward runs the rolling train/validate/test protocol:
// it partitions the history into windows, drives each window through
// assembly, head training, calibration, fusion fitting and scoring, and
// concatenates the per-window test predictions into the single
// out-of-sample series.
package walkforward

import (
	"fmt"

	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/pipelineconfig"
)

// Partition slices the history into month-aligned walk-forward windows.
// Window i starts train at history.Start shifted by i roll steps; the
// val and test ranges follow contiguously. Only windows whose test
// range fits entirely inside the history are produced, so a 36-month
// history with 12/1/1 geometry and a 1-month step yields 23 windows.
func Partition(history contracts.DateRange, w pipelineconfig.Windows) ([]contracts.WindowSpec, error) {
	if history.Empty() {
		return nil, fmt.Errorf("empty history range %s", history)
	}
	if w.TrainMonths <= 0 || w.ValMonths <= 0 || w.TestMonths <= 0 || w.RollStepMonths <= 0 {
		return nil, fmt.Errorf("window geometry must be positive: %+v", w)
	}

	start := contracts.Day(history.Start)
	end := contracts.Day(history.End)

	var specs []contracts.WindowSpec
	for i := 0; ; i++ {
		trainStart := start.AddDate(0, i*w.RollStepMonths, 0)
		trainEnd := trainStart.AddDate(0, w.TrainMonths, 0)
		valEnd := trainEnd.AddDate(0, w.ValMonths, 0)
		testEnd := valEnd.AddDate(0, w.TestMonths, 0)

		if testEnd.After(end) {
			break
		}

		spec := contracts.WindowSpec{
			ID:          i,
			Train:       contracts.DateRange{Start: trainStart, End: trainEnd},
			Val:         contracts.DateRange{Start: trainEnd, End: valEnd},
			Test:        contracts.DateRange{Start: valEnd, End: testEnd},
			EmbargoDays: w.EmbargoDays,
		}
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("history %s too short for %d+%d+%d month windows",
			history, w.TrainMonths, w.ValMonths, w.TestMonths)
	}
	return specs, nil
}
