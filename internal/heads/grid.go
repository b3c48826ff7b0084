package heads

import (
	"sort"

	"github.com/minsuk/triblend/internal/evaluate"
)

// Candidate is one fitted grid point with its validation loss.
type Candidate struct {
	Model   Model
	Hyper   map[string]float64
	ValLoss float64
}

// Search fits every grid point on train and selects the candidate with
// the lowest validation loss (log-loss for classification, RMSE for
// regression). Selection never sees test data. The grid expansion is
// deterministic: axes in sorted name order, values in declared order.
func Search(family string, grid map[string][]float64, maxCandidates int,
	train, val Dataset, task Task, seed int64) (Candidate, error) {

	points := Expand(grid, maxCandidates)
	if len(points) == 0 {
		points = []map[string]float64{nil}
	}

	best := Candidate{ValLoss: 0}
	var firstErr error
	found := false

	for _, hyper := range points {
		model, err := New(family, hyper, task, seed)
		if err != nil {
			return Candidate{}, err
		}
		if err := model.Fit(train); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		loss := ValidationLoss(model, val, task)
		if !found || loss < best.ValLoss {
			best = Candidate{Model: model, Hyper: hyper, ValLoss: loss}
			found = true
		}
	}

	if !found {
		return Candidate{}, firstErr
	}
	return best, nil
}

// ValidationLoss scores a fitted model on the validation slice. An
// empty slice scores 0 so degraded heads stay representable in JSON.
func ValidationLoss(model Model, val Dataset, task Task) float64 {
	if val.Len() == 0 {
		return 0
	}
	preds := make([]float64, val.Len())
	for i, x := range val.X {
		preds[i] = model.Score(x)
	}
	if task == Classification {
		return evaluate.LogLoss(preds, val.Y)
	}
	return evaluate.RMSE(preds, val.Y)
}

// Expand materializes the cross product of all grid axes, capped at
// maxCandidates points.
func Expand(grid map[string][]float64, maxCandidates int) []map[string]float64 {
	if len(grid) == 0 {
		return nil
	}

	axes := make([]string, 0, len(grid))
	for name := range grid {
		axes = append(axes, name)
	}
	sort.Strings(axes)

	points := []map[string]float64{{}}
	for _, axis := range axes {
		next := make([]map[string]float64, 0, len(points)*len(grid[axis]))
		for _, base := range points {
			for _, v := range grid[axis] {
				p := make(map[string]float64, len(base)+1)
				for k, bv := range base {
					p[k] = bv
				}
				p[axis] = v
				next = append(next, p)
			}
		}
		points = next
		if maxCandidates > 0 && len(points) >= maxCandidates {
			points = points[:maxCandidates]
		}
	}
	return points
}
