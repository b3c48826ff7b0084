package walkforward

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/heads"
	"github.com/minsuk/triblend/internal/pipelineconfig"
	"github.com/minsuk/triblend/internal/standardize"
)

// sample is one trading day after standardization: the transformed
// feature map plus the day's label.
type sample struct {
	date     time.Time
	label    contracts.Label
	features map[string]float64
}

// windowData is the assembled input of one window, already split into
// embargo-trimmed slices.
type windowData struct {
	spec  contracts.WindowSpec
	train []sample
	val   []sample
	test  []sample
}

// assemble fetches, guards, standardizes and splits the data of one
// window. The fetch reaches back before train start so the rolling
// standardizer is warm by the first train day; everything fetched is
// strictly before test end, so nothing later than the window can
// influence it.
func assemble(ctx context.Context, repo contracts.FeatureRepository,
	cfg *pipelineconfig.Config, spec contracts.WindowSpec) (*windowData, error) {

	// Two calendar days per required observation covers weekends and
	// holidays with margin.
	lookback := cfg.Standardizer.Window * 2
	fetchFrom := spec.Train.Start.AddDate(0, 0, -lookback)

	rows, err := repo.Rows(ctx, fetchFrom, spec.Test.End)
	if err != nil {
		return nil, fmt.Errorf("fetch rows: %w", err)
	}
	if err := guardRowDates(rows, fetchFrom, spec.Test.End); err != nil {
		return nil, err
	}

	labels, err := repo.Labels(ctx, spec.Train.Start, spec.Test.End)
	if err != nil {
		return nil, fmt.Errorf("fetch labels: %w", err)
	}
	if err := guardLabelDates(labels, spec.Train.Start, spec.Test.End); err != nil {
		return nil, err
	}

	byDate := make(map[time.Time]contracts.Label, len(labels))
	for _, l := range labels {
		byDate[l.Date] = l
	}

	transformed := standardizeRows(rows, cfg)

	// Embargo trims the trailing days of the earlier slice at both
	// boundaries, so a label horizon crossing the boundary cannot put
	// outcome information on both sides.
	trainCut := spec.Train.End.AddDate(0, 0, -spec.EmbargoDays)
	valCut := spec.Val.End.AddDate(0, 0, -spec.EmbargoDays)

	data := &windowData{spec: spec}
	for i, row := range rows {
		label, ok := byDate[row.Date]
		if !ok {
			continue
		}
		s := sample{date: row.Date, label: label, features: transformed[i]}

		switch {
		case spec.Train.Contains(row.Date) && row.Date.Before(trainCut):
			data.train = append(data.train, s)
		case spec.Val.Contains(row.Date) && row.Date.Before(valCut):
			data.val = append(data.val, s)
		case spec.Test.Contains(row.Date):
			data.test = append(data.test, s)
		}
	}

	for _, slice := range []struct {
		name    string
		samples []sample
	}{{"train", data.train}, {"val", data.val}, {"test", data.test}} {
		if len(slice.samples) == 0 {
			return nil, &contracts.EmptyWindowError{WindowID: spec.ID, Slice: slice.name}
		}
	}

	return data, nil
}

// standardizeRows runs every configured feature series through the
// rolling transform (raw kinds only; bounded, binary and pre-scored
// kinds pass through) and returns one transformed map per input row.
func standardizeRows(rows []contracts.FeatureRow, cfg *pipelineconfig.Config) []map[string]float64 {
	r := standardize.NewRolling(cfg.Standardizer.Window, cfg.Standardizer.Clip)

	out := make([]map[string]float64, len(rows))
	for i := range out {
		out[i] = make(map[string]float64)
	}

	for _, name := range featureNames(cfg) {
		series := make([]float64, len(rows))
		for i, row := range rows {
			if v, ok := row.Values[name]; ok {
				series[i] = v
			} else {
				series[i] = standardize.Undefined
			}
		}
		z := r.Apply(cfg.Features.Kind(name), series)
		for i := range rows {
			out[i][name] = z[i]
		}
	}
	return out
}

// featureNames returns every feature the window touches, deduplicated,
// in a deterministic order.
func featureNames(cfg *pipelineconfig.Config) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, m := range contracts.Modalities {
		for _, name := range cfg.Features.ForModality(m) {
			add(name)
		}
	}
	add(cfg.Gates.News.Intensity)
	add(cfg.Gates.News.Novelty)
	add(cfg.Gates.Social.Intensity)
	add(cfg.Gates.Social.Novelty)
	sort.Strings(names)
	return names
}

// modalityDataset builds the feature matrix of one head from one slice.
// Days where any of the head's features is still undefined (warmup or a
// missing upstream value) are dropped for fitting.
func modalityDataset(samples []sample, names []string, objective string) heads.Dataset {
	var ds heads.Dataset
	for _, s := range samples {
		x, ok := featureVector(s, names)
		if !ok {
			continue
		}
		ds.X = append(ds.X, x)
		ds.Y = append(ds.Y, target(s.label, objective))
	}
	return ds
}

// featureVector extracts one head's inputs; ok is false when any value
// is undefined.
func featureVector(s sample, names []string) ([]float64, bool) {
	x := make([]float64, len(names))
	for i, name := range names {
		v := s.features[name]
		if !standardize.IsDefined(v) {
			return nil, false
		}
		x[i] = v
	}
	return x, true
}

// scoringVector extracts one head's inputs for scoring; undefined values
// become 0 so a single missing feature cannot suppress a prediction day.
func scoringVector(s sample, names []string) []float64 {
	x := make([]float64, len(names))
	for i, name := range names {
		if v := s.features[name]; standardize.IsDefined(v) {
			x[i] = v
		}
	}
	return x
}

// gateValue reads one gate input, treating undefined as no activity.
func gateValue(s sample, name string) float64 {
	if v := s.features[name]; standardize.IsDefined(v) {
		return v
	}
	return 0
}

func target(l contracts.Label, objective string) float64 {
	if objective == pipelineconfig.ObjectiveClassification {
		if l.Direction {
			return 1
		}
		return 0
	}
	return l.ReturnBps
}

// guardRowDates rejects any fetched row outside the requested range or
// out of order. An out-of-range date is future data reaching a past
// window and aborts the run.
func guardRowDates(rows []contracts.FeatureRow, from, to time.Time) error {
	var prev time.Time
	for _, r := range rows {
		if r.Date.Before(from) || !r.Date.Before(to) {
			return &contracts.LeakageViolationError{
				Detail:   "feature row outside requested range",
				Date:     r.Date,
				Boundary: to,
			}
		}
		if !prev.IsZero() && !prev.Before(r.Date) {
			return fmt.Errorf("feature rows out of order at %s", r.Date.Format("2006-01-02"))
		}
		prev = r.Date
	}
	return nil
}

func guardLabelDates(labels []contracts.Label, from, to time.Time) error {
	var prev time.Time
	for _, l := range labels {
		if l.Date.Before(from) || !l.Date.Before(to) {
			return &contracts.LeakageViolationError{
				Detail:   "label outside requested range",
				Date:     l.Date,
				Boundary: to,
			}
		}
		if !prev.IsZero() && !prev.Before(l.Date) {
			return fmt.Errorf("labels out of order at %s", l.Date.Format("2006-01-02"))
		}
		prev = l.Date
	}
	return nil
}
