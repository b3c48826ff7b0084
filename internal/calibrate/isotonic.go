package calibrate

import "sort"

// Isotonic implements monotone score-to-probability mapping using
// isotonic regression (pool adjacent violators). The fitted curve is a
// piecewise-linear interpolation over the pooled breakpoints, flat
// beyond both ends.
type Isotonic struct {
	scores []float64
	probs  []float64
}

// Fit runs PAV over the outcomes ordered by score.
func (ic *Isotonic) Fit(scores, outcomes []float64) error {
	if err := checkFit(scores, outcomes); err != nil {
		return err
	}

	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	// Each block pools a run of adjacent samples into one fitted value.
	type block struct {
		value  float64
		weight float64
		score  float64 // weighted mean score, used as the breakpoint x
	}

	blocks := make([]block, 0, n)
	for _, i := range order {
		blocks = append(blocks, block{value: outcomes[i], weight: 1, score: scores[i]})

		// Pool while the monotonicity constraint is violated.
		for len(blocks) >= 2 {
			last := len(blocks) - 1
			if blocks[last-1].value <= blocks[last].value {
				break
			}
			a, b := blocks[last-1], blocks[last]
			w := a.weight + b.weight
			blocks[last-1] = block{
				value:  (a.value*a.weight + b.value*b.weight) / w,
				score:  (a.score*a.weight + b.score*b.weight) / w,
				weight: w,
			}
			blocks = blocks[:last]
		}
	}

	ic.scores = make([]float64, len(blocks))
	ic.probs = make([]float64, len(blocks))
	for i, b := range blocks {
		ic.scores[i] = b.score
		ic.probs[i] = clamp01(b.value)
	}
	return nil
}

// Apply maps a score through the fitted curve with linear interpolation
// between breakpoints.
func (ic *Isotonic) Apply(score float64) float64 {
	if len(ic.scores) == 0 {
		return clamp01(score)
	}

	if score <= ic.scores[0] {
		return ic.probs[0]
	}
	last := len(ic.scores) - 1
	if score >= ic.scores[last] {
		return ic.probs[last]
	}

	for i := 1; i <= last; i++ {
		if score <= ic.scores[i] {
			x0, x1 := ic.scores[i-1], ic.scores[i]
			y0, y1 := ic.probs[i-1], ic.probs[i]
			if x1 == x0 {
				return y1
			}
			w := (score - x0) / (x1 - x0)
			return y0 + w*(y1-y0)
		}
	}
	return ic.probs[last]
}

// Method returns "isotonic".
func (ic *Isotonic) Method() string { return "isotonic" }
