package heads

import (
	"math"
	"sort"
)

// gbm is a gradient-boosted ensemble of depth-1 regression trees
// (stumps). Each round fits a stump to the current pseudo-residuals by
// least squares; for classification the additive score goes through a
// sigmoid. Training has no random component, so determinism needs no
// seed: features are visited in index order and threshold ties break
// toward the first candidate.
type gbm struct {
	task Task

	rounds       int
	learningRate float64
	minLeaf      int
	maxSplits    int

	bias   float64
	stumps []stump
}

type stump struct {
	feature   int
	threshold float64
	left      float64 // value when x[feature] <= threshold
	right     float64
}

func newGBM(hyper map[string]float64, task Task) *gbm {
	return &gbm{
		task:         task,
		rounds:       int(hyperOr(hyper, "rounds", 50)),
		learningRate: hyperOr(hyper, "learning_rate", 0.1),
		minLeaf:      int(hyperOr(hyper, "min_leaf", 5)),
		maxSplits:    int(hyperOr(hyper, "max_splits", 16)),
	}
}

func (g *gbm) Family() string { return "gbm" }

func (g *gbm) Fit(ds Dataset) error {
	if err := checkFit(ds); err != nil {
		return err
	}

	n := ds.Len()
	x := make([][]float64, n)
	for i, row := range ds.X {
		x[i] = sanitize(row)
	}

	g.bias = g.initialBias(ds.Y)
	g.stumps = g.stumps[:0]

	// f holds the current additive score per sample.
	f := make([]float64, n)
	for i := range f {
		f[i] = g.bias
	}

	residuals := make([]float64, n)
	for round := 0; round < g.rounds; round++ {
		for i := range residuals {
			residuals[i] = ds.Y[i] - g.predictTarget(f[i])
		}

		s, ok := g.bestStump(x, residuals)
		if !ok {
			break // no split improves anything; ensemble is done
		}
		g.stumps = append(g.stumps, s)

		for i := range f {
			f[i] += g.learningRate * s.apply(x[i])
			if math.IsNaN(f[i]) || math.IsInf(f[i], 0) {
				return &InvalidScoreError{Round: round}
			}
		}
	}

	return nil
}

func (g *gbm) Score(x []float64) float64 {
	clean := sanitize(x)
	f := g.bias
	for _, s := range g.stumps {
		f += g.learningRate * s.apply(clean)
	}
	return g.predictTarget(f)
}

// predictTarget maps the additive score to the output space.
func (g *gbm) predictTarget(f float64) float64 {
	if g.task == Classification {
		return sigmoid(f)
	}
	return f
}

func (g *gbm) initialBias(y []float64) float64 {
	var sum float64
	for _, v := range y {
		sum += v
	}
	mean := sum / float64(len(y))

	if g.task == Classification {
		// Log-odds of the base rate, bounded away from the poles.
		p := math.Min(math.Max(mean, 1e-6), 1-1e-6)
		return math.Log(p / (1 - p))
	}
	return mean
}

func (s stump) apply(x []float64) float64 {
	if s.feature < len(x) && x[s.feature] <= s.threshold {
		return s.left
	}
	return s.right
}

// bestStump finds the least-squares optimal stump over all features and
// candidate thresholds.
func (g *gbm) bestStump(x [][]float64, residuals []float64) (stump, bool) {
	n := len(residuals)
	var total float64
	for _, r := range residuals {
		total += r
	}

	best := stump{}
	bestGain := 0.0
	found := false

	nf := 0
	if n > 0 {
		nf = len(x[0])
	}

	for j := 0; j < nf; j++ {
		thresholds := g.candidateThresholds(x, j)

		for _, th := range thresholds {
			var leftSum float64
			leftCount := 0
			for i := 0; i < n; i++ {
				if x[i][j] <= th {
					leftSum += residuals[i]
					leftCount++
				}
			}
			rightCount := n - leftCount
			if leftCount < g.minLeaf || rightCount < g.minLeaf {
				continue
			}

			rightSum := total - leftSum
			// SSE reduction of the two-mean fit over the one-mean fit.
			gain := leftSum*leftSum/float64(leftCount) +
				rightSum*rightSum/float64(rightCount) -
				total*total/float64(n)

			if gain > bestGain+1e-12 {
				bestGain = gain
				best = stump{
					feature:   j,
					threshold: th,
					left:      leftSum / float64(leftCount),
					right:     rightSum / float64(rightCount),
				}
				found = true
			}
		}
	}

	return best, found
}

// candidateThresholds returns up to maxSplits midpoints between evenly
// spaced order statistics of feature j.
func (g *gbm) candidateThresholds(x [][]float64, j int) []float64 {
	vals := make([]float64, 0, len(x))
	for _, row := range x {
		vals = append(vals, row[j])
	}
	sort.Float64s(vals)

	// Deduplicate.
	uniq := vals[:0]
	for i, v := range vals {
		if i == 0 || v != uniq[len(uniq)-1] {
			uniq = append(uniq, v)
		}
	}
	if len(uniq) < 2 {
		return nil
	}

	step := 1
	if len(uniq)-1 > g.maxSplits {
		step = (len(uniq) - 1) / g.maxSplits
	}

	out := make([]float64, 0, g.maxSplits)
	for i := step; i < len(uniq); i += step {
		out = append(out, (uniq[i-1]+uniq[i])/2)
	}
	return out
}

// InvalidScoreError reports a non-finite score during boosting.
type InvalidScoreError struct {
	Round int
}

func (e *InvalidScoreError) Error() string {
	return "boosting produced a non-finite score"
}
