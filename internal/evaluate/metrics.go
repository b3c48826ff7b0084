// Package evaluate computes the prediction-quality metrics recorded per
// window and used for validation-time model selection. Test metrics are
// recorded for audit only; nothing in the pipeline selects on them.
package evaluate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/minsuk/triblend/internal/contracts"
)

// epsilon keeps log-loss finite for saturated probabilities.
const epsilon = 1e-12

// Slice computes the full metric set for one window slice. preds and
// labels are aligned by index; direction labels feed the classification
// metrics, return_bps feeds IC and RMSE.
func Slice(preds []float64, labels []contracts.Label) contracts.WindowMetrics {
	n := len(preds)
	m := contracts.WindowMetrics{Samples: n}
	if n == 0 {
		return m
	}

	dirs := make([]float64, n)
	rets := make([]float64, n)
	for i, l := range labels {
		if l.Direction {
			dirs[i] = 1
		}
		rets[i] = l.ReturnBps
	}

	m.LogLoss = LogLoss(preds, dirs)
	m.Brier = Brier(preds, dirs)
	m.AUC = AUC(preds, dirs)
	m.HitRate = HitRate(preds, dirs)
	m.IC = IC(preds, rets)
	m.RMSE = RMSE(preds, rets)
	return m
}

// LogLoss is the mean negative log-likelihood of binary outcomes.
func LogLoss(probs, outcomes []float64) float64 {
	var sum float64
	for i, p := range probs {
		p = clampProb(p)
		if outcomes[i] > 0.5 {
			sum -= math.Log(p)
		} else {
			sum -= math.Log(1 - p)
		}
	}
	return sum / float64(len(probs))
}

// Brier is the mean squared probability error.
func Brier(probs, outcomes []float64) float64 {
	var sum float64
	for i, p := range probs {
		d := p - outcomes[i]
		sum += d * d
	}
	return sum / float64(len(probs))
}

// AUC is the probability a random positive outranks a random negative,
// computed via the rank-sum formulation with tie correction.
func AUC(scores, outcomes []float64) float64 {
	ranks := rankAverage(scores)

	var posRankSum float64
	var nPos, nNeg float64
	for i, o := range outcomes {
		if o > 0.5 {
			posRankSum += ranks[i]
			nPos++
		} else {
			nNeg++
		}
	}
	if nPos == 0 || nNeg == 0 {
		return 0.5
	}
	return (posRankSum - nPos*(nPos+1)/2) / (nPos * nNeg)
}

// HitRate is the fraction of days where sign(pred-0.5) matches direction.
func HitRate(probs, outcomes []float64) float64 {
	var hits float64
	for i, p := range probs {
		predUp := p > 0.5
		actualUp := outcomes[i] > 0.5
		if predUp == actualUp {
			hits++
		}
	}
	return hits / float64(len(probs))
}

// IC is the information coefficient: Spearman rank correlation between
// the predicted score and the realized next-period return.
func IC(scores, returns []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	rs := rankAverage(scores)
	rr := rankAverage(returns)
	ic := stat.Correlation(rs, rr, nil)
	if math.IsNaN(ic) {
		return 0
	}
	return ic
}

// RMSE is the root mean squared error of predictions against returns,
// meaningful for the regression objective.
func RMSE(preds, returns []float64) float64 {
	var ss float64
	for i, p := range preds {
		d := p - returns[i]
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(preds)))
}

// rankAverage assigns 1-based ranks with ties sharing their average rank.
func rankAverage(xs []float64) []float64 {
	n := len(xs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j+1 < n && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		// Average rank across the tie group [i, j].
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

func clampProb(p float64) float64 {
	if p < epsilon {
		return epsilon
	}
	if p > 1-epsilon {
		return 1 - epsilon
	}
	return p
}
