package featurestore

import (
	"math"
	"math/rand"
	"time"

	"github.com/minsuk/triblend/internal/contracts"
)

// SyntheticOptions controls the generated history.
type SyntheticOptions struct {
	Start  time.Time
	Months int
	Seed   int64
	// ZeroModality, when set, zeroes every feature of that modality so
	// degradation paths can be exercised.
	ZeroModality contracts.Modality
}

// Synthetic generates a deterministic weekday series with the default
// feature names: a latent daily drift drives both the price features
// and the next-day label, news/social sentiment carry a diluted copy of
// the same drift, and the gate inputs spike on random busy days.
func Synthetic(opts SyntheticOptions) *Memory {
	rng := rand.New(rand.NewSource(opts.Seed))

	start := contracts.Day(opts.Start)
	end := start.AddDate(0, opts.Months, 0)

	var rows []contracts.FeatureRow
	var labels []contracts.Label

	ret1 := 0.0

	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}

		drift := rng.NormFloat64() * 0.004
		momentum := 0.3 * ret1
		next := drift + momentum + rng.NormFloat64()*0.002

		busyNews := rng.Float64() < 0.25
		busySoc := rng.Float64() < 0.25

		values := map[string]float64{
			"ret_1d":   ret1,
			"ret_5d":   ret1 * 3,
			"ret_20d":  ret1 * 8,
			"vol_20d":  0.01 + math.Abs(ret1)*2,
			"range_1d": math.Abs(rng.NormFloat64() * 0.01),

			"news_sent_mean": clamp11(next*40 + rng.NormFloat64()*0.4),
			"news_sent_disp": rng.Float64(),
			"news_count":     pickCount(busyNews, rng),

			"soc_sent_mean": clamp11(next*30 + rng.NormFloat64()*0.5),
			"soc_sent_disp": rng.Float64(),
			"soc_volume":    pickCount(busySoc, rng),
		}

		if opts.ZeroModality != "" {
			for _, name := range modalityFeatures(opts.ZeroModality) {
				values[name] = 0
			}
		}

		rows = append(rows, contracts.FeatureRow{Date: d, Values: values})

		labels = append(labels, contracts.Label{
			Date:      d,
			Direction: next > 0,
			ReturnBps: next * 10000,
			Basis:     contracts.BasisETF,
		})

		ret1 = next
	}

	return NewMemory(rows, labels)
}

func modalityFeatures(m contracts.Modality) []string {
	switch m {
	case contracts.ModalityPrice:
		return []string{"ret_1d", "ret_5d", "ret_20d", "vol_20d", "range_1d"}
	case contracts.ModalityNews:
		return []string{"news_sent_mean", "news_sent_disp", "news_count"}
	case contracts.ModalitySocial:
		return []string{"soc_sent_mean", "soc_sent_disp", "soc_volume"}
	}
	return nil
}

func pickCount(busy bool, rng *rand.Rand) float64 {
	if busy {
		return 50 + rng.Float64()*100
	}
	return rng.Float64() * 10
}

func clamp11(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
