package walkforward

import (
	"sort"

	"github.com/minsuk/triblend/internal/contracts"
)

// Concatenate stitches the per-window test predictions into the single
// out-of-sample series. Windows are processed in ID order; the merged
// series must be strictly increasing in date with no day claimed by two
// windows, otherwise the artifacts are inconsistent and the run result
// cannot be trusted.
func Concatenate(artifacts []*contracts.WindowArtifact) ([]contracts.FusedPrediction, error) {
	sorted := append([]*contracts.WindowArtifact(nil), artifacts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].WindowID < sorted[j].WindowID })

	var out []contracts.FusedPrediction
	for _, a := range sorted {
		for _, p := range a.TestPredictions {
			if n := len(out); n > 0 && !out[n-1].Date.Before(p.Date) {
				return nil, &contracts.InvariantError{
					Invariant: "concatenated predictions must be strictly increasing in date, " +
						"duplicate or out-of-order day " + p.Date.Format("2006-01-02"),
				}
			}
			out = append(out, p)
		}
	}
	return out, nil
}
