package contracts

import "fmt"

// WindowSpec describes one walk-forward iteration: three disjoint,
// chronologically ordered date ranges plus the embargo applied at the
// train/val and val/test boundaries. Created once by the orchestrator
// per iteration and never mutated.
type WindowSpec struct {
	ID          int       `json:"id"`
	Train       DateRange `json:"train"`
	Val         DateRange `json:"val"`
	Test        DateRange `json:"test"`
	EmbargoDays int       `json:"embargo_days"`
}

// Validate checks ordering and disjointness of the three slices.
func (w WindowSpec) Validate() error {
	if w.Train.Empty() || w.Val.Empty() || w.Test.Empty() {
		return fmt.Errorf("window %d: empty slice range", w.ID)
	}
	if w.Train.End.After(w.Val.Start) {
		return fmt.Errorf("window %d: train extends past val start", w.ID)
	}
	if w.Val.End.After(w.Test.Start) {
		return fmt.Errorf("window %d: val extends past test start", w.ID)
	}
	if w.Train.Overlaps(w.Val) || w.Val.Overlaps(w.Test) || w.Train.Overlaps(w.Test) {
		return fmt.Errorf("window %d: overlapping slices", w.ID)
	}
	if w.EmbargoDays < 0 {
		return fmt.Errorf("window %d: negative embargo", w.ID)
	}
	return nil
}

// String formats the window for logs.
func (w WindowSpec) String() string {
	return fmt.Sprintf("window %d [train %s | val %s | test %s, embargo %dd]",
		w.ID, w.Train, w.Val, w.Test, w.EmbargoDays)
}
