package contracts

import (
	"fmt"
	"time"
)

// InsufficientDataError reports a slice too small to fit or calibrate on.
// The orchestrator skips the affected window and continues; the skip is
// recorded in run metadata.
type InsufficientDataError struct {
	What string
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: need %d, got %d", e.What, e.Need, e.Got)
}

// EmptyWindowError reports a window slice with no valid trading days left
// after embargo and missing-label removal. Handled like InsufficientData.
type EmptyWindowError struct {
	WindowID int
	Slice    string
}

func (e *EmptyWindowError) Error() string {
	return fmt.Sprintf("window %d: %s slice is empty", e.WindowID, e.Slice)
}

// LeakageViolationError reports a feature or label dated past the boundary
// it was requested under. This is fatal: the run aborts and is never
// silently recovered.
type LeakageViolationError struct {
	Detail   string
	Date     time.Time
	Boundary time.Time
}

func (e *LeakageViolationError) Error() string {
	return fmt.Sprintf("leakage violation: %s (date %s past boundary %s)",
		e.Detail, e.Date.Format("2006-01-02"), e.Boundary.Format("2006-01-02"))
}

// ModelFitError reports that an underlying head training diverged or
// failed. The orchestrator retries once with fallback hyperparameters and
// then degrades the head to a constant stub.
type ModelFitError struct {
	Modality Modality
	Cause    error
}

func (e *ModelFitError) Error() string {
	return fmt.Sprintf("model fit failed for %s head: %v", e.Modality, e.Cause)
}

func (e *ModelFitError) Unwrap() error { return e.Cause }

// InvariantError reports a broken internal invariant (non-convex fused
// weights, mutated artifacts). Always a bug, never an input problem.
type InvariantError struct {
	Invariant string
}

func (e *InvariantError) Error() string {
	return "invariant violated: " + e.Invariant
}
