package contracts

import (
	"context"
	"time"
)

// FeatureRepository reads the curated dated feature table produced by the
// upstream ingestion pipeline. Implementations must return rows and labels
// sorted by date ascending; the orchestrator re-checks every returned date
// against the requested range and treats an out-of-range record as a fatal
// LeakageViolationError.
type FeatureRepository interface {
	// Rows returns one FeatureRow per trading day in [from, to).
	Rows(ctx context.Context, from, to time.Time) ([]FeatureRow, error)
	// Labels returns the labels available in [from, to). Days without a
	// well-formed label are simply absent.
	Labels(ctx context.Context, from, to time.Time) ([]Label, error)
}

// ArtifactRepository persists walk-forward artifacts under a run_id
// namespace. Writes are write-once; SaveWindow for an existing
// (run_id, window_id) pair must not overwrite the prior artifact.
type ArtifactRepository interface {
	SaveWindow(ctx context.Context, a *WindowArtifact) error
	// HasWindow reports whether an artifact already exists for the triple,
	// which lets an interrupted backfill resume without recomputation.
	HasWindow(ctx context.Context, runID string, windowID int, inputHash string) (bool, error)
	GetWindow(ctx context.Context, runID string, windowID int) (*WindowArtifact, error)
	ListWindows(ctx context.Context, runID string) ([]*WindowArtifact, error)

	SaveRunMeta(ctx context.Context, meta *RunMeta) error
	GetRunMeta(ctx context.Context, runID string) (*RunMeta, error)
}
