package contracts

import "time"

// WindowMetrics summarizes prediction quality on one slice of one window.
type WindowMetrics struct {
	Samples int     `json:"samples"`
	LogLoss float64 `json:"log_loss"`
	Brier   float64 `json:"brier"`
	AUC     float64 `json:"auc"`
	HitRate float64 `json:"hit_rate"`
	IC      float64 `json:"ic"`
	RMSE    float64 `json:"rmse"`
}

// HeadReport records what happened to one head inside one window: the
// model family actually used, the hyperparameters chosen on validation
// loss, and whether the head degraded to a constant stub.
type HeadReport struct {
	Modality   Modality           `json:"modality"`
	Family     string             `json:"family"`
	Hyper      map[string]float64 `json:"hyper,omitempty"`
	ValLoss    float64            `json:"val_loss"`
	Degraded   bool               `json:"degraded"`
	Calibrated bool               `json:"calibrated"`
}

// WindowArtifact is everything one walk-forward iteration produces.
// Artifacts are immutable: a (RunID, WindowID, InputHash) triple is
// written exactly once; re-runs with the same triple skip recomputation.
type WindowArtifact struct {
	RunID     string     `json:"run_id"`
	WindowID  int        `json:"window_id"`
	Spec      WindowSpec `json:"spec"`
	InputHash string     `json:"input_hash"`
	Seed      int64      `json:"seed"`

	Heads        []HeadReport `json:"heads"`
	Fusion       FusionParams `json:"fusion"`
	FusionFromPrior bool      `json:"fusion_from_prior"`

	ValMetrics  WindowMetrics `json:"val_metrics"`
	TestMetrics WindowMetrics `json:"test_metrics"`

	// TestPredictions feeds CONCATENATE; ValPredictions is kept for audit.
	TestPredictions []FusedPrediction `json:"test_predictions"`
	ValPredictions  []FusedPrediction `json:"val_predictions,omitempty"`

	// Degradations lists every non-fatal fallback taken in this window.
	Degradations []string `json:"degradations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// SkippedWindow records a window that produced no artifact and why.
type SkippedWindow struct {
	WindowID int    `json:"window_id"`
	Reason   string `json:"reason"`
}

// RunMeta is the run-level record: one per run_id, written when the run
// finishes (successfully or not).
type RunMeta struct {
	RunID      string          `json:"run_id"`
	ConfigHash string          `json:"config_hash"`
	Seed       int64           `json:"seed"`
	GitSHA     string          `json:"git_sha,omitempty"`
	History    DateRange       `json:"history"`
	Windows    int             `json:"windows"`
	Completed  []int           `json:"completed"`
	Skipped    []SkippedWindow `json:"skipped,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
}
