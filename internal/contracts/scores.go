package contracts

import (
	"math"
	"time"
)

// Modality identifies one of the three per-modality scoring heads.
type Modality string

const (
	ModalityPrice  Modality = "price"
	ModalityNews   Modality = "news"
	ModalitySocial Modality = "social"
)

// Modalities lists the heads in their canonical order: price, news, social.
// Everything that iterates heads uses this order so runs are reproducible.
var Modalities = [3]Modality{ModalityPrice, ModalityNews, ModalitySocial}

// HeadScore is one head's output for one day inside one window. Calibrated
// is nil when calibration was skipped or forbidden (train slice).
type HeadScore struct {
	Date       time.Time `json:"date"`
	Modality   Modality  `json:"modality"`
	Raw        float64   `json:"raw_score"`
	Calibrated *float64  `json:"calibrated_score,omitempty"`
}

// Value returns the calibrated score when present, otherwise the raw score.
func (s HeadScore) Value() float64 {
	if s.Calibrated != nil {
		return *s.Calibrated
	}
	return s.Raw
}

// GateActivation is a [0,1] activation derived purely from that day's
// FeatureRow, used to tilt the blend toward a text modality.
type GateActivation struct {
	Date  time.Time `json:"date"`
	Gate  string    `json:"gate_name"`
	Value float64   `json:"value"`
}

// FusionParams holds the per-window blend parameters, fit once on the
// validation slice and frozen for scoring that window.
type FusionParams struct {
	WPrice  float64 `json:"w_price"`
	WNews   float64 `json:"w_news"`
	WSocial float64 `json:"w_social"`

	AlphaNews   [3]float64 `json:"alpha_news"`
	AlphaSocial [3]float64 `json:"alpha_social"`

	BetaNews   float64 `json:"beta_news"`
	BetaSocial float64 `json:"beta_social"`
}

// Validate checks the simplex and non-negativity constraints.
func (p FusionParams) Validate() error {
	if p.WPrice < 0 || p.WNews < 0 || p.WSocial < 0 {
		return &InvariantError{Invariant: "fusion weights must be non-negative"}
	}
	if math.Abs(p.WPrice+p.WNews+p.WSocial-1) > 1e-9 {
		return &InvariantError{Invariant: "fusion weights must sum to 1"}
	}
	if p.BetaNews < 0 || p.BetaSocial < 0 {
		return &InvariantError{Invariant: "gate betas must be non-negative"}
	}
	return nil
}

// FusedPrediction is one unit of the out-of-sample output series. Exactly
// one exists per date across the concatenated series.
type FusedPrediction struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	WindowID int       `json:"window_id"`
}
