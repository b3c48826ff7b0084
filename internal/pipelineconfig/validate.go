package pipelineconfig

import (
	"fmt"
	"math"

	"github.com/minsuk/triblend/internal/contracts"
)

// ValidationError is a config constraint failure. It aborts startup;
// nothing downstream ever sees a half-valid config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every required constraint. Called by Load; callers
// constructing configs programmatically must call it themselves.
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.PipelineID == "" {
		return ValidationError{"meta.pipeline_id", "required"}
	}

	// === Data ===
	switch cfg.Data.LabelBasis {
	case contracts.BasisETF, contracts.BasisExcess:
	default:
		return ValidationError{"data.label_basis", "must be ETF or EXCESS"}
	}
	switch cfg.Data.Objective {
	case ObjectiveClassification, ObjectiveRegression:
	default:
		return ValidationError{"data.objective", "must be classification or regression"}
	}
	if cfg.Data.MinTrainSamples <= 0 {
		return ValidationError{"data.min_train_samples", "must be > 0"}
	}
	if cfg.Data.MinValSamples <= 0 {
		return ValidationError{"data.min_val_samples", "must be > 0"}
	}

	// === Windows ===
	if cfg.Windows.TrainMonths <= 0 {
		return ValidationError{"windows.train_months", "must be > 0"}
	}
	if cfg.Windows.ValMonths <= 0 {
		return ValidationError{"windows.val_months", "must be > 0"}
	}
	if cfg.Windows.TestMonths <= 0 {
		return ValidationError{"windows.test_months", "must be > 0"}
	}
	if cfg.Windows.RollStepMonths <= 0 {
		return ValidationError{"windows.roll_step_months", "must be > 0"}
	}
	if cfg.Windows.EmbargoDays < 0 {
		return ValidationError{"windows.embargo_days", "must be >= 0"}
	}

	// === Standardizer ===
	if cfg.Standardizer.Window <= 1 {
		return ValidationError{"standardizer.window", "must be > 1"}
	}
	if cfg.Standardizer.Clip <= 0 {
		return ValidationError{"standardizer.clip", "must be > 0"}
	}

	// === Features ===
	for _, m := range contracts.Modalities {
		if len(cfg.Features.ForModality(m)) == 0 {
			return ValidationError{"features." + string(m), "at least one feature required"}
		}
	}
	for name, kind := range cfg.Features.Kinds {
		switch kind {
		case contracts.RawKind, contracts.BoundedKind, contracts.BinaryKind, contracts.ZScoreKind:
		default:
			return ValidationError{"features.kinds." + name, "unknown feature kind"}
		}
	}

	// === Gates ===
	if cfg.Gates.News.Intensity == "" || cfg.Gates.News.Novelty == "" {
		return ValidationError{"gates.news", "intensity and novelty features required"}
	}
	if cfg.Gates.Social.Intensity == "" || cfg.Gates.Social.Novelty == "" {
		return ValidationError{"gates.social", "intensity and novelty features required"}
	}

	// === Heads ===
	for _, m := range contracts.Modalities {
		spec := cfg.Heads.ForModality(m)
		if err := validateHeadSpec(string(m), spec); err != nil {
			return err
		}
	}

	// === Fusion ===
	p := cfg.Fusion.WeightPrior
	if p.Price < 0 || p.News < 0 || p.Social < 0 {
		return ValidationError{"fusion.weight_prior", "weights must be non-negative"}
	}
	if math.Abs(p.Price+p.News+p.Social-1.0) > 1e-6 {
		return ValidationError{"fusion.weight_prior", fmt.Sprintf("weights must sum to 1, got %.6f", p.Price+p.News+p.Social)}
	}
	if cfg.Fusion.GateAlphaL2 < 0 {
		return ValidationError{"fusion.gate_alpha_l2", "must be >= 0"}
	}
	if cfg.Fusion.GateBetaL1 < 0 {
		return ValidationError{"fusion.gate_beta_l1", "must be >= 0"}
	}
	if cfg.Fusion.GateBetaMax <= 0 || cfg.Fusion.GateBetaMax > 1.0 {
		// beta > 1 with a gate at the 0.95 training clip would let the
		// price tilt factor go negative and break weight convexity.
		return ValidationError{"fusion.gate_beta_max", "must be in (0, 1]"}
	}
	if cfg.Fusion.MaxIterations <= 0 {
		return ValidationError{"fusion.max_iterations", "must be > 0"}
	}

	// === Calibration ===
	switch cfg.Calibration.Method {
	case CalibrationNone, CalibrationPlatt, CalibrationIsotonic:
	default:
		return ValidationError{"calibration.method", "must be none, platt, or isotonic"}
	}

	return nil
}

func validateHeadSpec(modality string, spec HeadSpec) error {
	field := "heads." + modality
	switch spec.Family {
	case "gbm", "mlp":
	default:
		return ValidationError{field + ".family", "must be gbm or mlp"}
	}
	if len(spec.Grid) == 0 {
		return ValidationError{field + ".grid", "at least one grid axis required"}
	}
	for axis, values := range spec.Grid {
		if len(values) == 0 {
			return ValidationError{field + ".grid." + axis, "empty grid axis"}
		}
	}
	if spec.MaxCandidates <= 0 {
		return ValidationError{field + ".max_candidates", "must be > 0"}
	}
	return nil
}
