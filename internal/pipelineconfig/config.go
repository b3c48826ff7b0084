package pipelineconfig

import "github.com/minsuk/triblend/internal/contracts"

// Config is the full pipeline configuration: walk-forward geometry,
// feature wiring, head model families, fusion priors and penalties.
// Loaded once, validated once, hashed once; the hash namespaces run
// artifacts so a config change can never silently reuse stale windows.
type Config struct {
	Meta         Meta         `yaml:"meta" json:"meta"`
	Data         Data         `yaml:"data" json:"data"`
	Windows      Windows      `yaml:"windows" json:"windows"`
	Standardizer Standardizer `yaml:"standardizer" json:"standardizer"`
	Features     Features     `yaml:"features" json:"features"`
	Gates        Gates        `yaml:"gates" json:"gates"`
	Heads        Heads        `yaml:"heads" json:"heads"`
	Fusion       Fusion       `yaml:"fusion" json:"fusion"`
	Calibration  Calibration  `yaml:"calibration" json:"calibration"`
	Seed         int64        `yaml:"seed" json:"seed"`
}

// Meta identifies the pipeline.
type Meta struct {
	PipelineID string `yaml:"pipeline_id" json:"pipeline_id"`
	Version    string `yaml:"version" json:"version"`
}

// Data describes labeling and minimum sample requirements.
type Data struct {
	LabelBasis            contracts.LabelBasis `yaml:"label_basis" json:"label_basis"`
	Objective             string               `yaml:"objective" json:"objective"` // classification | regression
	MinTrainSamples       int                  `yaml:"min_train_samples" json:"min_train_samples"`
	MinValSamples         int                  `yaml:"min_val_samples" json:"min_val_samples"`
	MinCalibrationSamples int                  `yaml:"min_calibration_samples" json:"min_calibration_samples"`
}

// Windows is the walk-forward geometry.
type Windows struct {
	TrainMonths    int `yaml:"train_months" json:"train_months"`
	ValMonths      int `yaml:"val_months" json:"val_months"`
	TestMonths     int `yaml:"test_months" json:"test_months"`
	RollStepMonths int `yaml:"roll_step_months" json:"roll_step_months"`
	EmbargoDays    int `yaml:"embargo_days" json:"embargo_days"`
}

// Standardizer configures the rolling z-score transform.
type Standardizer struct {
	Window int     `yaml:"window" json:"window"`
	Clip   float64 `yaml:"clip" json:"clip"`
}

// Features wires feature names to modalities. Kinds marks features that
// bypass standardization; anything not listed is treated as raw.
type Features struct {
	Price  []string                           `yaml:"price" json:"price"`
	News   []string                           `yaml:"news" json:"news"`
	Social []string                           `yaml:"social" json:"social"`
	Kinds  map[string]contracts.FeatureKind   `yaml:"kinds" json:"kinds"`
}

// ForModality returns the feature names of one modality.
func (f Features) ForModality(m contracts.Modality) []string {
	switch m {
	case contracts.ModalityPrice:
		return f.Price
	case contracts.ModalityNews:
		return f.News
	case contracts.ModalitySocial:
		return f.Social
	}
	return nil
}

// Kind returns the declared kind of a feature, defaulting to raw.
func (f Features) Kind(name string) contracts.FeatureKind {
	if k, ok := f.Kinds[name]; ok {
		return k
	}
	return contracts.RawKind
}

// GateInputs names the two same-day features feeding one gate.
type GateInputs struct {
	Intensity string `yaml:"intensity" json:"intensity"`
	Novelty   string `yaml:"novelty" json:"novelty"`
}

// Gates wires the news and social activity gates.
type Gates struct {
	News   GateInputs `yaml:"news" json:"news"`
	Social GateInputs `yaml:"social" json:"social"`
}

// HeadSpec selects a model family and its hyperparameter grid for one
// head. Grid axes are family-specific; the search is a full cross
// product capped by MaxCandidates.
type HeadSpec struct {
	Family        string               `yaml:"family" json:"family"` // gbm | mlp
	Grid          map[string][]float64 `yaml:"grid" json:"grid"`
	MaxCandidates int                  `yaml:"max_candidates" json:"max_candidates"`
}

// Heads holds one spec per modality.
type Heads struct {
	Price  HeadSpec `yaml:"price" json:"price"`
	News   HeadSpec `yaml:"news" json:"news"`
	Social HeadSpec `yaml:"social" json:"social"`
}

// ForModality returns the head spec of one modality.
func (h Heads) ForModality(m contracts.Modality) HeadSpec {
	switch m {
	case contracts.ModalityPrice:
		return h.Price
	case contracts.ModalityNews:
		return h.News
	}
	return h.Social
}

// WeightPrior is the starting point (and non-convergence fallback) for
// the fusion weights.
type WeightPrior struct {
	Price  float64 `yaml:"price" json:"price"`
	News   float64 `yaml:"news" json:"news"`
	Social float64 `yaml:"social" json:"social"`
}

// Fusion configures the blend fit.
type Fusion struct {
	WeightPrior   WeightPrior `yaml:"weight_prior" json:"weight_prior"`
	GateAlphaL2   float64     `yaml:"gate_alpha_l2" json:"gate_alpha_l2"`
	GateBetaL1    float64     `yaml:"gate_beta_l1" json:"gate_beta_l1"`
	GateBetaMax   float64     `yaml:"gate_beta_max" json:"gate_beta_max"`
	MaxIterations int         `yaml:"max_iterations" json:"max_iterations"`
}

// Calibration selects the score-to-probability remapping.
type Calibration struct {
	Method string `yaml:"method" json:"method"` // none | platt | isotonic
}

// Default returns a fully populated configuration with the documented
// defaults. Tests and the synthetic scenario runs start from this.
func Default() *Config {
	return &Config{
		Meta: Meta{PipelineID: "etf_fusion", Version: "1"},
		Data: Data{
			LabelBasis:            contracts.BasisETF,
			Objective:             ObjectiveClassification,
			MinTrainSamples:       120,
			MinValSamples:         10,
			MinCalibrationSamples: 30,
		},
		Windows: Windows{
			TrainMonths:    12,
			ValMonths:      1,
			TestMonths:     1,
			RollStepMonths: 1,
			EmbargoDays:    1,
		},
		Standardizer: Standardizer{Window: 60, Clip: 4.0},
		Features: Features{
			Price:  []string{"ret_1d", "ret_5d", "ret_20d", "vol_20d", "range_1d"},
			News:   []string{"news_sent_mean", "news_sent_disp", "news_count"},
			Social: []string{"soc_sent_mean", "soc_sent_disp", "soc_volume"},
			Kinds: map[string]contracts.FeatureKind{
				"news_sent_mean": contracts.BoundedKind,
				"soc_sent_mean":  contracts.BoundedKind,
			},
		},
		Gates: Gates{
			News:   GateInputs{Intensity: "news_count", Novelty: "news_sent_disp"},
			Social: GateInputs{Intensity: "soc_volume", Novelty: "soc_sent_disp"},
		},
		Heads: Heads{
			Price: HeadSpec{
				Family: "gbm",
				Grid: map[string][]float64{
					"rounds":        {50, 100},
					"learning_rate": {0.05, 0.1},
				},
				MaxCandidates: 8,
			},
			News: HeadSpec{
				Family: "mlp",
				Grid: map[string][]float64{
					"hidden":        {4, 8},
					"learning_rate": {0.05},
					"epochs":        {200},
				},
				MaxCandidates: 8,
			},
			Social: HeadSpec{
				Family: "gbm",
				Grid: map[string][]float64{
					"rounds":        {50},
					"learning_rate": {0.1},
				},
				MaxCandidates: 8,
			},
		},
		Fusion: Fusion{
			WeightPrior:   WeightPrior{Price: 0.6, News: 0.2, Social: 0.2},
			GateAlphaL2:   0.01,
			GateBetaL1:    0.001,
			GateBetaMax:   1.0,
			MaxIterations: 200,
		},
		Calibration: Calibration{Method: "platt"},
		Seed:        42,
	}
}

// Objective values.
const (
	ObjectiveClassification = "classification"
	ObjectiveRegression     = "regression"
)

// Calibration methods.
const (
	CalibrationNone     = "none"
	CalibrationPlatt    = "platt"
	CalibrationIsotonic = "isotonic"
)
