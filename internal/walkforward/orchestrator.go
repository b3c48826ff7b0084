package walkforward

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/minsuk/triblend/internal/calibrate"
	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/evaluate"
	"github.com/minsuk/triblend/internal/fusion"
	"github.com/minsuk/triblend/internal/heads"
	"github.com/minsuk/triblend/internal/pipelineconfig"
	"github.com/minsuk/triblend/pkg/logger"
)

// Orchestrator coordinates the walk-forward protocol end to end.
// Windows are independent given the partition, so they run in parallel
// up to the configured limit; the concatenation at the end is the only
// cross-window step.
type Orchestrator struct {
	features  contracts.FeatureRepository
	artifacts contracts.ArtifactRepository
	cfg       *pipelineconfig.Config
	log       *logger.Logger
}

// NewOrchestrator creates an orchestrator over the given repositories.
func NewOrchestrator(features contracts.FeatureRepository, artifacts contracts.ArtifactRepository,
	cfg *pipelineconfig.Config, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		features:  features,
		artifacts: artifacts,
		cfg:       cfg,
		log:       log,
	}
}

// RunOptions parameterizes one backfill run.
type RunOptions struct {
	RunID   string
	History contracts.DateRange
	GitSHA  string
	// Parallelism bounds concurrent windows; 0 or 1 runs sequentially.
	Parallelism int
}

// RunResult is the outcome of a run: the run record plus the
// concatenated out-of-sample prediction series.
type RunResult struct {
	Meta        *contracts.RunMeta
	Predictions []contracts.FusedPrediction
}

// Run executes the full walk-forward protocol. Windows whose artifact
// already exists for this config hash are skipped, so an interrupted
// run resumes where it stopped. A leakage violation in any window
// aborts the whole run.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if err := pipelineconfig.Validate(o.cfg); err != nil {
		return nil, err
	}
	hash, err := pipelineconfig.Hash(o.cfg)
	if err != nil {
		return nil, fmt.Errorf("hash config: %w", err)
	}

	specs, err := Partition(opts.History, o.cfg.Windows)
	if err != nil {
		return nil, err
	}

	meta := &contracts.RunMeta{
		RunID:      opts.RunID,
		ConfigHash: hash,
		Seed:       o.cfg.Seed,
		GitSHA:     opts.GitSHA,
		History:    opts.History,
		Windows:    len(specs),
		StartedAt:  time.Now().UTC(),
	}

	o.log.WithFields(map[string]interface{}{
		"run_id":  opts.RunID,
		"windows": len(specs),
		"history": opts.History.String(),
		"hash":    hash[:12],
	}).Info("walk-forward run starting")

	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for _, spec := range specs {
		spec := spec
		g.Go(func() error {
			skipped, err := o.runWindow(gctx, opts.RunID, hash, spec)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if skipped != nil {
				meta.Skipped = append(meta.Skipped, *skipped)
			} else {
				meta.Completed = append(meta.Completed, spec.ID)
			}
			return nil
		})
	}

	runErr := g.Wait()

	meta.FinishedAt = time.Now().UTC()
	meta.Success = runErr == nil
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	sortInts(meta.Completed)
	sortSkipped(meta.Skipped)

	if err := o.artifacts.SaveRunMeta(ctx, meta); err != nil {
		o.log.WithError(err).Error("save run meta failed")
	}
	if runErr != nil {
		return &RunResult{Meta: meta}, runErr
	}

	stored, err := o.artifacts.ListWindows(ctx, opts.RunID)
	if err != nil {
		return &RunResult{Meta: meta}, err
	}
	preds, err := Concatenate(stored)
	if err != nil {
		return &RunResult{Meta: meta}, err
	}

	o.log.WithFields(map[string]interface{}{
		"run_id":      opts.RunID,
		"completed":   len(meta.Completed),
		"skipped":     len(meta.Skipped),
		"predictions": len(preds),
	}).Info("walk-forward run finished")

	return &RunResult{Meta: meta, Predictions: preds}, nil
}

// runWindow drives one window through the full per-window pipeline.
// A nil, nil return means the window completed (freshly or resumed);
// a non-nil SkippedWindow means it was skipped for a recoverable
// reason; an error aborts the run.
func (o *Orchestrator) runWindow(ctx context.Context, runID, hash string,
	spec contracts.WindowSpec) (*contracts.SkippedWindow, error) {

	log := o.log.WithFields(map[string]interface{}{
		"run_id": runID,
		"window": spec.ID,
	})

	done, err := o.artifacts.HasWindow(ctx, runID, spec.ID, hash)
	if err != nil {
		return nil, fmt.Errorf("window %d: resume check: %w", spec.ID, err)
	}
	if done {
		log.Info("window artifact exists, resuming past it")
		return nil, nil
	}

	artifact, err := o.computeWindow(ctx, spec, log)
	if err != nil {
		if recoverable(err) {
			log.WithError(err).Warn("window skipped")
			return &contracts.SkippedWindow{WindowID: spec.ID, Reason: err.Error()}, nil
		}
		return nil, fmt.Errorf("window %d: %w", spec.ID, err)
	}

	artifact.RunID = runID
	artifact.InputHash = hash
	if err := o.artifacts.SaveWindow(ctx, artifact); err != nil {
		return nil, fmt.Errorf("window %d: save artifact: %w", spec.ID, err)
	}
	return nil, nil
}

// recoverable classifies window-level failures: thin or empty slices
// skip the window, anything else (leakage above all) aborts the run.
func recoverable(err error) bool {
	var insufficient *contracts.InsufficientDataError
	var empty *contracts.EmptyWindowError
	return errors.As(err, &insufficient) || errors.As(err, &empty)
}

// computeWindow runs assembly, head training, calibration, fusion
// fitting and scoring for one window.
func (o *Orchestrator) computeWindow(ctx context.Context, spec contracts.WindowSpec,
	log *logger.Logger) (*contracts.WindowArtifact, error) {

	data, err := assemble(ctx, o.features, o.cfg, spec)
	if err != nil {
		return nil, err
	}
	if len(data.train) < o.cfg.Data.MinTrainSamples {
		return nil, &contracts.InsufficientDataError{
			What: "train slice", Need: o.cfg.Data.MinTrainSamples, Got: len(data.train),
		}
	}
	if len(data.val) < o.cfg.Data.MinValSamples {
		return nil, &contracts.InsufficientDataError{
			What: "val slice", Need: o.cfg.Data.MinValSamples, Got: len(data.val),
		}
	}

	artifact := &contracts.WindowArtifact{
		WindowID:  spec.ID,
		Spec:      spec,
		Seed:      o.cfg.Seed,
		CreatedAt: time.Now().UTC(),
	}

	// Heads train independently in the canonical modality order.
	models := make(map[contracts.Modality]heads.Model, len(contracts.Modalities))
	for _, m := range contracts.Modalities {
		model, report, notes := o.trainHead(m, spec, data, log)
		models[m] = model
		artifact.Heads = append(artifact.Heads, report)
		artifact.Degradations = append(artifact.Degradations, notes...)
	}

	valScores := o.scoreHeads(models, data.val)
	testScores := o.scoreHeads(models, data.test)

	// Calibrators are fit on the validation slice only.
	if o.calibrating() {
		for i, m := range contracts.Modalities {
			cal, err := calibrate.New(o.cfg.Calibration.Method)
			if err != nil {
				return nil, err
			}
			outcomes := make([]float64, len(data.val))
			for j, s := range data.val {
				outcomes[j] = target(s.label, o.cfg.Data.Objective)
			}
			if len(data.val) < o.cfg.Data.MinCalibrationSamples {
				artifact.Degradations = append(artifact.Degradations,
					fmt.Sprintf("window %d %s: calibration skipped, %d val samples", spec.ID, m, len(data.val)))
				continue
			}
			if err := cal.Fit(valScores[m], outcomes); err != nil {
				if !recoverableCalibration(err) {
					return nil, err
				}
				artifact.Degradations = append(artifact.Degradations,
					fmt.Sprintf("window %d %s: calibration failed: %v", spec.ID, m, err))
				continue
			}
			applyCalibrator(cal, valScores[m])
			applyCalibrator(cal, testScores[m])
			artifact.Heads[i].Calibrated = true
		}
	}

	// The blend is fit on the validation slice and frozen.
	fitRes, fitErr := fusion.Fit(o.fusionSamples(data.val, valScores), o.cfg.Fusion,
		o.cfg.Data.Objective, o.cfg.Data.MinValSamples)
	if fitErr != nil {
		var insufficient *contracts.InsufficientDataError
		if !errors.As(fitErr, &insufficient) {
			return nil, fitErr
		}
		artifact.Degradations = append(artifact.Degradations,
			fmt.Sprintf("window %d: fusion fit on prior: %v", spec.ID, fitErr))
	}
	if !fitRes.Converged {
		artifact.FusionFromPrior = true
	}
	artifact.Fusion = fitRes.Params

	combiner := fusion.NewCombiner(fitRes.Params)
	valPreds := o.scoreFusion(combiner, spec.ID, data.val, valScores)
	testPreds := o.scoreFusion(combiner, spec.ID, data.test, testScores)

	artifact.ValMetrics = evaluate.Slice(values(valPreds), labels(data.val))
	artifact.TestMetrics = evaluate.Slice(values(testPreds), labels(data.test))
	artifact.ValPredictions = valPreds
	artifact.TestPredictions = testPreds

	log.WithFields(map[string]interface{}{
		"test_days":    len(testPreds),
		"test_logloss": artifact.TestMetrics.LogLoss,
		"from_prior":   artifact.FusionFromPrior,
	}).Info("window complete")

	return artifact, nil
}

// trainHead fits one modality head: grid search first, one retry on
// conservative hyperparameters, then a constant stub. Training never
// fails the window.
func (o *Orchestrator) trainHead(m contracts.Modality, spec contracts.WindowSpec,
	data *windowData, log *logger.Logger) (heads.Model, contracts.HeadReport, []string) {

	hspec := o.cfg.Heads.ForModality(m)
	names := o.cfg.Features.ForModality(m)
	task := o.task()
	seed := headSeed(o.cfg.Seed, spec.ID, m)

	train := modalityDataset(data.train, names, o.cfg.Data.Objective)
	val := modalityDataset(data.val, names, o.cfg.Data.Objective)

	var notes []string

	if train.Len() >= o.cfg.Data.MinTrainSamples && val.Len() > 0 {
		best, err := heads.Search(hspec.Family, hspec.Grid, hspec.MaxCandidates, train, val, task, seed)
		if err == nil {
			return best.Model, contracts.HeadReport{
				Modality: m,
				Family:   hspec.Family,
				Hyper:    best.Hyper,
				ValLoss:  best.ValLoss,
			}, nil
		}

		fitErr := &contracts.ModelFitError{Modality: m, Cause: err}
		log.WithError(fitErr).Warn("head grid search failed, retrying with fallback hyperparameters")
		notes = append(notes, fmt.Sprintf("window %d %s: %v", spec.ID, m, fitErr))

		if model, retryErr := heads.New(hspec.Family, heads.FallbackHyper(hspec.Family), task, seed); retryErr == nil {
			if fitRetryErr := model.Fit(train); fitRetryErr == nil {
				return model, contracts.HeadReport{
					Modality: m,
					Family:   hspec.Family,
					Hyper:    heads.FallbackHyper(hspec.Family),
					ValLoss:  heads.ValidationLoss(model, val, task),
				}, notes
			}
		}
	} else {
		notes = append(notes, fmt.Sprintf("window %d %s: %d usable train days, head degraded",
			spec.ID, m, train.Len()))
	}

	// The stub predicts the train base rate, keeping the blend convex
	// without this modality contributing signal.
	stub := heads.NewConstant(task, baseRate(data.train, o.cfg.Data.Objective))
	notes = append(notes, fmt.Sprintf("window %d %s: degraded to constant stub", spec.ID, m))
	return stub, contracts.HeadReport{
		Modality: m,
		Family:   "constant",
		ValLoss:  heads.ValidationLoss(stub, val, task),
		Degraded: true,
	}, notes
}

// scoreHeads produces the per-modality raw score series for one slice.
func (o *Orchestrator) scoreHeads(models map[contracts.Modality]heads.Model,
	samples []sample) map[contracts.Modality][]float64 {

	out := make(map[contracts.Modality][]float64, len(contracts.Modalities))
	for _, m := range contracts.Modalities {
		names := o.cfg.Features.ForModality(m)
		scores := make([]float64, len(samples))
		for i, s := range samples {
			scores[i] = models[m].Score(scoringVector(s, names))
		}
		out[m] = scores
	}
	return out
}

// fusionSamples pairs each validation day's head scores and gate inputs
// with its outcome.
func (o *Orchestrator) fusionSamples(samples []sample,
	scores map[contracts.Modality][]float64) []fusion.Sample {

	out := make([]fusion.Sample, len(samples))
	for i, s := range samples {
		out[i] = fusion.Sample{
			In: o.fusionInputs(s, scores, i),
			Y:  target(s.label, o.cfg.Data.Objective),
		}
	}
	return out
}

func (o *Orchestrator) fusionInputs(s sample, scores map[contracts.Modality][]float64, i int) fusion.Inputs {
	return fusion.Inputs{
		PPrice:          scores[contracts.ModalityPrice][i],
		PNews:           scores[contracts.ModalityNews][i],
		PSocial:         scores[contracts.ModalitySocial][i],
		NewsIntensity:   gateValue(s, o.cfg.Gates.News.Intensity),
		NewsNovelty:     gateValue(s, o.cfg.Gates.News.Novelty),
		SocialIntensity: gateValue(s, o.cfg.Gates.Social.Intensity),
		SocialNovelty:   gateValue(s, o.cfg.Gates.Social.Novelty),
	}
}

// scoreFusion applies the frozen combiner to one slice.
func (o *Orchestrator) scoreFusion(c *fusion.Combiner, windowID int,
	samples []sample, scores map[contracts.Modality][]float64) []contracts.FusedPrediction {

	out := make([]contracts.FusedPrediction, len(samples))
	for i, s := range samples {
		out[i] = contracts.FusedPrediction{
			Date:     s.date,
			Value:    c.Score(o.fusionInputs(s, scores, i)),
			WindowID: windowID,
		}
	}
	return out
}

func (o *Orchestrator) task() heads.Task {
	if o.cfg.Data.Objective == pipelineconfig.ObjectiveRegression {
		return heads.Regression
	}
	return heads.Classification
}

// calibrating reports whether score calibration applies: never for
// regression, and only when a method is configured.
func (o *Orchestrator) calibrating() bool {
	return o.cfg.Data.Objective == pipelineconfig.ObjectiveClassification &&
		o.cfg.Calibration.Method != pipelineconfig.CalibrationNone &&
		o.cfg.Calibration.Method != ""
}

func recoverableCalibration(err error) bool {
	var insufficient *contracts.InsufficientDataError
	var diverged *calibrate.DivergedError
	return errors.As(err, &insufficient) || errors.As(err, &diverged)
}

func applyCalibrator(cal calibrate.Calibrator, scores []float64) {
	for i, s := range scores {
		scores[i] = cal.Apply(s)
	}
}

// headSeed derives a deterministic per-head seed so windows and heads
// never share RNG streams.
func headSeed(base int64, windowID int, m contracts.Modality) int64 {
	offset := int64(0)
	for i, mm := range contracts.Modalities {
		if mm == m {
			offset = int64(i)
		}
	}
	return base + int64(windowID)*31 + offset
}

// baseRate is the constant-stub prediction: the train up-day frequency
// for classification, the mean return for regression.
func baseRate(train []sample, objective string) float64 {
	if len(train) == 0 {
		if objective == pipelineconfig.ObjectiveClassification {
			return 0.5
		}
		return 0
	}
	var sum float64
	for _, s := range train {
		sum += target(s.label, objective)
	}
	return sum / float64(len(train))
}

func values(preds []contracts.FusedPrediction) []float64 {
	out := make([]float64, len(preds))
	for i, p := range preds {
		out[i] = p.Value
	}
	return out
}

func labels(samples []sample) []contracts.Label {
	out := make([]contracts.Label, len(samples))
	for i, s := range samples {
		out[i] = s.label
	}
	return out
}

func sortInts(xs []int) {
	sort.Ints(xs)
}

func sortSkipped(xs []contracts.SkippedWindow) {
	sort.Slice(xs, func(i, j int) bool { return xs[i].WindowID < xs[j].WindowID })
}
