package commands

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minsuk/triblend/internal/artifacts"
	"github.com/minsuk/triblend/internal/contracts"
	"github.com/minsuk/triblend/internal/featurestore"
	"github.com/minsuk/triblend/internal/pipelineconfig"
	"github.com/minsuk/triblend/pkg/config"
	"github.com/minsuk/triblend/pkg/database"
	"github.com/minsuk/triblend/pkg/logger"
	"github.com/minsuk/triblend/pkg/redis"
)

// deps bundles everything a command needs: runtime config, pipeline
// config, logger and the two repositories. close releases connections.
type deps struct {
	cfg      *config.Config
	pipeline *pipelineconfig.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client

	features  contracts.FeatureRepository
	artifacts contracts.ArtifactRepository
}

func (d *deps) close() {
	if d.redis != nil {
		_ = d.redis.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}

// initDeps wires the command dependencies. With synthetic=true the
// repositories are an in-memory generated history and artifact store,
// so no database or Redis is touched.
func initDeps(synthetic bool, syntheticMonths int) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	pipeline, err := loadPipeline(cfg)
	if err != nil {
		return nil, err
	}

	d := &deps{cfg: cfg, pipeline: pipeline, log: log}

	if synthetic {
		d.features = featurestore.Synthetic(featurestore.SyntheticOptions{
			Start:  time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			Months: syntheticMonths,
			Seed:   pipeline.Seed,
		})
		d.artifacts = artifacts.NewMemory()
		return d, nil
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	d.db = db
	d.features = featurestore.NewPostgres(db.Pool)
	d.artifacts = artifacts.NewPostgres(db.Pool)

	rc, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, run lock disabled")
	} else {
		d.redis = rc
	}

	return d, nil
}

// loadPipeline reads the pipeline YAML from the --pipeline flag or the
// configured path, falling back to the built-in defaults when neither
// is set.
func loadPipeline(cfg *config.Config) (*pipelineconfig.Config, error) {
	path := pipelineFile
	if path == "" {
		path = cfg.PipelineConfigPath
	}
	if path == "" {
		return pipelineconfig.Default(), nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("pipeline config %s: %w", path, err)
	}
	pipeline, _, err := pipelineconfig.Load(path)
	return pipeline, err
}

// generateRunID builds a sortable run identifier: date plus a short
// random suffix.
func generateRunID() string {
	return fmt.Sprintf("wf-%s-%s",
		time.Now().UTC().Format("20060102"),
		uuid.NewString()[:8])
}

// getGitSHA returns the current commit for run metadata, or "" outside
// a git checkout.
func getGitSHA() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// parseDay parses a YYYY-MM-DD flag value.
func parseDay(value, flag string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s, want YYYY-MM-DD: %w", flag, err)
	}
	return contracts.Day(t), nil
}
