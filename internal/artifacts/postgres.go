package artifacts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minsuk/triblend/internal/contracts"
)

// Postgres stores artifacts in the analytics schema. The artifact body
// is a JSONB document; the indexed columns exist so resume checks and
// run listings never deserialize the payload.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed artifact store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// SaveWindow inserts an artifact. Existing (run_id, window_id) rows are
// left untouched so a completed window is never rewritten.
func (r *Postgres) SaveWindow(ctx context.Context, a *contracts.WindowArtifact) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal window artifact: %w", err)
	}

	query := `
		INSERT INTO analytics.window_artifacts
			(run_id, window_id, input_hash, seed, artifact, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, window_id) DO NOTHING`

	_, err = r.pool.Exec(ctx, query,
		a.RunID, a.WindowID, a.InputHash, a.Seed, body, a.CreatedAt)
	return err
}

// HasWindow reports whether the exact triple has a stored artifact.
func (r *Postgres) HasWindow(ctx context.Context, runID string, windowID int, inputHash string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM analytics.window_artifacts
			WHERE run_id = $1 AND window_id = $2 AND input_hash = $3
		)`

	var ok bool
	err := r.pool.QueryRow(ctx, query, runID, windowID, inputHash).Scan(&ok)
	return ok, err
}

// GetWindow loads one artifact.
func (r *Postgres) GetWindow(ctx context.Context, runID string, windowID int) (*contracts.WindowArtifact, error) {
	query := `
		SELECT artifact
		FROM analytics.window_artifacts
		WHERE run_id = $1 AND window_id = $2`

	var body []byte
	if err := r.pool.QueryRow(ctx, query, runID, windowID).Scan(&body); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("artifact not found: run=%s window=%d", runID, windowID)
		}
		return nil, err
	}

	var a contracts.WindowArtifact
	if err := json.Unmarshal(body, &a); err != nil {
		return nil, fmt.Errorf("unmarshal window artifact: %w", err)
	}
	return &a, nil
}

// ListWindows loads every artifact of a run ordered by window ID.
func (r *Postgres) ListWindows(ctx context.Context, runID string) ([]*contracts.WindowArtifact, error) {
	query := `
		SELECT artifact
		FROM analytics.window_artifacts
		WHERE run_id = $1
		ORDER BY window_id`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*contracts.WindowArtifact
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var a contracts.WindowArtifact
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, fmt.Errorf("unmarshal window artifact: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

// SaveRunMeta upserts the run record. Unlike window artifacts the run
// record is rewritten on every save since it tracks run progress.
func (r *Postgres) SaveRunMeta(ctx context.Context, meta *contracts.RunMeta) error {
	body, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal run meta: %w", err)
	}

	query := `
		INSERT INTO analytics.run_meta (run_id, config_hash, meta, finished_at, success)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (run_id) DO UPDATE SET
			meta = EXCLUDED.meta,
			finished_at = EXCLUDED.finished_at,
			success = EXCLUDED.success`

	_, err = r.pool.Exec(ctx, query,
		meta.RunID, meta.ConfigHash, body, meta.FinishedAt, meta.Success)
	return err
}

// GetRunMeta loads one run record.
func (r *Postgres) GetRunMeta(ctx context.Context, runID string) (*contracts.RunMeta, error) {
	query := `SELECT meta FROM analytics.run_meta WHERE run_id = $1`

	var body []byte
	if err := r.pool.QueryRow(ctx, query, runID).Scan(&body); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("run meta not found: run=%s", runID)
		}
		return nil, err
	}

	var meta contracts.RunMeta
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("unmarshal run meta: %w", err)
	}
	return &meta, nil
}
