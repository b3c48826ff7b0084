package featurestore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minsuk/triblend/internal/contracts"
)

// Postgres reads the curated feature table written by the ingestion
// pipeline. Feature values live in a JSONB column keyed by feature
// name, one row per trading day.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres-backed feature repository.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Rows returns the feature rows in [from, to) sorted by date.
func (r *Postgres) Rows(ctx context.Context, from, to time.Time) ([]contracts.FeatureRow, error) {
	query := `
		SELECT day, features
		FROM curated.feature_rows
		WHERE day >= $1 AND day < $2
		ORDER BY day`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.FeatureRow
	for rows.Next() {
		var day time.Time
		var values map[string]float64
		if err := rows.Scan(&day, &values); err != nil {
			return nil, err
		}
		out = append(out, contracts.FeatureRow{Date: contracts.Day(day), Values: values})
	}
	return out, rows.Err()
}

// Labels returns the labels in [from, to) sorted by date. Days without
// a computable label have no row at all.
func (r *Postgres) Labels(ctx context.Context, from, to time.Time) ([]contracts.Label, error) {
	query := `
		SELECT day, direction, return_bps, basis
		FROM curated.labels
		WHERE day >= $1 AND day < $2
		ORDER BY day`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []contracts.Label
	for rows.Next() {
		var l contracts.Label
		var day time.Time
		var basis string
		if err := rows.Scan(&day, &l.Direction, &l.ReturnBps, &basis); err != nil {
			return nil, err
		}
		l.Date = contracts.Day(day)
		l.Basis = contracts.LabelBasis(basis)
		out = append(out, l)
	}
	return out, rows.Err()
}
