package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"clusterperm/domain/cluster"
	"clusterperm/domain/core"
	"clusterperm/ports"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// InitSchema creates the runs table if it does not exist
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS permutation_runs (
			id TEXT PRIMARY KEY,
			method TEXT NOT NULL,
			statistic TEXT NOT NULL,
			tail INTEGER NOT NULL,
			threshold DOUBLE PRECISION NOT NULL,
			num_permutations INTEGER NOT NULL,
			exhaustive BOOLEAN NOT NULL,
			seed BIGINT NOT NULL,
			fingerprint TEXT NOT NULL,
			null_summary JSONB NOT NULL,
			clusters JSONB NOT NULL,
			p_values JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create permutation_runs table: %w", err)
	}
	return nil
}

// Save inserts or updates a run record
func (r *RunRepositoryImpl) Save(ctx context.Context, record *cluster.RunRecord) error {
	nullJSON, _ := json.Marshal(record.Null)
	clustersJSON, _ := json.Marshal(record.Clusters)
	pValuesJSON, _ := json.Marshal(record.PValues)
	if record.Clusters == nil {
		clustersJSON = []byte("[]")
	}
	if record.PValues == nil {
		pValuesJSON = []byte("[]")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO permutation_runs (
			id, method, statistic, tail, threshold, num_permutations,
			exhaustive, seed, fingerprint, null_summary, clusters, p_values, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			null_summary = EXCLUDED.null_summary,
			clusters = EXCLUDED.clusters,
			p_values = EXCLUDED.p_values`,
		record.ID, record.Method, record.Statistic, record.Tail, record.Threshold,
		record.NumPermutations, record.Exhaustive, record.Seed, record.Fingerprint,
		nullJSON, clustersJSON, pValuesJSON, record.CreatedAt.Time())
	return err
}

// GetByID retrieves a run record by its ID
func (r *RunRepositoryImpl) GetByID(ctx context.Context, id core.RunID) (*cluster.RunRecord, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, method, statistic, tail, threshold, num_permutations,
			   exhaustive, seed, fingerprint, null_summary, clusters, p_values, created_at
		FROM permutation_runs
		WHERE id = $1`, id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, core.ErrRunNotFound
	}
	return record, err
}

// List returns stored runs newest first
func (r *RunRepositoryImpl) List(ctx context.Context, limit, offset int) ([]*cluster.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, method, statistic, tail, threshold, num_permutations,
			   exhaustive, seed, fingerprint, null_summary, clusters, p_values, created_at
		FROM permutation_runs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*cluster.RunRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Delete removes a run record
func (r *RunRepositoryImpl) Delete(ctx context.Context, id core.RunID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM permutation_runs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrRunNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*cluster.RunRecord, error) {
	var record cluster.RunRecord
	var nullJSON, clustersJSON, pValuesJSON []byte

	err := row.Scan(
		&record.ID, &record.Method, &record.Statistic, &record.Tail, &record.Threshold,
		&record.NumPermutations, &record.Exhaustive, &record.Seed, &record.Fingerprint,
		&nullJSON, &clustersJSON, &pValuesJSON, &record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(nullJSON, &record.Null); err != nil {
		return nil, fmt.Errorf("failed to unmarshal null_summary: %w", err)
	}
	if err := json.Unmarshal(clustersJSON, &record.Clusters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal clusters: %w", err)
	}
	if err := json.Unmarshal(pValuesJSON, &record.PValues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal p_values: %w", err)
	}
	return &record, nil
}
