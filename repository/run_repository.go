package repository

import (
	"context"

	"contract-analyzer-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunRepository handles database operations for query run history
type RunRepository struct {
	db *pgxpool.Pool
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *pgxpool.Pool) *RunRepository {
	return &RunRepository{db: db}
}

// Add records one executed query
func (r *RunRepository) Add(ctx context.Context, run *models.QueryRun) error {
	query := `
		INSERT INTO query_runs (contract_id, query, plan, result, perf_ms)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		run.ContractID,
		run.Query,
		run.Plan,
		run.Result,
		run.PerfMs,
	).Scan(&run.ID, &run.CreatedAt)
}

// History retrieves a contract's most recent runs, newest first
func (r *RunRepository) History(ctx context.Context, contractID uuid.UUID, limit int) ([]models.QueryRun, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 50 {
		limit = 50
	}

	query := `
		SELECT id, contract_id, query, plan, result, perf_ms, created_at
		FROM query_runs
		WHERE contract_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, contractID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.QueryRun
	for rows.Next() {
		var run models.QueryRun
		if err := rows.Scan(
			&run.ID,
			&run.ContractID,
			&run.Query,
			&run.Plan,
			&run.Result,
			&run.PerfMs,
			&run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
