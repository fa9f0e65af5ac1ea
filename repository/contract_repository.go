package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"contract-analyzer-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContractRepository handles database operations for contracts and their
// clause rows
type ContractRepository struct {
	db *pgxpool.Pool
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{db: db}
}

// Create creates a new contract record
func (r *ContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	query := `
		INSERT INTO contracts (
			id, filename, status, text_key, index_key, num_clauses, error
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		contract.ID,
		contract.Filename,
		contract.Status,
		contract.TextKey,
		contract.IndexKey,
		contract.NumClauses,
		contract.Error,
	).Scan(&contract.CreatedAt, &contract.UpdatedAt)

	return err
}

// GetByID retrieves a contract by ID
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract := &models.Contract{}
	query := `
		SELECT id, filename, status, text_key, index_key, num_clauses, error,
			created_at, updated_at
		FROM contracts
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&contract.ID,
		&contract.Filename,
		&contract.Status,
		&contract.TextKey,
		&contract.IndexKey,
		&contract.NumClauses,
		&contract.Error,
		&contract.CreatedAt,
		&contract.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return contract, nil
}

// UpdateStatus moves a contract through the indexing pipeline
func (r *ContractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ContractStatus, numClauses int, errMsg *string) error {
	query := `
		UPDATE contracts SET
			status = $2,
			num_clauses = $3,
			error = $4,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	var contract models.Contract
	return r.db.QueryRow(ctx, query, id, status, numClauses, errMsg).Scan(&contract.UpdatedAt)
}

// AddClauses inserts a contract's clause rows
func (r *ContractRepository) AddClauses(ctx context.Context, contractID uuid.UUID, clauses []models.Clause) error {
	query := `
		INSERT INTO clauses (contract_id, clause_id, text, clause_type)
		VALUES ($1, $2, $3, $4)`

	for _, clause := range clauses {
		if _, err := r.db.Exec(ctx, query, contractID, clause.ClauseID, clause.Text, clause.Type); err != nil {
			return fmt.Errorf("failed to insert clause %d: %w", clause.ClauseID, err)
		}
	}
	return nil
}

// GetClauses retrieves a contract's clauses ordered by clause_id
func (r *ContractRepository) GetClauses(ctx context.Context, contractID uuid.UUID) ([]models.Clause, error) {
	query := `
		SELECT clause_id, text, clause_type
		FROM clauses
		WHERE contract_id = $1
		ORDER BY clause_id`

	rows, err := r.db.Query(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clauses []models.Clause
	for rows.Next() {
		var clause models.Clause
		if err := rows.Scan(&clause.ClauseID, &clause.Text, &clause.Type); err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, rows.Err()
}

// GetClause retrieves one clause of a contract
func (r *ContractRepository) GetClause(ctx context.Context, contractID uuid.UUID, clauseID int) (*models.Clause, error) {
	clause := &models.Clause{}
	query := `
		SELECT clause_id, text, clause_type
		FROM clauses
		WHERE contract_id = $1 AND clause_id = $2`

	err := r.db.QueryRow(ctx, query, contractID, clauseID).Scan(
		&clause.ClauseID,
		&clause.Text,
		&clause.Type,
	)
	if err != nil {
		return nil, err
	}
	return clause, nil
}

// SetLastResult stores the most recent analysis result for a contract
func (r *ContractRepository) SetLastResult(ctx context.Context, contractID uuid.UUID, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `
		UPDATE contracts SET
			last_result = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err = r.db.Exec(ctx, query, contractID, data)
	return err
}

// GetLastResult retrieves the most recent analysis result, nil if none
func (r *ContractRepository) GetLastResult(ctx context.Context, contractID uuid.UUID) (any, error) {
	query := `SELECT last_result FROM contracts WHERE id = $1`

	var data []byte
	if err := r.db.QueryRow(ctx, query, contractID).Scan(&data); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var result any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored result: %w", err)
	}
	return result, nil
}

// Delete removes a contract and its clause rows
func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM clauses WHERE contract_id = $1`, id); err != nil {
		return err
	}
	_, err := r.db.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	return err
}
