package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContractStatus tracks a contract through the indexing pipeline.
type ContractStatus string

const (
	ContractStatusQueued     ContractStatus = "queued"
	ContractStatusProcessing ContractStatus = "processing"
	ContractStatusIndexed    ContractStatus = "indexed"
	ContractStatusFailed     ContractStatus = "failed"
)

// Contract is a stored contract with its indexing artifacts.
type Contract struct {
	ID         uuid.UUID      `json:"id"`
	Filename   string         `json:"filename"`
	Status     ContractStatus `json:"status"`
	TextKey    string         `json:"text_key"`
	IndexKey   string         `json:"index_key"`
	NumClauses int            `json:"num_clauses"`
	Error      *string        `json:"error,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// JSONMap is a JSONB column holding an arbitrary object.
type JSONMap map[string]any

// Value implements driver.Valuer for JSONB
func (m JSONMap) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*m = make(JSONMap)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// JSONValue is a JSONB column holding an arbitrary value (object, array,
// or string), used for stored analysis results.
type JSONValue struct {
	V any
}

// Value implements driver.Valuer for JSONB
func (j JSONValue) Value() (driver.Value, error) {
	return json.Marshal(j.V)
}

// Scan implements sql.Scanner for JSONB
func (j *JSONValue) Scan(value interface{}) error {
	if value == nil {
		j.V = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		j.V = nil
		return nil
	}

	return json.Unmarshal(bytes, &j.V)
}

// QueryRun is one executed query against a contract, kept for history.
type QueryRun struct {
	ID         int64     `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	Query      string    `json:"query"`
	Plan       JSONMap   `json:"plan"`
	Result     JSONValue `json:"result"`
	PerfMs     JSONMap   `json:"perf_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
