package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"contract-analyzer-backend/models"
	"contract-analyzer-backend/repository"
	"contract-analyzer-backend/storage"
	"contract-analyzer-backend/vectorstore"

	"github.com/google/uuid"
)

var (
	ErrContractNotReady = errors.New("contract is not indexed yet")
	ErrContractFailed   = errors.New("contract processing failed")
)

// ContractService owns the contract lifecycle: upload, background indexing,
// artifact persistence, and query execution over an indexed contract.
type ContractService struct {
	contractRepo *repository.ContractRepository
	runRepo      *repository.RunRepository
	store        storage.Storage
	embedder     vectorstore.Embedder
	generator    Generator
}

// ContractServiceOption is a functional option for ContractService
type ContractServiceOption func(*ContractService)

// WithContractRepository sets the contract repository
func WithContractRepository(repo *repository.ContractRepository) ContractServiceOption {
	return func(s *ContractService) {
		s.contractRepo = repo
	}
}

// WithRunRepository sets the query run repository
func WithRunRepository(repo *repository.RunRepository) ContractServiceOption {
	return func(s *ContractService) {
		s.runRepo = repo
	}
}

// WithStorage sets the artifact storage backend
func WithStorage(store storage.Storage) ContractServiceOption {
	return func(s *ContractService) {
		s.store = store
	}
}

// WithEmbedder sets the embedding client
func WithEmbedder(embedder vectorstore.Embedder) ContractServiceOption {
	return func(s *ContractService) {
		s.embedder = embedder
	}
}

// WithGenerator sets the generation client
func WithGenerator(g Generator) ContractServiceOption {
	return func(s *ContractService) {
		s.generator = g
	}
}

// NewContractService creates a new contract service
func NewContractService(opts ...ContractServiceOption) *ContractService {
	s := &ContractService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadContract stores the raw text and queues the contract for indexing.
// Parsing and embedding run in the background so the upload returns fast.
func (s *ContractService) UploadContract(ctx context.Context, filename, text string) (*models.Contract, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("contract text is empty")
	}

	contract := &models.Contract{
		ID:       uuid.New(),
		Filename: filename,
		Status:   models.ContractStatusQueued,
	}
	contract.TextKey = storage.ContractTextKey(contract.ID)
	contract.IndexKey = storage.IndexKey(contract.ID)

	if err := s.store.Save(ctx, contract.TextKey, strings.NewReader(text)); err != nil {
		return nil, fmt.Errorf("failed to store contract text: %w", err)
	}
	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to create contract record: %w", err)
	}

	go s.processContract(contract.ID, text)

	return contract, nil
}

// processContract parses, classifies, embeds, and persists one contract.
// Runs detached from the upload request.
func (s *ContractService) processContract(contractID uuid.UUID, text string) {
	ctx := context.Background()

	if err := s.contractRepo.UpdateStatus(ctx, contractID, models.ContractStatusProcessing, 0, nil); err != nil {
		log.Printf("Warning: failed to mark contract %s processing: %v", contractID, err)
	}

	corpus, index, err := BuildContractIndex(ctx, text, s.embedder)
	if err == nil {
		err = s.saveIndexArtifacts(ctx, contractID, index)
	}
	if err == nil {
		err = s.contractRepo.AddClauses(ctx, contractID, corpus.Clauses)
	}

	if err != nil {
		log.Printf("Warning: contract %s processing failed: %v", contractID, err)
		msg := err.Error()
		if err := s.contractRepo.UpdateStatus(ctx, contractID, models.ContractStatusFailed, 0, &msg); err != nil {
			log.Printf("Warning: failed to mark contract %s failed: %v", contractID, err)
		}
		return
	}

	if err := s.contractRepo.UpdateStatus(ctx, contractID, models.ContractStatusIndexed, len(corpus.Clauses), nil); err != nil {
		log.Printf("Warning: failed to mark contract %s indexed: %v", contractID, err)
		return
	}
	log.Printf("Indexed contract %s with %d clauses", contractID, len(corpus.Clauses))
}

// saveIndexArtifacts writes the index pair to a scratch dir and uploads both
// files to storage.
func (s *ContractService) saveIndexArtifacts(ctx context.Context, contractID uuid.UUID, index *vectorstore.Store) error {
	dir, err := os.MkdirTemp("", "contract-index-")
	if err != nil {
		return fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "contract.index")
	if err := index.Save(path); err != nil {
		return fmt.Errorf("failed to save index: %w", err)
	}

	if err := s.uploadFile(ctx, storage.IndexKey(contractID), path); err != nil {
		return err
	}
	return s.uploadFile(ctx, storage.IndexMetaKey(contractID), vectorstore.MetaPath(path))
}

func (s *ContractService) uploadFile(ctx context.Context, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	if err := s.store.Save(ctx, key, f); err != nil {
		return fmt.Errorf("failed to store artifact %s: %w", key, err)
	}
	return nil
}

// GetContract retrieves a contract record
func (s *ContractService) GetContract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	return s.contractRepo.GetByID(ctx, contractID)
}

// GetClause retrieves one clause of a contract
func (s *ContractService) GetClause(ctx context.Context, contractID uuid.UUID, clauseID int) (*models.Clause, error) {
	return s.contractRepo.GetClause(ctx, contractID, clauseID)
}

// GetLastResult retrieves the most recent analysis result, nil if none
func (s *ContractService) GetLastResult(ctx context.Context, contractID uuid.UUID) (any, error) {
	return s.contractRepo.GetLastResult(ctx, contractID)
}

// History retrieves a contract's recent query runs
func (s *ContractService) History(ctx context.Context, contractID uuid.UUID, limit int) ([]models.QueryRun, error) {
	return s.runRepo.History(ctx, contractID, limit)
}

// loadAnalyzer reconstructs an Analyzer for an indexed contract from its
// clause rows and stored index artifacts.
func (s *ContractService) loadAnalyzer(ctx context.Context, contract *models.Contract) (*Analyzer, error) {
	clauses, err := s.contractRepo.GetClauses(ctx, contract.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load clauses: %w", err)
	}
	corpus := &models.Corpus{Clauses: clauses}

	dir, err := os.MkdirTemp("", "contract-index-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "contract.index")
	if err := s.downloadFile(ctx, storage.IndexKey(contract.ID), path); err != nil {
		return nil, err
	}
	if err := s.downloadFile(ctx, storage.IndexMetaKey(contract.ID), vectorstore.MetaPath(path)); err != nil {
		return nil, err
	}

	index := vectorstore.New(s.embedder)
	if err := index.Load(path); err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	return NewAnalyzer(
		AnalyzerWithCorpus(corpus),
		AnalyzerWithIndex(index),
		AnalyzerWithGenerator(s.generator),
		AnalyzerWithEmbedder(s.embedder),
	), nil
}

func (s *ContractService) downloadFile(ctx context.Context, key, path string) error {
	r, err := s.store.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to open artifact %s: %w", key, err)
	}
	defer r.Close()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create scratch file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to read artifact %s: %w", key, err)
	}
	return nil
}

// QueryResult is the response to one contract query.
type QueryResult struct {
	ContractID uuid.UUID          `json:"contract_id"`
	Plan       *models.Plan       `json:"plan"`
	Result     any                `json:"result"`
	PerfMs     map[string]float64 `json:"perf_ms"`
}

// Query plans and executes one query against an indexed contract. An
// explicit mode bypasses the planner; k overrides the plan's retrieval depth
// when positive. The run is recorded in history.
func (s *ContractService) Query(ctx context.Context, contractID uuid.UUID, query, mode string, k int) (*QueryResult, error) {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, err
	}
	switch contract.Status {
	case models.ContractStatusIndexed:
	case models.ContractStatusFailed:
		return nil, ErrContractFailed
	default:
		return nil, ErrContractNotReady
	}

	analyzer, err := s.loadAnalyzer(ctx, contract)
	if err != nil {
		return nil, err
	}

	totalStart := time.Now()
	var plan *models.Plan
	var plannerMs float64

	if mode != "" {
		plan, err = PlanForMode(mode, k)
		if err != nil {
			return nil, err
		}
	} else {
		plannerStart := time.Now()
		plan, err = analyzer.Plan(ctx, query)
		if err != nil {
			return nil, err
		}
		plannerMs = float64(time.Since(plannerStart).Milliseconds())
		if k > 0 {
			plan.K = k
		}
	}

	execStart := time.Now()
	result, err := analyzer.Execute(ctx, plan, query)
	if err != nil {
		return nil, err
	}
	execMs := float64(time.Since(execStart).Milliseconds())

	perf := map[string]float64{
		"planner":  plannerMs,
		"executor": execMs,
		"total":    float64(time.Since(totalStart).Milliseconds()),
	}

	if err := s.contractRepo.SetLastResult(ctx, contractID, result); err != nil {
		log.Printf("Warning: failed to store last result for %s: %v", contractID, err)
	}
	s.recordRun(ctx, contractID, query, plan, result, perf)

	return &QueryResult{
		ContractID: contractID,
		Plan:       plan,
		Result:     result,
		PerfMs:     perf,
	}, nil
}

// recordRun appends the run to history; failures are logged, not fatal.
func (s *ContractService) recordRun(ctx context.Context, contractID uuid.UUID, query string, plan *models.Plan, result any, perf map[string]float64) {
	planMap := models.JSONMap{
		"intent": plan.Intent,
		"k":      plan.K,
		"steps":  plan.Steps,
		"notes":  plan.Notes,
	}
	perfMap := models.JSONMap{}
	for k, v := range perf {
		perfMap[k] = v
	}

	run := &models.QueryRun{
		ContractID: contractID,
		Query:      query,
		Plan:       planMap,
		Result:     models.JSONValue{V: result},
		PerfMs:     perfMap,
	}
	if err := s.runRepo.Add(ctx, run); err != nil {
		log.Printf("Warning: failed to record query run for %s: %v", contractID, err)
	}
}
