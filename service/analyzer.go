package service

import (
	"context"
	"errors"

	"contract-analyzer-backend/confidence"
	"contract-analyzer-backend/models"
	"contract-analyzer-backend/vectorstore"
)

var (
	ErrNoIndex     = errors.New("no vector index configured")
	ErrNoCorpus    = errors.New("no clause corpus configured")
	ErrNoGenerator = errors.New("no generation client configured")
	ErrNoEmbedder  = errors.New("no embedding client configured")
)

// Generator produces free-form text from a system and user prompt.
// Implemented by llm.Client; tests inject fakes.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Analyzer runs every contract analysis over a single contract's corpus and
// vector index. The corpus and index are read-only once the Analyzer is
// constructed, so concurrent calls are safe.
type Analyzer struct {
	corpus    *models.Corpus
	index     *vectorstore.Store
	generator Generator
	embedder  vectorstore.Embedder
	alpha     float64
}

// AnalyzerOption is a functional option for Analyzer
type AnalyzerOption func(*Analyzer)

// AnalyzerWithCorpus sets the clause corpus
func AnalyzerWithCorpus(corpus *models.Corpus) AnalyzerOption {
	return func(a *Analyzer) {
		a.corpus = corpus
	}
}

// AnalyzerWithIndex sets the vector index
func AnalyzerWithIndex(index *vectorstore.Store) AnalyzerOption {
	return func(a *Analyzer) {
		a.index = index
	}
}

// AnalyzerWithGenerator sets the generation client
func AnalyzerWithGenerator(g Generator) AnalyzerOption {
	return func(a *Analyzer) {
		a.generator = g
	}
}

// AnalyzerWithEmbedder sets the embedding client used for risk scoring
func AnalyzerWithEmbedder(e vectorstore.Embedder) AnalyzerOption {
	return func(a *Analyzer) {
		a.embedder = e
	}
}

// AnalyzerWithAlpha sets the distance-to-confidence decay rate
func AnalyzerWithAlpha(alpha float64) AnalyzerOption {
	return func(a *Analyzer) {
		if alpha > 0 {
			a.alpha = alpha
		}
	}
}

// NewAnalyzer creates an analyzer for one contract
func NewAnalyzer(opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{alpha: confidence.DefaultAlpha}
	for _, opt := range opts {
		opt(a)
	}
	return a
}
