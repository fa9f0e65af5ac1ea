// Package vectorstore provides the per-contract similarity index: an
// append-only flat L2 index over parallel id/text/vector arrays. There is no
// update or delete path; a contract's index is rebuilt from scratch.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"contract-analyzer-backend/models"
)

// Embedder turns text into fixed-dimension vectors. The index only needs it
// for Add and the query side of Search; a loaded index can serve Save/stat
// style operations without one.
type Embedder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Item is one (clause_id, text) pair to index.
type Item struct {
	ClauseID int
	Text     string
}

var (
	ErrNoEmbedder        = errors.New("vector store has no embedder configured")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

const defaultBatchSize = 16

// Store is the flat L2 similarity index. vectors, ids, and texts are
// parallel arrays kept in lock-step insertion order. Reads are safe
// concurrently once building has finished; Add must not be interleaved
// with searches.
type Store struct {
	embedder  Embedder
	batchSize int

	dim     int
	vectors [][]float32
	ids     []int
	texts   []string
}

// Option configures a Store.
type Option func(*Store)

// WithBatchSize sets how many texts are embedded per request during Add.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New creates an empty index. embedder may be nil for a store that will only
// be loaded from disk and saved again; Add and Search then fail.
func New(embedder Embedder, opts ...Option) *Store {
	s := &Store{
		embedder:  embedder,
		batchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Len returns the number of indexed clauses.
func (s *Store) Len() int {
	return len(s.vectors)
}

// Dimension returns the vector dimension, 0 until the first Add or Load.
func (s *Store) Dimension() int {
	return s.dim
}

// Add embeds the given items in batches and appends them to the index.
// A nil or empty input is a no-op. Batch size never changes result order.
func (s *Store) Add(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		return nil
	}
	if s.embedder == nil {
		return ErrNoEmbedder
	}

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}

	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := s.embedder.Encode(ctx, texts[start:end])
		if err != nil {
			return fmt.Errorf("failed to embed batch at %d: %w", start, err)
		}
		if len(vectors) != end-start {
			return fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), end-start)
		}

		for i, vec := range vectors {
			if s.dim == 0 {
				s.dim = len(vec)
			}
			if len(vec) != s.dim {
				return fmt.Errorf("%w: got %d, index uses %d", ErrDimensionMismatch, len(vec), s.dim)
			}
			item := items[start+i]
			s.vectors = append(s.vectors, vec)
			s.ids = append(s.ids, item.ClauseID)
			s.texts = append(s.texts, item.Text)
		}
	}

	return nil
}

// Search returns up to k hits for the query in ascending-distance order.
// If k exceeds the corpus size, all indexed clauses are returned.
func (s *Store) Search(ctx context.Context, query string, k int) ([]models.SearchHit, error) {
	return s.SearchWithScores(ctx, query, k)
}

// SearchWithScores is Search with the squared L2 distance on each hit. The
// final slice is re-sorted by ascending distance so callers never depend on
// tie ordering inside the scan.
func (s *Store) SearchWithScores(ctx context.Context, query string, k int) ([]models.SearchHit, error) {
	if s.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if k <= 0 || len(s.vectors) == 0 {
		return []models.SearchHit{}, nil
	}

	queryVecs, err := s.embedder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(queryVecs) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for query", len(queryVecs))
	}
	queryVec := queryVecs[0]
	if len(queryVec) != s.dim {
		return nil, fmt.Errorf("%w: query %d, index %d", ErrDimensionMismatch, len(queryVec), s.dim)
	}

	hits := make([]models.SearchHit, 0, len(s.vectors))
	for i, vec := range s.vectors {
		// A position without a side-table entry is stale state; skip it.
		if i >= len(s.ids) || i >= len(s.texts) {
			continue
		}
		hits = append(hits, models.SearchHit{
			ClauseID: s.ids[i],
			Text:     s.texts[i],
			Distance: l2Squared(queryVec, vec),
		})
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Distance < hits[b].Distance
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// l2Squared is the squared Euclidean distance, matching the convention of a
// flat L2 index (no square root; ordering is unchanged and it is what the
// confidence mapping was calibrated against).
func l2Squared(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
