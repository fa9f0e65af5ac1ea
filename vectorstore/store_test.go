package vectorstore

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hashEmbedder is a deterministic bag-of-words embedder for tests. Texts
// sharing words land closer together, which is enough to exercise ordering.
type hashEmbedder struct {
	dim   int
	calls int
}

func (e *hashEmbedder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	dim := e.dim
	if dim == 0 {
		dim = 64
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, dim)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := 0
			for _, c := range word {
				h = h*31 + int(c)
			}
			if h < 0 {
				h = -h
			}
			vec[h%dim] += 1.0
		}
		var mag float32
		for _, v := range vec {
			mag += v * v
		}
		if mag > 0 {
			inv := 1.0 / float32(math.Sqrt(float64(mag)))
			for j := range vec {
				vec[j] *= inv
			}
		}
		out[i] = vec
	}
	return out, nil
}

func testItems() []Item {
	return []Item{
		{ClauseID: 1, Text: "Employee may be terminated by either party with 30 days notice."},
		{ClauseID: 2, Text: "Salary shall be paid monthly in arrears."},
		{ClauseID: 3, Text: "All disputes shall be resolved through binding arbitration."},
	}
}

func TestAdd_EmptyIsNoOp(t *testing.T) {
	s := New(&hashEmbedder{})

	require.NoError(t, s.Add(context.Background(), nil))
	require.NoError(t, s.Add(context.Background(), []Item{}))
	assert.Equal(t, 0, s.Len())
}

func TestAdd_BatchSizeDoesNotChangeOrder(t *testing.T) {
	big := New(&hashEmbedder{}, WithBatchSize(100))
	small := New(&hashEmbedder{}, WithBatchSize(1))

	require.NoError(t, big.Add(context.Background(), testItems()))
	require.NoError(t, small.Add(context.Background(), testItems()))

	assert.Equal(t, big.ids, small.ids)
	assert.Equal(t, big.texts, small.texts)
}

func TestSearch_OrderedAndIdempotent(t *testing.T) {
	s := New(&hashEmbedder{})
	require.NoError(t, s.Add(context.Background(), testItems()))

	query := "Can the employee be terminated with notice?"
	first, err := s.SearchWithScores(context.Background(), query, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)

	assert.Equal(t, 1, first[0].ClauseID, "termination clause should rank first")
	for i := 1; i < len(first); i++ {
		assert.GreaterOrEqual(t, first[i].Distance, first[i-1].Distance)
	}

	second, err := s.SearchWithScores(context.Background(), query, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second, "repeated search on an unmodified index must match")
}

func TestSearch_KLargerThanCorpus(t *testing.T) {
	s := New(&hashEmbedder{})
	require.NoError(t, s.Add(context.Background(), testItems()))

	hits, err := s.Search(context.Background(), "anything", 50)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestSearch_EmptyIndex(t *testing.T) {
	s := New(&hashEmbedder{})

	hits, err := s.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearch_NoEmbedder(t *testing.T) {
	s := New(nil)

	_, err := s.Search(context.Background(), "anything", 5)
	assert.ErrorIs(t, err, ErrNoEmbedder)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	embedder := &hashEmbedder{}
	s := New(embedder)
	require.NoError(t, s.Add(context.Background(), testItems()))

	query := "how is salary paid"
	before, err := s.SearchWithScores(context.Background(), query, 3)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "contract.index")
	require.NoError(t, s.Save(path))

	// Load requires no embedder; attach one afterwards for the query side.
	loaded := New(nil)
	require.NoError(t, loaded.Load(path))
	assert.Equal(t, s.Len(), loaded.Len())
	assert.Equal(t, s.Dimension(), loaded.Dimension())

	loaded.embedder = embedder
	after, err := loaded.SearchWithScores(context.Background(), query, 3)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoad_ShortMetaSkippedAtSearch(t *testing.T) {
	embedder := &hashEmbedder{}
	s := New(embedder)
	require.NoError(t, s.Add(context.Background(), testItems()))

	path := filepath.Join(t.TempDir(), "contract.index")
	require.NoError(t, s.Save(path))

	// Rewrite the side-table with the last entry missing. The load must
	// still succeed; the uncovered vector position is skipped per search.
	meta := metaFile{
		Dimension: s.Dimension(),
		ClauseIDs: s.ids[:2],
		Texts:     s.texts[:2],
	}
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(MetaPath(path), data, 0644))

	loaded := New(embedder)
	require.NoError(t, loaded.Load(path))

	hits, err := loaded.SearchWithScores(context.Background(), "anything at all", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	for _, hit := range hits {
		assert.Contains(t, []int{1, 2}, hit.ClauseID)
	}
}

func TestLoad_MissingMeta(t *testing.T) {
	s := New(&hashEmbedder{})
	require.NoError(t, s.Add(context.Background(), testItems()))

	dir := t.TempDir()
	path := filepath.Join(dir, "contract.index")
	require.NoError(t, s.Save(path))
	require.NoError(t, os.Remove(MetaPath(path)))

	loaded := New(nil)
	assert.Error(t, loaded.Load(path))
}
