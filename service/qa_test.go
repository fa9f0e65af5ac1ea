package service

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-analyzer-backend/models"
	"contract-analyzer-backend/vectorstore"
)

// hashEmbedder is a deterministic bag-of-words embedder for tests. Texts
// sharing words land closer together, which is enough to exercise ordering.
type hashEmbedder struct{}

func (hashEmbedder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	const dim = 64
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
		var mag float64
		for _, v := range vec {
			mag += float64(v) * float64(v)
		}
		if mag > 0 {
			inv := float32(1.0 / math.Sqrt(mag))
			for j := range vec {
				vec[j] *= inv
			}
		}
		out[i] = vec
	}
	return out, nil
}

// fakeGenerator returns a scripted response and records the prompts it saw.
type fakeGenerator struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (g *fakeGenerator) Generate(_ context.Context, _, userPrompt string) (string, error) {
	g.calls++
	g.lastUser = userPrompt
	if g.err != nil {
		return "", g.err
	}
	return g.response, nil
}

// corpusOf builds a corpus from clause texts with contiguous ids.
func corpusOf(texts ...string) *models.Corpus {
	corpus := &models.Corpus{}
	corpus.AddBatch(texts, ClassifyClauses(texts))
	return corpus
}

// newTestAnalyzer indexes the given clause texts with contiguous ids.
func newTestAnalyzer(t *testing.T, texts []string, gen Generator) *Analyzer {
	t.Helper()

	corpus := corpusOf(texts...)

	index := vectorstore.New(hashEmbedder{})
	items := make([]vectorstore.Item, len(corpus.Clauses))
	for i, c := range corpus.Clauses {
		items[i] = vectorstore.Item{ClauseID: c.ClauseID, Text: c.Text}
	}
	require.NoError(t, index.Add(context.Background(), items))

	return NewAnalyzer(
		AnalyzerWithCorpus(corpus),
		AnalyzerWithIndex(index),
		AnalyzerWithGenerator(gen),
		AnalyzerWithEmbedder(hashEmbedder{}),
	)
}

func TestRunQA_RuleMatch(t *testing.T) {
	gen := &fakeGenerator{response: "should not be called"}
	a := newTestAnalyzer(t, []string{
		"Employee may be terminated by either party with 30 days notice.",
	}, gen)

	result, err := a.RunQA(context.Background(), "Can this contract be terminated early?", 1)
	require.NoError(t, err)

	assert.Equal(t, models.MethodRuleBased, result.Method)
	assert.Contains(t, result.Answer, "30 days notice")
	assert.GreaterOrEqual(t, result.Confidence, 0.80)
	assert.LessOrEqual(t, result.Confidence, 0.98)
	assert.Equal(t, []int{1}, result.AnswerCitations)
	assert.Zero(t, gen.calls, "rule match must not reach the LLM")
}

func TestRunQA_FallbackNotFound(t *testing.T) {
	gen := &fakeGenerator{response: "Not found"}
	a := newTestAnalyzer(t, []string{
		"Employee may be terminated by either party with 30 days notice.",
	}, gen)

	result, err := a.RunQA(context.Background(), "What is the exchange rate policy?", 1)
	require.NoError(t, err)

	assert.Equal(t, models.MethodLLM, result.Method)
	assert.Equal(t, "Not found", result.Answer)
	assert.Empty(t, result.Citations, "a not-found answer must not carry citations")
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.lastUser, "[Clause 1]")
}

func TestRunQA_FallbackConfidenceAndCitations(t *testing.T) {
	clause := "the office remains open from nine to six on weekdays for all staff members"
	gen := &fakeGenerator{response: "The office hours are stated in [Clause 1]."}
	a := newTestAnalyzer(t, []string{clause}, gen)

	// Querying with the clause text itself puts the distance at zero.
	result, err := a.RunQA(context.Background(), clause, 1)
	require.NoError(t, err)

	assert.Equal(t, models.MethodLLM, result.Method)
	assert.InDelta(t, 1.0, result.Confidence, 1e-6)
	assert.Equal(t, []int{1}, result.Citations)
	assert.Equal(t, []int{1}, result.AnswerCitations)
	require.Len(t, result.Evidence, 1)
	assert.InDelta(t, 1.0, result.Evidence[0].Confidence, 1e-6)
}

func TestRunQA_CitationInvariant(t *testing.T) {
	gen := &fakeGenerator{response: "Some answer."}
	a := newTestAnalyzer(t, []string{
		"Employee may be terminated by either party with 30 days notice.",
		"the employee will work from the registered office of the employer in pune",
		"this agreement is executed in duplicate with each party retaining one original copy",
	}, gen)

	result, err := a.RunQA(context.Background(), "where is the registered office located", 3)
	require.NoError(t, err)

	byClause := make(map[int]float64)
	for _, ev := range result.Evidence {
		byClause[ev.ClauseID] = ev.Confidence
	}
	for _, id := range result.Citations {
		conf, ok := byClause[id]
		require.True(t, ok, "citation %d has no evidence entry", id)
		assert.GreaterOrEqual(t, conf, StrongEvidenceThreshold)
	}

	// Evidence is reported in ascending clause order.
	for i := 1; i < len(result.Evidence); i++ {
		assert.Greater(t, result.Evidence[i].ClauseID, result.Evidence[i-1].ClauseID)
	}
}

func TestRunQA_NoIndex(t *testing.T) {
	a := NewAnalyzer()

	_, err := a.RunQA(context.Background(), "anything", 3)
	assert.ErrorIs(t, err, ErrNoIndex)
}

func TestParseAnswerCitations(t *testing.T) {
	ids := parseAnswerCitations("See [Clause 12] and [Clause 3], also [Clause 12] again.")
	assert.Equal(t, []int{3, 12}, ids)

	assert.Nil(t, parseAnswerCitations("no markers here"))
}
