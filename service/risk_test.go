package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-analyzer-backend/models"
)

func TestRiskConfidence(t *testing.T) {
	// similarity 0.60 just above a 0.55 threshold: penalty ≈ 0.867.
	conf := riskConfidence(0.60, models.RiskLevelHigh, 0.55)
	assert.InDelta(t, 0.520, conf, 0.001)

	// At the threshold the penalty bottoms out at 0.85.
	assert.InDelta(t, 0.55*1.00*0.85, riskConfidence(0.55, models.RiskLevelHigh, 0.55), 1e-9)

	// Perfect similarity carries no penalty.
	assert.InDelta(t, 1.0, riskConfidence(1.0, models.RiskLevelHigh, 0.55), 1e-9)

	// Level weights scale the score down.
	high := riskConfidence(0.8, models.RiskLevelHigh, 0.55)
	medium := riskConfidence(0.8, models.RiskLevelMedium, 0.55)
	low := riskConfidence(0.8, models.RiskLevelLow, 0.55)
	assert.Greater(t, high, medium)
	assert.Greater(t, medium, low)
	assert.InDelta(t, high*0.85, medium, 1e-9)

	// An unrecognized level falls back to the lowest weight.
	assert.Equal(t, low, riskConfidence(0.8, models.RiskLevel("Critical"), 0.55))
}

func TestMissingClauseRisk(t *testing.T) {
	tests := []struct {
		name      string
		types     []string
		wantScore int
		wantLevel string
	}{
		{"all present", []string{"confidentiality", "termination", "payment"}, 0, "LOW RISK"},
		{"payment missing", []string{"confidentiality", "termination"}, 1, "LOW RISK"},
		{"only payment present", []string{"payment"}, 4, "HIGH RISK"},
		{"all missing", []string{"unknown"}, 5, "HIGH RISK"},
		{"confidentiality and payment missing", []string{"termination"}, 3, "MEDIUM RISK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus := &models.Corpus{}
			texts := make([]string, len(tt.types))
			for i := range texts {
				texts[i] = "clause text"
			}
			corpus.AddBatch(texts, tt.types)

			a := NewAnalyzer(AnalyzerWithCorpus(corpus))
			report, err := a.MissingClauseRisk()
			require.NoError(t, err)

			assert.Equal(t, tt.wantScore, report.RiskScore)
			assert.Equal(t, tt.wantLevel, report.RiskLevel)
		})
	}
}

// templateEmbedder returns a fixed vector per known text so clause/template
// similarities are exact. Unknown texts get a vector orthogonal to every
// explicit one.
type templateEmbedder struct {
	vectors map[string][]float32
}

func (e templateEmbedder) Encode(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := e.vectors[text]; ok {
			out[i] = vec
		} else {
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, nil
}

// templateVectors pins the arbitration template next to vec and pushes the
// other four templates onto their own axis.
func templateVectors(clauseText string) map[string][]float32 {
	return map[string][]float32{
		clauseText: {1, 0, 0},
		"Disputes must be resolved through arbitration instead of court.":   {1, 0, 0},
		"Clause allows one party to terminate without cause or at will.":    {0, 1, 0},
		"Confidentiality clause applies indefinitely or worldwide.":         {0, 1, 0},
		"Employee restricted from working with competitors after employment.": {0, 1, 0},
		"One party bears unlimited liability without cap.":                  {0, 1, 0},
	}
}

func TestAnalyzePresentRisks_BatchedJudgment(t *testing.T) {
	arbClause := "All disputes shall be resolved through binding arbitration."
	corpus := &models.Corpus{}
	corpus.AddBatch([]string{arbClause, "The employee is entitled to 20 days of paid leave."}, nil)

	embedder := templateEmbedder{vectors: templateVectors(arbClause)}
	gen := &fakeGenerator{response: `[
		{"candidate": 1, "risk_level": "High", "explanation": "Waives court access.", "mitigation": "Allow court escalation."}
	]`}

	a := NewAnalyzer(
		AnalyzerWithCorpus(corpus),
		AnalyzerWithEmbedder(embedder),
		AnalyzerWithGenerator(gen),
	)

	findings, err := a.AnalyzePresentRisks(context.Background(), 0.55)
	require.NoError(t, err)
	require.Len(t, findings, 1)

	f := findings[0]
	assert.Equal(t, "Mandatory Arbitration", f.RiskType)
	assert.Equal(t, 1, f.ClauseID)
	assert.Equal(t, models.RiskLevelHigh, f.RiskLevel)
	assert.InDelta(t, 1.0, f.SimilarityScore, 1e-9)
	assert.InDelta(t, 1.0, f.Confidence, 1e-9)

	assert.Equal(t, 1, gen.calls, "all candidates must be judged in one call")
	assert.Contains(t, gen.lastUser, "Candidate 1")
	assert.Contains(t, gen.lastUser, arbClause)
}

func TestAnalyzePresentRisks_NoCandidatesSkipsLLM(t *testing.T) {
	corpus := &models.Corpus{}
	corpus.AddBatch([]string{"The employee is entitled to 20 days of paid leave."}, nil)
	gen := &fakeGenerator{response: "unused"}

	a := NewAnalyzer(
		AnalyzerWithCorpus(corpus),
		AnalyzerWithEmbedder(templateEmbedder{vectors: templateVectors("")}),
		AnalyzerWithGenerator(gen),
	)

	findings, err := a.AnalyzePresentRisks(context.Background(), 0.55)
	require.NoError(t, err)
	assert.Empty(t, findings)
	assert.Zero(t, gen.calls)
}

func TestAnalyzeFullContractRisk_SectionsDegrade(t *testing.T) {
	arbClause := "All disputes shall be resolved through binding arbitration."
	corpus := &models.Corpus{}
	corpus.AddBatch([]string{arbClause}, []string{"governing_law"})

	embedder := templateEmbedder{vectors: templateVectors(arbClause)}
	// Unparseable output: present risks degrade to a section error, open
	// discovery degrades to an empty list.
	gen := &fakeGenerator{response: "no structured output here"}

	a := NewAnalyzer(
		AnalyzerWithCorpus(corpus),
		AnalyzerWithEmbedder(embedder),
		AnalyzerWithGenerator(gen),
	)

	report, err := a.AnalyzeFullContractRisk(context.Background())
	require.NoError(t, err)

	assert.Empty(t, report.PresentRisks)
	assert.Contains(t, report.SectionErrors["present_risks"], "parse_error")
	assert.Empty(t, report.AdditionalRisks)

	require.NotNil(t, report.MissingRisks)
	assert.Equal(t, 5, report.MissingRisks.RiskScore)
	assert.Equal(t, "HIGH RISK", report.MissingRisks.RiskLevel)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0}))
	assert.Zero(t, cosineSimilarity(nil, nil))
}
