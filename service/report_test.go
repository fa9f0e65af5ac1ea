package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/models"
)

func TestBuildFullReport_SectionsDegradeIndependently(t *testing.T) {
	gen := &fakeGenerator{response: "no structured output here"}
	a := newTestAnalyzer(t, []string{
		"Employee may be terminated by either party with 30 days notice.",
		"Working hours may be revised from time to time by the employer.",
	}, gen)

	report, err := a.BuildFullReport(context.Background())
	require.NoError(t, err)

	// Every LLM-backed section carries its parse_error payload.
	for name, section := range map[string]any{
		"summary":                 report.Summary,
		"structured_analysis":     report.StructuredAnalysis,
		"questions_to_ask_lawyer": report.LawyerQuestions,
	} {
		payload, ok := section.(map[string]string)
		require.True(t, ok, "section %s should degrade to its payload", name)
		assert.Contains(t, payload["parse_error"], "no structured output here")
	}

	// Deterministic sections still land.
	keyClauses, ok := report.KeyClauses.(map[string][]models.KeyClause)
	require.True(t, ok)
	assert.Len(t, keyClauses, len(keyTopics))

	unclear, ok := report.UnclearOrMissing.([]models.ClauseIssue)
	require.True(t, ok)
	require.Len(t, unclear, 1)
	assert.Equal(t, 2, unclear[0].ClauseID)
	assert.Equal(t, "vague_language", unclear[0].IssueType)

	// Risk degrades inside its own report, never to a payload here.
	risk, ok := report.RiskReport.(*models.RiskReport)
	require.True(t, ok)
	assert.Empty(t, risk.AdditionalRisks)
}

func TestBuildFullReport_GenerationFailureAborts(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	a := newTestAnalyzer(t, []string{
		"Employee may be terminated by either party with 30 days notice.",
	}, gen)

	_, err := a.BuildFullReport(context.Background())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "parse_error")
}

func TestStructuredAnalysis_ParseError(t *testing.T) {
	gen := &fakeGenerator{response: "```\nnot json\n```"}
	a := newTestAnalyzer(t, []string{
		"Salary shall be paid monthly in arrears on the last working day.",
	}, gen)

	_, err := a.StructuredAnalysis(context.Background(), 2)
	var parseErr *llm.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Contains(t, parseErr.Payload()["parse_error"], "not json")
}

func TestGenerateLegalQuestions_ParseError(t *testing.T) {
	gen := &fakeGenerator{response: "I cannot answer that."}
	a := newTestAnalyzer(t, []string{
		"All disputes shall be resolved through binding arbitration in Mumbai.",
	}, gen)

	_, err := a.GenerateLegalQuestions(context.Background(), 3)
	var parseErr *llm.ParseError
	require.ErrorAs(t, err, &parseErr)
}
