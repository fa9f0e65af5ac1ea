package service

import (
	"context"
	"fmt"
	"strings"

	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/models"
)

const defaultSummaryClauses = 40

const summarySystemPrompt = `You are a legal contract summarizer.

Rules:
- Summarize ONLY from provided clauses
- Include clause citations like [Clause 12]
- Return ONLY valid JSON (no markdown, no triple backticks)

JSON schema:
{
  "summary": "short paragraph",
  "bullets": ["..."],
  "key_citations": [12, 5, 9]
}`

// SummarizeContract produces a cited executive summary from the first
// maxClauses clauses. A non-positive maxClauses uses the default cap.
func (a *Analyzer) SummarizeContract(ctx context.Context, maxClauses int) (*models.ContractSummary, error) {
	if a.corpus == nil {
		return nil, ErrNoCorpus
	}
	if a.generator == nil {
		return nil, ErrNoGenerator
	}

	if maxClauses <= 0 {
		maxClauses = defaultSummaryClauses
	}
	clauses := a.corpus.Clauses
	if len(clauses) > maxClauses {
		clauses = clauses[:maxClauses]
	}

	blocks := make([]string, len(clauses))
	for i, c := range clauses {
		blocks[i] = formatClauseBlock(c.ClauseID, c.Text)
	}

	userPrompt := fmt.Sprintf(
		"Contract clauses:\n%s\n\nCreate a clear executive summary + 5-10 bullet points.",
		strings.Join(blocks, "\n\n"))

	raw, err := a.generator.Generate(ctx, summarySystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("summary generation failed: %w", err)
	}

	var summary models.ContractSummary
	if err := llm.DecodeLenient(raw, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
