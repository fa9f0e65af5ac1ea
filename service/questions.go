package service

import (
	"context"
	"fmt"
	"strings"

	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/models"
)

const defaultQuestionK = 4

const questionSnippetLimit = 600

// Question areas and their retrieval queries.
var questionAreas = []struct {
	name  string
	query string
}{
	{"payment", "Salary / payment schedule / deductions / penalties"},
	{"termination", "Termination terms / notice / severance / penalties"},
	{"confidentiality", "Confidentiality scope / duration / exceptions"},
	{"non_compete", "Non-compete / non-solicit enforceability"},
	{"ip", "IP ownership / inventions / side projects"},
	{"disputes", "Arbitration / jurisdiction / governing law"},
	{"liability", "Liability / indemnity / damages limits"},
}

const questionsSystemPrompt = `You are a senior legal advisor.

Task:
Generate the most important questions the user should ask a lawyer before signing.

Rules:
- Use ONLY the provided evidence
- Each question must include a short reason
- Add citations as clause IDs used to form that question
- Return ONLY valid JSON (no markdown)

Schema:
[
  {
    "question": "string",
    "reason": "string",
    "citations": [1, 5, 9]
  }
]`

// GenerateLegalQuestions retrieves evidence per legal area and asks the
// generation client for cited lawyer-facing questions.
func (a *Analyzer) GenerateLegalQuestions(ctx context.Context, k int) ([]models.LegalQuestion, error) {
	if a.index == nil {
		return nil, ErrNoIndex
	}
	if a.generator == nil {
		return nil, ErrNoGenerator
	}
	if k <= 0 {
		k = defaultQuestionK
	}

	var evidence strings.Builder
	for _, area := range questionAreas {
		hits, err := a.index.Search(ctx, area.query, k)
		if err != nil {
			return nil, fmt.Errorf("question evidence retrieval for %s failed: %w", area.name, err)
		}

		evidence.WriteString("## " + area.name + "\n")
		for _, hit := range hits {
			// Short snippets to keep the prompt small.
			evidence.WriteString(formatClauseBlock(hit.ClauseID, truncate(hit.Text, questionSnippetLimit)))
			evidence.WriteString("\n\n")
		}
	}

	userPrompt := fmt.Sprintf("Evidence:\n%s\nReturn 8-10 high-value questions.", evidence.String())

	raw, err := a.generator.Generate(ctx, questionsSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("question generation failed: %w", err)
	}

	var questions []models.LegalQuestion
	if err := llm.DecodeLenient(raw, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}
