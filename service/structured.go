package service

import (
	"context"
	"fmt"
	"strings"

	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/models"
)

const defaultKPerSection = 5

const sectionBlockLimit = 1200

// Per-section retrieval queries, in schema order.
var analysisSections = []struct {
	name  string
	query string
}{
	{"parties", "Identify parties (Employer / Employee), roles, and relationship"},
	{"term", "Contract term / duration / start date / probation"},
	{"compensation", "salary CTC compensation wages bonus allowance deduction PF ESI reimbursement"},
	{"penalties", "penalty liquidated damages bond compensation clause damages"},
	{"termination", "Termination rights, notice, severance, penalties"},
	{"confidentiality", "Confidentiality scope, duration, exceptions"},
	{"non_compete", "Non-compete / non-solicit restrictions (scope/duration/geo)"},
	{"ip", "IP assignment, inventions, source code ownership"},
	{"disputes", "Dispute resolution, arbitration, governing law, jurisdiction"},
	{"other_red_flags", "Any other obligations that look risky/unfair"},
}

var compensationKeywords = []string{
	"salary", "ctc", "remuneration", "wage", "stipend", "pay", "payable",
	"allowance", "bonus", "deduction", "payslip", "inr", "₹", "rs", "rupees",
	"pf", "esi", "tds", "hra", "lta", "reimbursement",
}

func looksLikeCompensation(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range compensationKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

const structuredSystemPrompt = `You are a legal structured analyst.

Rules:
- Use ONLY provided retrieved clauses
- If info not found, write "Not found"
- Always cite with [Clause N]
- Return ONLY valid JSON (no markdown)
- If a section is "Not found", output: {"answer":"Not found","citations":[]}
- Do NOT cite clauses unless they directly contain the information.
- "non_compete" MUST be based only on clauses that mention competing or restraint.

Schema:
{
  "parties": {"answer": "...", "citations": [1,2]},
  "term": {"answer": "...", "citations": []},
  "compensation": {"answer": "...", "citations": []},
  "penalties": {"answer": "...", "citations": []},
  "termination": {"answer": "...", "citations": []},
  "confidentiality": {"answer": "...", "citations": []},
  "non_compete": {"answer": "...", "citations": []},
  "ip": {"answer": "...", "citations": []},
  "disputes": {"answer": "...", "citations": []},
  "other_red_flags": [
    {"issue": "...", "citations": [4]}
  ]
}`

// StructuredAnalysis retrieves evidence per contract section and asks the
// generation client for a cited per-section breakdown.
func (a *Analyzer) StructuredAnalysis(ctx context.Context, kPerSection int) (*models.StructuredAnalysis, error) {
	if a.index == nil {
		return nil, ErrNoIndex
	}
	if a.generator == nil {
		return nil, ErrNoGenerator
	}
	if kPerSection <= 0 {
		kPerSection = defaultKPerSection
	}

	var evidence strings.Builder
	for _, section := range analysisSections {
		hits, err := a.index.Search(ctx, section.query, kPerSection)
		if err != nil {
			return nil, fmt.Errorf("section retrieval for %s failed: %w", section.name, err)
		}

		var blocks []string
		for _, hit := range hits {
			if section.name == "compensation" && !looksLikeCompensation(hit.Text) {
				continue
			}
			text := hit.Text
			if len(text) > sectionBlockLimit {
				text = text[:sectionBlockLimit]
			}
			blocks = append(blocks, formatClauseBlock(hit.ClauseID, text))
		}

		evidence.WriteString("## " + section.name + "\n")
		if len(blocks) == 0 {
			evidence.WriteString("Not found\n\n")
		} else {
			evidence.WriteString(strings.Join(blocks, "\n\n") + "\n\n")
		}
	}

	userPrompt := fmt.Sprintf(
		"Retrieved evidence per section:\n%s\nCreate a structured contract analysis following the schema.",
		evidence.String())

	raw, err := a.generator.Generate(ctx, structuredSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("structured analysis generation failed: %w", err)
	}

	var analysis models.StructuredAnalysis
	if err := llm.DecodeLenient(raw, &analysis); err != nil {
		return nil, err
	}
	return &analysis, nil
}
