package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"contract-analyzer-backend/confidence"
	"contract-analyzer-backend/models"
	"contract-analyzer-backend/rules"
)

const (
	// StrongEvidenceThreshold is the minimum per-clause confidence for a
	// clause to be surfaced as a citation.
	StrongEvidenceThreshold = 0.55

	ruleConfidenceFloor = 0.80
	ruleConfidenceBoost = 0.10
	ruleConfidenceCap   = 0.98
)

const qaSystemPrompt = `You are a legal contract analysis assistant.
Answer strictly using the provided clauses.
Cite supporting clauses inline with [Clause N].
If the clauses do not contain the answer, reply exactly "Not found".
Do not hallucinate.`

var clauseMarkerPattern = regexp.MustCompile(`\[Clause\s+(\d+)\]`)

// RunQA answers a question about the contract. It retrieves the top-k
// clauses, tries the deterministic rule matcher first, and falls back to the
// generation client when no rule applies. Retrieval failures abort the query;
// a rule miss does not.
func (a *Analyzer) RunQA(ctx context.Context, query string, k int) (*models.AnswerResult, error) {
	if a.index == nil {
		return nil, ErrNoIndex
	}

	hits, err := a.index.SearchWithScores(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	distances := make([]float64, len(hits))
	evidence := make([]models.Evidence, len(hits))
	for i, hit := range hits {
		distances[i] = hit.Distance
		evidence[i] = models.Evidence{
			ClauseID:   hit.ClauseID,
			Confidence: confidence.FromDistance(hit.Distance, a.alpha),
		}
	}
	sort.Slice(evidence, func(i, j int) bool {
		return evidence[i].ClauseID < evidence[j].ClauseID
	})

	avgConf := confidence.Average(distances, a.alpha)
	topConf := confidence.Top(distances, a.alpha)

	result := &models.AnswerResult{
		Citations: strongCitations(evidence),
		Evidence:  evidence,
	}

	answer, ruleErr := rules.Answer(query, hits)
	switch {
	case ruleErr == nil:
		result.Answer = answer
		result.Method = models.MethodRuleBased
		conf := topConf + ruleConfidenceBoost
		if conf < ruleConfidenceFloor {
			conf = ruleConfidenceFloor
		}
		if conf > ruleConfidenceCap {
			conf = ruleConfidenceCap
		}
		result.Confidence = conf

	case errors.Is(ruleErr, rules.ErrNoRuleMatch):
		answer, err := a.answerWithLLM(ctx, query, hits)
		if err != nil {
			return nil, err
		}
		result.Answer = answer
		result.Method = models.MethodLLM
		result.Confidence = avgConf
		if isNotFound(answer) {
			result.Citations = []int{}
		}

	default:
		return nil, ruleErr
	}

	result.AnswerCitations = parseAnswerCitations(result.Answer)
	return result, nil
}

// answerWithLLM asks the generation client to answer from the retrieved
// clauses only. Generation failures propagate to the caller.
func (a *Analyzer) answerWithLLM(ctx context.Context, query string, hits []models.SearchHit) (string, error) {
	if a.generator == nil {
		return "", ErrNoGenerator
	}

	blocks := make([]string, len(hits))
	for i, hit := range hits {
		blocks[i] = formatClauseBlock(hit.ClauseID, hit.Text)
	}

	userPrompt := fmt.Sprintf("Contract clauses:\n%s\n\nQuestion:\n%s",
		strings.Join(blocks, "\n\n"), query)

	answer, err := a.generator.Generate(ctx, qaSystemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("fallback answer failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// formatClauseBlock renders a clause for LLM context as "[Clause N] text".
// A non-positive id renders as "[Clause ?]".
func formatClauseBlock(clauseID int, text string) string {
	if clauseID <= 0 {
		return "[Clause ?] " + text
	}
	return fmt.Sprintf("[Clause %d] %s", clauseID, text)
}

// strongCitations returns the deduplicated ascending clause ids whose
// evidence confidence clears the strong threshold.
func strongCitations(evidence []models.Evidence) []int {
	citations := []int{}
	seen := make(map[int]bool)
	for _, ev := range evidence {
		if ev.Confidence >= StrongEvidenceThreshold && !seen[ev.ClauseID] {
			seen[ev.ClauseID] = true
			citations = append(citations, ev.ClauseID)
		}
	}
	sort.Ints(citations)
	return citations
}

// parseAnswerCitations extracts the clause ids the answer text actually
// references via [Clause N] markers, ascending and deduplicated.
func parseAnswerCitations(answer string) []int {
	matches := clauseMarkerPattern.FindAllStringSubmatch(answer, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	var ids []int
	for _, m := range matches {
		id, err := strconv.Atoi(m[1])
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func isNotFound(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "not found")
}
