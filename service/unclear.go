package service

import (
	"regexp"
	"strings"

	"contract-analyzer-backend/models"
)

const snippetLimit = 500

var vaguePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\breasonable\b`),
	regexp.MustCompile(`\bas decided by\b`),
	regexp.MustCompile(`\bat the discretion of\b`),
	regexp.MustCompile(`\bfrom time to time\b`),
	regexp.MustCompile(`\bmay be amended\b`),
	regexp.MustCompile(`\bsubject to\b`),
	regexp.MustCompile(`\bas per company policy\b`),
}

var blankPatterns = []*regexp.Regexp{
	regexp.MustCompile(`_{3,}`),
	regexp.MustCompile(`(?i)\bTBD\b`),
	regexp.MustCompile(`(?i)\bto be decided\b`),
	regexp.MustCompile(`(?i)\bto be determined\b`),
	regexp.MustCompile(`(?i)\bN/?A\b`),
}

// FindUnclearOrMissing scans every clause for blank fields and vague
// language. Deterministic; no retrieval or generation involved. A clause can
// be flagged once per issue type.
func (a *Analyzer) FindUnclearOrMissing() ([]models.ClauseIssue, error) {
	if a.corpus == nil {
		return nil, ErrNoCorpus
	}

	issues := []models.ClauseIssue{}
	for _, clause := range a.corpus.Clauses {
		lower := strings.ToLower(clause.Text)

		for _, pat := range blankPatterns {
			if pat.MatchString(clause.Text) {
				issues = append(issues, models.ClauseIssue{
					ClauseID:  clause.ClauseID,
					IssueType: "missing_value",
					Snippet:   truncate(clause.Text, snippetLimit),
				})
				break
			}
		}

		for _, pat := range vaguePatterns {
			if pat.MatchString(lower) {
				issues = append(issues, models.ClauseIssue{
					ClauseID:  clause.ClauseID,
					IssueType: "vague_language",
					Snippet:   truncate(clause.Text, snippetLimit),
				})
				break
			}
		}
	}
	return issues, nil
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
