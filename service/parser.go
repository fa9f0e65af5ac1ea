package service

import (
	"regexp"
	"strings"
)

// Fragments shorter than this many words are dropped as parsing noise.
const minClauseWords = 15

var (
	signatureRunPattern = regexp.MustCompile(`_{3,}`)
	pageNumberPattern   = regexp.MustCompile(`(?i)page\s*\d+`)

	// Legal numbering at a line start: 1  1.  1)  1.1  2.3.4  (1)
	clauseNumberPattern = regexp.MustCompile(`\n\s*\(?\d+(?:\.\d+)*\)?[\.\)]?\s+`)
)

var signatureWords = []string{"director", "employee", "signature"}

// CleanRawText strips signature runs, page numbers, and signature-label
// lines from extracted contract text.
func CleanRawText(text string) string {
	text = signatureRunPattern.ReplaceAllString(text, "")

	var cleaned []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if pageNumberPattern.MatchString(stripped) {
			continue
		}
		if containsAnyWord(strings.ToLower(stripped), signatureWords) {
			continue
		}
		cleaned = append(cleaned, stripped)
	}
	return strings.Join(cleaned, "\n")
}

// SplitIntoClauses cleans raw contract text and splits it on legal numbering
// patterns, dropping fragments too short to be a clause.
func SplitIntoClauses(text string) []string {
	text = CleanRawText(text)

	var clauses []string
	for _, part := range clauseNumberPattern.Split(text, -1) {
		part = strings.TrimSpace(part)
		if len(strings.Fields(part)) < minClauseWords {
			continue
		}
		clauses = append(clauses, part)
	}
	return clauses
}

func containsAnyWord(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
