package service

import "strings"

// Clause type keywords, checked in order. Classification accuracy is best
// effort; the labels only feed the missing-clause risk scorer and clause
// lookups.
var clauseTypeKeywords = []struct {
	clauseType string
	keywords   []string
}{
	{"termination", []string{"terminate", "termination", "cancel", "end this agreement"}},
	{"payment", []string{"payment", "fee", "compensation", "invoice", "charges", "salary"}},
	{"liability", []string{"liability", "indemnify", "damages", "loss"}},
	{"confidentiality", []string{"confidential", "non-disclosure", "nda"}},
	{"governing_law", []string{"governing law", "jurisdiction", "court"}},
}

// ClassifyClause assigns a clause type by keyword presence, "unknown" when
// nothing matches.
func ClassifyClause(text string) string {
	lower := strings.ToLower(text)
	for _, entry := range clauseTypeKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.clauseType
			}
		}
	}
	return "unknown"
}

// ClassifyClauses labels a batch of clause texts in order.
func ClassifyClauses(texts []string) []string {
	types := make([]string, len(texts))
	for i, text := range texts {
		types[i] = ClassifyClause(text)
	}
	return types
}
