package models

// AnswerMethod identifies which path produced a QA answer.
type AnswerMethod string

const (
	MethodRuleBased AnswerMethod = "rule_based"
	MethodLLM       AnswerMethod = "llm"
)

// AnswerResult is the structured output of a QA run.
//
// Citations lists the clause IDs whose evidence confidence cleared the strong
// threshold, independent of which clauses the answer actually quotes.
// AnswerCitations lists the [Clause N] markers found in the answer text
// itself, so the two derivations can be compared.
type AnswerResult struct {
	Answer          string       `json:"answer"`
	Confidence      float64      `json:"confidence"`
	Method          AnswerMethod `json:"method"`
	Citations       []int        `json:"citations"`
	AnswerCitations []int        `json:"answer_citations,omitempty"`
	Evidence        []Evidence   `json:"evidence"`
}
