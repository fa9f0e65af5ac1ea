package models

// ContractSummary is the LLM-produced executive summary with clause citations.
type ContractSummary struct {
	Summary      string   `json:"summary"`
	Bullets      []string `json:"bullets"`
	KeyCitations []int    `json:"key_citations"`
}

// KeyClause is one extracted clause for a key topic. ClauseID is nil for the
// "Not found" placeholder entry.
type KeyClause struct {
	ClauseID   *int   `json:"clause_id"`
	ClauseText string `json:"clause_text"`
}

// SectionAnswer is one structured-analysis section with its citations.
type SectionAnswer struct {
	Answer    string `json:"answer"`
	Citations []int  `json:"citations"`
}

// RedFlag is a structured-analysis finding outside the named sections.
type RedFlag struct {
	Issue     string `json:"issue"`
	Citations []int  `json:"citations"`
}

// StructuredAnalysis is the per-section contract breakdown.
type StructuredAnalysis struct {
	Parties         SectionAnswer `json:"parties"`
	Term            SectionAnswer `json:"term"`
	Compensation    SectionAnswer `json:"compensation"`
	Penalties       SectionAnswer `json:"penalties"`
	Termination     SectionAnswer `json:"termination"`
	Confidentiality SectionAnswer `json:"confidentiality"`
	NonCompete      SectionAnswer `json:"non_compete"`
	IP              SectionAnswer `json:"ip"`
	Disputes        SectionAnswer `json:"disputes"`
	OtherRedFlags   []RedFlag     `json:"other_red_flags"`
}

// ClauseIssue flags vague language or blank fields in a clause.
type ClauseIssue struct {
	ClauseID  int    `json:"clause_id"`
	IssueType string `json:"issue_type"`
	Snippet   string `json:"snippet"`
}

// LegalQuestion is one lawyer-facing question grounded in cited clauses.
type LegalQuestion struct {
	Question  string `json:"question"`
	Reason    string `json:"reason"`
	Citations []int  `json:"citations"`
}

// FullReport bundles every analysis section. Sections that failed to parse
// are replaced by a {"parse_error": ...} payload, so the map values stay
// loosely typed at this assembly level only.
type FullReport struct {
	Summary            any `json:"summary"`
	KeyClauses         any `json:"key_clauses"`
	StructuredAnalysis any `json:"structured_analysis"`
	RiskReport         any `json:"risk_report"`
	UnclearOrMissing   any `json:"unclear_or_missing"`
	LawyerQuestions    any `json:"questions_to_ask_lawyer"`
}
