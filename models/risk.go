package models

// RiskLevel is the LLM-assigned severity of a risk finding.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "Low"
	RiskLevelMedium RiskLevel = "Medium"
	RiskLevelHigh   RiskLevel = "High"
)

// RiskFinding is one clause/risk-template pairing that cleared the
// similarity threshold and was judged by the LLM.
type RiskFinding struct {
	RiskType        string    `json:"risk_type"`
	ClauseID        int       `json:"clause_id"`
	RiskLevel       RiskLevel `json:"risk_level"`
	Explanation     string    `json:"explanation"`
	Mitigation      string    `json:"mitigation"`
	SimilarityScore float64   `json:"similarity_score"`
	Confidence      float64   `json:"confidence"`
}

// MissingClauseReport scores the contract on clause types it lacks entirely.
type MissingClauseReport struct {
	RiskScore int      `json:"risk_score"`
	RiskLevel string   `json:"risk_level"`
	Findings  []string `json:"findings"`
}

// DiscoveredRisk is an open-ended LLM finding outside the template set.
type DiscoveredRisk struct {
	RiskType    string    `json:"risk_type"`
	RiskLevel   RiskLevel `json:"risk_level"`
	Explanation string    `json:"explanation"`
	Mitigation  string    `json:"mitigation"`
}

// RiskReport is the full contract risk output. Sections degrade
// independently: a failed section carries its error payload while the
// others are still populated.
type RiskReport struct {
	PresentRisks    []RiskFinding        `json:"present_risks"`
	MissingRisks    *MissingClauseReport `json:"missing_risks,omitempty"`
	AdditionalRisks []DiscoveredRisk     `json:"additional_risks"`
	SectionErrors   map[string]string    `json:"section_errors,omitempty"`
}
