package models

// PlanStep is one tool invocation in an execution plan.
type PlanStep struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Plan maps a user request onto an ordered list of analysis tools.
type Plan struct {
	Intent string     `json:"intent"`
	K      int        `json:"k"`
	Steps  []PlanStep `json:"steps"`
	Notes  string     `json:"notes"`
}
