package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/models"
)

const defaultPlanK = 5

// Allowed plan intents, each mapping to the single tool it runs.
var intentTools = map[string]string{
	"qa":                    "qa",
	"summary_only":          "summarize_contract",
	"key_clauses_only":      "extract_key_clauses",
	"structured_only":       "structured_analysis",
	"unclear_only":          "find_unclear_or_missing",
	"lawyer_questions_only": "generate_legal_questions",
	"risk_only":             "analyze_full_contract_risk",
	"full_report":           "build_full_report",
}

var modeTagPattern = regexp.MustCompile(`(?is)^\s*__MODE__\s*:\s*([a-z_]+)\s*\n?(.*)$`)

const plannerSystemPrompt = `You are a planning router for a contract analyzer.

You MUST return a JSON plan with:
- intent
- k
- steps: list of tools to call (in order)

Available tools (exact names):
- summarize_contract
- extract_key_clauses
- structured_analysis
- find_unclear_or_missing
- generate_legal_questions
- analyze_full_contract_risk
- build_full_report
- qa  (means normal Q&A: retrieval + rule_based + fallback LLM)

Allowed intents:
- qa
- summary_only
- key_clauses_only
- structured_only
- unclear_only
- lawyer_questions_only
- risk_only
- full_report

Rules:
- Return ONLY JSON. No markdown.
- Otherwise default qa -> steps=[qa]

Schema:
{
  "intent": "qa",
  "k": 5,
  "steps": [{"tool":"qa","args":{}}],
  "notes": ""
}`

// extractModeTag peels a leading "__MODE__:xyz" tag off the query. Returns
// the mode and the remaining text, or "" when the tag is absent or names an
// unknown intent.
func extractModeTag(raw string) (string, string) {
	m := modeTagPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return "", raw
	}
	mode := strings.ToLower(strings.TrimSpace(m[1]))
	if _, ok := intentTools[mode]; !ok {
		return "", raw
	}
	return mode, strings.TrimSpace(m[2])
}

func singleToolPlan(intent string, notes string) *models.Plan {
	return &models.Plan{
		Intent: intent,
		K:      defaultPlanK,
		Steps:  []models.PlanStep{{Tool: intentTools[intent], Args: map[string]any{}}},
		Notes:  notes,
	}
}

// Plan maps a user query onto an ordered tool plan. An explicit mode tag
// wins; a few deterministic overrides come next; everything else goes to the
// LLM planner, which degrades to a plain qa plan on malformed output.
func (a *Analyzer) Plan(ctx context.Context, userQuery string) (*models.Plan, error) {
	raw := strings.TrimSpace(userQuery)

	if mode, _ := extractModeTag(raw); mode != "" {
		return singleToolPlan(mode, "mode_tag_override"), nil
	}

	q := strings.ToLower(raw)
	switch {
	case q == "report":
		return singleToolPlan("full_report", "deterministic_override"), nil
	case strings.Contains(q, "risk"):
		return singleToolPlan("risk_only", "deterministic_override"), nil
	case strings.Contains(q, "summary") && strings.Contains(q, "only"):
		return singleToolPlan("summary_only", "deterministic_override"), nil
	}

	if a.generator == nil {
		return nil, ErrNoGenerator
	}

	userPrompt := fmt.Sprintf("User query:\n%s\n\nReturn the plan JSON.", raw)
	resp, err := a.generator.Generate(ctx, plannerSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("planner generation failed: %w", err)
	}

	var plan models.Plan
	if err := llm.DecodeLenient(resp, &plan); err != nil {
		log.Printf("Warning: planner output unparseable, defaulting to qa")
		return singleToolPlan("qa", "planner_parse_error"), nil
	}

	if plan.Intent == "" {
		plan.Intent = "qa"
	}
	if plan.K <= 0 {
		plan.K = defaultPlanK
	}
	if len(plan.Steps) == 0 {
		tool, ok := intentTools[plan.Intent]
		if !ok {
			plan.Intent = "qa"
			tool = "qa"
		}
		plan.Steps = []models.PlanStep{{Tool: tool, Args: map[string]any{}}}
	}
	return &plan, nil
}

// PlanForMode builds the plan for an explicitly requested mode, bypassing
// the planner entirely. Returns an error for unknown modes.
func PlanForMode(mode string, k int) (*models.Plan, error) {
	if _, ok := intentTools[mode]; !ok {
		return nil, fmt.Errorf("invalid mode: %s", mode)
	}
	plan := singleToolPlan(mode, "mode_param_override")
	if k > 0 {
		plan.K = k
	}
	return plan, nil
}
