package service

import (
	"context"
	"fmt"

	"contract-analyzer-backend/models"
)

// toolEntry binds a tool name to its result key and runner. The table is the
// executor's whole dispatch surface; adding a tool means adding a row.
type toolEntry struct {
	name      string
	resultKey string
	run       func(ctx context.Context, a *Analyzer, userQuery string, args map[string]any, k int) (any, error)
}

var toolTable = []toolEntry{
	{
		name:      "qa",
		resultKey: "qa",
		run: func(ctx context.Context, a *Analyzer, userQuery string, _ map[string]any, k int) (any, error) {
			return a.RunQA(ctx, userQuery, k)
		},
	},
	{
		name:      "build_full_report",
		resultKey: "full_report",
		run: func(ctx context.Context, a *Analyzer, _ string, _ map[string]any, _ int) (any, error) {
			return a.BuildFullReport(ctx)
		},
	},
	{
		name:      "analyze_full_contract_risk",
		resultKey: "risk_report",
		run: func(ctx context.Context, a *Analyzer, _ string, _ map[string]any, _ int) (any, error) {
			return a.AnalyzeFullContractRisk(ctx)
		},
	},
	{
		name:      "summarize_contract",
		resultKey: "summary",
		run: func(ctx context.Context, a *Analyzer, _ string, args map[string]any, _ int) (any, error) {
			return a.SummarizeContract(ctx, intArg(args, "max_clauses", defaultSummaryClauses))
		},
	},
	{
		name:      "extract_key_clauses",
		resultKey: "key_clauses",
		run: func(ctx context.Context, a *Analyzer, _ string, args map[string]any, _ int) (any, error) {
			return a.ExtractKeyClauses(ctx, intArg(args, "top_k", defaultKeyClausesTopK))
		},
	},
	{
		name:      "structured_analysis",
		resultKey: "structured_analysis",
		run: func(ctx context.Context, a *Analyzer, _ string, args map[string]any, _ int) (any, error) {
			return a.StructuredAnalysis(ctx, intArg(args, "k_per_section", defaultKPerSection))
		},
	},
	{
		name:      "find_unclear_or_missing",
		resultKey: "unclear_or_missing",
		run: func(ctx context.Context, a *Analyzer, _ string, _ map[string]any, _ int) (any, error) {
			return a.FindUnclearOrMissing()
		},
	},
	{
		name:      "generate_legal_questions",
		resultKey: "lawyer_questions",
		run: func(ctx context.Context, a *Analyzer, _ string, args map[string]any, _ int) (any, error) {
			return a.GenerateLegalQuestions(ctx, intArg(args, "k", defaultQuestionK))
		},
	},
}

func lookupTool(name string) (toolEntry, bool) {
	for _, entry := range toolTable {
		if entry.name == name {
			return entry, true
		}
	}
	return toolEntry{}, false
}

// intArg reads an integer step argument, tolerating the float64 that JSON
// decoding produces.
func intArg(args map[string]any, key string, fallback int) int {
	v, ok := args[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		if n > 0 {
			return n
		}
	case float64:
		if n > 0 {
			return int(n)
		}
	}
	return fallback
}

// Execute runs a plan's steps in order. An unknown tool is recorded as a
// per-step error string and execution continues; a failing known tool aborts.
// When exactly one result was produced it is returned unwrapped.
func (a *Analyzer) Execute(ctx context.Context, plan *models.Plan, userQuery string) (any, error) {
	if plan == nil {
		plan = &models.Plan{}
	}
	k := plan.K
	if k <= 0 {
		k = defaultPlanK
	}

	steps := plan.Steps
	if len(steps) == 0 {
		// Legacy intent-only plans synthesize their single step.
		tool, ok := intentTools[plan.Intent]
		if !ok {
			tool = "qa"
		}
		steps = []models.PlanStep{{Tool: tool, Args: map[string]any{}}}
	}

	results := make(map[string]any)
	for i, step := range steps {
		entry, ok := lookupTool(step.Tool)
		if !ok {
			results[fmt.Sprintf("step_%d_error", i)] = fmt.Sprintf("Unknown tool: %s", step.Tool)
			continue
		}

		value, err := entry.run(ctx, a, userQuery, step.Args, k)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s) failed: %w", i, step.Tool, err)
		}
		results[entry.resultKey] = value
	}

	if len(results) == 1 {
		for _, v := range results {
			return v, nil
		}
	}
	return results, nil
}
