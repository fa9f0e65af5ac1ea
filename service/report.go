package service

import (
	"context"
	"errors"
	"log"

	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/models"
)

// BuildFullReport assembles every analysis section into one report.
// A section whose model output fails to parse is replaced by its
// {"parse_error": ...} payload so the remaining sections still land;
// any other failure aborts the report.
func (a *Analyzer) BuildFullReport(ctx context.Context) (*models.FullReport, error) {
	report := &models.FullReport{}

	summary, err := a.SummarizeContract(ctx, defaultSummaryClauses)
	report.Summary, err = degradeSection("summary", summary, err)
	if err != nil {
		return nil, err
	}

	keyClauses, err := a.ExtractKeyClauses(ctx, defaultKeyClausesTopK)
	report.KeyClauses, err = degradeSection("key_clauses", keyClauses, err)
	if err != nil {
		return nil, err
	}

	structured, err := a.StructuredAnalysis(ctx, defaultKPerSection)
	report.StructuredAnalysis, err = degradeSection("structured_analysis", structured, err)
	if err != nil {
		return nil, err
	}

	risk, err := a.AnalyzeFullContractRisk(ctx)
	report.RiskReport, err = degradeSection("risk_report", risk, err)
	if err != nil {
		return nil, err
	}

	unclear, err := a.FindUnclearOrMissing()
	report.UnclearOrMissing, err = degradeSection("unclear_or_missing", unclear, err)
	if err != nil {
		return nil, err
	}

	questions, err := a.GenerateLegalQuestions(ctx, defaultQuestionK)
	report.LawyerQuestions, err = degradeSection("questions_to_ask_lawyer", questions, err)
	if err != nil {
		return nil, err
	}

	return report, nil
}

// degradeSection converts a section's parse failure into its sentinel
// payload; any other error is passed through to abort the report.
func degradeSection(name string, value any, err error) (any, error) {
	if err == nil {
		return value, nil
	}
	var parseErr *llm.ParseError
	if errors.As(err, &parseErr) {
		log.Printf("Warning: section %s degraded to parse_error payload", name)
		return parseErr.Payload(), nil
	}
	return nil, err
}
