package service

import (
	"fmt"
	"strings"

	"contract-analyzer-backend/models"
)

// Text renderers for CLI output. Each takes the typed result of the matching
// analysis call.

func joinInts(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}

// FormatQA renders an answer with its method, confidence band, and citations.
func FormatQA(result *models.AnswerResult) string {
	if result == nil {
		return ""
	}

	var out strings.Builder
	fmt.Fprintf(&out, "[QA via %s] (confidence: %.2f)\n\n", result.Method, result.Confidence)

	if result.Confidence < 0.45 {
		out.WriteString("Very low confidence. Retrieved clauses weakly match the query.\n\n")
	} else if result.Confidence < 0.60 {
		out.WriteString("Moderate confidence. Consider reviewing cited clauses.\n\n")
	}

	out.WriteString(strings.TrimSpace(result.Answer))
	if len(result.Citations) > 0 {
		out.WriteString("\n\nCitations: " + joinInts(result.Citations))
	}
	return out.String()
}

// FormatSummary renders the executive summary section.
func FormatSummary(summary *models.ContractSummary) string {
	if summary == nil {
		return ""
	}

	var out strings.Builder
	out.WriteString("\n=== CONTRACT SUMMARY ===\n\n")
	out.WriteString(summary.Summary + "\n\n")

	if len(summary.Bullets) > 0 {
		out.WriteString("Key Points:\n")
		for _, b := range summary.Bullets {
			out.WriteString("- " + b + "\n")
		}
	}
	if len(summary.KeyCitations) > 0 {
		out.WriteString("\nKey Clauses Referenced: " + joinInts(summary.KeyCitations))
	}
	return out.String()
}

// FormatKeyClauses renders the per-topic key clause listing in topic order.
func FormatKeyClauses(keyClauses map[string][]models.KeyClause) string {
	var out strings.Builder
	out.WriteString("\n=== KEY CLAUSES ===\n")

	for _, topic := range keyTopics {
		clauses, ok := keyClauses[topic.name]
		if !ok {
			continue
		}
		out.WriteString("\n" + strings.ToUpper(topic.name) + ":\n")
		if len(clauses) == 0 {
			out.WriteString("  Not found\n")
			continue
		}
		for _, c := range clauses {
			id := "?"
			if c.ClauseID != nil {
				id = fmt.Sprintf("%d", *c.ClauseID)
			}
			fmt.Fprintf(&out, "\n  Clause %s:\n  %s\n", id, truncate(c.ClauseText, 500))
		}
	}
	return out.String()
}

func formatSection(out *strings.Builder, name string, section models.SectionAnswer) {
	out.WriteString("\n" + strings.ToUpper(name) + ":\n" + section.Answer + "\n")
	if len(section.Citations) > 0 {
		out.WriteString("(Citations: " + joinInts(section.Citations) + ")\n")
	}
}

// FormatStructuredAnalysis renders every named section plus the red flags.
func FormatStructuredAnalysis(analysis *models.StructuredAnalysis) string {
	if analysis == nil {
		return ""
	}

	var out strings.Builder
	out.WriteString("\n=== STRUCTURED ANALYSIS ===\n")

	formatSection(&out, "parties", analysis.Parties)
	formatSection(&out, "term", analysis.Term)
	formatSection(&out, "compensation", analysis.Compensation)
	formatSection(&out, "penalties", analysis.Penalties)
	formatSection(&out, "termination", analysis.Termination)
	formatSection(&out, "confidentiality", analysis.Confidentiality)
	formatSection(&out, "non_compete", analysis.NonCompete)
	formatSection(&out, "ip", analysis.IP)
	formatSection(&out, "disputes", analysis.Disputes)

	if len(analysis.OtherRedFlags) > 0 {
		out.WriteString("\nOTHER_RED_FLAGS:\n")
		for _, flag := range analysis.OtherRedFlags {
			out.WriteString("- " + flag.Issue + "\n")
			if len(flag.Citations) > 0 {
				out.WriteString("  (Citations: " + joinInts(flag.Citations) + ")\n")
			}
		}
	}
	return out.String()
}

// FormatUnclear renders the vague/missing clause issue list.
func FormatUnclear(issues []models.ClauseIssue) string {
	var out strings.Builder
	out.WriteString("\n=== UNCLEAR / MISSING CLAUSES ===\n")

	if len(issues) == 0 {
		out.WriteString("\nNo vague or missing clauses detected.\n")
		return out.String()
	}
	for _, issue := range issues {
		fmt.Fprintf(&out, "\nClause %d | %s\n%s\n", issue.ClauseID, issue.IssueType,
			truncate(issue.Snippet, 400))
	}
	return out.String()
}

// FormatLawyerQuestions renders the numbered question list.
func FormatLawyerQuestions(questions []models.LegalQuestion) string {
	var out strings.Builder
	out.WriteString("\n=== QUESTIONS TO ASK A LAWYER ===\n")

	for i, q := range questions {
		fmt.Fprintf(&out, "\n%d. %s\n   Reason: %s\n", i+1, q.Question, q.Reason)
		if len(q.Citations) > 0 {
			out.WriteString("   (Citations: " + joinInts(q.Citations) + ")\n")
		}
	}
	return out.String()
}

// FormatRiskReport renders present, missing, and additional risks.
func FormatRiskReport(report *models.RiskReport) string {
	if report == nil {
		return ""
	}

	var out strings.Builder
	out.WriteString("\n=== FULL CONTRACT RISK REPORT ===\n")

	if len(report.PresentRisks) > 0 {
		out.WriteString("\nPRESENT RISKS:\n")
		for _, r := range report.PresentRisks {
			fmt.Fprintf(&out, "\nClause %d | %s | %s\n", r.ClauseID, r.RiskType, r.RiskLevel)
			fmt.Fprintf(&out, "Confidence: %.3f\n", r.Confidence)
			out.WriteString("Explanation: " + r.Explanation + "\n")
			out.WriteString("Mitigation: " + r.Mitigation + "\n")
		}
	}

	if report.MissingRisks != nil && len(report.MissingRisks.Findings) > 0 {
		out.WriteString("\nMISSING CLAUSES:\n")
		for _, f := range report.MissingRisks.Findings {
			out.WriteString("- " + f + "\n")
		}
	}

	if len(report.AdditionalRisks) > 0 {
		out.WriteString("\nADDITIONAL RISKS:\n")
		for _, r := range report.AdditionalRisks {
			fmt.Fprintf(&out, "- %s (%s)\n", r.RiskType, r.RiskLevel)
		}
	}

	for section, msg := range report.SectionErrors {
		fmt.Fprintf(&out, "\n[%s unavailable: %s]\n", section, truncate(msg, 200))
	}
	return out.String()
}

// FormatFullReport renders all report sections that parsed. Sections that
// degraded to a parse_error payload are noted and skipped.
func FormatFullReport(report *models.FullReport) string {
	if report == nil {
		return ""
	}

	var out strings.Builder
	out.WriteString("\n==============================\n")
	out.WriteString(" COMPLETE CONTRACT REPORT\n")
	out.WriteString("==============================\n")

	sections := []struct {
		name  string
		value any
	}{
		{"summary", report.Summary},
		{"key_clauses", report.KeyClauses},
		{"structured_analysis", report.StructuredAnalysis},
		{"risk_report", report.RiskReport},
		{"unclear_or_missing", report.UnclearOrMissing},
		{"questions_to_ask_lawyer", report.LawyerQuestions},
	}

	for _, section := range sections {
		switch v := section.value.(type) {
		case *models.ContractSummary:
			out.WriteString(FormatSummary(v))
		case map[string][]models.KeyClause:
			out.WriteString(FormatKeyClauses(v))
		case *models.StructuredAnalysis:
			out.WriteString(FormatStructuredAnalysis(v))
		case *models.RiskReport:
			out.WriteString(FormatRiskReport(v))
		case []models.ClauseIssue:
			out.WriteString(FormatUnclear(v))
		case []models.LegalQuestion:
			out.WriteString(FormatLawyerQuestions(v))
		default:
			fmt.Fprintf(&out, "\n[%s unavailable]\n", section.name)
		}
		out.WriteString("\n")
	}
	return out.String()
}
