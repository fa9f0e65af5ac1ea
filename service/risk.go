package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"contract-analyzer-backend/llm"
	"contract-analyzer-backend/models"
)

// DefaultRiskThreshold is the minimum clause/template cosine similarity for
// a clause to become a risk candidate.
const DefaultRiskThreshold = 0.55

// Named risk templates. Each is embedded once per analysis and compared
// against every clause.
var riskTemplates = []struct {
	name        string
	description string
}{
	{"Unilateral Termination", "Clause allows one party to terminate without cause or at will."},
	{"Broad Confidentiality", "Confidentiality clause applies indefinitely or worldwide."},
	{"Mandatory Arbitration", "Disputes must be resolved through arbitration instead of court."},
	{"Non-Compete", "Employee restricted from working with competitors after employment."},
	{"Unlimited Liability", "One party bears unlimited liability without cap."},
}

var riskLevelWeights = map[models.RiskLevel]float64{
	models.RiskLevelHigh:   1.00,
	models.RiskLevelMedium: 0.85,
	models.RiskLevelLow:    0.70,
}

// riskCandidate is a clause/template pairing that cleared the similarity
// threshold, awaiting LLM judgment.
type riskCandidate struct {
	riskType   string
	clauseID   int
	clauseText string
	similarity float64
}

const riskJudgeSystemPrompt = `You are a legal risk analysis assistant.

You are given numbered risk candidates, each a contract clause paired with a
predicted risk type. For EVERY candidate, judge the risk.

Rules:
- Return ONLY a valid JSON array (no markdown)
- One entry per candidate, keeping the given candidate numbers

Schema:
[
  {
    "candidate": 1,
    "risk_level": "Low | Medium | High",
    "explanation": "2-3 sentences",
    "mitigation": "suggested improvement"
  }
]`

type riskJudgment struct {
	Candidate   int              `json:"candidate"`
	RiskLevel   models.RiskLevel `json:"risk_level"`
	Explanation string           `json:"explanation"`
	Mitigation  string           `json:"mitigation"`
}

// AnalyzePresentRisks compares every clause against the risk templates and
// sends all candidates above the threshold to the generation client in a
// single batched judgment call. A non-positive threshold uses the default.
func (a *Analyzer) AnalyzePresentRisks(ctx context.Context, threshold float64) ([]models.RiskFinding, error) {
	if a.corpus == nil {
		return nil, ErrNoCorpus
	}
	if a.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if a.generator == nil {
		return nil, ErrNoGenerator
	}
	if threshold <= 0 {
		threshold = DefaultRiskThreshold
	}

	candidates, err := a.findRiskCandidates(ctx, threshold)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []models.RiskFinding{}, nil
	}

	judgments, err := a.judgeRiskCandidates(ctx, candidates)
	if err != nil {
		return nil, err
	}

	findings := make([]models.RiskFinding, 0, len(candidates))
	for i, cand := range candidates {
		judgment, ok := judgments[i+1]
		if !ok {
			log.Printf("Warning: no judgment returned for risk candidate %d (%s, clause %d)",
				i+1, cand.riskType, cand.clauseID)
			continue
		}
		findings = append(findings, models.RiskFinding{
			RiskType:        cand.riskType,
			ClauseID:        cand.clauseID,
			RiskLevel:       judgment.RiskLevel,
			Explanation:     judgment.Explanation,
			Mitigation:      judgment.Mitigation,
			SimilarityScore: round3(cand.similarity),
			Confidence:      round3(riskConfidence(cand.similarity, judgment.RiskLevel, threshold)),
		})
	}
	return findings, nil
}

// findRiskCandidates embeds templates and clauses and pairs every
// combination at or above the similarity threshold.
func (a *Analyzer) findRiskCandidates(ctx context.Context, threshold float64) ([]riskCandidate, error) {
	templateTexts := make([]string, len(riskTemplates))
	for i, tmpl := range riskTemplates {
		templateTexts[i] = tmpl.description
	}
	templateVecs, err := a.embedder.Encode(ctx, templateTexts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed risk templates: %w", err)
	}

	clauseTexts := make([]string, len(a.corpus.Clauses))
	for i, c := range a.corpus.Clauses {
		clauseTexts[i] = c.Text
	}
	clauseVecs, err := a.embedder.Encode(ctx, clauseTexts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed clauses: %w", err)
	}

	var candidates []riskCandidate
	for ci, clause := range a.corpus.Clauses {
		for ti, tmpl := range riskTemplates {
			sim := cosineSimilarity(clauseVecs[ci], templateVecs[ti])
			if sim >= threshold {
				candidates = append(candidates, riskCandidate{
					riskType:   tmpl.name,
					clauseID:   clause.ClauseID,
					clauseText: clause.Text,
					similarity: sim,
				})
			}
		}
	}
	return candidates, nil
}

// judgeRiskCandidates sends all candidates in one call and maps back the
// returned judgments by candidate number.
func (a *Analyzer) judgeRiskCandidates(ctx context.Context, candidates []riskCandidate) (map[int]riskJudgment, error) {
	var b strings.Builder
	for i, cand := range candidates {
		fmt.Fprintf(&b, "Candidate %d\nPredicted Risk Type: %s\nClause %d:\n%s\n\n",
			i+1, cand.riskType, cand.clauseID, cand.clauseText)
	}

	raw, err := a.generator.Generate(ctx, riskJudgeSystemPrompt, b.String())
	if err != nil {
		return nil, fmt.Errorf("risk judgment failed: %w", err)
	}

	var judgments []riskJudgment
	if err := llm.DecodeLenient(raw, &judgments); err != nil {
		return nil, err
	}

	byCandidate := make(map[int]riskJudgment, len(judgments))
	for _, j := range judgments {
		byCandidate[j.Candidate] = j
	}
	return byCandidate, nil
}

// riskConfidence combines similarity, the judged level weight, and a
// threshold-proximity penalty. The penalty maps similarity linearly from
// [threshold, 1.0] to [0.85, 1.0]; at or below the threshold it stays 0.85.
func riskConfidence(similarity float64, level models.RiskLevel, threshold float64) float64 {
	weight, ok := riskLevelWeights[level]
	if !ok {
		weight = riskLevelWeights[models.RiskLevelLow]
	}

	penalty := 0.85
	if similarity > threshold && threshold < 1.0 {
		penalty = 0.85 + 0.15*((similarity-threshold)/(1.0-threshold))
	}
	if penalty > 1.0 {
		penalty = 1.0
	}
	return similarity * weight * penalty
}

// MissingClauseRisk scores the contract on clause types it lacks entirely.
// Purely deterministic over the classifier's type labels.
func (a *Analyzer) MissingClauseRisk() (*models.MissingClauseReport, error) {
	if a.corpus == nil {
		return nil, ErrNoCorpus
	}

	score := 0
	findings := []string{}

	if len(a.corpus.ByType("confidentiality")) == 0 {
		score += 2
		findings = append(findings, "Missing confidentiality clause (High Risk)")
	}
	if len(a.corpus.ByType("termination")) == 0 {
		score += 2
		findings = append(findings, "Missing termination clause (High Risk)")
	}
	if len(a.corpus.ByType("payment")) == 0 {
		score++
		findings = append(findings, "Missing payment clause (Medium Risk)")
	}

	level := "LOW RISK"
	switch {
	case score >= 4:
		level = "HIGH RISK"
	case score >= 2:
		level = "MEDIUM RISK"
	}

	return &models.MissingClauseReport{
		RiskScore: score,
		RiskLevel: level,
		Findings:  findings,
	}, nil
}

const discoverySystemPrompt = `You are a senior employment contract risk analyst.

Identify any significant legal risks or unfair provisions in this contract.

IMPORTANT:
- Do NOT repeat risks already categorized under:
  Unilateral Termination, Broad Confidentiality, Mandatory Arbitration,
  Non-Compete, Penalty, IP Assignment, Indemnity, Unlimited Liability,
  Discretionary Rights, Notice Imbalance, Governing Law, Automatic Renewal.

Return JSON list with:
[
  {
    "risk_type": "Short label",
    "risk_level": "Low | Medium | High",
    "explanation": "brief explanation",
    "mitigation": "suggested improvement"
  }
]
Return ONLY valid JSON.`

// DiscoverAdditionalRisks runs open-ended LLM risk discovery outside the
// template set. Malformed model output degrades to an empty list.
func (a *Analyzer) DiscoverAdditionalRisks(ctx context.Context) ([]models.DiscoveredRisk, error) {
	if a.corpus == nil {
		return nil, ErrNoCorpus
	}
	if a.generator == nil {
		return nil, ErrNoGenerator
	}

	texts := make([]string, len(a.corpus.Clauses))
	for i, c := range a.corpus.Clauses {
		texts[i] = c.Text
	}
	userPrompt := "Analyze this employment contract:\n\n" + strings.Join(texts, "\n\n")

	raw, err := a.generator.Generate(ctx, discoverySystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("risk discovery failed: %w", err)
	}

	var risks []models.DiscoveredRisk
	if err := llm.DecodeLenient(raw, &risks); err != nil {
		var parseErr *llm.ParseError
		if errors.As(err, &parseErr) {
			log.Printf("Warning: risk discovery output unparseable, returning no additional risks")
			return []models.DiscoveredRisk{}, nil
		}
		return nil, err
	}
	return risks, nil
}

// AnalyzeFullContractRisk runs all three risk passes. Each section degrades
// independently: a section's failure is recorded in SectionErrors while the
// other sections are still populated.
func (a *Analyzer) AnalyzeFullContractRisk(ctx context.Context) (*models.RiskReport, error) {
	if a.corpus == nil {
		return nil, ErrNoCorpus
	}

	report := &models.RiskReport{
		PresentRisks:    []models.RiskFinding{},
		AdditionalRisks: []models.DiscoveredRisk{},
	}

	present, err := a.AnalyzePresentRisks(ctx, DefaultRiskThreshold)
	if err != nil {
		report.SectionErrors = addSectionError(report.SectionErrors, "present_risks", err)
	} else {
		report.PresentRisks = present
	}

	missing, err := a.MissingClauseRisk()
	if err != nil {
		report.SectionErrors = addSectionError(report.SectionErrors, "missing_risks", err)
	} else {
		report.MissingRisks = missing
	}

	additional, err := a.DiscoverAdditionalRisks(ctx)
	if err != nil {
		report.SectionErrors = addSectionError(report.SectionErrors, "additional_risks", err)
	} else {
		report.AdditionalRisks = additional
	}

	return report, nil
}

func addSectionError(m map[string]string, section string, err error) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	var parseErr *llm.ParseError
	if errors.As(err, &parseErr) {
		m[section] = "parse_error: " + parseErr.Raw
	} else {
		m[section] = err.Error()
	}
	return m
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
