// Package rules implements deterministic pattern-based QA over retrieved
// clauses. A rule answer is always preferred over the generative fallback.
package rules

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"contract-analyzer-backend/models"
)

// ErrNoRuleMatch signals that no topic applies to the question or that the
// applicable topic found nothing in the supplied clauses. It is a defined
// fallthrough, not a failure.
var ErrNoRuleMatch = errors.New("no rule-based answer")

// Handler answers a topic from candidate clauses, in candidate order, or
// returns ErrNoRuleMatch.
type Handler func(hits []models.SearchHit) (string, error)

type topic struct {
	name       string
	queryWords []string
	handler    Handler
}

// Topics are evaluated in this fixed priority order; the first whose query
// keywords match wins and there is no fallthrough to later topics when its
// handler comes up empty.
var topics = []topic{
	{"payment", []string{"payment", "salary", "compensation", "fee", "remuneration", "wage"}, answerPayment},
	{"penalty", []string{"penalty", "penalties", "liquidated", "damages", "fine"}, answerPenalty},
	{"termination", []string{"terminate", "termination", "end contract", "early termination"}, answerTermination},
	{"confidentiality", []string{"confidential", "nda", "non disclosure", "non-disclosure", "secrecy"}, answerConfidentiality},
	{"ip", []string{"intellectual property", "invention", "copyright", "patent", "ownership of work"}, answerIP},
	{"non_compete", []string{"non-compete", "non compete", "competitor", "compete", "solicit"}, answerNonCompete},
	{"arbitration", []string{"arbitration", "arbitrator", "dispute"}, answerArbitration},
	{"property_return", []string{"return of property", "company property", "return property", "handover"}, answerPropertyReturn},
}

// Answer dispatches the question to at most one topic handler based on
// keyword presence in the query. Returns ErrNoRuleMatch when no topic
// applies or the chosen handler found no clause.
func Answer(query string, hits []models.SearchHit) (string, error) {
	q := strings.ToLower(query)
	for _, tp := range topics {
		for _, word := range tp.queryWords {
			if strings.Contains(q, word) {
				return tp.handler(hits)
			}
		}
	}
	return "", ErrNoRuleMatch
}

// firstClauseMatching returns the first hit, in retrieval order, whose text
// satisfies the predicate.
func firstClauseMatching(hits []models.SearchHit, match func(lower string) bool) (models.SearchHit, bool) {
	for _, hit := range hits {
		if match(strings.ToLower(hit.Text)) {
			return hit, true
		}
	}
	return models.SearchHit{}, false
}

func quote(lead string, hit models.SearchHit) string {
	return fmt.Sprintf("%s\n\nRelevant clause [Clause %d]:\n%s", lead, hit.ClauseID, hit.Text)
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func answerTermination(hits []models.SearchHit) (string, error) {
	hit, ok := firstClauseMatching(hits, func(t string) bool {
		return strings.Contains(t, "terminat") &&
			containsAny(t, "notice", "prior", "before", "early")
	})
	if !ok {
		return "", ErrNoRuleMatch
	}
	return quote("Yes, the contract allows early termination.", hit), nil
}

func answerPayment(hits []models.SearchHit) (string, error) {
	hit, ok := firstClauseMatching(hits, func(t string) bool {
		return containsAny(t, "salary", "payment", "compensation", "remuneration", "wage", "payable")
	})
	if !ok {
		return "", ErrNoRuleMatch
	}
	return quote("The contract sets out the following payment terms.", hit), nil
}

var (
	// Unit-qualified amounts ("2 lakhs", "Rs. 50,000 per month") are
	// preferred over bare numbers, which are often clause numbering.
	unitAmountPattern = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹)?\s*\d[\d,]*(?:\.\d+)?\s*(?:lakhs?|lacs?|crores?|thousand|million)`)
	bareAmountPattern = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹)\s*\d[\d,]*(?:\.\d+)?|\b\d[\d,]{2,}(?:\.\d+)?\b`)
)

// extractAmount pulls an amount-like substring from a penalty clause.
func extractAmount(text string) string {
	if m := unitAmountPattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	if m := bareAmountPattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	return ""
}

func answerPenalty(hits []models.SearchHit) (string, error) {
	hit, ok := firstClauseMatching(hits, func(t string) bool {
		return containsAny(t, "penalty", "liquidated damages", "bond", "forfeit", "recover")
	})
	if !ok {
		return "", ErrNoRuleMatch
	}
	lead := "The contract imposes a penalty."
	if amount := extractAmount(hit.Text); amount != "" {
		lead = fmt.Sprintf("The contract imposes a penalty of %s.", amount)
	}
	return quote(lead, hit), nil
}

func answerConfidentiality(hits []models.SearchHit) (string, error) {
	hit, ok := firstClauseMatching(hits, func(t string) bool {
		return containsAny(t, "confidential", "disclosure", "trade secret", "secrecy")
	})
	if !ok {
		return "", ErrNoRuleMatch
	}
	return quote("Yes, the contract contains a confidentiality obligation.", hit), nil
}

func answerIP(hits []models.SearchHit) (string, error) {
	hit, ok := firstClauseMatching(hits, func(t string) bool {
		return containsAny(t, "intellectual property", "invention", "copyright", "patent", "work product")
	})
	if !ok {
		return "", ErrNoRuleMatch
	}
	return quote("The contract addresses intellectual property ownership.", hit), nil
}

func answerNonCompete(hits []models.SearchHit) (string, error) {
	hit, ok := firstClauseMatching(hits, func(t string) bool {
		return containsAny(t, "compete", "competitor", "solicit", "restraint")
	})
	if !ok {
		return "", ErrNoRuleMatch
	}
	return quote("Yes, the contract restricts competing activities.", hit), nil
}

func answerArbitration(hits []models.SearchHit) (string, error) {
	hit, ok := firstClauseMatching(hits, func(t string) bool {
		return containsAny(t, "arbitration", "arbitrator", "dispute")
	})
	if !ok {
		return "", ErrNoRuleMatch
	}
	return quote("Disputes under this contract are handled as follows.", hit), nil
}

func answerPropertyReturn(hits []models.SearchHit) (string, error) {
	hit, ok := firstClauseMatching(hits, func(t string) bool {
		return containsAny(t, "return") && containsAny(t, "property", "equipment", "materials", "documents", "assets")
	})
	if !ok {
		return "", ErrNoRuleMatch
	}
	return quote("Yes, the contract requires the return of property.", hit), nil
}
