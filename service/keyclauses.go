package service

import (
	"context"
	"fmt"
	"strings"

	"contract-analyzer-backend/models"
)

// Key-topic retrieval queries, in output order.
var keyTopics = []struct {
	name  string
	query string
}{
	{"termination", "Termination / exit / resignation / notice"},
	{"payment", "salary CTC compensation pay wages bonus allowance deduction PF ESI reimbursement"},
	{"confidentiality", "Confidentiality / NDA / trade secrets"},
	{"non_compete", "Non-compete / non-solicit / restraint"},
	{"ip", "Intellectual property / inventions / source code ownership"},
	{"dispute", "Dispute resolution / arbitration / jurisdiction"},
	{"liability", "Liability / damages / indemnity"},
	{"other_important", "Important obligations, penalties, restrictions, unusual terms, red flags"},
}

var paymentKeywords = []string{
	"salary", "ctc", "remuneration", "wage", "stipend", "payable",
	"allowance", "bonus", "deduction", "payslip", "inr", "₹", "rs.", "rupees",
}

// Distances above these are treated as weak matches and dropped. Tuned for
// the squared L2 scale of the flat index; payment is held stricter because
// its query matches generic obligation language too easily.
const (
	defaultMaxDistance = 1.20
	paymentMaxDistance = 1.10
)

const defaultKeyClausesTopK = 3

func looksLikePayment(text string) bool {
	t := strings.ToLower(text)
	for _, kw := range paymentKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// ExtractKeyClauses retrieves up to topK clauses per key topic, filtered by
// distance. Topics with no surviving clause get a single "Not found"
// placeholder entry so the output shape is stable.
func (a *Analyzer) ExtractKeyClauses(ctx context.Context, topK int) (map[string][]models.KeyClause, error) {
	if a.index == nil {
		return nil, ErrNoIndex
	}
	if topK <= 0 {
		topK = defaultKeyClausesTopK
	}

	results := make(map[string][]models.KeyClause, len(keyTopics))
	for _, topic := range keyTopics {
		// Over-fetch so the distance filter still leaves topK survivors.
		hits, err := a.index.SearchWithScores(ctx, topic.query, topK*5)
		if err != nil {
			return nil, fmt.Errorf("key clause retrieval for %s failed: %w", topic.name, err)
		}

		maxDist := defaultMaxDistance
		if topic.name == "payment" {
			maxDist = paymentMaxDistance
		}

		var picked []models.KeyClause
		for _, hit := range hits {
			if hit.Distance > maxDist {
				continue
			}
			if topic.name == "payment" && !looksLikePayment(hit.Text) {
				continue
			}
			id := hit.ClauseID
			picked = append(picked, models.KeyClause{ClauseID: &id, ClauseText: hit.Text})
			if len(picked) >= topK {
				break
			}
		}

		if len(picked) == 0 {
			picked = []models.KeyClause{{ClauseText: "Not found"}}
		}
		results[topic.name] = picked
	}
	return results, nil
}
