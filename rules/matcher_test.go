package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contract-analyzer-backend/models"
)

func hit(id int, text string) models.SearchHit {
	return models.SearchHit{ClauseID: id, Text: text}
}

func TestAnswer_TerminationWithNotice(t *testing.T) {
	hits := []models.SearchHit{
		hit(1, "Employee may be terminated by either party with 30 days notice."),
	}

	answer, err := Answer("Can this contract be terminated early?", hits)
	require.NoError(t, err)
	assert.Contains(t, answer, "early termination")
	assert.Contains(t, answer, "[Clause 1]")
	assert.Contains(t, answer, hits[0].Text)
}

func TestAnswer_NoTopicMatches(t *testing.T) {
	hits := []models.SearchHit{
		hit(1, "Employee may be terminated by either party with 30 days notice."),
	}

	_, err := Answer("What is the exchange rate policy?", hits)
	assert.ErrorIs(t, err, ErrNoRuleMatch)
}

func TestAnswer_TopicMatchesButClausesDoNot(t *testing.T) {
	hits := []models.SearchHit{
		hit(1, "The governing law of this agreement is the law of India."),
	}

	// Termination topic applies but no clause satisfies it; no fallthrough
	// to later topics.
	_, err := Answer("How do I terminate this agreement?", hits)
	assert.ErrorIs(t, err, ErrNoRuleMatch)
}

func TestAnswer_PriorityOrder(t *testing.T) {
	hits := []models.SearchHit{
		hit(1, "Salary of Rs. 50,000 is payable monthly."),
		hit(2, "Employee may be terminated early with notice."),
	}

	// Query mentions both payment and termination; payment wins.
	answer, err := Answer("What salary applies if the contract is terminated?", hits)
	require.NoError(t, err)
	assert.Contains(t, answer, "payment terms")
	assert.Contains(t, answer, "[Clause 1]")
}

func TestAnswer_CandidateOrderNotClauseOrder(t *testing.T) {
	// Retrieval order decides which clause answers, not clause id order.
	hits := []models.SearchHit{
		hit(7, "Either party may terminate this agreement early by written notice."),
		hit(2, "The employer may terminate with 60 days prior notice."),
	}

	answer, err := Answer("Can I terminate early?", hits)
	require.NoError(t, err)
	assert.Contains(t, answer, "[Clause 7]")
}

func TestAnswer_PenaltyExtractsUnitQualifiedAmount(t *testing.T) {
	hits := []models.SearchHit{
		hit(4, "A penalty of 2 lakhs applies in addition to item 300 of the schedule if the employee breaches clause 3."),
	}

	answer, err := Answer("Is there a penalty for breach?", hits)
	require.NoError(t, err)
	assert.Contains(t, answer, "penalty of 2 lakhs")
}

func TestAnswer_PenaltyFallsBackToBareAmount(t *testing.T) {
	hits := []models.SearchHit{
		hit(4, "The employee shall forfeit Rs. 50,000 upon early exit."),
	}

	answer, err := Answer("Is there a penalty for leaving?", hits)
	require.NoError(t, err)
	assert.Contains(t, answer, "Rs. 50,000")
}

func TestAnswer_EmptyHits(t *testing.T) {
	_, err := Answer("Can this be terminated?", nil)
	assert.ErrorIs(t, err, ErrNoRuleMatch)
}

func TestAnswer_AllTopics(t *testing.T) {
	cases := []struct {
		query  string
		clause string
		want   string
	}{
		{"How is payment made?", "Compensation is payable monthly.", "payment terms"},
		{"What penalty applies?", "Liquidated damages of 1 lakh apply.", "penalty"},
		{"Can it be terminated?", "Either party may terminate with prior notice.", "early termination"},
		{"Is there an NDA?", "All trade secrets must remain confidential.", "confidentiality obligation"},
		{"Who owns the intellectual property?", "All inventions belong to the employer.", "intellectual property"},
		{"Is there a non-compete?", "Employee shall not join a competitor for one year.", "competing activities"},
		{"How does arbitration work?", "Disputes are settled by a sole arbitrator in Mumbai.", "Disputes"},
		{"Must I return company property?", "Employee must return all equipment and documents on exit.", "return of property"},
	}

	for _, tc := range cases {
		answer, err := Answer(tc.query, []models.SearchHit{hit(1, tc.clause)})
		require.NoError(t, err, "query %q", tc.query)
		assert.Contains(t, answer, tc.want, "query %q", tc.query)
		assert.Contains(t, answer, tc.clause, "answers quote the clause verbatim")
	}
}
