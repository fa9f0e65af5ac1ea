package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleContract = `
EMPLOYMENT AGREEMENT
Page 1 of 3

1. The Employee shall serve the Company faithfully and diligently in the capacity of software engineer at the registered office.

2. The Company shall pay the Employee a monthly salary as mutually agreed and recorded in the compensation annexure attached hereto.

2.1 Short heading

3. Either party may terminate this agreement by giving thirty days written notice to the other party at any point in time.

Signature: ___________
Director
`

func TestSplitIntoClauses(t *testing.T) {
	clauses := SplitIntoClauses(sampleContract)

	require.Len(t, clauses, 3)
	assert.Contains(t, clauses[0], "serve the Company faithfully")
	assert.Contains(t, clauses[1], "monthly salary")
	assert.Contains(t, clauses[2], "thirty days written notice")

	for _, clause := range clauses {
		assert.NotContains(t, clause, "Page 1")
		assert.NotContains(t, clause, "___")
		assert.NotContains(t, clause, "Short heading", "tiny fragments are dropped")
	}
}

func TestCleanRawText(t *testing.T) {
	cleaned := CleanRawText("Keep this line intact\nPage 2 of 9\nSignature: _______\nDirector\n\nAnd this one")

	assert.Contains(t, cleaned, "Keep this line intact")
	assert.Contains(t, cleaned, "And this one")
	assert.NotContains(t, cleaned, "Page 2")
	assert.NotContains(t, cleaned, "Director")
	assert.NotContains(t, cleaned, "_")
}

func TestSplitIntoClauses_Empty(t *testing.T) {
	assert.Empty(t, SplitIntoClauses(""))
	assert.Empty(t, SplitIntoClauses("1. Too short to count."))
}

func TestClassifyClause(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Either party may terminate this agreement with notice.", "termination"},
		{"The salary shall be paid monthly.", "payment"},
		{"Employee shall indemnify the Company against all losses.", "liability"},
		{"All information shared is strictly confidential.", "confidentiality"},
		{"This agreement is subject to the jurisdiction of Mumbai courts.", "governing_law"},
		{"The employee gets a desk and a chair.", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyClause(tt.text), "text %q", tt.text)
	}
}

func TestClassifyClauses_Order(t *testing.T) {
	types := ClassifyClauses([]string{
		"Either party may terminate this agreement.",
		"totally unrelated text",
	})
	assert.Equal(t, []string{"termination", "unknown"}, types)
}
