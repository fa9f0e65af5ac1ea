package models

// Clause represents one segmented unit of contract text.
// Clause IDs are assigned 1-based in insertion order when a contract is
// indexed and are stable for the lifetime of the contract.
type Clause struct {
	ClauseID int    `json:"clause_id"`
	Text     string `json:"text"`
	Type     string `json:"clause_type,omitempty"`
}

// Corpus holds the ordered clause set for a single contract.
// Clauses are append-only; the corpus is rebuilt from scratch per contract.
type Corpus struct {
	Clauses []Clause `json:"clauses"`
}

// AddBatch appends clauses with their types, assigning contiguous 1-based IDs.
// Extra types beyond len(texts) are ignored; missing types default to empty.
func (c *Corpus) AddBatch(texts []string, types []string) {
	for i, text := range texts {
		clauseType := ""
		if i < len(types) {
			clauseType = types[i]
		}
		c.Clauses = append(c.Clauses, Clause{
			ClauseID: len(c.Clauses) + 1,
			Text:     text,
			Type:     clauseType,
		})
	}
}

// ByType returns all clauses with the given type, in clause order.
func (c *Corpus) ByType(clauseType string) []Clause {
	var out []Clause
	for _, clause := range c.Clauses {
		if clause.Type == clauseType {
			out = append(out, clause)
		}
	}
	return out
}

// Get returns the clause with the given ID, or nil.
func (c *Corpus) Get(clauseID int) *Clause {
	for i := range c.Clauses {
		if c.Clauses[i].ClauseID == clauseID {
			return &c.Clauses[i]
		}
	}
	return nil
}

// SearchHit is one nearest-neighbor result. Distance is the index's squared
// L2 distance; smaller means more similar. Hits are transient per query.
type SearchHit struct {
	ClauseID int     `json:"clause_id"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// Evidence is a (clause, confidence) pair derived from a hit's distance.
type Evidence struct {
	ClauseID   int     `json:"clause_id"`
	Confidence float64 `json:"confidence"`
}
