package service

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"contract-analyzer-backend/models"
	"contract-analyzer-backend/vectorstore"
)

// Hard caps on contract size, overridable from the environment, so one huge
// upload cannot exhaust the embedding quota.
const (
	defaultMaxContractChars = 200000
	defaultMaxClauses       = 250
	defaultEmbedBatchSize   = 16
)

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// BuildContractIndex parses raw contract text, classifies the clauses, and
// builds the corpus plus its vector index with batched embedding. The single
// mutation path for both structures.
func BuildContractIndex(ctx context.Context, text string, embedder vectorstore.Embedder) (*models.Corpus, *vectorstore.Store, error) {
	maxChars := envInt("MAX_CONTRACT_CHARS", defaultMaxContractChars)
	if len(text) > maxChars {
		text = text[:maxChars]
	}

	clauses := SplitIntoClauses(text)
	maxClauses := envInt("MAX_CLAUSES", defaultMaxClauses)
	if len(clauses) > maxClauses {
		clauses = clauses[:maxClauses]
	}
	if len(clauses) == 0 {
		return nil, nil, fmt.Errorf("no clauses found in contract text")
	}

	corpus := &models.Corpus{}
	corpus.AddBatch(clauses, ClassifyClauses(clauses))

	batchSize := envInt("EMBED_BATCH_SIZE", defaultEmbedBatchSize)
	index := vectorstore.New(embedder, vectorstore.WithBatchSize(batchSize))

	items := make([]vectorstore.Item, len(corpus.Clauses))
	for i, c := range corpus.Clauses {
		items[i] = vectorstore.Item{ClauseID: c.ClauseID, Text: c.Text}
	}
	if err := index.Add(ctx, items); err != nil {
		return nil, nil, fmt.Errorf("failed to index contract: %w", err)
	}

	return corpus, index, nil
}
