// Package embeddings provides the Gemini embedding client used to vectorize
// clauses and queries. It calls the REST endpoint directly so the output
// dimensionality can be pinned; the SDK does not expose it for this model.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

const (
	defaultModel     = "models/gemini-embedding-001"
	defaultDimension = 768
	defaultBatchSize = 16

	batchEmbedURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:batchEmbedContents"

	maxRetries     = 3
	initialBackoff = time.Second
)

var ErrEmbeddingFailed = errors.New("failed to generate embeddings")

// Client embeds text via the Gemini batch embedding API. It satisfies the
// vector store's Embedder interface.
type Client struct {
	apiKey     string
	httpClient *http.Client
	model      string
	endpoint   string
	dimension  int
	batchSize  int
	taskType   string
}

// Option configures a Client.
type Option func(*Client)

// WithDimension pins the embedding output dimensionality.
func WithDimension(dim int) Option {
	return func(c *Client) {
		if dim > 0 {
			c.dimension = dim
		}
	}
}

// WithBatchSize sets how many texts go into one API request.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithEndpoint overrides the API endpoint, mainly for tests.
func WithEndpoint(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.endpoint = url
		}
	}
}

// WithTaskType sets the embedding task type (RETRIEVAL_DOCUMENT for corpus
// texts, RETRIEVAL_QUERY for queries).
func WithTaskType(taskType string) Option {
	return func(c *Client) {
		if taskType != "" {
			c.taskType = taskType
		}
	}
}

// NewClient creates an embedding client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY not set")
	}
	c := &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		model:      defaultModel,
		endpoint:   batchEmbedURL,
		dimension:  defaultDimension,
		batchSize:  defaultBatchSize,
		taskType:   "RETRIEVAL_DOCUMENT",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Dimension returns the fixed embedding dimension.
func (c *Client) Dimension() int {
	return c.dimension
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

type embedRequest struct {
	Model                string       `json:"model"`
	Content              contentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

type batchEmbedRequest struct {
	Requests []embedRequest `json:"requests"`
}

type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float64 `json:"values"`
	} `json:"embeddings"`
}

// Encode embeds the given texts, preserving input order. Requests are
// batched; order within and across batches is stable.
func (c *Client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := start + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		vectors, err := c.encodeBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (c *Client) encodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := batchEmbedRequest{Requests: make([]embedRequest, len(texts))}
	for i, text := range texts {
		reqBody.Requests[i] = embedRequest{
			Model:                c.model,
			Content:              contentInput{Parts: []partInput{{Text: text}}},
			TaskType:             c.taskType,
			OutputDimensionality: c.dimension,
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp batchEmbedResponse
			decodeErr := json.NewDecoder(resp.Body).Decode(&apiResp)
			resp.Body.Close()
			if decodeErr != nil {
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", decodeErr)
				}
				continue
			}
			if len(apiResp.Embeddings) != len(texts) {
				return nil, fmt.Errorf("API returned %d embeddings for %d texts",
					len(apiResp.Embeddings), len(texts))
			}

			vectors := make([][]float32, len(apiResp.Embeddings))
			for i, emb := range apiResp.Embeddings {
				vectors[i] = normalize(emb.Values)
			}
			return vectors, nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d - %s", resp.StatusCode, string(body))
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrEmbeddingFailed
}

// normalize converts to float32 and scales to unit length.
func normalize(values []float64) []float32 {
	norm := 0.0
	for _, v := range values {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(values))
	for i, v := range values {
		if norm > 0 {
			out[i] = float32(v / norm)
		} else {
			out[i] = float32(v)
		}
	}
	return out
}
