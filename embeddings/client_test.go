package embeddings

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func embedHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req batchEmbedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var resp batchEmbedResponse
		for range req.Requests {
			resp.Embeddings = append(resp.Embeddings, struct {
				Values []float64 `json:"values"`
			}{Values: []float64{3, 4}})
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestEncode_NormalizesAndPreservesCount(t *testing.T) {
	server := httptest.NewServer(embedHandler(t))
	defer server.Close()

	client, err := NewClient("test-key", WithEndpoint(server.URL), WithDimension(2))
	require.NoError(t, err)

	vectors, err := client.Encode(context.Background(), []string{"alpha", "beta", "gamma"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	// {3, 4} has norm 5
	assert.InDelta(t, 0.6, vectors[0][0], 1e-6)
	assert.InDelta(t, 0.8, vectors[0][1], 1e-6)
}

func TestEncode_BatchesLargeInput(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		embedHandler(t)(w, r)
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithEndpoint(server.URL), WithBatchSize(2))
	require.NoError(t, err)

	texts := []string{"a", "b", "c", "d", "e"}
	vectors, err := client.Encode(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vectors, 5)
	assert.Equal(t, int32(3), calls.Load())
}

func TestEncode_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		embedHandler(t)(w, r)
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithEndpoint(server.URL))
	require.NoError(t, err)

	vectors, err := client.Encode(context.Background(), []string{"retry me"})
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEncode_DoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient("test-key", WithEndpoint(server.URL))
	require.NoError(t, err)

	_, err = client.Encode(context.Background(), []string{"bad"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEncode_EmptyInput(t *testing.T) {
	client, err := NewClient("test-key")
	require.NoError(t, err)

	vectors, err := client.Encode(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("")
	require.Error(t, err)
}
