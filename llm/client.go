// Package llm wraps the Gemini generation API behind a small
// system-prompt/user-prompt surface and provides lenient decoding for the
// JSON-shaped outputs the analysis tools request.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

const (
	// DefaultModel is the generation model used for all analysis calls.
	DefaultModel = "gemini-2.0-flash"

	defaultTemperature = 0.2
	maxPromptChars     = 30000
)

var ErrEmptyResponse = errors.New("model returned empty content")

// Client generates text from a system prompt and a user prompt.
type Client struct {
	genai       *genai.Client
	modelName   string
	temperature float32
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithModel overrides the generation model name.
func WithModel(name string) ClientOption {
	return func(c *Client) {
		if name != "" {
			c.modelName = name
		}
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float32) ClientOption {
	return func(c *Client) {
		c.temperature = t
	}
}

// NewClient wraps an initialized genai client.
func NewClient(client *genai.Client, opts ...ClientOption) *Client {
	c := &Client{
		genai:       client,
		modelName:   DefaultModel,
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate sends the prompts to the model and returns the concatenated text
// parts of the response. The user prompt is truncated if it would blow the
// context window. No retries at this layer; failures propagate.
func (c *Client) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.genai == nil {
		return "", errors.New("gemini client not set")
	}

	if len(userPrompt) > maxPromptChars {
		userPrompt = userPrompt[:maxPromptChars] + "\n\n[Content truncated due to length...]"
	}

	model := c.genai.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	if systemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	var out strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				out.WriteString(string(text))
			}
		}
	}

	if out.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return out.String(), nil
}
