package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/gdalmoro/jobpilot/internal/config"
	"github.com/gdalmoro/jobpilot/internal/tokens"
)

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	opts   Options
}

// NewGeminiClient creates a Gemini-backed client. A missing API key is fatal.
func NewGeminiClient(ctx context.Context, opts Options) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini backend requires an API key")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, opts: opts}, nil
}

// Generate truncates the prompt to the input budget, then calls the model
// with the configured temperature and output-token cap.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	safe := tokens.Truncate(prompt, c.opts.MaxPromptTokens)

	model := c.client.GenerativeModel(c.opts.Model)
	model.SetTemperature(float32(c.opts.Temperature))
	model.SetMaxOutputTokens(int32(c.opts.MaxOutputTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(safe))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// Backend returns the backend selector name.
func (c *GeminiClient) Backend() string { return config.BackendGemini }

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
