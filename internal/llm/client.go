// Package llm provides the pluggable text-generation adapter. The backend is
// selected by configuration: a zero-cost deterministic stub, or Gemini.
package llm

import (
	"context"
	"fmt"

	"github.com/gdalmoro/jobpilot/internal/config"
)

// Client is an abstraction over generation backends. Generate truncates the
// prompt to the configured input budget before dispatching.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Backend() string
	Close() error
}

// Options configures a generation client.
type Options struct {
	Backend         string
	APIKey          string
	Model           string
	MaxPromptTokens int
	MaxOutputTokens int
	Temperature     float64
}

// OptionsFromConfig maps service configuration onto client options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Backend:         cfg.ModelBackend,
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		MaxPromptTokens: cfg.MaxPromptTokens,
		MaxOutputTokens: cfg.MaxOutputTokens,
		Temperature:     cfg.Temperature,
	}
}

// New creates a generation client for the configured backend. Selecting a
// real backend without its credential is a construction error, not a
// retryable one.
func New(ctx context.Context, opts Options) (Client, error) {
	switch opts.Backend {
	case config.BackendStub, "":
		return NewStubClient(opts), nil
	case config.BackendGemini:
		return NewGeminiClient(ctx, opts)
	default:
		return nil, fmt.Errorf("unknown generation backend: %s", opts.Backend)
	}
}
