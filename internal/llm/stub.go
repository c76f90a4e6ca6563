package llm

import (
	"context"

	"github.com/gdalmoro/jobpilot/internal/config"
	"github.com/gdalmoro/jobpilot/internal/tokens"
)

// stubPreviewLength is how much of the prompt the stub echoes back.
const stubPreviewLength = 600

// StubClient is a deterministic, zero-cost backend that echoes a prefix of
// the prompt. It lets the whole pipeline run without any API credential.
type StubClient struct {
	opts Options
}

// NewStubClient creates a stub client.
func NewStubClient(opts Options) *StubClient {
	return &StubClient{opts: opts}
}

// Generate returns a deterministic echo of the truncated prompt.
func (c *StubClient) Generate(_ context.Context, prompt string) (string, error) {
	safe := tokens.Truncate(prompt, c.opts.MaxPromptTokens)

	preview := safe
	if len(preview) > stubPreviewLength {
		preview = preview[:stubPreviewLength]
	}

	return "[STUB TAILOR OUTPUT]\n\n" +
		preview +
		"\n\n(This is stub output. Set MODEL_BACKEND=gemini and GEMINI_API_KEY to use a real model.)", nil
}

// Backend returns the backend selector name.
func (c *StubClient) Backend() string { return config.BackendStub }

// Close is a no-op for the stub.
func (c *StubClient) Close() error { return nil }
