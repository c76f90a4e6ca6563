package ranker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdalmoro/jobpilot/internal/memory"
)

// scriptedClient returns canned generation output.
type scriptedClient struct {
	output  string
	err     error
	prompts []string
}

func (c *scriptedClient) Generate(_ context.Context, prompt string) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.output, nil
}

func (c *scriptedClient) Backend() string { return "scripted" }
func (c *scriptedClient) Close() error    { return nil }

func newChunks(t *testing.T) *memory.Collection {
	t.Helper()
	store := memory.NewMemStore()
	t.Cleanup(func() { _ = store.Close() })

	chunks, err := store.Collection(memory.CollectionResumeChunks)
	require.NoError(t, err)
	return chunks
}

func TestRank_ParsesCleanJSON(t *testing.T) {
	client := &scriptedClient{output: `{"fit_score": 8.5, "reason": "Strong Go background."}`}
	r := New(newChunks(t), client, nil)

	result := r.Rank(context.Background(), "Go Engineer", "Build Go services")
	assert.InDelta(t, 8.5, result.FitScore, 0.0001)
	assert.Equal(t, "Strong Go background.", result.Reason)
}

func TestRank_ParsesJSONBuriedInProse(t *testing.T) {
	client := &scriptedClient{output: "Sure! Here is the analysis:\n```json\n{\"fit_score\": 6.0, \"reason\": \"Partial match.\"}\n```\nLet me know if you need more."}
	r := New(newChunks(t), client, nil)

	result := r.Rank(context.Background(), "Engineer", "desc")
	assert.InDelta(t, 6.0, result.FitScore, 0.0001)
	assert.Equal(t, "Partial match.", result.Reason)
}

func TestRank_NonJSONDegradesToZero(t *testing.T) {
	client := &scriptedClient{output: "I think this candidate is a great fit for the role!"}
	r := New(newChunks(t), client, nil)

	result := r.Rank(context.Background(), "Engineer", "desc")
	assert.Zero(t, result.FitScore)
	assert.NotEmpty(t, result.Reason)
}

func TestRank_GenerationErrorDegradesToZero(t *testing.T) {
	client := &scriptedClient{err: errors.New("quota exceeded")}
	r := New(newChunks(t), client, nil)

	result := r.Rank(context.Background(), "Engineer", "desc")
	assert.Zero(t, result.FitScore)
	assert.Contains(t, result.Reason, "generation failed")
}

func TestRank_ClampsScore(t *testing.T) {
	client := &scriptedClient{output: `{"fit_score": 42, "reason": "overflow"}`}
	r := New(newChunks(t), client, nil)

	result := r.Rank(context.Background(), "Engineer", "desc")
	assert.InDelta(t, 10.0, result.FitScore, 0.0001)
}

func TestRank_UsesRetrievedContext(t *testing.T) {
	chunks := newChunks(t)
	require.NoError(t, chunks.Upsert("resume_chunk_0", "Seven years of Go microservices experience", nil))

	client := &scriptedClient{output: `{"fit_score": 9.0, "reason": "ok"}`}
	r := New(chunks, client, nil)

	r.Rank(context.Background(), "Go Engineer", "Go microservices role")

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Seven years of Go microservices experience")
	assert.Contains(t, client.prompts[0], "Go microservices role")
}
