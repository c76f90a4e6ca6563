// Package ranker scores how well the stored resume fits a job posting.
package ranker

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/gdalmoro/jobpilot/internal/llm"
	"github.com/gdalmoro/jobpilot/internal/logger"
	"github.com/gdalmoro/jobpilot/internal/memory"
	"github.com/gdalmoro/jobpilot/internal/prompts"
	"github.com/gdalmoro/jobpilot/internal/tokens"
)

const (
	// TopK is how many resume chunks are retrieved as scoring context.
	TopK = 4
	// MaxResumeTokens bounds the retrieved resume context in the prompt.
	MaxResumeTokens = 1500
	// MaxJobDescTokens bounds the job description in the prompt.
	MaxJobDescTokens = 1500

	// degradedReason is returned when the model output cannot be parsed.
	degradedReason = "Error: Failed to get a valid analysis from the AI."
)

// Result is a parsed fit score. Malformed model output degrades to a zero
// score with a reason; it is never surfaced as an error.
type Result struct {
	FitScore float64 `json:"fit_score"`
	Reason   string  `json:"reason"`
}

// Ranker retrieves resume context and asks the model for a fit score.
type Ranker struct {
	chunks *memory.Collection
	client llm.Client
	log    *zap.Logger
}

// New creates a Ranker over the resume-chunk collection and a generation client.
func New(chunks *memory.Collection, client llm.Client, log *zap.Logger) *Ranker {
	return &Ranker{chunks: chunks, client: client, log: logger.Or(log)}
}

// Rank scores the fit between the stored resume and a job posting. All
// failure modes degrade to a zero-score result so callers always get a
// usable ranking.
func (r *Ranker) Rank(ctx context.Context, jobTitle, jobDesc string) Result {
	r.log.Info("ranking job fit", zap.String("job_title", jobTitle))

	hits, err := r.chunks.Similar(jobDesc, TopK)
	if err != nil {
		r.log.Warn("resume chunk retrieval failed", zap.Error(err))
	}
	if len(hits) == 0 {
		r.log.Warn("no relevant resume chunks found; scoring without context")
	}

	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		parts = append(parts, h.Text)
	}
	resumeContext := strings.Join(parts, "\n---\n")

	prompt, err := prompts.Render(prompts.RankJobFit, map[string]string{
		"job_title":   jobTitle,
		"job_desc":    tokens.Truncate(jobDesc, MaxJobDescTokens),
		"resume_text": tokens.Truncate(resumeContext, MaxResumeTokens),
	})
	if err != nil {
		r.log.Error("failed to render ranking prompt", zap.Error(err))
		return Result{Reason: degradedReason}
	}

	raw, err := r.client.Generate(ctx, prompt)
	if err != nil {
		r.log.Error("ranking generation failed", zap.Error(err))
		return Result{Reason: "Error: generation failed: " + err.Error()}
	}

	return parseResult(raw, r.log)
}

// parseResult extracts the first balanced JSON object from raw model output
// and decodes it, tolerating surrounding prose and code fences.
func parseResult(raw string, log *zap.Logger) Result {
	span := llm.ExtractJSONObject(raw)

	var result Result
	if err := json.Unmarshal([]byte(span), &result); err != nil {
		log.Warn("failed to parse ranking output",
			zap.Error(err),
			zap.String("output", logger.TruncateForLog(raw, 200)))
		return Result{Reason: degradedReason}
	}

	if result.FitScore < 0 {
		result.FitScore = 0
	}
	if result.FitScore > 10 {
		result.FitScore = 10
	}
	if result.Reason == "" {
		result.Reason = "No reason provided."
	}
	return result
}
