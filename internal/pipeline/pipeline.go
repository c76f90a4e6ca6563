// Package pipeline orchestrates the end-to-end job processing flow: score the
// fit, decide whether a letter is worth writing, and record the outcome.
package pipeline

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gdalmoro/jobpilot/internal/letter"
	"github.com/gdalmoro/jobpilot/internal/logger"
	"github.com/gdalmoro/jobpilot/internal/posting"
	"github.com/gdalmoro/jobpilot/internal/ranker"
	"github.com/gdalmoro/jobpilot/internal/tracker"
)

// Report statuses.
const (
	StatusSkipped   = "skipped"
	StatusProcessed = "processed"
)

// Ranker scores resume-to-job fit.
type Ranker interface {
	Rank(ctx context.Context, jobTitle, jobDesc string) ranker.Result
}

// Writer drafts the cover letter artifacts.
type Writer interface {
	Write(ctx context.Context, req letter.Request) (*letter.Artifacts, error)
}

// Recorder tracks outcomes in the external application tracker.
type Recorder interface {
	Record(ctx context.Context, entry tracker.Entry) string
}

// Acquirer fetches and parses a job posting from a URL.
type Acquirer interface {
	Acquire(ctx context.Context, jobURL string) (*posting.Posting, error)
}

// Report is the outcome of processing one job posting.
type Report struct {
	RunID             string  `json:"run_id"`
	Status            string  `json:"status"`
	JobTitle          string  `json:"job_title"`
	Company           string  `json:"company,omitempty"`
	FitScore          float64 `json:"fit_score"`
	Reason            string  `json:"reason"`
	TrackerPageID     string  `json:"tracker_page_id,omitempty"`
	CoverLetterPath   string  `json:"cover_letter_path,omitempty"`
	ResumeBulletsPath string  `json:"resume_bullets_path,omitempty"`
}

// Pipeline wires the ranking, writing and tracking stages together.
type Pipeline struct {
	ranker    Ranker
	writer    Writer
	recorder  Recorder
	acquirer  Acquirer
	threshold float64
	log       *zap.Logger
}

// New creates a Pipeline. The recorder and acquirer may be nil when tracking
// or URL acquisition is not configured.
func New(r Ranker, w Writer, rec Recorder, a Acquirer, threshold float64, log *zap.Logger) *Pipeline {
	return &Pipeline{
		ranker:    r,
		writer:    w,
		recorder:  rec,
		acquirer:  a,
		threshold: threshold,
		log:       logger.Or(log),
	}
}

// Process scores the posting against the stored resume, writes a cover letter
// when the score clears the threshold, and records the outcome. Jobs scoring
// strictly below the threshold are skipped.
func (p *Pipeline) Process(ctx context.Context, post *posting.Posting) (*Report, error) {
	runID := uuid.NewString()
	result := p.ranker.Rank(ctx, post.JobTitle, post.JobDesc)

	p.log.Info("job fit ranked",
		zap.String("run_id", runID),
		zap.String("job_title", post.JobTitle),
		zap.Float64("fit_score", result.FitScore),
		zap.Float64("threshold", p.threshold))

	if result.FitScore < p.threshold {
		report := p.skip(ctx, post, result)
		report.RunID = runID
		return report, nil
	}

	report, err := p.write(ctx, post, result)
	if err != nil {
		return nil, err
	}
	report.RunID = runID
	return report, nil
}

// ProcessURL acquires the posting first, then runs Process. Acquisition
// failures are returned as-is so callers can classify them as input errors.
func (p *Pipeline) ProcessURL(ctx context.Context, jobURL string) (*Report, error) {
	if p.acquirer == nil {
		return nil, fmt.Errorf("no posting acquirer configured")
	}

	post, err := p.acquirer.Acquire(ctx, jobURL)
	if err != nil {
		return nil, err
	}
	return p.Process(ctx, post)
}

func (p *Pipeline) skip(ctx context.Context, post *posting.Posting, result ranker.Result) *Report {
	report := &Report{
		Status:   StatusSkipped,
		JobTitle: post.JobTitle,
		Company:  post.Company,
		FitScore: result.FitScore,
		Reason:   result.Reason,
	}

	report.TrackerPageID = p.record(ctx, post, result, tracker.StatusSkipped, tracker.SkippedLetter)
	return report
}

func (p *Pipeline) write(ctx context.Context, post *posting.Posting, result ranker.Result) (*Report, error) {
	artifacts, err := p.writer.Write(ctx, letter.Request{
		JobTitle: post.JobTitle,
		JobDesc:  post.JobDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to write cover letter for %q: %w", post.JobTitle, err)
	}

	coverLetter := ""
	if data, err := os.ReadFile(artifacts.CoverLetterPath); err == nil {
		coverLetter = string(data)
	} else {
		p.log.Warn("could not read back cover letter for tracking", zap.Error(err))
	}

	report := &Report{
		Status:            StatusProcessed,
		JobTitle:          post.JobTitle,
		Company:           post.Company,
		FitScore:          result.FitScore,
		Reason:            result.Reason,
		CoverLetterPath:   artifacts.CoverLetterPath,
		ResumeBulletsPath: artifacts.ResumeBulletsPath,
	}

	report.TrackerPageID = p.record(ctx, post, result, tracker.StatusWrittenLetter, coverLetter)
	return report, nil
}

func (p *Pipeline) record(ctx context.Context, post *posting.Posting, result ranker.Result, status tracker.Status, coverLetter string) string {
	if p.recorder == nil {
		return ""
	}
	return p.recorder.Record(ctx, tracker.Entry{
		JobTitle:    post.JobTitle,
		Company:     post.Company,
		JobURL:      post.JobURL,
		Status:      status,
		FitScore:    result.FitScore,
		Reason:      result.Reason,
		CoverLetter: coverLetter,
	})
}
