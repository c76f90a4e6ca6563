// Package letter drafts tailored cover letters and writes them to disk.
package letter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/gdalmoro/jobpilot/internal/llm"
	"github.com/gdalmoro/jobpilot/internal/logger"
	"github.com/gdalmoro/jobpilot/internal/memory"
	"github.com/gdalmoro/jobpilot/internal/prompts"
	"github.com/gdalmoro/jobpilot/internal/tokens"
)

const (
	// TopK is how many resume chunks are retrieved as drafting context.
	TopK = 3
	// MaxResumeTokens bounds the resume context in the prompt.
	MaxResumeTokens = 1200
	// MaxJobDescTokens bounds the job description in the prompt.
	MaxJobDescTokens = 1200

	// MinLetterLength is the quality-gate floor; shorter output triggers one
	// corrective regeneration.
	MinLetterLength = 400

	// DefaultBrandVoice is used when none is supplied or stored.
	DefaultBrandVoice = "Concise, optimistic, systems-builder tone."

	// BrandVoiceID is the profile memory item holding the stored brand voice.
	BrandVoiceID = "brand_voice"

	correctiveInstruction = "\n\n[System note: Your previous response was too short. " +
		"Rewrite to ~300 words, keep it factual, include 3 bullet highlights, " +
		"and maintain the given brand voice.]"
)

// staticBullets is the placeholder resume-bullet artifact written next to
// every letter.
var staticBullets = []string{
	"- Built AI-driven automations and pipelines.",
	"- Shipped production services end to end.",
	"- Comfortable owning ambiguous problems across the stack.",
}

// Request carries the inputs for drafting one letter. ResumeText and
// BrandVoice are optional overrides; when empty they are resolved from memory.
type Request struct {
	JobTitle   string
	JobDesc    string
	ResumeText string
	BrandVoice string
}

// Artifacts reports what a Write call produced.
type Artifacts struct {
	CoverLetterPath   string
	ResumeBulletsPath string
	UsedChunks        int
	Regenerated       bool
}

// Writer drafts cover letters using retrieved resume context.
type Writer struct {
	profile *memory.Collection
	chunks  *memory.Collection
	client  llm.Client
	outDir  string
	log     *zap.Logger
}

// New creates a Writer that stores artifacts under outDir.
func New(profile, chunks *memory.Collection, client llm.Client, outDir string, log *zap.Logger) *Writer {
	return &Writer{
		profile: profile,
		chunks:  chunks,
		client:  client,
		outDir:  outDir,
		log:     logger.Or(log),
	}
}

// Write drafts a cover letter for the request and writes the artifacts to a
// per-title directory, overwriting any prior run for the same title.
func (w *Writer) Write(ctx context.Context, req Request) (*Artifacts, error) {
	brandVoice := req.BrandVoice
	if brandVoice == "" {
		stored, found, err := w.profile.Get(BrandVoiceID)
		if err != nil {
			return nil, fmt.Errorf("failed to load brand voice: %w", err)
		}
		if found && stored != "" {
			brandVoice = stored
		} else {
			brandVoice = DefaultBrandVoice
		}
	}

	usedChunks := 0
	resumeText := req.ResumeText
	if resumeText == "" {
		hits, err := w.chunks.Similar(req.JobDesc, TopK)
		if err != nil {
			return nil, fmt.Errorf("resume chunk retrieval failed: %w", err)
		}
		usedChunks = len(hits)

		parts := make([]string, 0, len(hits))
		for _, h := range hits {
			parts = append(parts, h.Text)
		}
		resumeText = strings.Join(parts, "\n---\n")
		w.log.Info("retrieved resume context", zap.Int("chunks", usedChunks))
	}

	prompt, err := prompts.Render(prompts.TailorCover, map[string]string{
		"job_title":   req.JobTitle,
		"job_desc":    tokens.Truncate(req.JobDesc, MaxJobDescTokens),
		"resume_text": tokens.Truncate(resumeText, MaxResumeTokens),
		"brand_voice": brandVoice,
	})
	if err != nil {
		return nil, err
	}

	coverLetter, err := w.client.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("letter generation failed: %w", err)
	}

	regenerated := false
	if len(strings.TrimSpace(coverLetter)) < MinLetterLength {
		w.log.Warn("cover letter under length floor, regenerating once",
			zap.Int("length", len(strings.TrimSpace(coverLetter))))

		coverLetter, err = w.client.Generate(ctx, prompt+correctiveInstruction)
		if err != nil {
			return nil, fmt.Errorf("corrective regeneration failed: %w", err)
		}
		// One corrective pass only; whatever comes back is final.
		regenerated = true
	}

	artifacts, err := w.writeArtifacts(req.JobTitle, coverLetter)
	if err != nil {
		return nil, err
	}
	artifacts.UsedChunks = usedChunks
	artifacts.Regenerated = regenerated

	w.log.Info("cover letter written",
		zap.String("job_title", req.JobTitle),
		zap.String("path", artifacts.CoverLetterPath))
	return artifacts, nil
}

func (w *Writer) writeArtifacts(jobTitle, coverLetter string) (*Artifacts, error) {
	dir := filepath.Join(w.outDir, SanitizeTitle(jobTitle))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	coverPath := filepath.Join(dir, "cover_letter.md")
	if err := os.WriteFile(coverPath, []byte(coverLetter), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write cover letter: %w", err)
	}

	bulletsPath := filepath.Join(dir, "resume_bullets.md")
	if err := os.WriteFile(bulletsPath, []byte(strings.Join(staticBullets, "\n")), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write resume bullets: %w", err)
	}

	return &Artifacts{CoverLetterPath: coverPath, ResumeBulletsPath: bulletsPath}, nil
}

// SanitizeTitle converts a job title into a filesystem-safe directory name.
func SanitizeTitle(title string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_")
	sanitized := replacer.Replace(strings.TrimSpace(title))
	if sanitized == "" {
		return "untitled"
	}
	return sanitized
}
