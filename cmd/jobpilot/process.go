package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gdalmoro/jobpilot/internal/config"
	"github.com/gdalmoro/jobpilot/internal/letter"
	"github.com/gdalmoro/jobpilot/internal/llm"
	"github.com/gdalmoro/jobpilot/internal/logger"
	"github.com/gdalmoro/jobpilot/internal/memory"
	"github.com/gdalmoro/jobpilot/internal/pipeline"
	"github.com/gdalmoro/jobpilot/internal/posting"
	"github.com/gdalmoro/jobpilot/internal/ranker"
	"github.com/gdalmoro/jobpilot/internal/tracker"
)

var (
	processURL      string
	processTitle    string
	processCompany  string
	processDescFile string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a job posting end to end",
	Long:  `Score a job posting against the indexed resume, draft a cover letter when the fit clears the threshold, and record the outcome in the tracker. Provide either --url or --title with --desc-file.`,
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processURL, "url", "", "Job posting URL to scrape")
	processCmd.Flags().StringVar(&processTitle, "title", "", "Job title (when not using --url)")
	processCmd.Flags().StringVar(&processCompany, "company", "", "Company name")
	processCmd.Flags().StringVar(&processDescFile, "desc-file", "", "File containing the job description text")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	if processURL == "" && (processTitle == "" || processDescFile == "") {
		return fmt.Errorf("either --url or both --title and --desc-file are required")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := mustContext(cmd)

	p, cleanup, err := buildPipeline(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	var report *pipeline.Report
	if processURL != "" {
		report, err = p.ProcessURL(ctx, processURL)
	} else {
		report, err = processFromFlags(ctx, p)
	}
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func processFromFlags(ctx context.Context, p *pipeline.Pipeline) (*pipeline.Report, error) {
	desc, err := os.ReadFile(processDescFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read job description file: %w", err)
	}

	post := posting.FromText(processTitle, processCompany, string(desc), "")
	if err := post.Validate(); err != nil {
		return nil, err
	}
	return p.Process(ctx, post)
}

// buildPipeline wires the full processing pipeline from configuration. The
// returned cleanup closes the store and generation client.
func buildPipeline(ctx context.Context, cfg *config.Config, log *zap.Logger) (*pipeline.Pipeline, func(), error) {
	store, err := memory.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	profile, err := store.Collection(memory.CollectionProfile)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	chunks, err := store.Collection(memory.CollectionResumeChunks)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	client, err := llm.New(ctx, llm.OptionsFromConfig(cfg))
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	p := pipeline.New(
		ranker.New(chunks, client, log),
		letter.New(profile, chunks, client, cfg.OutDir, log),
		tracker.New(cfg.NotionAPIKey, cfg.NotionDatabaseID, log),
		posting.NewResolver(cfg, log),
		cfg.FitThreshold,
		log,
	)

	cleanup := func() {
		_ = client.Close()
		_ = store.Close()
	}
	return p, cleanup, nil
}
