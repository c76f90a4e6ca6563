package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gdalmoro/jobpilot/internal/config"
	"github.com/gdalmoro/jobpilot/internal/indexer"
	"github.com/gdalmoro/jobpilot/internal/logger"
	"github.com/gdalmoro/jobpilot/internal/memory"
)

var indexResumePath string

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the resume into semantic memory",
	Long:  `Extract text from the resume document, split it into overlapping chunks, and store them in the local semantic memory for retrieval during ranking and letter drafting.`,
	RunE:  runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&indexResumePath, "resume", "", "Path to the resume document (overrides RESUME_PATH)")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(_ *cobra.Command, _ []string) error {
	cfg := config.Load()
	if indexResumePath != "" {
		cfg.ResumePath = indexResumePath
	}

	log, err := logger.New(cfg.LogJSON, cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	store, err := memory.NewStore(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	profile, err := store.Collection(memory.CollectionProfile)
	if err != nil {
		return err
	}
	chunks, err := store.Collection(memory.CollectionResumeChunks)
	if err != nil {
		return err
	}

	result, err := indexer.New(profile, chunks, log).Index(cfg.ResumePath)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	if result.UpToDate {
		fmt.Println("Resume unchanged, index is up to date.")
		return nil
	}
	fmt.Printf("Indexed resume into %d chunks.\n", result.Chunks)
	return nil
}
