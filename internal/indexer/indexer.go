// Package indexer extracts text from a resume document, splits it into
// overlapping chunks, and stores them in the resume-chunk memory collection.
// A content fingerprint makes re-indexing an unchanged document a no-op.
package indexer

import (
	"fmt"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/gdalmoro/jobpilot/internal/logger"
	"github.com/gdalmoro/jobpilot/internal/memory"
)

const (
	// ChunkSize is the chunk window in characters.
	ChunkSize = 800
	// ChunkOverlap is how many characters consecutive chunks share.
	ChunkOverlap = 100

	// FingerprintID is the distinguished profile item holding the last
	// indexed document's fingerprint.
	FingerprintID = "resume_fingerprint"
)

// Result reports what an Index call did.
type Result struct {
	Chunks   int
	UpToDate bool
}

// Indexer chunks resume documents into the resume_chunks collection.
type Indexer struct {
	profile *memory.Collection
	chunks  *memory.Collection
	log     *zap.Logger
}

// New creates an Indexer over the given collections.
func New(profile, chunks *memory.Collection, log *zap.Logger) *Indexer {
	return &Indexer{profile: profile, chunks: chunks, log: logger.Or(log)}
}

// Fingerprint returns a fast content hash for change detection. Not suitable
// for anything security related.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// SplitChunks splits text into ChunkSize windows advancing by
// ChunkSize-ChunkOverlap; the final window may be short.
func SplitChunks(text string) []string {
	if text == "" {
		return nil
	}

	stride := ChunkSize - ChunkOverlap
	var chunks []string
	for i := 0; i < len(text); i += stride {
		end := i + ChunkSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}

// Index reads the document at path and indexes it unless its fingerprint
// matches the last indexed version. On change the chunk collection is reset
// first, so ids from a longer prior document cannot linger.
func (ix *Indexer) Index(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume document %s: %w", path, err)
	}

	current := Fingerprint(data)
	saved, found, err := ix.profile.Get(FingerprintID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored fingerprint: %w", err)
	}

	if found && saved == current {
		ix.log.Info("resume already indexed, skipping", zap.String("fingerprint", current))
		return &Result{UpToDate: true}, nil
	}

	text, err := ExtractText(path, data)
	if err != nil {
		return nil, err
	}

	chunks := SplitChunks(text)
	ix.log.Info("split resume into chunks",
		zap.Int("chars", len(text)),
		zap.Int("chunks", len(chunks)))

	if err := ix.chunks.Reset(); err != nil {
		return nil, fmt.Errorf("failed to reset chunk collection: %w", err)
	}

	for i, chunk := range chunks {
		id := fmt.Sprintf("resume_chunk_%d", i)
		if err := ix.chunks.Upsert(id, chunk, map[string]string{"source": "resume"}); err != nil {
			return nil, err
		}
	}

	if err := ix.profile.Upsert(FingerprintID, current, map[string]string{"type": "fingerprint"}); err != nil {
		return nil, fmt.Errorf("failed to store fingerprint: %w", err)
	}

	ix.log.Info("indexed resume",
		zap.Int("chunks", len(chunks)),
		zap.String("fingerprint", current))

	return &Result{Chunks: len(chunks)}, nil
}
