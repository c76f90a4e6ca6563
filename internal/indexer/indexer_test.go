package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdalmoro/jobpilot/internal/memory"
)

func newTestIndexer(t *testing.T) (*Indexer, *memory.Collection, *memory.Collection) {
	t.Helper()
	store := memory.NewMemStore()
	t.Cleanup(func() { _ = store.Close() })

	profile, err := store.Collection(memory.CollectionProfile)
	require.NoError(t, err)
	chunks, err := store.Collection(memory.CollectionResumeChunks)
	require.NoError(t, err)

	return New(profile, chunks, nil), profile, chunks
}

func writeResume(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint([]byte("resume content"))
	b := Fingerprint([]byte("resume content"))
	c := Fingerprint([]byte("resume content!"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestSplitChunks_CountLaw(t *testing.T) {
	stride := ChunkSize - ChunkOverlap

	tests := []struct {
		length   int
		expected int
	}{
		{0, 0},
		{1, 1},
		{ChunkSize, 2},           // 800: window 0..800, then a short tail from 700
		{stride, 1},              // 700: exactly one stride
		{stride * 3, 3},          // divisible boundary
		{stride*3 + 1, 4},        // just past the boundary
		{5000, (5000 + stride - 1) / stride},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("len=%d", tc.length), func(t *testing.T) {
			chunks := SplitChunks(strings.Repeat("a", tc.length))
			assert.Len(t, chunks, tc.expected)
		})
	}
}

func TestSplitChunks_WindowAndOverlap(t *testing.T) {
	text := strings.Repeat("x", 1500)
	chunks := SplitChunks(text)

	require.Len(t, chunks, 3)
	assert.Len(t, chunks[0], ChunkSize)
	assert.Len(t, chunks[1], ChunkSize)
	assert.Len(t, chunks[2], 100) // 1500 - 2*700

	// Consecutive chunks overlap by ChunkOverlap characters.
	assert.Equal(t, chunks[0][ChunkSize-ChunkOverlap:], chunks[1][:ChunkOverlap])
}

func TestIndex_FirstRun(t *testing.T) {
	ix, profile, chunks := newTestIndexer(t)
	path := writeResume(t, strings.Repeat("Go engineer experience. ", 100))

	res, err := ix.Index(path)
	require.NoError(t, err)
	assert.False(t, res.UpToDate)
	assert.Equal(t, 4, res.Chunks) // 2400 chars -> ceil(2400/700)

	text, found, err := chunks.Get("resume_chunk_0")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, text, ChunkSize)

	fp, found, err := profile.Get(FingerprintID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotEmpty(t, fp)
}

func TestIndex_SkipsUnchangedDocument(t *testing.T) {
	ix, _, chunks := newTestIndexer(t)
	path := writeResume(t, strings.Repeat("stable resume text ", 50))

	first, err := ix.Index(path)
	require.NoError(t, err)
	require.False(t, first.UpToDate)

	// Poison the chunk collection; an up-to-date run must not touch it.
	require.NoError(t, chunks.Upsert("sentinel", "untouched", nil))

	second, err := ix.Index(path)
	require.NoError(t, err)
	assert.True(t, second.UpToDate)
	assert.Zero(t, second.Chunks)

	_, found, err := chunks.Get("sentinel")
	require.NoError(t, err)
	assert.True(t, found, "up-to-date run must perform zero chunk writes")
}

func TestIndex_ShrinkingDocumentPurgesStaleChunks(t *testing.T) {
	ix, _, chunks := newTestIndexer(t)

	long := writeResume(t, strings.Repeat("a", 3000)) // 5 chunks
	res, err := ix.Index(long)
	require.NoError(t, err)
	require.Equal(t, 5, res.Chunks)

	short := writeResume(t, strings.Repeat("b", 600)) // 1 chunk
	res, err = ix.Index(short)
	require.NoError(t, err)
	require.Equal(t, 1, res.Chunks)

	_, found, err := chunks.Get("resume_chunk_4")
	require.NoError(t, err)
	assert.False(t, found, "stale trailing chunks must be purged on re-index")

	text, found, err := chunks.Get("resume_chunk_0")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, strings.Repeat("b", 600), text)
}

func TestIndex_MissingFile(t *testing.T) {
	ix, _, _ := newTestIndexer(t)

	_, err := ix.Index(filepath.Join(t.TempDir(), "nope.pdf"))
	require.Error(t, err)
}

func TestExtractText_NonPDFIsVerbatim(t *testing.T) {
	text, err := ExtractText("resume.txt", []byte("plain resume"))
	require.NoError(t, err)
	assert.Equal(t, "plain resume", text)
}

func TestExtractText_BrokenPDF(t *testing.T) {
	_, err := ExtractText("resume.pdf", []byte("not a pdf"))
	require.Error(t, err)
}
