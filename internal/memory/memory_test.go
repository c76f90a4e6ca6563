package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollection(t *testing.T, name string) *Collection {
	t.Helper()
	store := NewMemStore()
	t.Cleanup(func() { _ = store.Close() })

	col, err := store.Collection(name)
	require.NoError(t, err)
	return col
}

func TestUpsertAndGet(t *testing.T) {
	col := newTestCollection(t, CollectionProfile)

	require.NoError(t, col.Upsert("brand_voice", "Warm and direct.", map[string]string{"type": "brand_voice"}))

	text, found, err := col.Get("brand_voice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Warm and direct.", text)
}

func TestGet_AbsentIsNotAnError(t *testing.T) {
	col := newTestCollection(t, CollectionProfile)

	text, found, err := col.Get("nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, text)
}

func TestGet_EmptyTextIsPresent(t *testing.T) {
	col := newTestCollection(t, CollectionProfile)
	require.NoError(t, col.Upsert("empty", "", nil))

	text, found, err := col.Get("empty")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "", text)
}

func TestUpsert_OverwriteWins(t *testing.T) {
	col := newTestCollection(t, CollectionProfile)

	require.NoError(t, col.Upsert("resume_fingerprint", "aaaa", nil))
	require.NoError(t, col.Upsert("resume_fingerprint", "bbbb", nil))

	text, found, err := col.Get("resume_fingerprint")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "bbbb", text)
}

func TestSimilar(t *testing.T) {
	col := newTestCollection(t, CollectionResumeChunks)

	require.NoError(t, col.Upsert("resume_chunk_0", "Built distributed systems in Go with Kafka and Postgres", nil))
	require.NoError(t, col.Upsert("resume_chunk_1", "Led frontend development with React and TypeScript", nil))
	require.NoError(t, col.Upsert("resume_chunk_2", "Designed Go microservices and gRPC APIs", nil))

	hits, err := col.Similar("Go backend engineer building distributed services", 2)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.LessOrEqual(t, len(hits), 2)

	// Best-first ordering by score.
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i-1].Score, hits[i].Score)
	}
	for _, h := range hits {
		assert.NotContains(t, h.Text, "React")
	}
}

func TestSimilar_EmptyCollection(t *testing.T) {
	col := newTestCollection(t, CollectionResumeChunks)

	hits, err := col.Similar("anything", 4)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSimilar_ZeroK(t *testing.T) {
	col := newTestCollection(t, CollectionResumeChunks)
	require.NoError(t, col.Upsert("resume_chunk_0", "some text", nil))

	hits, err := col.Similar("some text", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSimilar_ReturnsMetadata(t *testing.T) {
	col := newTestCollection(t, CollectionResumeChunks)
	require.NoError(t, col.Upsert("resume_chunk_0", "Kubernetes platform engineering", map[string]string{"source": "resume"}))

	hits, err := col.Similar("Kubernetes", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "resume", hits[0].Metadata["source"])
}

func TestReset_PurgesAllItems(t *testing.T) {
	col := newTestCollection(t, CollectionResumeChunks)

	require.NoError(t, col.Upsert("resume_chunk_0", "first chunk about Go services", nil))
	require.NoError(t, col.Upsert("resume_chunk_9", "stale trailing chunk", nil))

	require.NoError(t, col.Reset())

	_, found, err := col.Get("resume_chunk_9")
	require.NoError(t, err)
	assert.False(t, found)

	hits, err := col.Similar("chunk", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	// Collection remains usable after reset.
	require.NoError(t, col.Upsert("resume_chunk_0", "fresh chunk", nil))
	_, found, err = col.Get("resume_chunk_0")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestCollections_AreIndependent(t *testing.T) {
	store := NewMemStore()
	t.Cleanup(func() { _ = store.Close() })

	profile, err := store.Collection(CollectionProfile)
	require.NoError(t, err)
	chunks, err := store.Collection(CollectionResumeChunks)
	require.NoError(t, err)

	require.NoError(t, profile.Upsert("shared_id", "profile value", nil))

	_, found, err := chunks.Get("shared_id")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDiskStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)

	col, err := store.Collection(CollectionProfile)
	require.NoError(t, err)
	require.NoError(t, col.Upsert("brand_voice", "persisted", nil))
	require.NoError(t, store.Close())

	store2, err := NewStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store2.Close() })

	col2, err := store2.Collection(CollectionProfile)
	require.NoError(t, err)
	text, found, err := col2.Get("brand_voice")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "persisted", text)
}
