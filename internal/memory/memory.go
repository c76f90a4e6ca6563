// Package memory provides the semantic memory store used for profile data and
// resume chunks. Each named collection is an independent bleve index with its
// own id-space; items are retrievable by id or by relevance-ranked search.
package memory

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/blevesearch/bleve"
)

// Well-known collection names.
const (
	CollectionProfile      = "profile"
	CollectionResumeChunks = "resume_chunks"
)

// Hit is a single similarity-search result.
type Hit struct {
	ID       string
	Text     string
	Metadata map[string]string
	Score    float64
}

// item is the document shape indexed per memory entry.
type item struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Store owns the collections under a data directory. It is constructed once
// and passed explicitly to the components that need it.
type Store struct {
	dir     string
	memOnly bool

	mu          sync.Mutex
	collections map[string]*Collection
}

// NewStore opens (or creates) a disk-backed store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Store{
		dir:         dir,
		collections: make(map[string]*Collection),
	}, nil
}

// NewMemStore returns an in-memory store. Intended for tests.
func NewMemStore() *Store {
	return &Store{
		memOnly:     true,
		collections: make(map[string]*Collection),
	}
}

// Collection returns the named collection, opening or creating it on first use.
func (s *Store) Collection(name string) (*Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[name]; ok {
		return col, nil
	}

	col := &Collection{name: name}
	if !s.memOnly {
		col.path = filepath.Join(s.dir, name+".bleve")
	}

	idx, err := openIndex(col.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}
	col.idx = idx

	s.collections[name] = col
	return col, nil
}

// Close releases all open collections.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, col := range s.collections {
		if err := col.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.collections = make(map[string]*Collection)
	return firstErr
}

// openIndex opens an existing bleve index at path, creating it when absent.
// An empty path yields an in-memory index.
func openIndex(path string) (bleve.Index, error) {
	if path == "" {
		return bleve.NewMemOnly(bleve.NewIndexMapping())
	}

	idx, err := bleve.Open(path)
	if err == bleve.ErrorIndexPathDoesNotExist {
		return bleve.New(path, bleve.NewIndexMapping())
	}
	return idx, err
}

// Collection is a store handle scoped to a single named collection.
type Collection struct {
	name string
	path string

	mu  sync.RWMutex
	idx bleve.Index
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Upsert inserts or replaces the item under id. Overwriting is not an error.
func (c *Collection) Upsert(id, text string, metadata map[string]string) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.idx.Index(id, item{Text: text, Metadata: metadata}); err != nil {
		return fmt.Errorf("failed to upsert %s into %s: %w", id, c.name, err)
	}
	return nil
}

// Get performs a point lookup by id. An absent id is reported via the bool,
// not an error; an empty stored text is a present item.
func (c *Collection) Get(id string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := bleve.NewDocIDQuery([]string{id})
	req := bleve.NewSearchRequestOptions(query, 1, 0, false)
	req.Fields = []string{"*"}

	res, err := c.idx.Search(req)
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s from %s: %w", id, c.name, err)
	}
	if len(res.Hits) == 0 {
		return "", false, nil
	}

	text, _ := res.Hits[0].Fields["text"].(string)
	return text, true, nil
}

// Similar returns up to k items ranked by the index's relevance score, best
// first. The result may be shorter than k, or empty for an empty collection.
func (c *Collection) Similar(query string, k int) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	match := bleve.NewMatchQuery(query)
	match.SetField("text")
	req := bleve.NewSearchRequestOptions(match, k, 0, false)
	req.Fields = []string{"*"}

	res, err := c.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("similarity search failed in %s: %w", c.name, err)
	}

	hits := make([]Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		text, _ := h.Fields["text"].(string)
		hits = append(hits, Hit{
			ID:       h.ID,
			Text:     text,
			Metadata: metadataFromFields(h.Fields),
			Score:    h.Score,
		})
	}
	return hits, nil
}

// Reset drops every item in the collection and recreates it empty. Used when
// re-indexing so stale ids from a prior run cannot survive.
func (c *Collection) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.idx.Close(); err != nil {
		return fmt.Errorf("failed to close collection %s: %w", c.name, err)
	}
	if c.path != "" {
		if err := os.RemoveAll(c.path); err != nil {
			return fmt.Errorf("failed to remove collection %s: %w", c.name, err)
		}
	}

	idx, err := openIndex(c.path)
	if err != nil {
		return fmt.Errorf("failed to recreate collection %s: %w", c.name, err)
	}
	c.idx = idx
	return nil
}

func (c *Collection) close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idx.Close()
}

// metadataFromFields rebuilds the metadata map from flattened stored fields
// ("metadata.<key>" entries).
func metadataFromFields(fields map[string]interface{}) map[string]string {
	var metadata map[string]string
	for name, value := range fields {
		key, ok := strings.CutPrefix(name, "metadata.")
		if !ok {
			continue
		}
		if metadata == nil {
			metadata = make(map[string]string)
		}
		switch v := value.(type) {
		case string:
			metadata[key] = v
		case []interface{}:
			if len(v) > 0 {
				if s, ok := v[0].(string); ok {
					metadata[key] = s
				}
			}
		}
	}
	return metadata
}
