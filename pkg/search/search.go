// Package search provides fuzzy product lookup for the storefront search
// box. The index lives in memory and is rebuilt whenever the catalog
// changes, so typo-tolerant queries never touch the database.
package search

import (
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
)

// Document is one searchable catalog entry.
type Document struct {
	ID       uint
	Name     string
	Category string
}

// Index is a concurrency-safe fuzzy index over catalog documents.
type Index struct {
	mu   sync.RWMutex
	docs []Document
	keys []string // lowercased "name category" per document
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{}
}

// Reload replaces the entire index contents.
func (ix *Index) Reload(docs []Document) {
	keys := make([]string, len(docs))
	for i, d := range docs {
		keys[i] = strings.ToLower(d.Name + " " + d.Category)
	}

	ix.mu.Lock()
	ix.docs = docs
	ix.keys = keys
	ix.mu.Unlock()
}

// Result is a single match with its relevance score.
type Result struct {
	Document Document
	Score    int
}

// Query returns up to limit documents matching q, best match first.
// An empty query returns nil.
func (ix *Index) Query(q string, limit int) []Result {
	q = strings.TrimSpace(strings.ToLower(q))
	if q == "" {
		return nil
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	matches := fuzzy.Find(q, ix.keys)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]Result, len(matches))
	for i, m := range matches {
		out[i] = Result{Document: ix.docs[m.Index], Score: m.Score}
	}
	return out
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs)
}
