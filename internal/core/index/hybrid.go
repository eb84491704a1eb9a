// Package index implements the hybrid index: the vector engine, the
// document store, and the per-field inverted indexes kept consistent
// behind a single lock.
//
// The three substructures form one logical transactional unit. Register
// fans out to all of them under the write lock, so a reader can never
// observe a vector that is registered in the engine but missing from
// the document store or the inverted indexes.
package index

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
)

// Index is the process-wide hybrid index. It is explicitly constructed
// and passed to the ingestion and search services; there is no ambient
// singleton, so independent indexes can coexist (e.g. in tests).
type Index struct {
	mu     sync.RWMutex
	engine driven.VectorEngine
	docs   *documentStore
	source *fieldIndex
	author *fieldIndex
}

// New creates an empty hybrid index over the given vector engine.
func New(engine driven.VectorEngine) *Index {
	return &Index{
		engine: engine,
		docs:   newDocumentStore(),
		source: newFieldIndex(),
		author: newFieldIndex(),
	}
}

// Register atomically inserts the embedding into the vector engine and
// records the document in the document store and both inverted indexes.
// On any failure nothing is left visible to readers: the duplicate
// check runs before the engine insert, and the engine insert is the
// only later step that can fail.
//
// Returns the assigned surrogate id, strictly greater than every id
// assigned before it.
func (ix *Index) Register(ctx context.Context, doc domain.Document, embedding []float32) (int64, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.docs.contains(doc.ID) {
		return 0, fmt.Errorf("%w: %s", domain.ErrDuplicateID, doc.ID)
	}

	vectorID, err := ix.engine.Insert(ctx, embedding)
	if err != nil {
		return 0, fmt.Errorf("insert vector: %w", err)
	}

	// The engine is append-only with monotonic ids, so a fresh id can
	// never collide in the store; put only fails on a duplicate doc id,
	// which was just checked under this same lock.
	if err := ix.docs.put(doc, vectorID); err != nil {
		return 0, err
	}
	ix.source.add(doc.Source, vectorID)
	ix.author.add(doc.Author, vectorID)

	return vectorID, nil
}

// Contains reports whether a document id is already registered.
func (ix *Index) Contains(docID string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.docs.contains(docID)
}

// Count returns the number of registered documents.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.docs.count()
}

// DocumentByVectorID resolves a surrogate id to its document.
func (ix *Index) DocumentByVectorID(vectorID int64) (domain.Document, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	doc, ok := ix.docs.byVectorID(vectorID)
	if !ok {
		return domain.Document{}, fmt.Errorf("%w: vector id %d", domain.ErrNotFound, vectorID)
	}
	return doc, nil
}

// Search runs a ranked similarity query against the engine under the
// read lock, so results never interleave with a partial registration.
func (ix *Index) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.engine.Search(ctx, query, k)
}

// FilterSet computes the allowed surrogate-id set for the given
// source/author filters, intersecting when both are present. The
// second return is false when no filter was given (no restriction).
// The returned set is a copy and safe to use after the call.
func (ix *Index) FilterSet(source, author string) (map[int64]struct{}, bool) {
	if source == "" && author == "" {
		return nil, false
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	switch {
	case source != "" && author != "":
		return intersect(ix.source.lookup(source), ix.author.lookup(author)), true
	case source != "":
		return copySet(ix.source.lookup(source)), true
	default:
		return copySet(ix.author.lookup(author)), true
	}
}

func copySet(set map[int64]struct{}) map[int64]struct{} {
	out := make(map[int64]struct{}, len(set))
	for id := range set {
		out[id] = struct{}{}
	}
	return out
}

func intersect(a, b map[int64]struct{}) map[int64]struct{} {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[int64]struct{})
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}
