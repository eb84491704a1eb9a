// Package flat provides a brute-force vector engine with exact
// nearest-neighbour search. It implements driven.VectorEngine.
//
// Vectors are held in an append-only arena indexed by surrogate id, so
// ids stay stable for the lifetime of the engine. Inputs are expected
// to be unit-normalised, making inner product equal to cosine
// similarity. Exhaustive scan gives 100% recall; fine for corpora up to
// the tens of thousands of vectors this engine is meant for.
package flat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/vectormath"
)

// Ensure Engine implements the interface.
var _ driven.VectorEngine = (*Engine)(nil)

// Engine is a flat inner-product vector engine.
type Engine struct {
	mu      sync.RWMutex
	dims    int
	vectors [][]float32 // arena; position == surrogate id
}

// New creates an empty engine for vectors of the given dimension.
func New(dims int) (*Engine, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("flat: dimension must be positive, got %d", dims)
	}
	return &Engine{dims: dims}, nil
}

// Insert appends a copy of the vector and returns its surrogate id.
// Ids are assigned monotonically from zero and never reused.
func (e *Engine) Insert(_ context.Context, v []float32) (int64, error) {
	if len(v) != e.dims {
		return 0, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(v), e.dims)
	}

	stored := make([]float32, len(v))
	copy(stored, v)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.vectors = append(e.vectors, stored)
	return int64(len(e.vectors) - 1), nil
}

// Search scans every stored vector and returns up to k hits ordered by
// similarity descending, ties broken by lower surrogate id.
func (e *Engine) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if len(query) != e.dims {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(query), e.dims)
	}
	if k <= 0 {
		return nil, fmt.Errorf("flat: k must be positive, got %d", k)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	hits := make([]driven.VectorHit, len(e.vectors))
	for id, v := range e.vectors {
		hits[id] = driven.VectorHit{
			VectorID: int64(id),
			Score:    vectormath.Dot(query, v),
		}
	}

	// Stable keeps insertion order for equal scores: lower id first.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Size returns the number of stored vectors.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.vectors)
}

// Dimensions returns the configured vector dimension.
func (e *Engine) Dimensions() int {
	return e.dims
}

// Close releases resources. The flat engine holds none.
func (e *Engine) Close() error {
	return nil
}
