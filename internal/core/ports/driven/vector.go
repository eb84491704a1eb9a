package driven

import "context"

// VectorEngine stores fixed-dimension unit vectors and answers ranked
// similarity queries. The engine is append-only: surrogate ids are
// assigned monotonically at insert time and never reused, which keeps
// them stable as join keys across the document store and the inverted
// indexes.
type VectorEngine interface {
	// Insert appends a vector and returns its surrogate id.
	// Ids are strictly increasing across the lifetime of the engine.
	Insert(ctx context.Context, vector []float32) (int64, error)

	// Search returns up to k hits ordered by similarity descending,
	// ties broken by lower surrogate id.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Size returns the number of stored vectors.
	Size() int

	// Dimensions returns the configured vector dimension.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorHit is a single similarity result.
type VectorHit struct {
	// VectorID is the surrogate id of the matched vector.
	VectorID int64

	// Score is the similarity in cosine units ([-1, 1] for unit
	// vectors), comparable against the configured relevance threshold.
	Score float64
}
