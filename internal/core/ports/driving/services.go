// Package driving provides interfaces exposed to external actors (primary/inbound ports).
package driving

import (
	"context"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

// IngestionService accepts document batches into the index.
type IngestionService interface {
	// Ingest processes an ordered batch of documents and returns the
	// batch accounting. A batch larger than the configured maximum is
	// rejected whole with domain.ErrPayloadTooLarge; every other
	// failure is scoped to a single document and reflected in the
	// report counters.
	Ingest(ctx context.Context, docs []domain.Document) (*domain.IngestReport, error)
}

// SearchService answers similarity queries over the index.
type SearchService interface {
	// Search embeds the query, retrieves candidates, applies metadata
	// filters and the relevance threshold, and returns the top results.
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error)
}

// StatusService reports index state.
type StatusService interface {
	// Status returns the current index status.
	Status(ctx context.Context) (*domain.IndexStatus, error)
}
