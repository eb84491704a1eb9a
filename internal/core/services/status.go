package services

import (
	"context"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/index"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
)

// Ensure StatusService implements the interface.
var _ driving.StatusService = (*StatusService)(nil)

// StatusService reports index state.
type StatusService struct {
	index    *index.Index
	embedder driven.EmbeddingService
}

// NewStatusService creates a status service.
func NewStatusService(ix *index.Index, embedder driven.EmbeddingService) *StatusService {
	return &StatusService{index: ix, embedder: embedder}
}

// Status returns the indexed document count and the embedding model
// serving the index.
func (s *StatusService) Status(_ context.Context) (*domain.IndexStatus, error) {
	if s.index == nil {
		return nil, domain.ErrVectorEngineUnavailable
	}

	status := &domain.IndexStatus{
		IndexedCount: s.index.Count(),
	}
	if s.embedder != nil {
		status.Model = s.embedder.ModelName()
		status.Dimensions = s.embedder.Dimensions()
	}
	return status, nil
}
