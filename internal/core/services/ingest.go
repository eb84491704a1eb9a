package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/index"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
	"github.com/custodia-labs/semdex/internal/logger"
	"github.com/custodia-labs/semdex/internal/vectormath"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// Default ingestion configuration values.
const (
	// DefaultMaxBatchSize is the whole-batch size gate.
	DefaultMaxBatchSize = 1000

	// DefaultEmbedBatchSize is how many texts go to the embedder per call.
	DefaultEmbedBatchSize = 32
)

// IngestionConfig holds the tunables for the ingestion pipeline.
type IngestionConfig struct {
	// MaxBatchSize is the maximum number of documents per batch.
	// Larger batches are rejected whole before any processing.
	MaxBatchSize int

	// EmbedBatchSize is the sub-batch size for embedding calls.
	EmbedBatchSize int
}

// IngestionService runs the batch ingestion pipeline: validation,
// deduplication, embedding, and atomic registration into the hybrid
// index, with exact partial-failure accounting.
type IngestionService struct {
	index    *index.Index
	embedder driven.EmbeddingService
	cfg      IngestionConfig
	progress func(done, total int)
}

// NewIngestionService creates an ingestion service over the given
// index and embedder. Zero config fields fall back to defaults.
func NewIngestionService(ix *index.Index, embedder driven.EmbeddingService, cfg IngestionConfig) *IngestionService {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = DefaultEmbedBatchSize
	}
	return &IngestionService{
		index:    ix,
		embedder: embedder,
		cfg:      cfg,
	}
}

// SetProgress installs a callback invoked after each document settles
// into an outcome. Used by the CLI for progress reporting.
func (s *IngestionService) SetProgress(fn func(done, total int)) {
	s.progress = fn
}

// pendingDoc is a validated, deduplicated document waiting for its
// embedding sub-batch to flush. pos is its position in the input batch.
type pendingDoc struct {
	pos int
	doc domain.Document
}

// Ingest processes one batch. Every input document lands in exactly one
// of the ingested / failed / duplicate-ignored buckets; only the size
// gate rejects the batch as a whole.
func (s *IngestionService) Ingest(ctx context.Context, docs []domain.Document) (*domain.IngestReport, error) {
	logger.Section("Batch Ingestion")

	if s.index == nil {
		return nil, domain.ErrVectorEngineUnavailable
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if len(docs) > s.cfg.MaxBatchSize {
		logger.Warn("Batch rejected: %d documents, limit is %d", len(docs), s.cfg.MaxBatchSize)
		return nil, fmt.Errorf("%w: batch has %d documents, limit is %d",
			domain.ErrPayloadTooLarge, len(docs), s.cfg.MaxBatchSize)
	}

	logger.Debug("Batch size: %d, embed sub-batch size: %d", len(docs), s.cfg.EmbedBatchSize)

	start := time.Now()
	report := &domain.IngestReport{
		TotalDocs: len(docs),
		Results:   make([]domain.DocumentResult, len(docs)),
	}

	done := 0
	settle := func(pos int, res domain.DocumentResult) {
		report.Results[pos] = res
		done++
		if s.progress != nil {
			s.progress(done, len(docs))
		}
	}

	seen := make(map[string]struct{}, len(docs))
	var pending []pendingDoc

	flush := func() {
		if len(pending) == 0 {
			return
		}
		s.flush(ctx, pending, report, settle)
		pending = pending[:0]
	}

	for i, doc := range docs {
		if err := doc.Validate(); err != nil {
			logger.Debug("Document %d invalid: %v", i, err)
			report.Failed++
			settle(i, domain.DocumentResult{ID: doc.ID, Outcome: domain.OutcomeInvalid, Reason: err.Error()})
			continue
		}

		if _, dup := seen[doc.ID]; dup {
			logger.Debug("Duplicate id %q within batch, ignoring", doc.ID)
			report.DuplicatesIgnored++
			settle(i, domain.DocumentResult{ID: doc.ID, Outcome: domain.OutcomeDuplicateIgnored,
				Reason: "duplicate id within batch"})
			continue
		}

		// Ids already in the corpus from a prior batch fail outright
		// and are never re-embedded.
		if s.index.Contains(doc.ID) {
			logger.Debug("Id %q already ingested in a prior batch", doc.ID)
			report.Failed++
			settle(i, domain.DocumentResult{ID: doc.ID, Outcome: domain.OutcomeFailed,
				Reason: domain.ErrDuplicateID.Error()})
			continue
		}

		seen[doc.ID] = struct{}{}
		pending = append(pending, pendingDoc{pos: i, doc: doc})
		if len(pending) >= s.cfg.EmbedBatchSize {
			flush()
		}
	}
	flush()

	if report.Failed == 0 {
		report.Message = domain.MessageSuccess
	} else {
		report.Message = domain.MessagePartialSuccess
	}
	report.IngestionTime = domain.FormatDuration(time.Since(start).Seconds())

	logger.Info("Ingestion complete: %d total, %d ingested, %d failed, %d duplicates ignored (%s)",
		report.TotalDocs, report.Ingested, report.Failed, report.DuplicatesIgnored, report.IngestionTime)

	return report, nil
}

// flush embeds one sub-batch and registers each document atomically.
// An embedding failure fails every document in the sub-batch; a
// registration failure fails only the document it belongs to.
func (s *IngestionService) flush(
	ctx context.Context,
	pending []pendingDoc,
	report *domain.IngestReport,
	settle func(pos int, res domain.DocumentResult),
) {
	texts := make([]string, len(pending))
	for i, p := range pending {
		texts[i] = p.doc.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err == nil && len(embeddings) != len(pending) {
		err = fmt.Errorf("embedder returned %d vectors for %d texts", len(embeddings), len(pending))
	}
	if err != nil {
		logger.Warn("Embedding sub-batch of %d failed: %v", len(pending), err)
		for _, p := range pending {
			report.Failed++
			settle(p.pos, domain.DocumentResult{ID: p.doc.ID, Outcome: domain.OutcomeFailed,
				Reason: fmt.Sprintf("embed: %v", err)})
		}
		return
	}

	for i, p := range pending {
		vec := vectormath.Normalize(embeddings[i])
		if _, err := s.index.Register(ctx, p.doc, vec); err != nil {
			logger.Warn("Registration failed for %q: %v", p.doc.ID, err)
			report.Failed++
			settle(p.pos, domain.DocumentResult{ID: p.doc.ID, Outcome: domain.OutcomeFailed,
				Reason: fmt.Sprintf("register: %v", err)})
			continue
		}
		report.Ingested++
		settle(p.pos, domain.DocumentResult{ID: p.doc.ID, Outcome: domain.OutcomeIngested})
	}
}
