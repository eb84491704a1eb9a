// Package services implements the core pipelines over the hybrid index.
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/index"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
	"github.com/custodia-labs/semdex/internal/logger"
	"github.com/custodia-labs/semdex/internal/vectormath"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// Default search configuration values, matching the service's tuned
// constants: threshold 0.4 is the floor below which similarity stops
// being meaningful for this embedding family.
const (
	DefaultOverfetchMultiplier = 3
	DefaultMaxOverfetch        = 200
	DefaultScoreThreshold      = 0.4
	DefaultTopK                = 10
	DefaultMinTopK             = 1
	DefaultMaxTopK             = 100
)

// SearchConfig holds the tunables for the search pipeline.
type SearchConfig struct {
	// OverfetchMultiplier scales top_k into the candidate fetch size,
	// compensating for candidates later dropped by filtering and
	// thresholding. Fixed; there is no adaptive retry.
	OverfetchMultiplier int

	// MaxOverfetch caps the candidate fetch size.
	MaxOverfetch int

	// ScoreThreshold is the minimum similarity for a candidate to be
	// eligible as a result. Not user-controlled per request.
	ScoreThreshold float64

	// DefaultTopK applies when a query leaves TopK zero.
	DefaultTopK int

	// MinTopK and MaxTopK bound the requested top_k.
	MinTopK int
	MaxTopK int
}

// withDefaults fills zero fields with the package defaults.
func (c SearchConfig) withDefaults() SearchConfig {
	if c.OverfetchMultiplier <= 0 {
		c.OverfetchMultiplier = DefaultOverfetchMultiplier
	}
	if c.MaxOverfetch <= 0 {
		c.MaxOverfetch = DefaultMaxOverfetch
	}
	if c.ScoreThreshold == 0 {
		c.ScoreThreshold = DefaultScoreThreshold
	}
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = DefaultTopK
	}
	if c.MinTopK <= 0 {
		c.MinTopK = DefaultMinTopK
	}
	if c.MaxTopK <= 0 {
		c.MaxTopK = DefaultMaxTopK
	}
	return c
}

// SearchService runs the search pipeline: embed, overfetch, narrow by
// metadata, threshold, re-rank, hydrate.
type SearchService struct {
	index    *index.Index
	embedder driven.EmbeddingService
	cfg      SearchConfig
}

// NewSearchService creates a search service over the given index and
// embedder. The embedder must be the same instance (or at least the
// same model) that served ingestion.
func NewSearchService(ix *index.Index, embedder driven.EmbeddingService, cfg SearchConfig) *SearchService {
	return &SearchService{
		index:    ix,
		embedder: embedder,
		cfg:      cfg.withDefaults(),
	}
}

// Search answers one similarity query. An empty result set is a valid
// response; only malformed queries and collaborator failures error.
func (s *SearchService) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error) {
	logger.Section("Search Execution")

	if s.index == nil {
		return nil, domain.ErrVectorEngineUnavailable
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	topK := query.TopK
	if topK == 0 {
		topK = s.cfg.DefaultTopK
	}
	if topK < s.cfg.MinTopK || topK > s.cfg.MaxTopK {
		return nil, fmt.Errorf("%w: %d not in [%d, %d]",
			domain.ErrTopKRange, topK, s.cfg.MinTopK, s.cfg.MaxTopK)
	}

	logger.Debug("Query: %q, top_k: %d, source: %q, author: %q", text, topK, query.Source, query.Author)
	start := time.Now()

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	vec := vectormath.Normalize(embedding)

	fetchK := topK * s.cfg.OverfetchMultiplier
	if fetchK > s.cfg.MaxOverfetch {
		fetchK = s.cfg.MaxOverfetch
	}
	if fetchK < topK {
		fetchK = topK
	}
	logger.Debug("Overfetching %d candidates", fetchK)

	hits, err := s.index.Search(ctx, vec, fetchK)
	if err != nil {
		logger.Warn("Vector search failed: %v", err)
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Raw candidates: %d", len(hits))

	allowed, filtered := s.index.FilterSet(query.Source, query.Author)
	if filtered && len(allowed) == 0 {
		logger.Info("No documents match the source/author filter")
		return s.respond(text, nil, start), nil
	}

	kept := hits[:0:0]
	for _, hit := range hits {
		if hit.Score < s.cfg.ScoreThreshold {
			continue
		}
		if filtered {
			if _, ok := allowed[hit.VectorID]; !ok {
				continue
			}
		}
		kept = append(kept, hit)
	}
	logger.Debug("After filter and threshold: %d candidates", len(kept))

	// Re-rank: score descending, ties to the earlier insertion for
	// deterministic ordering across identical queries.
	sort.Slice(kept, func(i, j int) bool {
		if kept[i].Score != kept[j].Score {
			return kept[i].Score > kept[j].Score
		}
		return kept[i].VectorID < kept[j].VectorID
	})
	if len(kept) > topK {
		kept = kept[:topK]
	}

	results := make([]domain.SearchResult, 0, len(kept))
	for _, hit := range kept {
		doc, err := s.index.DocumentByVectorID(hit.VectorID)
		if err != nil {
			return nil, fmt.Errorf("resolve vector id %d: %w", hit.VectorID, err)
		}
		results = append(results, domain.SearchResult{
			ID:        doc.ID,
			Source:    doc.Source,
			Author:    doc.Author,
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
			Score:     hit.Score,
		})
	}

	logger.Info("Final results: %d", len(results))
	return s.respond(text, results, start), nil
}

func (s *SearchService) respond(query string, results []domain.SearchResult, start time.Time) *domain.SearchResponse {
	if results == nil {
		results = []domain.SearchResult{}
	}
	return &domain.SearchResponse{
		Query:      query,
		Count:      len(results),
		SearchTime: domain.FormatDuration(time.Since(start).Seconds()),
		Results:    results,
	}
}
