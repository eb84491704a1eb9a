package services

import (
	"context"
	"hash/fnv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semdex/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/index"
	"github.com/custodia-labs/semdex/internal/vectormath"
)

// --- Mock implementations ---

const testDims = 4

// mockEmbedder implements driven.EmbeddingService for testing.
// It maps text deterministically to a unit vector, so identical texts
// embed identically and similarity is reproducible.
type mockEmbedder struct {
	embedErr   error
	batchErr   error
	embedCalls int
	batchCalls int
	embedded   []string // texts seen by EmbedBatch, in order
}

func textVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum64()

	v := make([]float32, testDims)
	for i := range v {
		seed = seed*6364136223846793005 + 1442695040888963407
		v[i] = float32(int64(seed>>33)) / float32(1<<30)
	}
	return vectormath.Normalize(v)
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.embedCalls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return textVector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = textVector(t)
		m.embedded = append(m.embedded, t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int                 { return testDims }
func (m *mockEmbedder) ModelName() string               { return "mock-embedder" }
func (m *mockEmbedder) Ping(_ context.Context) error    { return nil }
func (m *mockEmbedder) Close() error                    { return nil }

// --- Shared fixtures ---

func newTestIndex(t *testing.T) *index.Index {
	t.Helper()
	engine, err := flat.New(testDims)
	require.NoError(t, err)
	return index.New(engine)
}

func validDoc(id, source, author, text string) domain.Document {
	return domain.Document{
		ID:        id,
		Source:    source,
		Author:    author,
		Text:      text,
		CreatedAt: "2024-01-15T10:00:00Z",
	}
}

// ingestAll ingests the given documents and requires full success.
func ingestAll(t *testing.T, ix *index.Index, emb *mockEmbedder, docs ...domain.Document) {
	t.Helper()
	svc := NewIngestionService(ix, emb, IngestionConfig{})
	report, err := svc.Ingest(context.Background(), docs)
	require.NoError(t, err)
	require.Equal(t, len(docs), report.Ingested, "fixture ingestion must fully succeed")
}
