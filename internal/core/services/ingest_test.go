package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

func TestIngest_Success(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{}
	svc := NewIngestionService(ix, emb, IngestionConfig{})

	report, err := svc.Ingest(context.Background(), []domain.Document{
		validDoc("d1", "jira", "jane", "first document"),
		validDoc("d2", "confluence", "joe", "second document"),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.MessageSuccess, report.Message)
	assert.Equal(t, 2, report.TotalDocs)
	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 0, report.DuplicatesIgnored)
	assert.True(t, report.Balanced())
	assert.Equal(t, 2, ix.Count())
	assert.NotEmpty(t, report.IngestionTime)
}

func TestIngest_SizeGateBoundary(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{}
	svc := NewIngestionService(ix, emb, IngestionConfig{MaxBatchSize: 3})

	exactly := make([]domain.Document, 3)
	for i := range exactly {
		exactly[i] = validDoc(fmt.Sprintf("d%d", i), "jira", "jane", fmt.Sprintf("text %d", i))
	}

	report, err := svc.Ingest(context.Background(), exactly)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Ingested)
}

func TestIngest_SizeGateRejectsWholeBatch(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{}
	svc := NewIngestionService(ix, emb, IngestionConfig{MaxBatchSize: 3})

	over := make([]domain.Document, 4)
	for i := range over {
		over[i] = validDoc(fmt.Sprintf("d%d", i), "jira", "jane", fmt.Sprintf("text %d", i))
	}

	report, err := svc.Ingest(context.Background(), over)

	assert.ErrorIs(t, err, domain.ErrPayloadTooLarge)
	assert.Nil(t, report)
	// Nothing processed: no embedding call, no registration.
	assert.Equal(t, 0, emb.batchCalls)
	assert.Equal(t, 0, ix.Count())
}

func TestIngest_DuplicateWithinBatch(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{}
	svc := NewIngestionService(ix, emb, IngestionConfig{})

	report, err := svc.Ingest(context.Background(), []domain.Document{
		validDoc("X", "jira", "jane", "original"),
		validDoc("X", "jira", "jane", "duplicate"),
	})

	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalDocs)
	assert.Equal(t, 1, report.Ingested)
	assert.Equal(t, 1, report.DuplicatesIgnored)
	assert.Equal(t, 0, report.Failed)
	assert.True(t, report.Balanced())
	assert.Equal(t, domain.MessageSuccess, report.Message)

	// The duplicate never reached the embedder.
	assert.Equal(t, []string{"original"}, emb.embedded)
	assert.Equal(t, domain.OutcomeDuplicateIgnored, report.Results[1].Outcome)
}

func TestIngest_CrossBatchDuplicateFails(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{}
	svc := NewIngestionService(ix, emb, IngestionConfig{})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, []domain.Document{validDoc("X", "jira", "jane", "first batch")})
	require.NoError(t, err)

	report, err := svc.Ingest(ctx, []domain.Document{validDoc("X", "jira", "jane", "second batch")})

	require.NoError(t, err)
	assert.Equal(t, 0, report.Ingested)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 0, report.DuplicatesIgnored)
	assert.Equal(t, domain.MessagePartialSuccess, report.Message)
	assert.Equal(t, domain.OutcomeFailed, report.Results[0].Outcome)
	assert.Contains(t, report.Results[0].Reason, "duplicate")

	// Never re-embedded.
	assert.Equal(t, []string{"first batch"}, emb.embedded)
	assert.Equal(t, 1, ix.Count())
}

func TestIngest_InvalidTimestampAmongValid(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{}
	svc := NewIngestionService(ix, emb, IngestionConfig{})

	docs := []domain.Document{
		validDoc("d1", "jira", "jane", "one"),
		validDoc("d2", "jira", "jane", "two"),
		{ID: "d3", Source: "jira", Author: "jane", Text: "three", CreatedAt: "not-a-date"},
		validDoc("d4", "jira", "jane", "four"),
		validDoc("d5", "jira", "jane", "five"),
	}

	report, err := svc.Ingest(context.Background(), docs)

	require.NoError(t, err)
	assert.Equal(t, 5, report.TotalDocs)
	assert.Equal(t, 4, report.Ingested)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, domain.MessagePartialSuccess, report.Message)
	assert.True(t, report.Balanced())
	assert.Equal(t, domain.OutcomeInvalid, report.Results[2].Outcome)
	assert.Contains(t, report.Results[2].Reason, "created_at")
}

func TestIngest_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		doc  domain.Document
	}{
		{"missing id", domain.Document{Source: "s", Author: "a", Text: "t", CreatedAt: "2024-01-15T10:00:00Z"}},
		{"missing source", domain.Document{ID: "d", Author: "a", Text: "t", CreatedAt: "2024-01-15T10:00:00Z"}},
		{"missing author", domain.Document{ID: "d", Source: "s", Text: "t", CreatedAt: "2024-01-15T10:00:00Z"}},
		{"missing text", domain.Document{ID: "d", Source: "s", Author: "a", CreatedAt: "2024-01-15T10:00:00Z"}},
		{"missing created_at", domain.Document{ID: "d", Source: "s", Author: "a", Text: "t"}},
		{"timestamp without timezone", validDocWithTime("2024-01-15T10:00:00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := newTestIndex(t)
			svc := NewIngestionService(ix, &mockEmbedder{}, IngestionConfig{})

			report, err := svc.Ingest(context.Background(), []domain.Document{tt.doc})

			require.NoError(t, err)
			assert.Equal(t, 1, report.Failed)
			assert.Equal(t, domain.OutcomeInvalid, report.Results[0].Outcome)
			assert.Equal(t, 0, ix.Count())
		})
	}
}

func validDocWithTime(createdAt string) domain.Document {
	d := validDoc("d", "s", "a", "t")
	d.CreatedAt = createdAt
	return d
}

func TestIngest_EmbeddingFailureScopedToSubBatch(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{batchErr: errors.New("model unavailable")}
	svc := NewIngestionService(ix, emb, IngestionConfig{})

	report, err := svc.Ingest(context.Background(), []domain.Document{
		validDoc("d1", "jira", "jane", "one"),
		validDoc("d2", "jira", "jane", "two"),
	})

	require.NoError(t, err, "embedding failures are per-document accounting, not batch errors")
	assert.Equal(t, 2, report.Failed)
	assert.Equal(t, 0, report.Ingested)
	assert.Equal(t, domain.MessagePartialSuccess, report.Message)
	assert.True(t, report.Balanced())
	assert.Equal(t, 0, ix.Count())
}

func TestIngest_FlushesInSubBatches(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{}
	svc := NewIngestionService(ix, emb, IngestionConfig{EmbedBatchSize: 2})

	docs := make([]domain.Document, 5)
	for i := range docs {
		docs[i] = validDoc(fmt.Sprintf("d%d", i), "jira", "jane", fmt.Sprintf("text %d", i))
	}

	report, err := svc.Ingest(context.Background(), docs)

	require.NoError(t, err)
	assert.Equal(t, 5, report.Ingested)
	assert.Equal(t, 3, emb.batchCalls) // 2 + 2 + 1
}

func TestIngest_PartitionProperty(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{}
	svc := NewIngestionService(ix, emb, IngestionConfig{})

	// A batch mixing every outcome.
	docs := []domain.Document{
		validDoc("a", "jira", "jane", "ok one"),
		{ID: "b", Source: "jira", Author: "jane", Text: "bad", CreatedAt: "nope"},
		validDoc("a", "jira", "jane", "intra-batch dup"),
		validDoc("c", "jira", "jane", "ok two"),
	}

	report, err := svc.Ingest(context.Background(), docs)

	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalDocs)
	assert.True(t, report.Balanced())
	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.DuplicatesIgnored)
}

func TestIngest_VectorIDMonotonicAcrossBatches(t *testing.T) {
	ix := newTestIndex(t)
	emb := &mockEmbedder{}
	svc := NewIngestionService(ix, emb, IngestionConfig{})
	ctx := context.Background()

	_, err := svc.Ingest(ctx, []domain.Document{validDoc("d1", "jira", "jane", "one")})
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, []domain.Document{validDoc("d2", "jira", "jane", "two")})
	require.NoError(t, err)

	first, err := ix.DocumentByVectorID(0)
	require.NoError(t, err)
	second, err := ix.DocumentByVectorID(1)
	require.NoError(t, err)
	assert.Equal(t, "d1", first.ID)
	assert.Equal(t, "d2", second.ID)
	assert.Greater(t, second.VectorID, first.VectorID)
}

func TestIngest_ProgressCallback(t *testing.T) {
	ix := newTestIndex(t)
	svc := NewIngestionService(ix, &mockEmbedder{}, IngestionConfig{EmbedBatchSize: 2})

	var calls []int
	svc.SetProgress(func(done, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, done)
	})

	_, err := svc.Ingest(context.Background(), []domain.Document{
		validDoc("d1", "jira", "jane", "one"),
		{ID: "d2", Source: "jira", Author: "jane", Text: "bad", CreatedAt: "nope"},
		validDoc("d3", "jira", "jane", "three"),
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestIngest_NilCollaborators(t *testing.T) {
	svc := NewIngestionService(nil, &mockEmbedder{}, IngestionConfig{})
	_, err := svc.Ingest(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrVectorEngineUnavailable)

	svc = NewIngestionService(newTestIndex(t), nil, IngestionConfig{})
	_, err = svc.Ingest(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
