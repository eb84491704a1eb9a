package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/semdex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/semdex/internal/core/domain"
)

type mockIngestionService struct {
	report *domain.IngestReport
	err    error
	docs   []domain.Document
}

func (m *mockIngestionService) Ingest(_ context.Context, docs []domain.Document) (*domain.IngestReport, error) {
	m.docs = docs
	return m.report, m.err
}

type mockSearchService struct {
	resp  *domain.SearchResponse
	err   error
	query domain.SearchQuery
}

func (m *mockSearchService) Search(_ context.Context, query domain.SearchQuery) (*domain.SearchResponse, error) {
	m.query = query
	return m.resp, m.err
}

type mockStatusService struct {
	status *domain.IndexStatus
	err    error
}

func (m *mockStatusService) Status(_ context.Context) (*domain.IndexStatus, error) {
	return m.status, m.err
}

// setupTestServices swaps the package service globals for mocks and
// returns a cleanup restoring the previous state.
func setupTestServices() func() {
	prevIngest := ingestionService
	prevSearch := searchService
	prevStatus := statusService
	prevWired := servicesWired

	ingestionService = &mockIngestionService{
		report: &domain.IngestReport{Message: domain.MessageSuccess, IngestionTime: "1.0ms"},
	}
	searchService = &mockSearchService{
		resp: &domain.SearchResponse{
			Query:      "test query",
			Count:      1,
			SearchTime: "2.0ms",
			Results: []domain.SearchResult{
				{ID: "doc-1", Source: "wiki", Author: "ann", Text: "hello world", CreatedAt: "2025-01-01T00:00:00Z", Score: 0.91},
			},
		},
	}
	statusService = &mockStatusService{
		status: &domain.IndexStatus{IndexedCount: 3, Model: "test-model", Dimensions: 4},
	}
	servicesWired = true

	return func() {
		ingestionService = prevIngest
		searchService = prevSearch
		statusService = prevStatus
		servicesWired = prevWired

		// Flag variables persist across Execute calls.
		searchTopK = 0
		searchSource = ""
		searchAuthor = ""
		searchJSON = false
		ingestAssignIDs = false
		ingestJSON = false
		statusJSON = false
		corpusPath = ""
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "semdex", rootCmd.Use)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	for _, name := range []string{"verbose", "config", "corpus"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag %s should exist", name)
	}
}

func TestBuildEmbedder_Ollama(t *testing.T) {
	embedder, err := buildEmbedder(file.EmbeddingSettings{Backend: "ollama", Dimensions: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, embedder.Dimensions())
}

func TestBuildEmbedder_DefaultsToOllama(t *testing.T) {
	embedder, err := buildEmbedder(file.EmbeddingSettings{})
	require.NoError(t, err)
	require.NotNil(t, embedder)
}

func TestBuildEmbedder_OpenAIRequiresKey(t *testing.T) {
	_, err := buildEmbedder(file.EmbeddingSettings{Backend: "openai"})
	assert.Error(t, err)
}

func TestBuildEmbedder_UnknownBackend(t *testing.T) {
	_, err := buildEmbedder(file.EmbeddingSettings{Backend: "pinecone"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown embedding backend")
}

func TestVersionCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "semdex version")
}
