// Package cli provides the cobra command tree for semdex.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semdex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/semdex/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/semdex/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/semdex/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/semdex/internal/core/index"
	"github.com/custodia-labs/semdex/internal/core/ports/driven"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
	"github.com/custodia-labs/semdex/internal/core/services"
	"github.com/custodia-labs/semdex/internal/logger"
)

// Persistent flags.
var (
	verboseFlag bool
	configPath  string
	corpusPath  string
)

// Wired services. Tests replace these and set servicesWired.
var (
	ingestionService driving.IngestionService
	searchService    driving.SearchService
	statusService    driving.StatusService
	servicesWired    bool
)

var rootCmd = &cobra.Command{
	Use:   "semdex",
	Short: "Semantic document search over an in-memory hybrid index",
	Long: `Semdex ingests text documents, embeds them into fixed-length vectors,
and serves nearest-neighbour queries narrowed by exact-match source and
author filters.

The index lives in memory for the lifetime of the process. Use --corpus
to load a JSON document file before a command runs, e.g.:

  semdex search --corpus docs.json "how do we rotate credentials"`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.toml (default ~/.semdex/config.toml)")
	rootCmd.PersistentFlags().StringVar(&corpusPath, "corpus", "", "JSON document file to ingest before the command runs")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// initServices builds the index and services from settings.
// A no-op when tests have wired mocks in.
func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)

	if servicesWired {
		return nil
	}

	settings, err := file.Load(configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	embedder, err := buildEmbedder(settings.Embedding)
	if err != nil {
		return err
	}

	engine, err := flat.New(embedder.Dimensions())
	if err != nil {
		return fmt.Errorf("create vector engine: %w", err)
	}

	ix := index.New(engine)

	ingestionService = services.NewIngestionService(ix, embedder, services.IngestionConfig{
		MaxBatchSize:   settings.Index.MaxBatchSize,
		EmbedBatchSize: settings.Index.EmbedBatchSize,
	})
	searchService = services.NewSearchService(ix, embedder, services.SearchConfig{
		OverfetchMultiplier: settings.Index.OverfetchMultiplier,
		MaxOverfetch:        settings.Index.MaxOverfetch,
		ScoreThreshold:      settings.Index.ScoreThreshold,
		DefaultTopK:         settings.Index.DefaultTopK,
		MinTopK:             settings.Index.MinTopK,
		MaxTopK:             settings.Index.MaxTopK,
	})
	statusService = services.NewStatusService(ix, embedder)
	servicesWired = true

	if corpusPath != "" && cmd.Name() != "ingest" {
		if err := loadCorpusIntoIndex(cmd, corpusPath); err != nil {
			return err
		}
	}

	return nil
}

// buildEmbedder constructs the configured embedding backend.
func buildEmbedder(cfg file.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch cfg.Backend {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}), nil
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:            cfg.APIKey,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
	default:
		return nil, fmt.Errorf("unknown embedding backend %q (want ollama or openai)", cfg.Backend)
	}
}

// loadCorpusIntoIndex ingests a corpus file before a search/status/tui
// command runs, failing loudly when nothing could be ingested.
func loadCorpusIntoIndex(cmd *cobra.Command, path string) error {
	docs, err := loadCorpus(path, false)
	if err != nil {
		return err
	}

	report, err := ingestionService.Ingest(cmd.Context(), docs)
	if err != nil {
		return fmt.Errorf("ingest corpus: %w", err)
	}
	if report.Ingested == 0 && report.TotalDocs > 0 {
		return fmt.Errorf("corpus %s: no documents ingested (%d failed)", path, report.Failed)
	}
	logger.Info("Corpus loaded: %d of %d documents ingested", report.Ingested, report.TotalDocs)
	return nil
}
