package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

var (
	ingestAssignIDs bool
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest a JSON document file into the index",
	Long: `Ingest reads a JSON array of documents, embeds each one, and registers
it in the index. The report lists every document with its outcome.

Each document needs id, source, author, text, and an RFC 3339 created_at.
With --assign-ids, documents missing an id get a generated UUID.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestAssignIDs, "assign-ids", false, "generate UUIDs for documents missing an id")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	docs, err := loadCorpus(args[0], ingestAssignIDs)
	if err != nil {
		return err
	}

	if !ingestJSON {
		wireProgressBar(len(docs))
	}

	report, err := ingestionService.Ingest(cmd.Context(), docs)
	if err != nil {
		return err
	}

	if ingestJSON {
		return outputIngestJSON(cmd, report)
	}
	outputIngestReport(cmd, report)
	return nil
}

// loadCorpus reads a JSON array of documents from path. When assignIDs
// is set, documents without an id get a generated UUID.
func loadCorpus(path string, assignIDs bool) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}

	var docs []domain.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}

	if assignIDs {
		for i := range docs {
			if docs[i].ID == "" {
				docs[i].ID = uuid.NewString()
			}
		}
	}
	return docs, nil
}

// wireProgressBar attaches a terminal progress bar to the ingestion
// service when the concrete implementation exposes a progress hook.
func wireProgressBar(total int) {
	hooked, ok := ingestionService.(interface{ SetProgress(func(done, total int)) })
	if !ok || total == 0 {
		return
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Ingesting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	hooked.SetProgress(func(done, _ int) {
		_ = bar.Set(done)
	})
}

func outputIngestJSON(cmd *cobra.Command, report *domain.IngestReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("%s: %d/%d documents ingested in %s\n",
		report.Message, report.Ingested, report.TotalDocs, report.IngestionTime)
	if report.DuplicatesIgnored > 0 {
		cmd.Printf("  duplicates ignored: %d\n", report.DuplicatesIgnored)
	}
	if report.Failed == 0 {
		return
	}
	cmd.Printf("  failed: %d\n", report.Failed)
	for _, res := range report.Results {
		if res.Outcome == domain.OutcomeIngested || res.Outcome == domain.OutcomeDuplicateIgnored {
			continue
		}
		cmd.Printf("    %s: %s (%s)\n", res.ID, res.Outcome, res.Reason)
	}
}
