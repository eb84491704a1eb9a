package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/semdex/internal/core/domain"
)

var (
	searchTopK   int
	searchSource string
	searchAuthor string
	searchJSON   bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents by meaning",
	Long: `Search embeds the query and returns the most similar documents,
optionally narrowed to an exact source and/or author. Filter values are
case-insensitive and whitespace-tolerant: "Git Readme" matches "git_readme".`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchTopK, "top-k", "n", 0, "maximum number of results (default from settings)")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict results to this source")
	searchCmd.Flags().StringVar(&searchAuthor, "author", "", "restrict results to this author")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := domain.SearchQuery{
		Text:   args[0],
		Source: searchSource,
		Author: searchAuthor,
		TopK:   searchTopK,
	}

	resp, err := searchService.Search(cmd.Context(), query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, resp)
	}
	return outputSearchTable(cmd, resp)
}

func outputSearchJSON(cmd *cobra.Command, resp *domain.SearchResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, resp *domain.SearchResponse) error {
	if resp.Count == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Printf("Results (%d in %s):\n", resp.Count, resp.SearchTime)
	cmd.Println()
	for i, res := range resp.Results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, res.ID, res.Score)
		cmd.Printf("      %s / %s / %s\n", res.Source, res.Author, res.CreatedAt)
		cmd.Printf("      %s\n", snippet(res.Text, 120))
		cmd.Println()
	}
	return nil
}

// snippet truncates text for single-line table output.
func snippet(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
