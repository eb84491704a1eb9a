package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index status",
	Long:  `Status reports the number of indexed documents and the embedding model serving the index.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if statusService == nil {
		return errors.New("status service not configured")
	}

	status, err := statusService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	if statusJSON {
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Indexed documents: %d\n", status.IndexedCount)
	cmd.Printf("Embedding model:   %s\n", status.Model)
	cmd.Printf("Dimensions:        %d\n", status.Dimensions)
	return nil
}
