package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/semdex/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive search UI",
	Long: `Launch the interactive terminal user interface for semdex.

Type a query and press Enter to search the index. Combine with --corpus
to load documents when the session starts.

Controls:
  Enter    - Search
  Tab      - Switch between input and results
  ↑/k, ↓/j - Navigate results
  Esc, q   - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	if searchService == nil || statusService == nil {
		return errors.New("services not configured")
	}

	// Panic recovery keeps the stack trace visible after the alt
	// screen is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	model := tui.New(searchService, statusService)
	model.WithContext(cmd.Context())

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
