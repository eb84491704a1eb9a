// Package tui provides the interactive terminal search interface.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/semdex/internal/core/domain"
	"github.com/custodia-labs/semdex/internal/core/ports/driving"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// searchCompletedMsg carries the outcome of an asynchronous search.
type searchCompletedMsg struct {
	resp *domain.SearchResponse
	err  error
}

// statusLoadedMsg carries the index status shown in the header.
type statusLoadedMsg struct {
	status *domain.IndexStatus
}

// Model is the root bubbletea model: a query input above a navigable
// result list.
type Model struct {
	input  textinput.Model
	search driving.SearchService
	status driving.StatusService
	ctx    context.Context

	results    []domain.SearchResult
	searchTime string
	indexed    int
	model      string
	selected   int
	focusInput bool
	searching  bool
	err        error

	width  int
	height int
}

// New creates the search UI bound to the given services.
func New(search driving.SearchService, status driving.StatusService) *Model {
	ti := textinput.New()
	ti.Placeholder = "Search documents..."
	ti.Focus()
	ti.CharLimit = 512

	return &Model{
		input:      ti,
		search:     search,
		status:     status,
		ctx:        context.Background(),
		focusInput: true,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for service calls.
func (m *Model) WithContext(ctx context.Context) *Model {
	m.ctx = ctx
	return m
}

// Init starts cursor blinking and loads the index status.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadStatus())
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchCompletedMsg:
		m.searching = false
		m.err = msg.err
		if msg.err == nil {
			m.results = msg.resp.Results
			m.searchTime = msg.resp.SearchTime
			m.selected = 0
		}
		return m, nil

	case statusLoadedMsg:
		if msg.status != nil {
			m.indexed = msg.status.IndexedCount
			m.model = msg.status.Model
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit

	case tea.KeyTab:
		m.focusInput = !m.focusInput
		if m.focusInput {
			m.input.Focus()
		} else {
			m.input.Blur()
		}
		return m, nil

	case tea.KeyEnter:
		if !m.focusInput {
			return m, nil
		}
		query := strings.TrimSpace(m.input.Value())
		if query == "" {
			return m, nil
		}
		m.searching = true
		m.err = nil
		return m, m.performSearch(query)
	}

	if m.focusInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.results)-1 {
			m.selected++
		}
	}
	return m, nil
}

// performSearch runs the query off the update loop.
func (m *Model) performSearch(query string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		resp, err := m.search.Search(ctx, domain.SearchQuery{Text: query})
		return searchCompletedMsg{resp: resp, err: err}
	}
}

func (m *Model) loadStatus() tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		status, err := m.status.Status(ctx)
		if err != nil {
			return statusLoadedMsg{}
		}
		return statusLoadedMsg{status: status}
	}
}

// View renders the UI.
func (m *Model) View() string {
	var b strings.Builder

	title := "semdex"
	if m.model != "" {
		title = fmt.Sprintf("semdex · %d docs · %s", m.indexed, m.model)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(inputStyle.Width(m.width - 4).Render(m.input.View()))
	b.WriteString("\n\n")

	switch {
	case m.searching:
		b.WriteString(statusStyle.Render("Searching..."))
	case m.err != nil:
		b.WriteString(errorStyle.Render("Error: " + m.err.Error()))
	case len(m.results) == 0:
		b.WriteString(statusStyle.Render("No results. Type a query and press Enter."))
	default:
		b.WriteString(m.renderResults())
	}

	b.WriteString("\n\n")
	b.WriteString(statusStyle.Render("enter search · tab switch focus · ↑/↓ navigate · esc quit"))
	return b.String()
}

func (m *Model) renderResults() string {
	var b strings.Builder
	if m.searchTime != "" {
		b.WriteString(statusStyle.Render(fmt.Sprintf("%d results in %s", len(m.results), m.searchTime)))
		b.WriteString("\n\n")
	}

	for i, res := range m.results {
		line := fmt.Sprintf("  %s (%.2f)", res.ID, res.Score)
		if !m.focusInput && i == m.selected {
			line = selectedStyle.Render("▸" + line[1:])
		}
		b.WriteString(line)
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(fmt.Sprintf("    %s / %s / %s", res.Source, res.Author, res.CreatedAt)))
		b.WriteString("\n")
		b.WriteString("    " + truncate(res.Text, m.width-8))
		b.WriteString("\n\n")
	}
	return b.String()
}

// truncate shortens text for single-line rendering.
func truncate(text string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max-3]) + "..."
}
