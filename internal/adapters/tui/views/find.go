package views

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"treenotes/internal/adapters/tui/styles"
	"treenotes/internal/application/commands"
	"treenotes/internal/domain"
)

// FindKeyMap defines key bindings for the find view
type FindKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var FindKeys = FindKeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "ctrl+p"),
		key.WithHelp("↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "ctrl+n"),
		key.WithHelp("↓", "down"),
	),
	Select: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "go to note"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
}

const maxFindResults = 10

// FindSelectMsg is sent when a note is picked from the results
type FindSelectMsg struct {
	ID string
}

// FindModel finds notes in the graph by fuzzy name match
type FindModel struct {
	ViewState
	graph   *domain.GraphCache
	input   textinput.Model
	results []commands.SearchResult
	cursor  int
}

// NewFindModel creates a new find view model
func NewFindModel(graph *domain.GraphCache) *FindModel {
	input := textinput.New()
	input.Placeholder = "Note name..."
	input.Focus()

	return &FindModel{
		graph: graph,
		input: input,
	}
}

// Init initializes the find view
func (m *FindModel) Init() tea.Cmd {
	return textinput.Blink
}

// Reset clears the query and results
func (m *FindModel) Reset() {
	m.input.SetValue("")
	m.results = nil
	m.cursor = 0
	m.input.Focus()
}

// Results returns the current matches, best first
func (m *FindModel) Results() []commands.SearchResult {
	return m.results
}

// Update handles messages for the find view. The graph is queried in
// place; it must not be read from another goroutine.
func (m *FindModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, FindKeys.Cancel):
			return m, send(SwitchToTreeMsg{})

		case key.Matches(msg, FindKeys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(msg, FindKeys.Down):
			if m.cursor < min(len(m.results), maxFindResults)-1 {
				m.cursor++
			}
			return m, nil

		case key.Matches(msg, FindKeys.Select):
			if m.cursor >= 0 && m.cursor < len(m.results) {
				return m, send(FindSelectMsg{ID: m.results[m.cursor].ID})
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.search()
	return m, cmd
}

func (m *FindModel) search() {
	m.results = commands.NewSearchCommand(m.graph, m.input.Value(), 0).Execute()
	if m.cursor >= len(m.results) {
		m.cursor = max(len(m.results)-1, 0)
	}
}

// View renders the find view
func (m *FindModel) View() string {
	v := NewViewBuilder().
		Title("Find note").
		Line(styles.InputFocused.Render(m.input.View())).
		BlankLine()

	switch {
	case strings.TrimSpace(m.input.Value()) == "":
		v.Muted("Type to search note names")
	case len(m.results) == 0:
		v.Muted("No matching notes")
	default:
		v.Subtitle(fmt.Sprintf("%d results", len(m.results)))
		for i, r := range m.results[:min(len(m.results), maxFindResults)] {
			v.Line(m.renderResult(r, i == m.cursor))
		}
		if len(m.results) > maxFindResults {
			v.Muted(fmt.Sprintf("... and %d more", len(m.results)-maxFindResults))
		}
	}

	return v.Help(FindKeys.Up, FindKeys.Down, FindKeys.Select, FindKeys.Cancel).String()
}

func (m *FindModel) renderResult(r commands.SearchResult, selected bool) string {
	var text string
	switch {
	case selected:
		text = styles.NodeSelected.Render(r.ID)
	default:
		base := styles.NodeNote
		if !r.Exists {
			base = styles.NodePotential
		}
		text = highlightMatch(r.ID, m.input.Value(), base)
	}
	return text + styles.NodeCount.Render(fmt.Sprintf(" (%d)", r.Count))
}

// highlightMatch renders name with base and marks the first case-folded
// occurrence of query with the match style
func highlightMatch(name, query string, base lipgloss.Style) string {
	start, end, ok := matchSpan(name, strings.TrimSpace(query))
	if !ok {
		return base.Render(name)
	}
	var b strings.Builder
	if start > 0 {
		b.WriteString(base.Render(name[:start]))
	}
	b.WriteString(styles.FindMatch.Render(name[start:end]))
	if end < len(name) {
		b.WriteString(base.Render(name[end:]))
	}
	return b.String()
}

// matchSpan returns the byte range of the first substring of name that
// equals query under case folding
func matchSpan(name, query string) (start, end int, ok bool) {
	if query == "" {
		return 0, 0, false
	}
	n := utf8.RuneCountInString(query)
	for i := range name {
		j, count := i, 0
		for j < len(name) && count < n {
			_, size := utf8.DecodeRuneInString(name[j:])
			j += size
			count++
		}
		if count < n {
			break
		}
		if strings.EqualFold(name[i:j], query) {
			return i, j, true
		}
	}
	return 0, 0, false
}
