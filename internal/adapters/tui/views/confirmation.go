package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"treenotes/internal/adapters/tui/styles"
)

// ConfirmKeyMap defines key bindings for confirmation views
type ConfirmKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// DefaultConfirmKeys returns the default confirmation key bindings
var DefaultConfirmKeys = ConfirmKeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
}

// ConfirmationModel provides a base for confirmation-style views
type ConfirmationModel struct {
	ViewState
	Keys ConfirmKeyMap
}

// NewConfirmationModel creates a new confirmation model with default keys
func NewConfirmationModel() ConfirmationModel {
	return ConfirmationModel{
		Keys: DefaultConfirmKeys,
	}
}

// HandleKeyMsg processes key messages for confirmation views.
// Returns (handled, cmd) where handled is true if the key was processed.
func (m *ConfirmationModel) HandleKeyMsg(msg tea.KeyMsg, onConfirm, onCancel func() tea.Msg) (bool, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Cancel):
		return true, func() tea.Msg { return onCancel() }
	case key.Matches(msg, m.Keys.Confirm):
		return true, func() tea.Msg { return onConfirm() }
	}
	return false, nil
}

// RenderConfirmPrompt renders the standard confirmation prompt
func RenderConfirmPrompt(question string) string {
	var b strings.Builder
	b.WriteString(question)
	b.WriteString(" ")
	b.WriteString(styles.HelpKey.Render("y"))
	b.WriteString(styles.HelpDesc.Render(" to confirm, "))
	b.WriteString(styles.HelpKey.Render("n"))
	b.WriteString(styles.HelpDesc.Render(" to cancel"))
	return b.String()
}

// CreateConfirmModel asks before a potential note is written to disk
type CreateConfirmModel struct {
	ConfirmationModel
	ID string
}

// NewCreateConfirmModel creates a new create confirmation view
func NewCreateConfirmModel() *CreateConfirmModel {
	return &CreateConfirmModel{ConfirmationModel: NewConfirmationModel()}
}

// SetTarget sets the note the confirmation is for
func (m *CreateConfirmModel) SetTarget(id string) {
	m.ID = id
	m.ClearMessage()
}

// Init initializes the view
func (m *CreateConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the confirmation
func (m *CreateConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		id := m.ID
		_, cmd := m.HandleKeyMsg(msg,
			func() tea.Msg { return ConfirmOpenMsg{ID: id} },
			func() tea.Msg { return SwitchToTreeMsg{} },
		)
		return m, cmd
	}
	return m, nil
}

// View renders the confirmation
func (m *CreateConfirmModel) View() string {
	return NewViewBuilder().
		Title("Create note").
		Line(styles.InputLabel.Render("Potential note:")).
		Line("  " + m.ID).
		BlankLine().
		Line(RenderConfirmPrompt(fmt.Sprintf("%s.md does not exist yet. Create and open it?", m.ID))).
		Message(m.Message, m.MessageErr).
		String()
}
