package views

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"treenotes/internal/adapters/outline"
	"treenotes/internal/application"
	"treenotes/internal/application/commands"
	"treenotes/internal/application/treeview"
)

// TreeKeyMap defines key bindings for the tree view
type TreeKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Parent   key.Binding
	Toggle   key.Binding
	Open     key.Binding
	Sort     key.Binding
	Collapse key.Binding
	Refresh  key.Binding
	Copy     key.Binding
	Find     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var TreeKeys = TreeKeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("ctrl+u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("ctrl+d", "page down"),
	),
	Parent: key.NewBinding(
		key.WithKeys("h", "left"),
		key.WithHelp("h/←", "collapse/parent"),
	),
	Toggle: key.NewBinding(
		key.WithKeys("enter", "l", "right", " "),
		key.WithHelp("enter/l", "toggle"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open"),
	),
	Sort: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "sort"),
	),
	Collapse: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "collapse all"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy link"),
	),
	Find: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "find"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// lines taken by title, subtitle, message, help and padding
const treeChrome = 10

// TreeModel is the model for the backlink tree. It owns one ViewCache
// rendering into an outline container and draws the container's visible
// rows.
type TreeModel struct {
	ViewState
	ctx    context.Context
	coord  *application.Coordinator
	root   *outline.Container
	cache  *treeview.ViewCache
	lines  []outline.Line
	pager  *Paginator
	copy   func(string) error
	opened string // set by the open callback during a click
}

// NewTreeModel creates the tree view. Attach Cache() to the coordinator to
// render it.
func NewTreeModel(ctx context.Context, coord *application.Coordinator, opts ...treeview.Option) *TreeModel {
	m := &TreeModel{
		ctx:   ctx,
		coord: coord,
		root:  outline.New(),
		pager: NewPaginator(20),
		copy:  clipboard.WriteAll,
	}
	opts = append(opts, treeview.WithOpener(func(id string) { m.opened = id }))
	m.cache = treeview.New(coord.Graph(), m.root, opts...)
	return m
}

// Cache returns the view kept in sync by the coordinator
func (m *TreeModel) Cache() *treeview.ViewCache {
	return m.cache
}

// SetClipboard replaces the clipboard writer
func (m *TreeModel) SetClipboard(fn func(string) error) {
	m.copy = fn
}

// Init initializes the tree
func (m *TreeModel) Init() tea.Cmd {
	m.Sync()
	return nil
}

// Sync re-reads the visible rows after the view changed. The selection
// follows its row when the row is still shown.
func (m *TreeModel) Sync() {
	selected := m.Selected()
	m.lines = m.root.Visible()
	m.pager.SetTotal(len(m.lines))
	if selected == nil {
		return
	}
	for i, l := range m.lines {
		if l.Row == selected {
			m.pager.SetCursor(i)
			return
		}
	}
}

// Lines returns the visible rows in display order
func (m *TreeModel) Lines() []outline.Line {
	return m.lines
}

// Cursor returns the index of the selected line
func (m *TreeModel) Cursor() int {
	return m.pager.Cursor()
}

// Selected returns the row under the cursor, nil when the tree is empty
func (m *TreeModel) Selected() *outline.Row {
	c := m.pager.Cursor()
	if c >= 0 && c < len(m.lines) {
		return m.lines[c].Row
	}
	return nil
}

// Reveal moves the cursor to the first visible row showing id
func (m *TreeModel) Reveal(id string) bool {
	for i, l := range m.lines {
		if l.Row.Text() == id {
			m.pager.SetCursor(i)
			return true
		}
	}
	return false
}

// Update handles messages for the tree
func (m *TreeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		m.ClearMessage()
		cmd := m.handleKey(msg)
		m.Sync()
		return m, cmd
	}

	return m, nil
}

func (m *TreeModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, TreeKeys.Quit):
		return tea.Quit

	case key.Matches(msg, TreeKeys.Up):
		m.pager.CursorUp()

	case key.Matches(msg, TreeKeys.Down):
		m.pager.CursorDown()

	case key.Matches(msg, TreeKeys.PageUp):
		m.pager.PageUp()

	case key.Matches(msg, TreeKeys.PageDown):
		m.pager.PageDown()

	case key.Matches(msg, TreeKeys.Toggle):
		return m.click(false)

	case key.Matches(msg, TreeKeys.Open):
		return m.click(true)

	case key.Matches(msg, TreeKeys.Parent):
		row := m.Selected()
		if row == nil {
			return nil
		}
		if row.ChildrenVisible() {
			row.Click(false)
			return nil
		}
		parent := row.Parent()
		for i, l := range m.lines {
			if l.Row == parent {
				m.pager.SetCursor(i)
				break
			}
		}

	case key.Matches(msg, TreeKeys.Sort):
		result, err := commands.NewChangeSortCommand(m.coord, "").Execute()
		if err != nil {
			m.SetError(err)
			return nil
		}
		m.SetMessage(result.Message, false)
		return send(SortChangedMsg{Order: result.Order.String()})

	case key.Matches(msg, TreeKeys.Collapse):
		commands.NewCollapseAllCommand(m.coord).Execute()
		m.pager.SetCursor(0)

	case key.Matches(msg, TreeKeys.Refresh):
		result, err := commands.NewRefreshCommand(m.coord).Execute(m.ctx)
		if err != nil {
			m.SetError(err)
			return nil
		}
		m.SetMessage(result.Message, false)

	case key.Matches(msg, TreeKeys.Copy):
		row := m.Selected()
		if row == nil {
			return nil
		}
		link := "[[" + row.Text() + "]]"
		if err := m.copy(link); err != nil {
			m.SetMessage(fmt.Sprintf("Failed to copy: %v", err), true)
			return nil
		}
		m.SetMessage("Copied "+link, false)

	case key.Matches(msg, TreeKeys.Find):
		return send(SwitchToFindMsg{})

	case key.Matches(msg, TreeKeys.Help):
		return send(SwitchToHelpMsg{})
	}

	return nil
}

// click delivers a click to the selected row. The view calls back into
// the opener when the click opens the note.
func (m *TreeModel) click(modifier bool) tea.Cmd {
	row := m.Selected()
	if row == nil {
		return nil
	}
	m.opened = ""
	row.Click(modifier)
	if m.opened == "" {
		return nil
	}
	id := m.opened
	m.opened = ""
	return send(OpenNoteMsg{ID: id})
}

// View renders the tree
func (m *TreeModel) View() string {
	graph := m.coord.Graph()
	v := NewViewBuilder().
		Title("treenotes").
		Subtitle(fmt.Sprintf("%d notes • %s", graph.Len(), graph.SortOrder().Label()))

	if len(m.lines) == 0 {
		v.Muted(fmt.Sprintf("No notes with at least %d links", m.cache.Cutoff()))
	}

	start, end := m.pager.VisibleRange()
	for i := start; i < end; i++ {
		v.Line(RenderLine(m.lines[i], i == m.pager.Cursor()))
	}
	if len(m.lines) > m.pager.PageSize() {
		v.Muted(fmt.Sprintf("%d/%d", m.pager.Cursor()+1, len(m.lines)))
	}

	return v.
		Message(m.Message, m.MessageErr).
		Help(TreeKeys.Toggle, TreeKeys.Open, TreeKeys.Parent, TreeKeys.Sort, TreeKeys.Find, TreeKeys.Help, TreeKeys.Quit).
		String()
}

// SetSize updates the view dimensions
func (m *TreeModel) SetSize(width, height int) {
	m.ViewState.SetSize(width, height)
	m.pager.SetPageSize(height - treeChrome)
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}
