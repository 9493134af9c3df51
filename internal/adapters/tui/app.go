package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"treenotes/internal/adapters/tui/views"
	"treenotes/internal/adapters/watcher"
	"treenotes/internal/application"
	"treenotes/internal/application/commands"
	"treenotes/internal/application/treeview"
	"treenotes/internal/domain"
	"treenotes/internal/logging"
	"treenotes/internal/ports"
)

// ViewState represents the current view
type ViewState int

const (
	ViewTree ViewState = iota
	ViewFind
	ViewHelp
	ViewConfirm
)

// Option configures an App
type Option func(*App)

// WithWatcher routes note events from a watcher into the tree. tracker
// keeps the store's id -> file map current.
func WithWatcher(events <-chan watcher.Event, tracker watcher.Tracker) Option {
	return func(a *App) {
		a.events = events
		a.tracker = tracker
	}
}

// WithSortSaver persists the sort order whenever it is changed
func WithSortSaver(fn func(order domain.SortOrder) error) Option {
	return func(a *App) {
		a.saveSort = fn
	}
}

// WithCutoff sets the minimum link count of a top-level row
func WithCutoff(cutoff int) Option {
	return func(a *App) {
		a.cutoff = cutoff
	}
}

// WithLogger sets the logger
func WithLogger(log *logrus.Entry) Option {
	return func(a *App) {
		a.log = log
	}
}

// App is the main TUI application model. Every graph mutation happens in
// Update, so the coordinator is only used from the bubbletea goroutine.
type App struct {
	ctx      context.Context
	coord    *application.Coordinator
	store    ports.NoteStore
	launcher ports.NoteLauncher
	tracker  watcher.Tracker
	events   <-chan watcher.Event
	saveSort func(order domain.SortOrder) error
	cutoff   int
	log      *logrus.Entry

	state   ViewState
	tree    *views.TreeModel
	find    *views.FindModel
	help    *views.HelpModel
	confirm *views.CreateConfirmModel
}

// NewApp creates the TUI and attaches its tree to the coordinator. The
// coordinator should already hold a loaded graph.
func NewApp(ctx context.Context, coord *application.Coordinator, store ports.NoteStore, launcher ports.NoteLauncher, opts ...Option) *App {
	a := &App{
		ctx:      ctx,
		coord:    coord,
		store:    store,
		launcher: launcher,
		cutoff:   4,
		state:    ViewTree,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logging.Component(nil, "tui")
	}

	a.tree = views.NewTreeModel(ctx, coord,
		treeview.WithCutoff(a.cutoff),
		treeview.WithLogger(a.log.WithField("view", "tree")),
	)
	a.find = views.NewFindModel(coord.Graph())
	a.help = views.NewHelpModel()
	a.confirm = views.NewCreateConfirmModel()

	coord.Attach(a.tree.Cache())
	a.tree.Sync()
	return a
}

// Tree returns the tree view model
func (a *App) Tree() *views.TreeModel {
	return a.tree
}

// State returns the current view
func (a *App) State() ViewState {
	return a.state
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.tree.Init(), a.waitForEvent())
}

type noteEventMsg struct{ event watcher.Event }

type watcherClosedMsg struct{}

type noteOpenedMsg struct {
	id  string
	err error
}

// waitForEvent blocks on the watcher channel; the event is applied in
// Update
func (a *App) waitForEvent() tea.Cmd {
	if a.events == nil {
		return nil
	}
	events := a.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return watcherClosedMsg{}
		}
		return noteEventMsg{event: ev}
	}
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.tree.SetSize(msg.Width, msg.Height)
		a.find.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		a.confirm.SetSize(msg.Width, msg.Height)
		return a, nil

	case noteEventMsg:
		if err := watcher.Apply(a.ctx, a.coord, a.tracker, msg.event); err != nil {
			a.log.WithError(err).WithField("event", msg.event.Kind.String()).Warn("failed to apply note event")
			a.tree.SetError(err)
		}
		a.tree.Sync()
		return a, a.waitForEvent()

	case watcherClosedMsg:
		a.log.Debug("watcher closed")
		return a, nil

	// View switching messages
	case views.SwitchToFindMsg:
		a.state = ViewFind
		a.find.Reset()
		return a, a.find.Init()

	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToTreeMsg:
		a.state = ViewTree
		a.tree.Sync()
		return a, nil

	case views.FindSelectMsg:
		a.state = ViewTree
		if a.tree.Reveal(msg.ID) {
			return a, nil
		}
		return a, a.requestOpen(msg.ID)

	case views.OpenNoteMsg:
		return a, a.requestOpen(msg.ID)

	case views.ConfirmOpenMsg:
		a.state = ViewTree
		return a, a.openNote(msg.ID)

	case views.SortChangedMsg:
		if a.saveSort != nil {
			if err := a.saveSort(domain.SortOrder(msg.Order)); err != nil {
				a.log.WithError(err).Warn("failed to save sort order")
				a.tree.SetMessage(fmt.Sprintf("Sort order not saved: %v", err), true)
			}
		}
		return a, nil

	case noteOpenedMsg:
		if msg.err != nil {
			a.log.WithError(msg.err).WithField("id", msg.id).Warn("launcher failed")
			a.tree.SetMessage(fmt.Sprintf("Failed to open %s: %v", msg.id, msg.err), true)
		}
		a.tree.Sync()
		return a, nil
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewTree:
		_, cmd = a.tree.Update(msg)
	case ViewFind:
		_, cmd = a.find.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	case ViewConfirm:
		_, cmd = a.confirm.Update(msg)
	}

	return a, cmd
}

// requestOpen opens an existing note right away and asks first for a
// potential one
func (a *App) requestOpen(id string) tea.Cmd {
	n, ok := a.coord.Graph().Get(id)
	if !ok {
		a.tree.SetMessage(fmt.Sprintf("Note %s not found", id), true)
		return nil
	}
	if !n.ExistsOnDisk {
		a.confirm.SetTarget(id)
		a.state = ViewConfirm
		return nil
	}
	return a.openNote(id)
}

// openNote resolves, and if needed creates, the note file and hands it to
// the launcher
func (a *App) openNote(id string) tea.Cmd {
	result, err := commands.NewOpenNoteCommand(a.store, a.coord, id).Execute(a.ctx)
	a.tree.Sync()
	if err != nil {
		var createErr *application.NoteCreateError
		if errors.As(err, &createErr) {
			a.log.WithError(createErr.Err).WithField("id", id).Warn("failed to create note")
		}
		a.tree.SetError(err)
		return nil
	}
	a.tree.SetMessage(result.Message, false)

	if a.launcher == nil {
		return nil
	}
	cmd, err := a.launcher.Command(result.Path)
	if err != nil {
		a.tree.SetError(err)
		return nil
	}

	if a.launcher.Foreground() {
		return tea.ExecProcess(cmd, func(err error) tea.Msg {
			return noteOpenedMsg{id: id, err: err}
		})
	}
	return func() tea.Msg {
		return noteOpenedMsg{id: id, err: cmd.Run()}
	}
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewFind:
		return a.find.View()
	case ViewHelp:
		return a.help.View()
	case ViewConfirm:
		return a.confirm.View()
	default:
		return a.tree.View()
	}
}

// Run starts the program on the terminal and blocks until it quits
func Run(app *App) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(app.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && app.ctx.Err() != nil {
		return nil
	}
	return err
}

var _ tea.Model = (*App)(nil)
