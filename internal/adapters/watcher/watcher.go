package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"treenotes/internal/domain"
	"treenotes/internal/logging"
)

const (
	// DefaultDebounce coalesces bursts of writes to the same note
	DefaultDebounce = 150 * time.Millisecond
	// DefaultRenameWindow is how long a rename waits for its create half
	DefaultRenameWindow = 100 * time.Millisecond
)

// Common errors.
var (
	ErrAlreadyStarted = errors.New("watcher already started")
	ErrStopped        = errors.New("watcher stopped")
)

// Kind classifies a note lifecycle event
type Kind int

const (
	Created Kind = iota
	Removed
	Renamed
	Changed
	// Rescan asks for a full rebuild, e.g. after a folder moved
	Rescan
)

func (k Kind) String() string {
	switch k {
	case Created:
		return "created"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	case Changed:
		return "changed"
	case Rescan:
		return "rescan"
	default:
		return "unknown"
	}
}

// Event is a normalized note event. OldID and OldPath are only set for
// Renamed.
type Event struct {
	Kind    Kind
	ID      string
	Path    string
	OldID   string
	OldPath string
}

// MatchFunc maps a file path to a note id; false means the file is not a
// note
type MatchFunc func(path string) (string, bool)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the per-note debounce duration.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithRenameWindow sets how long a rename waits for the matching create.
func WithRenameWindow(d time.Duration) Option {
	return func(w *Watcher) {
		w.renameWindow = d
	}
}

// WithMatcher sets how file paths map to note ids.
func WithMatcher(fn MatchFunc) Option {
	return func(w *Watcher) {
		w.match = fn
	}
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(w *Watcher) {
		w.log = log
	}
}

type pendingRename struct {
	id    string
	path  string
	timer *time.Timer
}

// Watcher turns file system notifications below a vault directory into
// note events. Subdirectories are watched recursively; hidden ones are
// skipped.
type Watcher struct {
	root         string
	debounce     time.Duration
	renameWindow time.Duration
	match        MatchFunc
	log          *logrus.Entry

	fsWatcher *fsnotify.Watcher
	events    chan Event

	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	dirs    map[string]bool
	timers  map[string]*time.Timer
	pending []*pendingRename
}

// New creates a watcher for the directory tree at root
func New(root string, opts ...Option) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:         absRoot,
		debounce:     DefaultDebounce,
		renameWindow: DefaultRenameWindow,
		events:       make(chan Event, 64),
		done:         make(chan struct{}),
		dirs:         make(map[string]bool),
		timers:       make(map[string]*time.Timer),
	}
	w.match = w.defaultMatch

	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logging.Component(nil, "watcher")
	}

	return w, nil
}

// Events returns the channel events are delivered on. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Root returns the watched directory
func (w *Watcher) Root() string {
	return w.root
}

// Start begins watching. The watcher stops when ctx is cancelled or Stop
// is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return ErrAlreadyStarted
	}
	select {
	case <-w.done:
		return ErrStopped
	default:
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsWatcher = fsw
	w.ctx, w.cancel = context.WithCancel(ctx)

	if err := w.addTreeLocked(w.root); err != nil {
		fsw.Close()
		return err
	}

	w.started = true
	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop stops watching and closes the event channel. A stopped watcher
// cannot be restarted.
func (w *Watcher) Stop() {
	// unblocks a sender waiting on a full channel while holding the lock
	w.stopOnce.Do(func() { close(w.done) })

	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.cancel()
	w.fsWatcher.Close()
	for key, t := range w.timers {
		t.Stop()
		delete(w.timers, key)
	}
	for _, p := range w.pending {
		p.timer.Stop()
	}
	w.pending = nil
	w.mu.Unlock()

	w.wg.Wait()
	close(w.events)
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	// Capture channel references to avoid race with Stop() closing fsWatcher
	events := w.fsWatcher.Events
	errs := w.fsWatcher.Errors

	for {
		select {
		case <-w.ctx.Done():
			return

		case ev, ok := <-events:
			if !ok {
				return
			}
			w.handle(ev)

		case err, ok := <-errs:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("file watcher error")
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.started {
		return
	}

	wasDir := w.dirs[ev.Name]

	switch {
	case ev.Op.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if w.hidden(ev.Name) {
				return
			}
			if err := w.addTreeLocked(ev.Name); err != nil {
				w.log.WithError(err).WithField("path", ev.Name).Warn("failed to watch directory")
			}
			w.triggerLocked(Event{Kind: Rescan})
			return
		}
		id, ok := w.match(ev.Name)
		if !ok {
			return
		}
		if p := w.takePendingLocked(ev.Name); p != nil {
			p.timer.Stop()
			w.sendLocked(Event{Kind: Renamed, ID: id, Path: ev.Name, OldID: p.id, OldPath: p.path})
			return
		}
		w.sendLocked(Event{Kind: Created, ID: id, Path: ev.Name})

	case ev.Op.Has(fsnotify.Write):
		if id, ok := w.match(ev.Name); ok {
			w.triggerLocked(Event{Kind: Changed, ID: id, Path: ev.Name})
		}

	case ev.Op.Has(fsnotify.Rename):
		if wasDir {
			w.dropTreeLocked(ev.Name)
			w.triggerLocked(Event{Kind: Rescan})
			return
		}
		id, ok := w.match(ev.Name)
		if !ok {
			return
		}
		w.stopTimerLocked(ev.Name)
		p := &pendingRename{id: id, path: ev.Name}
		p.timer = time.AfterFunc(w.renameWindow, func() { w.expire(p) })
		w.pending = append(w.pending, p)

	case ev.Op.Has(fsnotify.Remove):
		if wasDir {
			w.dropTreeLocked(ev.Name)
			w.triggerLocked(Event{Kind: Rescan})
			return
		}
		if id, ok := w.match(ev.Name); ok {
			w.stopTimerLocked(ev.Name)
			w.sendLocked(Event{Kind: Removed, ID: id, Path: ev.Name})
		}
	}
}

// takePendingLocked removes and returns the oldest pending rename that
// the created file completes: a rename inside the same directory, or a
// move that keeps the file name. Unrelated renames stay pending and
// expire into removals.
func (w *Watcher) takePendingLocked(created string) *pendingRename {
	dir, base := filepath.Dir(created), filepath.Base(created)
	for i, p := range w.pending {
		if filepath.Dir(p.path) == dir || filepath.Base(p.path) == base {
			w.pending = append(w.pending[:i], w.pending[i+1:]...)
			return p
		}
	}
	return nil
}

// expire turns a rename without a create half into a removal: the note
// moved out of the vault
func (w *Watcher) expire(p *pendingRename) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i, q := range w.pending {
		if q == p {
			w.pending = append(w.pending[:i], w.pending[i+1:]...)
			w.sendLocked(Event{Kind: Removed, ID: p.id, Path: p.path})
			return
		}
	}
}

// triggerLocked delivers ev once no other event for the same path arrived
// within the debounce duration
func (w *Watcher) triggerLocked(ev Event) {
	key := ev.Path
	w.stopTimerLocked(key)
	w.timers[key] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.timers, key)
		w.sendLocked(ev)
	})
}

func (w *Watcher) stopTimerLocked(key string) {
	if t, ok := w.timers[key]; ok {
		t.Stop()
		delete(w.timers, key)
	}
}

// sendLocked delivers an event unless the watcher stopped. It holds the
// lock while blocked so events stay in order.
func (w *Watcher) sendLocked(ev Event) {
	if !w.started {
		return
	}
	select {
	case w.events <- ev:
	case <-w.done:
	case <-w.ctx.Done():
	}
}

func (w *Watcher) addTreeLocked(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(p); err != nil {
			return err
		}
		w.dirs[p] = true
		return nil
	})
}

// dropTreeLocked forgets a directory that disappeared; fsnotify drops the
// watches itself
func (w *Watcher) dropTreeLocked(dir string) {
	prefix := dir + string(filepath.Separator)
	for d := range w.dirs {
		if d == dir || strings.HasPrefix(d, prefix) {
			delete(w.dirs, d)
		}
	}
}

func (w *Watcher) hidden(p string) bool {
	rel, err := filepath.Rel(w.root, p)
	if err != nil {
		return true
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, ".") && seg != "." {
			return true
		}
	}
	return false
}

func (w *Watcher) defaultMatch(p string) (string, bool) {
	if !strings.EqualFold(filepath.Ext(p), ".md") || w.hidden(p) {
		return "", false
	}
	return domain.NoteID(p), true
}
