package watcher

import "context"

// Handler receives note events; *application.Coordinator implements it
type Handler interface {
	Created(ctx context.Context, id string)
	ExistenceRemoved(id string)
	Renamed(oldID, newID string)
	ContentChanged(ctx context.Context, id string)
	Refresh(ctx context.Context) error
}

// Tracker keeps the id -> file map of the note store current
type Tracker interface {
	Track(path string) (string, bool)
	Forget(path string) (id string, still bool)
}

// Apply routes one event to the handler. It must run on the goroutine that
// owns the handler. A note id that is still backed by another file after a
// removal or rename keeps existing.
func Apply(ctx context.Context, h Handler, notes Tracker, ev Event) error {
	switch ev.Kind {
	case Created:
		notes.Track(ev.Path)
		h.Created(ctx, ev.ID)

	case Changed:
		h.ContentChanged(ctx, ev.ID)

	case Removed:
		if _, still := notes.Forget(ev.Path); still {
			h.ContentChanged(ctx, ev.ID)
			return nil
		}
		h.ExistenceRemoved(ev.ID)

	case Renamed:
		_, still := notes.Forget(ev.OldPath)
		notes.Track(ev.Path)
		switch {
		case ev.OldID == ev.ID:
			// moved between folders
			h.ContentChanged(ctx, ev.ID)
		case still:
			h.Created(ctx, ev.ID)
			h.ContentChanged(ctx, ev.OldID)
		default:
			h.Renamed(ev.OldID, ev.ID)
			h.ContentChanged(ctx, ev.ID)
		}

	case Rescan:
		return h.Refresh(ctx)
	}
	return nil
}
