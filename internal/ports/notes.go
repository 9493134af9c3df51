package ports

import (
	"context"

	"treenotes/internal/domain"
)

// NoteSource provides the bulk note snapshot and per-note reference
// resolution the graph is built from
type NoteSource interface {
	// Snapshot lists every note below the configured root scope
	Snapshot(ctx context.Context) ([]domain.NoteRef, error)

	// References returns the ids referenced by a note, unordered
	References(ctx context.Context, id string) ([]string, error)
}

// NoteStore is a NoteSource that can also materialize potential notes
type NoteStore interface {
	NoteSource

	// CreateNote writes a new note for id and returns its absolute path.
	// It fails if a file already exists at that location.
	CreateNote(ctx context.Context, id string) (string, error)

	// NotePath returns the absolute path of an existing note
	NotePath(id string) (string, bool)
}
