package ports

import (
	"context"

	"treenotes/internal/domain"
)

// LinkIndex caches note metadata and outgoing links in a database so
// start-up does not need to re-parse every note.
type LinkIndex interface {
	NoteSource

	// Lifecycle
	Open(vaultPath string) error
	Close() error

	// Sync operations
	NeedsFullRebuild() bool
	SyncIncremental(ctx context.Context) (*domain.SyncStats, error)
	SyncFull(ctx context.Context) (*domain.SyncStats, error)

	// Queries
	GetNote(id string) (*domain.IndexedNote, error)
	FindLinksTo(targetID string) ([]domain.Link, error)
	FindLinksFrom(sourceID string) ([]domain.Link, error)

	BeginTx() (IndexTx, error)
}

// IndexTx represents a transaction for atomic cache updates
type IndexTx interface {
	UpsertNote(note *domain.IndexedNote) error
	DeleteNote(path string) error

	DeleteLinksFrom(sourcePath string) error
	InsertLink(link *domain.Link) error

	Commit() error
	Rollback() error
}
