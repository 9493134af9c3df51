package sqlite

import (
	"context"
	"path/filepath"

	"treenotes/internal/ports"
)

// NoteFiles writes and locates note files. *filesystem.Repository
// implements it.
type NoteFiles interface {
	CreateNote(ctx context.Context, id string) (string, error)
	NotePath(id string) (string, bool)
}

// Store reads the graph from the index and writes notes through files
type Store struct {
	*Index
	files NoteFiles
}

var _ ports.NoteStore = (*Store)(nil)

// NewStore combines an open index with the files it indexes
func NewStore(idx *Index, files NoteFiles) *Store {
	return &Store{Index: idx, files: files}
}

// CreateNote writes the note file. The index picks it up on the next
// References or Snapshot call.
func (s *Store) CreateNote(ctx context.Context, id string) (string, error) {
	return s.files.CreateNote(ctx, id)
}

// NotePath prefers the indexed file so notes in subdirectories resolve
// before the file store has scanned them
func (s *Store) NotePath(id string) (string, bool) {
	if note, err := s.GetNote(id); err == nil && note != nil {
		return filepath.Join(s.vaultPath, filepath.FromSlash(note.Path)), true
	}
	return s.files.NotePath(id)
}
