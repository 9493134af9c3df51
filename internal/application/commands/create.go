package commands

import (
	"context"
	"fmt"

	"treenotes/internal/application"
	"treenotes/internal/ports"
)

// CreateNoteResult contains the result of creating a note
type CreateNoteResult struct {
	ID      string
	Path    string
	Message string
}

// CreateNoteCommand writes a new note to the vault without touching any
// graph. Used by the CLI.
type CreateNoteCommand struct {
	store ports.NoteStore
	ID    string
}

// NewCreateNoteCommand creates a new CreateNoteCommand
func NewCreateNoteCommand(store ports.NoteStore, id string) *CreateNoteCommand {
	return &CreateNoteCommand{
		store: store,
		ID:    id,
	}
}

// Validate checks if the create operation is valid
func (c *CreateNoteCommand) Validate() error {
	return application.ValidateNoteID(c.ID)
}

// Execute runs the create note command
func (c *CreateNoteCommand) Execute(ctx context.Context) (*CreateNoteResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if path, ok := c.store.NotePath(c.ID); ok {
		return nil, &application.NoteCreateError{
			ID:  c.ID,
			Err: fmt.Errorf("note already exists at %s", path),
		}
	}

	path, err := c.store.CreateNote(ctx, c.ID)
	if err != nil {
		return nil, &application.NoteCreateError{ID: c.ID, Err: err}
	}

	return &CreateNoteResult{
		ID:      c.ID,
		Path:    path,
		Message: fmt.Sprintf("Created note: %s", c.ID),
	}, nil
}
