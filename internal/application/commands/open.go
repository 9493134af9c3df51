package commands

import (
	"context"
	"fmt"

	"treenotes/internal/application"
	"treenotes/internal/ports"
)

// OpenNoteResult contains the file to hand to a launcher
type OpenNoteResult struct {
	ID      string
	Path    string
	Created bool // the note was potential and has just been written
	Message string
}

// OpenNoteCommand resolves a note to its file, creating the file first when
// the note is still potential, and makes it the active note
type OpenNoteCommand struct {
	store ports.NoteStore
	coord *application.Coordinator
	ID    string
}

// NewOpenNoteCommand creates a new OpenNoteCommand
func NewOpenNoteCommand(store ports.NoteStore, coord *application.Coordinator, id string) *OpenNoteCommand {
	return &OpenNoteCommand{
		store: store,
		coord: coord,
		ID:    id,
	}
}

// Validate checks if the open operation is valid
func (c *OpenNoteCommand) Validate() error {
	return application.ValidateNoteID(c.ID)
}

// Execute runs the open note command. When writing the note fails the
// graph is left unchanged and a NoteCreateError is returned.
func (c *OpenNoteCommand) Execute(ctx context.Context) (*OpenNoteResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	node, ok := c.coord.Graph().Get(c.ID)
	if !ok {
		return nil, fmt.Errorf("note %s: %w", c.ID, application.ErrNotFound)
	}

	result := &OpenNoteResult{ID: c.ID}
	if node.ExistsOnDisk {
		path, ok := c.store.NotePath(c.ID)
		if !ok {
			return nil, fmt.Errorf("note file for %s: %w", c.ID, application.ErrNotFound)
		}
		result.Path = path
		result.Message = fmt.Sprintf("Opened %s", c.ID)
	} else {
		path, err := c.store.CreateNote(ctx, c.ID)
		if err != nil {
			return nil, &application.NoteCreateError{ID: c.ID, Err: err}
		}
		c.coord.Created(ctx, c.ID)
		result.Path = path
		result.Created = true
		result.Message = fmt.Sprintf("Created %s", c.ID)
	}

	c.coord.ActiveChanged(c.ID)
	return result, nil
}
