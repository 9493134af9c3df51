package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidID        = errors.New("invalid ID")
	ErrInvalidOperation = errors.New("invalid operation")
)

// ValidationError represents a validation failure with details
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets callers match a bad note id with errors.Is(err, ErrInvalidID)
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidID && e.Field == "id"
}

// NoteCreateError is returned when a potential note could not be written
// to disk. The graph keeps the note as potential.
type NoteCreateError struct {
	ID  string
	Err error
}

func (e *NoteCreateError) Error() string {
	return fmt.Sprintf("cannot create note %s: %v", e.ID, e.Err)
}

func (e *NoteCreateError) Unwrap() error {
	return e.Err
}
