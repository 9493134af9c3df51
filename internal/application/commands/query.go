package commands

import (
	"fmt"

	"treenotes/internal/application"
	"treenotes/internal/domain"
)

// TopNotesCommand lists the notes that qualify as top-level rows
type TopNotesCommand struct {
	graph  *domain.GraphCache
	Cutoff int
	Limit  int // 0 means no limit
}

// NewTopNotesCommand creates a new TopNotesCommand
func NewTopNotesCommand(graph *domain.GraphCache, cutoff, limit int) *TopNotesCommand {
	return &TopNotesCommand{
		graph:  graph,
		Cutoff: cutoff,
		Limit:  limit,
	}
}

// Validate checks the cutoff and limit
func (c *TopNotesCommand) Validate() error {
	if c.Cutoff < 0 {
		return &application.ValidationError{Field: "cutoff", Message: "cutoff must be >= 0"}
	}
	if c.Limit < 0 {
		return &application.ValidationError{Field: "limit", Message: "limit must be >= 0"}
	}
	return nil
}

// Execute returns the roots in display order
func (c *TopNotesCommand) Execute() ([]application.NoteSummary, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	roots := c.graph.Roots(c.Cutoff)
	if c.Limit > 0 && len(roots) > c.Limit {
		roots = roots[:c.Limit]
	}
	return application.SummarizeAll(roots), nil
}

// NeighborsResult is one note with its neighbors in display order
type NeighborsResult struct {
	Note      application.NoteSummary   `json:"note"`
	Neighbors []application.NoteSummary `json:"neighbors"`
	Outgoing  []string                  `json:"outgoing"`
}

// NeighborsCommand lists the notes connected to one note
type NeighborsCommand struct {
	graph *domain.GraphCache
	ID    string
}

// NewNeighborsCommand creates a new NeighborsCommand
func NewNeighborsCommand(graph *domain.GraphCache, id string) *NeighborsCommand {
	return &NeighborsCommand{
		graph: graph,
		ID:    id,
	}
}

// Validate checks if the query is valid
func (c *NeighborsCommand) Validate() error {
	return application.ValidateNoteID(c.ID)
}

// Execute runs the neighbors query
func (c *NeighborsCommand) Execute() (*NeighborsResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	n, ok := c.graph.Get(c.ID)
	if !ok {
		return nil, fmt.Errorf("note %s: %w", c.ID, application.ErrNotFound)
	}

	return &NeighborsResult{
		Note:      application.Summarize(n),
		Neighbors: application.SummarizeAll(n.Neighbors()),
		Outgoing:  n.Outgoing(),
	}, nil
}
