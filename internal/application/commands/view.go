package commands

import (
	"context"
	"fmt"
	"time"

	"treenotes/internal/application"
)

// CollapseAllCommand re-renders every view from the current graph
type CollapseAllCommand struct {
	coord *application.Coordinator
}

// NewCollapseAllCommand creates a new CollapseAllCommand
func NewCollapseAllCommand(coord *application.Coordinator) *CollapseAllCommand {
	return &CollapseAllCommand{coord: coord}
}

// Execute runs the collapse all command
func (c *CollapseAllCommand) Execute() {
	c.coord.CollapseAll()
}

// RefreshResult contains statistics of a rebuild
type RefreshResult struct {
	Notes    int
	Duration time.Duration
	Message  string
}

// RefreshCommand rebuilds the graph and every view from a fresh snapshot
type RefreshCommand struct {
	coord *application.Coordinator
}

// NewRefreshCommand creates a new RefreshCommand
func NewRefreshCommand(coord *application.Coordinator) *RefreshCommand {
	return &RefreshCommand{coord: coord}
}

// Execute runs the refresh command
func (c *RefreshCommand) Execute(ctx context.Context) (*RefreshResult, error) {
	start := time.Now()
	if err := c.coord.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh: %w", err)
	}

	n := c.coord.Graph().Len()
	return &RefreshResult{
		Notes:    n,
		Duration: time.Since(start),
		Message:  fmt.Sprintf("Loaded %d notes", n),
	}, nil
}
