package commands

import (
	"treenotes/internal/application"
	"treenotes/internal/domain"
)

// ChangeSortResult reports the order now in effect
type ChangeSortResult struct {
	Order   domain.SortOrder
	Message string
}

// ChangeSortCommand applies a sort order to the graph and every view.
// An empty Order cycles to the next one.
type ChangeSortCommand struct {
	coord *application.Coordinator
	Order string
}

// NewChangeSortCommand creates a new ChangeSortCommand
func NewChangeSortCommand(coord *application.Coordinator, order string) *ChangeSortCommand {
	return &ChangeSortCommand{
		coord: coord,
		Order: order,
	}
}

// Validate checks the requested order
func (c *ChangeSortCommand) Validate() error {
	if c.Order == "" {
		return nil
	}
	_, err := application.ParseSortOrder(c.Order)
	return err
}

// Execute runs the change sort command
func (c *ChangeSortCommand) Execute() (*ChangeSortResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	order := c.coord.Graph().SortOrder().Next()
	if c.Order != "" {
		order, _ = application.ParseSortOrder(c.Order)
	}
	c.coord.SetSortOrder(order)

	return &ChangeSortResult{
		Order:   order,
		Message: "Sorted by " + order.Label(),
	}, nil
}
