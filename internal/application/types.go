package application

import "treenotes/internal/domain"

// Re-export domain types for use by adapters
type (
	GraphNode = domain.GraphNode
	NoteRef   = domain.NoteRef
	SortOrder = domain.SortOrder
)

// NoteSummary is the flat, serializable view of a graph node
type NoteSummary struct {
	ID     string `json:"id"`
	Count  int    `json:"count"`
	Exists bool   `json:"exists"`
}

// Summarize flattens a graph node
func Summarize(n *domain.GraphNode) NoteSummary {
	return NoteSummary{
		ID:     n.ID,
		Count:  n.Count,
		Exists: n.ExistsOnDisk,
	}
}

// SummarizeAll flattens nodes keeping their order
func SummarizeAll(nodes []*domain.GraphNode) []NoteSummary {
	out := make([]NoteSummary, len(nodes))
	for i, n := range nodes {
		out[i] = Summarize(n)
	}
	return out
}

// ParseSortOrder accepts current and legacy sort order names
func ParseSortOrder(s string) (SortOrder, error) {
	order, err := domain.ParseSortOrder(s)
	if err != nil {
		return "", &ValidationError{Field: "sort_order", Message: err.Error()}
	}
	return order, nil
}
