package commands

import (
	"sort"
	"strings"

	"treenotes/internal/application"
	"treenotes/internal/domain"
)

// SearchResult is a note matching a find query
type SearchResult struct {
	application.NoteSummary
	Score int
}

// SearchCommand finds notes by name with fuzzy matching
type SearchCommand struct {
	graph *domain.GraphCache
	Query string
	Limit int // 0 means no limit
}

// NewSearchCommand creates a new SearchCommand
func NewSearchCommand(graph *domain.GraphCache, query string, limit int) *SearchCommand {
	return &SearchCommand{
		graph: graph,
		Query: query,
		Limit: limit,
	}
}

// Execute runs the search command and returns scored, sorted results
func (c *SearchCommand) Execute() []SearchResult {
	query := strings.TrimSpace(c.Query)
	if query == "" {
		return nil
	}

	results := FuzzySort(c.graph.Nodes(), query)
	if c.Limit > 0 && len(results) > c.Limit {
		results = results[:c.Limit]
	}
	return results
}

// FuzzyScore calculates a relevance score for how well target matches query
func FuzzyScore(target, query string) int {
	target = strings.ToLower(target)
	query = strings.ToLower(query)

	if len(query) == 0 {
		return 0
	}

	// Check for exact substring match first (highest priority)
	if strings.Contains(target, query) {
		score := 100
		// Bonus if it starts with query
		if strings.HasPrefix(target, query) {
			score += 50
		}
		return score
	}

	// Fuzzy match: check if chars appear in order
	score := 0
	queryIdx := 0
	prevMatchIdx := -1

	for i := 0; i < len(target) && queryIdx < len(query); i++ {
		if target[i] == query[queryIdx] {
			if prevMatchIdx == i-1 {
				score += 10 // consecutive chars
			}
			if i == 0 {
				score += 15 // start of string
			}
			if i > 0 && (target[i-1] == ' ' || target[i-1] == '.' || target[i-1] == '-') {
				score += 10 // after separator
			}
			score += 1
			prevMatchIdx = i
			queryIdx++
		}
	}

	if queryIdx == len(query) {
		return score
	}
	return 0
}

// FuzzySort ranks nodes by relevance to the query. Equal scores keep the
// graph's display order.
func FuzzySort(nodes []*domain.GraphNode, query string) []SearchResult {
	scored := make([]SearchResult, 0, len(nodes))

	for _, n := range nodes {
		if score := FuzzyScore(n.ID, query); score > 0 {
			scored = append(scored, SearchResult{
				NoteSummary: application.Summarize(n),
				Score:       score,
			})
		}
	}

	// Sort by score descending
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
