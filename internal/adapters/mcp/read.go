package mcp

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"treenotes/internal/adapters/outline"
	"treenotes/internal/application"
	"treenotes/internal/application/commands"
)

const (
	defaultTreeDepth = 2
	maxTreeDepth     = 6
)

// RegisterReadTools adds all read-only graph tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, vault *Vault) {
	s.AddTool(topNotesTool(), topNotesHandler(vault))
	s.AddTool(neighborsTool(), neighborsHandler(vault))
	s.AddTool(treeTool(), treeHandler(vault))
	s.AddTool(findTool(), findHandler(vault))
	s.AddTool(refreshTool(), refreshHandler(vault))
}

// --- top_notes ---

func topNotesTool() mcp.Tool {
	return mcp.NewTool("top_notes",
		mcp.WithDescription("List the most connected notes: every note with at least `cutoff` links (incoming plus outgoing), in the configured sort order."),
		mcp.WithNumber("cutoff",
			mcp.Description("Minimum number of linked notes. Defaults to the configured cutoff."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of notes to return. 0 means all."),
		),
		mcp.WithBoolean("json",
			mcp.Description("Return JSON instead of text"),
		),
	)
}

func topNotesHandler(vault *Vault) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		cutoff := req.GetInt("cutoff", vault.Cutoff())
		limit := req.GetInt("limit", 0)

		var notes []application.NoteSummary
		err := vault.Do(ctx, func(coord *application.Coordinator) error {
			var err error
			notes, err = commands.NewTopNotesCommand(coord.Graph(), cutoff, limit).Execute()
			return err
		})
		if err != nil {
			return toolError(err)
		}

		if req.GetBool("json", false) {
			return jsonResult(notes)
		}
		return formatEntities(notes, formatSummary)
	}
}

// --- neighbors ---

func neighborsTool() mcp.Tool {
	return mcp.NewTool("neighbors",
		mcp.WithDescription("Show one note with every note it links to or is linked from."),
		mcp.WithString("id",
			mcp.Description("Note name, the file name without .md"),
			mcp.Required(),
		),
		mcp.WithBoolean("json",
			mcp.Description("Return JSON instead of text"),
		),
	)
}

func neighborsHandler(vault *Vault) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		if id == "" {
			return toolError(fmt.Errorf("id is required"))
		}

		var result *commands.NeighborsResult
		err := vault.Do(ctx, func(coord *application.Coordinator) error {
			var err error
			result, err = commands.NewNeighborsCommand(coord.Graph(), id).Execute()
			return err
		})
		if err != nil {
			return toolError(err)
		}

		if req.GetBool("json", false) {
			return jsonResult(result)
		}

		var sb strings.Builder
		sb.WriteString(formatSummary(result.Note))
		sb.WriteByte('\n')
		for _, n := range result.Neighbors {
			fmt.Fprintf(&sb, "  %s\n", formatSummary(n))
		}
		if len(result.Outgoing) > 0 {
			fmt.Fprintf(&sb, "links to: %s\n", strings.Join(result.Outgoing, ", "))
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Display the backlink tree: the top notes, expanded to the given depth, each level listing the linked notes not already on the path."),
		mcp.WithNumber("depth",
			mcp.Description(fmt.Sprintf("Number of levels to show, 1 to %d. Defaults to %d.", maxTreeDepth, defaultTreeDepth)),
		),
		mcp.WithNumber("cutoff",
			mcp.Description("Minimum number of links of a top-level note. Defaults to the configured cutoff."),
		),
		mcp.WithBoolean("json",
			mcp.Description("Return JSON instead of text"),
		),
	)
}

func treeHandler(vault *Vault) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		depth := req.GetInt("depth", defaultTreeDepth)
		if depth < 1 || depth > maxTreeDepth {
			return toolError(fmt.Errorf("depth must be between 1 and %d", maxTreeDepth))
		}
		cutoff := req.GetInt("cutoff", vault.Cutoff())
		if cutoff < 0 {
			return toolError(fmt.Errorf("cutoff must be >= 0"))
		}

		var root *outline.Container
		err := vault.Do(ctx, func(coord *application.Coordinator) error {
			root = outline.Expanded(coord.Graph(), cutoff, depth, coord.Active())
			return nil
		})
		if err != nil {
			return toolError(err)
		}

		if req.GetBool("json", false) {
			return jsonResult(root.Tree())
		}
		var sb strings.Builder
		if err := root.Write(&sb); err != nil {
			return toolError(err)
		}
		if sb.Len() == 0 {
			return mcp.NewToolResultText("No notes."), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- find_notes ---

func findTool() mcp.Tool {
	return mcp.NewTool("find_notes",
		mcp.WithDescription("Find notes by name with fuzzy matching. Returns matching notes with their link counts, best match first."),
		mcp.WithString("query",
			mcp.Description("Part of a note name"),
			mcp.Required(),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results. Defaults to 20."),
		),
	)
}

func findHandler(vault *Vault) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if strings.TrimSpace(query) == "" {
			return toolError(fmt.Errorf("query is required"))
		}

		var results []commands.SearchResult
		err := vault.Do(ctx, func(coord *application.Coordinator) error {
			results = commands.NewSearchCommand(coord.Graph(), query, req.GetInt("limit", 20)).Execute()
			return nil
		})
		if err != nil {
			return toolError(err)
		}

		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}
		return formatEntities(results, func(r commands.SearchResult) string {
			return formatSummary(r.NoteSummary)
		})
	}
}

// --- refresh ---

func refreshTool() mcp.Tool {
	return mcp.NewTool("refresh",
		mcp.WithDescription("Re-read every note in the vault and rebuild the link graph."),
	)
}

func refreshHandler(vault *Vault) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var result *commands.RefreshResult
		err := vault.Do(ctx, func(coord *application.Coordinator) error {
			var err error
			result, err = commands.NewRefreshCommand(coord).Execute(ctx)
			return err
		})
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(result.Message), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(fmt.Errorf("encoding result: %w", err))
	}
	return mcp.NewToolResultText(string(data)), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatSummary(n application.NoteSummary) string {
	s := fmt.Sprintf("%s (%d)", n.ID, n.Count)
	if !n.Exists {
		s += " [potential]"
	}
	return s
}
