package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"treenotes/internal/application"
	"treenotes/internal/application/commands"
)

// RegisterWriteTools adds the tools that write to the vault.
func RegisterWriteTools(s *server.MCPServer, vault *Vault) {
	s.AddTool(createTool(), createHandler(vault))
}

// --- create_note ---

func createTool() mcp.Tool {
	return mcp.NewTool("create_note",
		mcp.WithDescription("Create a note file for a name, typically a potential note that is linked but has no file yet. Existing files are never overwritten."),
		mcp.WithString("id",
			mcp.Description("Note name, the file name without .md"),
			mcp.Required(),
		),
	)
}

func createHandler(vault *Vault) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		if id == "" {
			return toolError(fmt.Errorf("id is required"))
		}

		var result *commands.CreateNoteResult
		err := vault.Do(ctx, func(coord *application.Coordinator) error {
			var err error
			result, err = commands.NewCreateNoteCommand(vault.store, id).Execute(ctx)
			if err != nil {
				return err
			}
			coord.Created(ctx, id)
			return nil
		})
		if err != nil {
			return toolError(err)
		}

		return mcp.NewToolResultText(fmt.Sprintf("%s at %s", result.Message, result.Path)), nil
	}
}
