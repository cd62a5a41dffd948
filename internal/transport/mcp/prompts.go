package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/promptshelf/internal/service/library"
)

// RegisterPrompts exposes library items as MCP prompts.
func RegisterPrompts(s *mcpserver.MCPServer, lib *library.Library) {
	s.AddPrompt(
		mcpmcp.NewPrompt("library_item",
			mcpmcp.WithPromptDescription("Renders a prompt or rule from your library, or one shared with you."),
			mcpmcp.WithArgument("item_id",
				mcpmcp.ArgumentDescription("Item UUID, as returned by list_items or list_shared_with_me."),
				mcpmcp.RequiredArgument(),
			),
		),
		libraryItemHandler(lib),
	)
}

func libraryItemHandler(lib *library.Library) mcpserver.PromptHandlerFunc {
	return func(ctx context.Context, req mcpmcp.GetPromptRequest) (*mcpmcp.GetPromptResult, error) {
		itemID, err := uuid.Parse(req.Params.Arguments["item_id"])
		if err != nil {
			return nil, fmt.Errorf("invalid item_id: %w", err)
		}

		it, err := lib.Item(ctx, itemID)
		if err != nil {
			return nil, fmt.Errorf("get item %s: %w", itemID, err)
		}

		return mcpmcp.NewGetPromptResult(
			fmt.Sprintf("%s (%s)", it.DisplayTitle(), it.Type),
			[]mcpmcp.PromptMessage{
				mcpmcp.NewPromptMessage(
					mcpmcp.RoleUser,
					mcpmcp.TextContent{
						Type: "text",
						Text: it.Content,
					},
				),
			},
		), nil
	}
}
