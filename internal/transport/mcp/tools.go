package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	mcpmcp "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/promptshelf/internal/domain/apperr"
	domainitem "github.com/alanyang/promptshelf/internal/domain/item"
	"github.com/alanyang/promptshelf/internal/service/library"
)

// RegisterTools registers all MCP tools on the server.
// [OCP] Add a new tool by adding a new AddTool call; server.go never changes.
func RegisterTools(s *mcpserver.MCPServer, lib *library.Library) {
	s.AddTool(mcpmcp.NewTool("list_items",
		mcpmcp.WithDescription("List your prompts and rules, newest first, with per-type counts."),
		mcpmcp.WithString("type",
			mcpmcp.Description("Filter: all, prompt, or rule. Defaults to all."),
			mcpmcp.Enum(string(domainitem.FilterAll), string(domainitem.FilterPrompt), string(domainitem.FilterRule)),
		),
	), listItemsHandler(lib))

	s.AddTool(mcpmcp.NewTool("create_item",
		mcpmcp.WithDescription("Save a new prompt or rule to your library."),
		mcpmcp.WithString("content", mcpmcp.Required(), mcpmcp.Description("Item text. Must not be blank.")),
		mcpmcp.WithString("type", mcpmcp.Required(),
			mcpmcp.Description("prompt or rule"),
			mcpmcp.Enum(string(domainitem.TypePrompt), string(domainitem.TypeRule)),
		),
		mcpmcp.WithString("title", mcpmcp.Description("Optional title")),
	), createItemHandler(lib))

	s.AddTool(mcpmcp.NewTool("search_users",
		mcpmcp.WithDescription("Find people to share with by name, e-mail or username. Needs at least two characters; returns up to ten matches."),
		mcpmcp.WithString("query", mcpmcp.Required(), mcpmcp.Description("Search text")),
	), searchUsersHandler(lib))

	s.AddTool(mcpmcp.NewTool("share_item",
		mcpmcp.WithDescription("Share one of your items read-only with one or more users. All grants are created together or not at all."),
		mcpmcp.WithString("item_id", mcpmcp.Required(), mcpmcp.Description("Item UUID")),
		mcpmcp.WithArray("recipient_ids", mcpmcp.Required(),
			mcpmcp.Description("User UUIDs from search_users"),
			mcpmcp.WithStringItems(),
		),
		mcpmcp.WithString("message", mcpmcp.Description("Optional note shown to recipients")),
	), shareItemHandler(lib))

	s.AddTool(mcpmcp.NewTool("list_shared_with_me",
		mcpmcp.WithDescription("List items other users have shared with you, with the sharer's name."),
	), listSharedWithMeHandler(lib))
}

// ── Tool handlers ─────────────────────────────────────────────────────────

func listItemsHandler(lib *library.Library) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		filter, err := domainitem.ParseFilter(mcpmcp.ParseString(req, "type", ""))
		if err != nil {
			return toolError(err), nil
		}
		items, err := lib.Items(ctx)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(map[string]any{
			"items":  domainitem.ApplyFilter(items, filter),
			"counts": domainitem.CountByType(items),
		})
	}
}

func createItemHandler(lib *library.Library) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		content := mcpmcp.ParseString(req, "content", "")
		itemType := domainitem.Type(mcpmcp.ParseString(req, "type", ""))

		var title *string
		if t := mcpmcp.ParseString(req, "title", ""); t != "" {
			title = &t
		}

		it, err := lib.CreateItem(ctx, title, content, itemType)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(it)
	}
}

func searchUsersHandler(lib *library.Library) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		users, err := lib.SearchUsers(ctx, mcpmcp.ParseString(req, "query", ""), 0)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(users)
	}
}

func shareItemHandler(lib *library.Library) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		itemID, err := uuid.Parse(mcpmcp.ParseString(req, "item_id", ""))
		if err != nil {
			return mcpmcp.NewToolResultText("error: invalid item_id"), nil
		}

		raw := req.GetStringSlice("recipient_ids", nil)
		recipients := make([]uuid.UUID, 0, len(raw))
		for _, r := range raw {
			id, err := uuid.Parse(strings.TrimSpace(r))
			if err != nil {
				return mcpmcp.NewToolResultText(fmt.Sprintf("error: invalid recipient id %q", r)), nil
			}
			recipients = append(recipients, id)
		}

		var message *string
		if m := mcpmcp.ParseString(req, "message", ""); m != "" {
			message = &m
		}

		grants, err := lib.Share(ctx, itemID, recipients, message)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(grants)
	}
}

func listSharedWithMeHandler(lib *library.Library) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcpmcp.CallToolRequest) (*mcpmcp.CallToolResult, error) {
		shared, err := lib.SharedWithMe(ctx)
		if err != nil {
			return toolError(err), nil
		}
		return jsonResult(shared)
	}
}

func jsonResult(v any) (*mcpmcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcpmcp.NewToolResultText(string(b)), nil
}

// toolError reports classified failures verbatim and hides remote-failure detail.
func toolError(err error) *mcpmcp.CallToolResult {
	for _, known := range []error{
		apperr.ErrUnauthenticated, apperr.ErrInvalidInput, apperr.ErrForbidden,
		apperr.ErrNotFound, apperr.ErrStale,
	} {
		if errors.Is(err, known) {
			return mcpmcp.NewToolResultText(fmt.Sprintf("error: %s", err))
		}
	}
	return mcpmcp.NewToolResultText("error: something went wrong, try again")
}
