package mcp

import (
	"context"
	"log/slog"
	"net/http"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/alanyang/promptshelf/internal/domain/principal"
	"github.com/alanyang/promptshelf/internal/service/library"
)

// Server wraps the mark3labs/mcp-go MCPServer and its StreamableHTTPServer.
// [SRP] HTTP server lifecycle only.
//
//	Tools are registered in tools.go, prompts in prompts.go.
//
// Tool calls run as the principal the HTTP auth middleware attached to the request.
type Server struct {
	httpSrv *mcpserver.StreamableHTTPServer
}

func New(lib *library.Library) *Server {
	hooks := &mcpserver.Hooks{}
	hooks.OnRegisterSession = append(hooks.OnRegisterSession, onSessionOpen)
	hooks.OnUnregisterSession = append(hooks.OnUnregisterSession, onSessionClose)

	mcpSrv := mcpserver.NewMCPServer(
		"promptshelf",
		"1.0.0",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithPromptCapabilities(true),
		mcpserver.WithHooks(hooks),
	)

	RegisterTools(mcpSrv, lib)
	RegisterPrompts(mcpSrv, lib)

	return &Server{
		httpSrv: mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithHTTPContextFunc(carryPrincipal),
		),
	}
}

// Handler returns an http.Handler that serves the MCP endpoint.
func (s *Server) Handler() http.Handler {
	return s.httpSrv
}

// carryPrincipal copies the authenticated principal onto the tool-call context.
func carryPrincipal(ctx context.Context, r *http.Request) context.Context {
	if p, ok := principal.FromContext(r.Context()); ok {
		return principal.WithContext(ctx, p)
	}
	return ctx
}

func onSessionOpen(ctx context.Context, session mcpserver.ClientSession) {
	p, _ := principal.FromContext(ctx)
	slog.InfoContext(ctx, "mcp: session opened", "session_id", session.SessionID(), "user_id", p.ID)
}

func onSessionClose(ctx context.Context, session mcpserver.ClientSession) {
	slog.InfoContext(ctx, "mcp: session closed", "session_id", session.SessionID())
}
