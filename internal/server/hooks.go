package server

import (
	"context"

	mcpserver "github.com/mark3labs/mcp-go/server"
)

// NewSessionHooks returns hooks that track active MCP sessions in the
// metrics attached to sc.
func NewSessionHooks(sc *ServerContext) *mcpserver.Hooks {
	hooks := &mcpserver.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		sc.Metrics().IncrementActiveSessions(ctx)
		sc.Logger().DebugContext(ctx, "MCP session registered", "session_id", session.SessionID())
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session mcpserver.ClientSession) {
		sc.Metrics().DecrementActiveSessions(ctx)
		sc.Logger().DebugContext(ctx, "MCP session unregistered", "session_id", session.SessionID())
	})
	return hooks
}
