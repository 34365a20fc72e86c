package message_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/server"
)

// RegisterMessageTools registers all message-related tools with the MCP server
func RegisterMessageTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterNotificationTools(s, sc); err != nil {
		return fmt.Errorf("failed to register notification tools: %w", err)
	}

	if err := RegisterInviteTools(s, sc); err != nil {
		return fmt.Errorf("failed to register invite tools: %w", err)
	}

	return nil
}
