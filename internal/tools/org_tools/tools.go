package org_tools

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/server"
)

// RegisterOrgTools registers all organization-level tools with the MCP server
func RegisterOrgTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if err := RegisterAppInfoTools(s, sc); err != nil {
		return fmt.Errorf("failed to register app info tools: %w", err)
	}

	if err := RegisterAPIKeyTools(s, sc); err != nil {
		return fmt.Errorf("failed to register API key tools: %w", err)
	}

	return nil
}

func configured(ok bool) string {
	if ok {
		return "Configured"
	}
	return "Not Configured"
}
