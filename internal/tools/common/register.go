package common

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/server"
)

// AddTool registers an instrumented tool that is available in every mode.
func AddTool(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, handler ToolHandler) {
	s.AddTool(tool, InstrumentedToolHandler(tool.Name, sc, handler))
}

// AddWriteTool registers a tool that changes state in OneSignal.
// In read-only mode the tool stays visible but every call is refused.
func AddWriteTool(s *mcpserver.MCPServer, sc *server.ServerContext, tool mcp.Tool, handler ToolHandler) {
	if sc.ReadOnly() {
		handler = ReadOnlyHandler(tool.Name)
	}
	s.AddTool(tool, InstrumentedToolHandler(tool.Name, sc, handler))
}

// ReadOnlyHandler refuses every call to toolName.
func ReadOnlyHandler(toolName string) ToolHandler {
	return func(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError(fmt.Sprintf(
			"%s is disabled because the server is running in read-only mode. Restart without --read-only to enable it.", toolName)), nil
	}
}
