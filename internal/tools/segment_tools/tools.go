package segment_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/server"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/common"
)

// RegisterSegmentTools registers all segment-related tools with the MCP server
func RegisterSegmentTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	viewSegmentsTool := mcp.NewTool("view_segments",
		mcp.WithDescription("List all segments available in your OneSignal app"),
		common.AppKeyParam(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewSegmentsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewSegments(ctx, request, sc)
	})

	createSegmentTool := mcp.NewTool("create_segment",
		mcp.WithDescription("Create a new segment in your OneSignal app"),
		common.AppKeyParam(),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the segment"),
		),
		mcp.WithString("filters",
			mcp.Required(),
			mcp.Description(`JSON array of segment filters, e.g. [{"field":"tag","key":"level","relation":"=","value":"10"}]`),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)
	common.AddWriteTool(s, sc, createSegmentTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateSegment(ctx, request, sc)
	})

	deleteSegmentTool := mcp.NewTool("delete_segment",
		mcp.WithDescription("Delete a segment from your OneSignal app"),
		common.AppKeyParam(),
		mcp.WithString("segment_id",
			mcp.Required(),
			mcp.Description("ID of the segment to delete"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
	)
	common.AddWriteTool(s, sc, deleteSegmentTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleDeleteSegment(ctx, request, sc)
	})

	return nil
}

func handleViewSegments(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	segments, err := sc.Client().ListSegments(ctx, common.GetAppKeyFromArgs(args))
	if err != nil {
		return common.ErrorResult("retrieving segments", err, false), nil
	}
	if len(segments) == 0 {
		return mcp.NewToolResultText("No segments found."), nil
	}

	var sb strings.Builder
	sb.WriteString("Segments:\n\n")
	for _, seg := range segments {
		fmt.Fprintf(&sb, "ID: %s\n", seg.ID)
		fmt.Fprintf(&sb, "Name: %s\n", seg.Name)
		fmt.Fprintf(&sb, "Created: %s\n", seg.CreatedAt)
		fmt.Fprintf(&sb, "Updated: %s\n", seg.UpdatedAt)
		fmt.Fprintf(&sb, "Active: %t\n", seg.IsActive)
		fmt.Fprintf(&sb, "Read Only: %t\n\n", seg.ReadOnly)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func handleCreateSegment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	var filters []map[string]any
	if err := common.JSONArrayArg(args, "filters", &filters); err != nil {
		return mcp.NewToolResultError("Error: The filters parameter must be a valid JSON string."), nil
	}

	result, err := sc.Client().CreateSegment(ctx, common.GetAppKeyFromArgs(args), name, filters)
	if err != nil {
		return common.ErrorResult("creating segment", err, false), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Segment '%s' created successfully with ID: %s", name, result.ID)), nil
}

func handleDeleteSegment(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	segmentID, err := common.RequiredString(args, "segment_id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	if _, err := sc.Client().DeleteSegment(ctx, common.GetAppKeyFromArgs(args), segmentID); err != nil {
		return common.ErrorResult("deleting segment", err, false), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Segment '%s' deleted successfully", segmentID)), nil
}
