package device_tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/common"
)

// RegisterDeviceTools registers all device-related tools with the MCP server
func RegisterDeviceTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	viewDevicesTool := mcp.NewTool("view_devices",
		mcp.WithDescription("View devices subscribed to your OneSignal app"),
		common.AppKeyParam(),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of devices to return (default: 20, max: 200)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Result offset for pagination (default: 0)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewDevicesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewDevices(ctx, request, sc)
	})

	viewDeviceDetailsTool := mcp.NewTool("view_device_details",
		mcp.WithDescription("Get detailed information about a specific device"),
		common.AppKeyParam(),
		mcp.WithString("device_id",
			mcp.Required(),
			mcp.Description("The ID of the device to retrieve details for"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewDeviceDetailsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewDeviceDetails(ctx, request, sc)
	})

	return nil
}

func handleViewDevices(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	limit, err := common.OptionalInt(args, "limit", onesignal.DefaultPageSize)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	offset, err := common.OptionalInt(args, "offset", 0)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	list, err := sc.Client().ListDevices(ctx, common.GetAppKeyFromArgs(args), limit, offset)
	if err != nil {
		return common.ErrorResult("fetching devices", err, false), nil
	}
	if len(list.Players) == 0 {
		return mcp.NewToolResultText("No devices found."), nil
	}

	entries := make([]string, 0, len(list.Players))
	for _, d := range list.Players {
		var sb strings.Builder
		fmt.Fprintf(&sb, "ID: %s\n", d.ID)
		fmt.Fprintf(&sb, "Device Type: %s\n", d.DeviceTypeName())
		fmt.Fprintf(&sb, "Created: %s\n", d.CreatedAt)
		fmt.Fprintf(&sb, "Last Active: %s\n", d.LastActive)
		fmt.Fprintf(&sb, "Session Count: %d\n", d.SessionCount)
		fmt.Fprintf(&sb, "Platform: %s\n", orDefault(d.DeviceOS, "Unknown"))
		fmt.Fprintf(&sb, "Model: %s\n", orDefault(d.DeviceModel, "Unknown"))
		fmt.Fprintf(&sb, "Tags: %s", formatTags(d.Tags))
		entries = append(entries, sb.String())
	}

	out := "Devices:\n\n" + strings.Join(entries, "\n\n")
	if shown := list.Offset + len(list.Players); list.TotalCount > shown {
		out += fmt.Sprintf("\n\nShowing %d of %d devices. Use offset=%d to see more.", len(list.Players), list.TotalCount, shown)
	}
	return mcp.NewToolResultText(out), nil
}

func handleViewDeviceDetails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	deviceID, err := common.RequiredString(args, "device_id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	d, err := sc.Client().GetDevice(ctx, common.GetAppKeyFromArgs(args), deviceID)
	if err != nil {
		return common.ErrorResult("fetching device details", err, false), nil
	}

	details := []string{
		"ID: " + d.ID,
		"External User ID: " + orDefault(d.ExternalUserID, "Not set"),
		"Device Type: " + d.DeviceTypeName(),
		"Device Model: " + orDefault(d.DeviceModel, "Unknown"),
		"Platform: " + orDefault(d.DeviceOS, "Unknown"),
		"Created: " + d.CreatedAt.String(),
		"Last Active: " + d.LastActive.String(),
		fmt.Sprintf("Session Count: %d", d.SessionCount),
		"Language: " + orDefault(d.Language, "Unknown"),
		fmt.Sprintf("Timezone: %d", d.Timezone),
		"Country: " + orDefault(d.Country, "Unknown"),
		fmt.Sprintf("Notification Types: %d", d.NotificationTypes),
		"Tags: " + formatTags(d.Tags),
	}
	if d.InvalidIdentifier {
		details = append(details, "Invalid Identifier: true")
	}

	return mcp.NewToolResultText(strings.Join(details, "\n")), nil
}

func formatTags(tags map[string]any) string {
	if len(tags) == 0 {
		return "{}"
	}
	out, err := json.MarshalIndent(tags, "", "  ")
	if err != nil {
		return fmt.Sprint(tags)
	}
	return string(out)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
