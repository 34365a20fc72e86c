package org_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/common"
)

// RegisterAppInfoTools registers the organization app tools.
func RegisterAppInfoTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	viewAppDetailsTool := mcp.NewTool("view_app_details",
		mcp.WithDescription("Get detailed information about the configured OneSignal app (requires Organization API Key)"),
		common.AppKeyParam(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewAppDetailsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewAppDetails(ctx, request, sc)
	})

	viewAppsTool := mcp.NewTool("view_apps",
		mcp.WithDescription("List all OneSignal applications for the organization (requires Organization API Key)"),
		common.AppKeyParam(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewAppsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewApps(ctx, request, sc)
	})

	createAppTool := mcp.NewTool("create_app",
		mcp.WithDescription("Create a new OneSignal application at the organization level (requires Organization API Key)"),
		common.AppKeyParam(),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the new application"),
		),
		mcp.WithString("site_name",
			mcp.Description("Name of the website for the application (optional)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)
	common.AddWriteTool(s, sc, createAppTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateApp(ctx, request, sc)
	})

	updateOrgAppTool := mcp.NewTool("update_org_app",
		mcp.WithDescription("Update an existing OneSignal application at the organization level (requires Organization API Key). "+
			"Use update_app to change a locally configured app instead."),
		common.AppKeyParam(),
		mcp.WithString("app_id",
			mcp.Required(),
			mcp.Description("ID of the app to update"),
		),
		mcp.WithString("name",
			mcp.Description("New name for the application (optional)"),
		),
		mcp.WithString("site_name",
			mcp.Description("New site name for the application (optional)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)
	common.AddWriteTool(s, sc, updateOrgAppTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateOrgApp(ctx, request, sc)
	})

	return nil
}

func handleViewAppDetails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	app, err := sc.Client().GetApp(ctx, common.GetAppKeyFromArgs(request.GetArguments()))
	if err != nil {
		return common.ErrorResult("retrieving app details", err, true), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "ID: %s\n", app.ID)
	fmt.Fprintf(&sb, "Name: %s\n", app.Name)
	fmt.Fprintf(&sb, "Created: %s\n", app.CreatedAt)
	fmt.Fprintf(&sb, "Updated: %s\n", app.UpdatedAt)
	fmt.Fprintf(&sb, "Players: %d (messageable: %d)\n", app.Players, app.MessageablePlayers)
	fmt.Fprintf(&sb, "GCM: %s\n", configured(app.Channel("gcm")))
	fmt.Fprintf(&sb, "APNS: %s\n", configured(app.Channel("apns")))
	fmt.Fprintf(&sb, "Chrome: %s\n", configured(app.Channel("chrome")))
	fmt.Fprintf(&sb, "Safari: %s\n", configured(app.Channel("safari")))
	fmt.Fprintf(&sb, "Email: %s\n", configured(app.Channel("email")))
	fmt.Fprintf(&sb, "SMS: %s\n", configured(app.Channel("sms")))

	return mcp.NewToolResultText(sb.String()), nil
}

func handleViewApps(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	apps, err := sc.Client().ListApps(ctx, common.GetAppKeyFromArgs(request.GetArguments()))
	if err != nil {
		return common.ErrorResult("fetching applications", err, true), nil
	}
	if len(apps) == 0 {
		return mcp.NewToolResultText("No applications found."), nil
	}

	entries := make([]string, 0, len(apps))
	for _, app := range apps {
		entries = append(entries, fmt.Sprintf("ID: %s\nName: %s\nGCM: %s\nAPNS: %s\nCreated: %s",
			app.ID, app.Name, configured(app.Channel("gcm")), configured(app.Channel("apns")), app.CreatedAt))
	}

	return mcp.NewToolResultText("Applications:\n\n" + strings.Join(entries, "\n\n")), nil
}

func handleCreateApp(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	app, err := sc.Client().CreateApp(ctx, common.GetAppKeyFromArgs(args), onesignal.AppParams{
		Name:     name,
		SiteName: common.OptionalString(args, "site_name", ""),
	})
	if err != nil {
		return common.ErrorResult("creating application", err, true), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Application '%s' created successfully with ID: %s", name, app.ID)), nil
}

func handleUpdateOrgApp(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	appID, err := common.RequiredString(args, "app_id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	params := onesignal.AppParams{
		Name:     strings.TrimSpace(common.OptionalString(args, "name", "")),
		SiteName: strings.TrimSpace(common.OptionalString(args, "site_name", "")),
	}
	if params.Name == "" && params.SiteName == "" {
		return mcp.NewToolResultError("Error: No update parameters provided. Specify at least one parameter to update."), nil
	}

	if _, err := sc.Client().UpdateApp(ctx, common.GetAppKeyFromArgs(args), appID, params); err != nil {
		return common.ErrorResult("updating application", err, true), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Application '%s' updated successfully", appID)), nil
}
