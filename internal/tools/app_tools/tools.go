package app_tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/registry"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/common"
)

// fieldLabels maps registry field names to the labels shown to users.
var fieldLabels = map[string]string{
	"app_id":      "App ID",
	"api_key":     "API Key",
	"org_api_key": "Organization API Key",
	"name":        "Name",
}

// RegisterAppTools registers the app registry tools with the MCP server.
// They only touch local configuration, so they stay available in read-only mode.
func RegisterAppTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	listAppsTool := mcp.NewTool("list_apps",
		mcp.WithDescription("List all configured OneSignal apps in this server. Credentials are never shown."),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, listAppsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleListApps(ctx, request, sc)
	})

	addAppTool := mcp.NewTool("add_app",
		mcp.WithDescription("Add a new OneSignal app configuration"),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Unique identifier for this app configuration"),
		),
		mcp.WithString("app_id",
			mcp.Required(),
			mcp.Description("OneSignal App ID"),
		),
		mcp.WithString("api_key",
			mcp.Required(),
			mcp.Description("OneSignal REST API Key"),
		),
		mcp.WithString("org_api_key",
			mcp.Description("Organization API Key used for organization-level tools with this app (optional)"),
		),
		mcp.WithString("name",
			mcp.Description("Display name for the app (optional, defaults to the key)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)
	common.AddTool(s, sc, addAppTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleAddApp(ctx, request, sc)
	})

	updateAppTool := mcp.NewTool("update_app",
		mcp.WithDescription("Update an existing OneSignal app configuration. Only the given fields change."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("The key of the app configuration to update"),
		),
		mcp.WithString("app_id",
			mcp.Description("New OneSignal App ID (optional)"),
		),
		mcp.WithString("api_key",
			mcp.Description("New OneSignal REST API Key (optional)"),
		),
		mcp.WithString("org_api_key",
			mcp.Description("New Organization API Key (optional)"),
		),
		mcp.WithString("name",
			mcp.Description("New display name for the app (optional)"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)
	common.AddTool(s, sc, updateAppTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleUpdateApp(ctx, request, sc)
	})

	removeAppTool := mcp.NewTool("remove_app",
		mcp.WithDescription("Remove a OneSignal app configuration. Removing the current app leaves no app selected."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("The key of the app configuration to remove"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(true),
	)
	common.AddTool(s, sc, removeAppTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleRemoveApp(ctx, request, sc)
	})

	switchAppTool := mcp.NewTool("switch_app",
		mcp.WithDescription("Switch the current app used for API requests that do not pass app_key"),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("The key of the app configuration to use"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
	common.AddTool(s, sc, switchAppTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleSwitchApp(ctx, request, sc)
	})

	return nil
}

func handleListApps(_ context.Context, _ mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	apps := sc.Registry().List()
	defaultApp, hasDefault := sc.Dispatcher().DefaultApp()

	if len(apps) == 0 && !hasDefault {
		return mcp.NewToolResultText("No apps configured. Use add_app to add a new app configuration."), nil
	}

	var sb strings.Builder
	if len(apps) == 0 {
		sb.WriteString("No apps configured. Use add_app to add a new app configuration.")
	} else {
		sb.WriteString("Configured OneSignal Apps:")
		for _, app := range apps {
			fmt.Fprintf(&sb, "\n- %s: %s (App ID: %s)", app.Key, app.Name, app.AppID)
			if app.HasOrgAPIKey {
				sb.WriteString(" [org key]")
			}
			if app.Current {
				sb.WriteString(" (current)")
			}
		}
	}

	if hasDefault {
		fmt.Fprintf(&sb, "\n\nDefault app from environment: App ID %s", defaultApp.AppID)
		if sc.Registry().CurrentKey() == "" {
			sb.WriteString(" (used when no app_key is given)")
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func handleAddApp(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	key := strings.TrimSpace(common.OptionalString(args, "key", ""))
	appID := strings.TrimSpace(common.OptionalString(args, "app_id", ""))
	apiKey := strings.TrimSpace(common.OptionalString(args, "api_key", ""))
	if key == "" || appID == "" || apiKey == "" {
		return mcp.NewToolResultError("Error: All parameters (key, app_id, api_key) are required."), nil
	}

	cfg := registry.AppConfig{
		Key:       key,
		AppID:     appID,
		APIKey:    apiKey,
		OrgAPIKey: strings.TrimSpace(common.OptionalString(args, "org_api_key", "")),
		Name:      strings.TrimSpace(common.OptionalString(args, "name", "")),
	}

	if err := sc.AddApp(ctx, cfg); err != nil {
		if errors.Is(err, registry.ErrDuplicateKey) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"Error: App key '%s' already exists. Use a different key or update_app to modify it.", key)), nil
		}
		return common.ErrorResult("adding app", err, false), nil
	}

	msg := fmt.Sprintf("Successfully added app '%s' with name '%s'.", key, cfg.DisplayName())
	if sc.Registry().CurrentKey() != key {
		msg += fmt.Sprintf(" Use switch_app with key '%s' to make it the current app, or pass app_key='%s' to individual tools.", key, key)
	}
	return mcp.NewToolResultText(msg), nil
}

func handleUpdateApp(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	key, err := common.RequiredString(args, "key")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	key = strings.TrimSpace(key)

	update := registry.AppUpdate{
		AppID:     nonEmpty(common.OptionalStringPtr(args, "app_id")),
		APIKey:    nonEmpty(common.OptionalStringPtr(args, "api_key")),
		OrgAPIKey: common.OptionalStringPtr(args, "org_api_key"),
		Name:      nonEmpty(common.OptionalStringPtr(args, "name")),
	}
	if update.IsEmpty() {
		return mcp.NewToolResultError("No changes were made. Specify at least one parameter to update."), nil
	}

	changed, err := sc.UpdateApp(ctx, key, update)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Error: App key '%s' not found.", key)), nil
		}
		return common.ErrorResult("updating app", err, false), nil
	}

	labels := make([]string, 0, len(changed))
	for _, field := range changed {
		labels = append(labels, fieldLabels[field])
	}
	return mcp.NewToolResultText(fmt.Sprintf("Successfully updated app '%s': %s.", key, strings.Join(labels, ", "))), nil
}

func handleRemoveApp(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	key, err := common.RequiredString(request.GetArguments(), "key")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	key = strings.TrimSpace(key)

	wasCurrent, err := sc.RemoveApp(ctx, key)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("Error: App key '%s' not found.", key)), nil
		}
		return common.ErrorResult("removing app", err, false), nil
	}

	msg := fmt.Sprintf("Successfully removed app '%s'.", key)
	if wasCurrent {
		if _, ok := sc.Dispatcher().DefaultApp(); ok {
			msg += " It was the current app; calls without app_key now use the default app from the environment."
		} else {
			msg += " It was the current app; use switch_app to select another app."
		}
	}
	return mcp.NewToolResultText(msg), nil
}

func handleSwitchApp(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	key, err := common.RequiredString(request.GetArguments(), "key")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	key = strings.TrimSpace(key)

	if err := sc.SwitchApp(ctx, key); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			available := strings.Join(sc.Registry().Keys(), ", ")
			if available == "" {
				available = "None"
			}
			return mcp.NewToolResultError(fmt.Sprintf("Error: App key '%s' not found. Available apps: %s", key, available)), nil
		}
		return common.ErrorResult("switching app", err, false), nil
	}

	app, err := sc.Registry().Get(key)
	if err != nil {
		return common.ErrorResult("switching app", err, false), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Switched to app '%s' (%s).", key, app.DisplayName())), nil
}

// nonEmpty drops pointers to blank strings so that "" does not overwrite a
// required field.
func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
