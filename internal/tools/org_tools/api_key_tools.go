package org_tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/logging"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/common"
)

// RegisterAPIKeyTools registers the app API key tools.
func RegisterAPIKeyTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	viewAPIKeysTool := mcp.NewTool("view_app_api_keys",
		mcp.WithDescription("View API keys for a specific OneSignal app (requires Organization API Key)"),
		common.AppKeyParam(),
		mcp.WithString("app_id",
			mcp.Required(),
			mcp.Description("The ID of the app to retrieve API keys for"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewAPIKeysTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewAppAPIKeys(ctx, request, sc)
	})

	createAPIKeyTool := mcp.NewTool("create_app_api_key",
		mcp.WithDescription("Create a new API key for a specific OneSignal app (requires Organization API Key). The token is only shown once."),
		common.AppKeyParam(),
		mcp.WithString("app_id",
			mcp.Required(),
			mcp.Description("The ID of the app to create an API key for"),
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name for the new API key"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)
	common.AddWriteTool(s, sc, createAPIKeyTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateAppAPIKey(ctx, request, sc)
	})

	return nil
}

func handleViewAppAPIKeys(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	appID, err := common.RequiredString(args, "app_id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	list, err := sc.Client().ListAPIKeys(ctx, common.GetAppKeyFromArgs(args), appID)
	if err != nil {
		return common.ErrorResult("fetching API keys", err, true), nil
	}
	if len(list.Tokens) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No API keys found for app ID: %s", appID)), nil
	}

	entries := make([]string, 0, len(list.Tokens))
	for _, key := range list.Tokens {
		mode := key.IPAllowlistMode
		if mode == "" {
			mode = "disabled"
		}
		entries = append(entries, fmt.Sprintf("ID: %s\nName: %s\nCreated: %s\nUpdated: %s\nIP Allowlist Mode: %s",
			key.KeyID(), key.Name, key.CreatedAt, key.UpdatedAt, mode))
	}

	return mcp.NewToolResultText(fmt.Sprintf("API Keys for App %s:\n\n", appID) + strings.Join(entries, "\n\n")), nil
}

func handleCreateAppAPIKey(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	appID, err := common.RequiredString(args, "app_id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	key, err := sc.Client().CreateAPIKey(ctx, common.GetAppKeyFromArgs(args), appID, name)
	if err != nil {
		return common.ErrorResult("creating API key", err, true), nil
	}

	sc.Logger().InfoContext(ctx, "created app API key",
		logging.Tool("create_app_api_key"), slog.String("app_id", appID), slog.String("key_id", key.KeyID()))

	return mcp.NewToolResultText(fmt.Sprintf(
		"API Key '%s' created successfully!\n\nKey ID: %s\nToken: %s\n\nIMPORTANT: Save this token now! You won't be able to see the full token again.",
		name, key.KeyID(), key.Secret())), nil
}
