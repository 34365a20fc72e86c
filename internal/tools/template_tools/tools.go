package template_tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/server"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/common"
)

// RegisterTemplateTools registers all template-related tools with the MCP server
func RegisterTemplateTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	viewTemplatesTool := mcp.NewTool("view_templates",
		mcp.WithDescription("List all templates available in your OneSignal app"),
		common.AppKeyParam(),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewTemplatesTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewTemplates(ctx, request, sc)
	})

	viewTemplateDetailsTool := mcp.NewTool("view_template_details",
		mcp.WithDescription("Get detailed information about a specific template"),
		common.AppKeyParam(),
		mcp.WithString("template_id",
			mcp.Required(),
			mcp.Description("The ID of the template to retrieve details for"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)
	common.AddTool(s, sc, viewTemplateDetailsTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleViewTemplateDetails(ctx, request, sc)
	})

	createTemplateTool := mcp.NewTool("create_template",
		mcp.WithDescription("Create a new push notification template in your OneSignal app"),
		common.AppKeyParam(),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Name of the template"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title/heading of the template"),
		),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Content/message of the template"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
	)
	common.AddWriteTool(s, sc, createTemplateTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return handleCreateTemplate(ctx, request, sc)
	})

	return nil
}

func handleViewTemplates(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	list, err := sc.Client().ListTemplates(ctx, common.GetAppKeyFromArgs(request.GetArguments()))
	if err != nil {
		return common.ErrorResult("retrieving templates", err, false), nil
	}
	if len(list.Templates) == 0 {
		return mcp.NewToolResultText("No templates found."), nil
	}

	var sb strings.Builder
	sb.WriteString("Templates:\n\n")
	for _, tmpl := range list.Templates {
		fmt.Fprintf(&sb, "ID: %s\n", tmpl.ID)
		fmt.Fprintf(&sb, "Name: %s\n", tmpl.Name)
		fmt.Fprintf(&sb, "Created: %s\n", tmpl.CreatedAt)
		fmt.Fprintf(&sb, "Updated: %s\n\n", tmpl.UpdatedAt)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func handleViewTemplateDetails(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	templateID, err := common.RequiredString(args, "template_id")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	tmpl, err := sc.Client().GetTemplate(ctx, common.GetAppKeyFromArgs(args), templateID)
	if err != nil {
		return common.ErrorResult("fetching template details", err, false), nil
	}

	details := []string{
		"ID: " + tmpl.ID,
		"Name: " + tmpl.Name,
		"Title: " + orDefault(tmpl.Headings["en"], "No heading"),
		"Message: " + orDefault(tmpl.Contents["en"], "No content"),
		"Created: " + tmpl.CreatedAt.String(),
		"Updated: " + tmpl.UpdatedAt.String(),
	}

	return mcp.NewToolResultText(strings.Join(details, "\n")), nil
}

func handleCreateTemplate(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	name, err := common.RequiredString(args, "name")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	title, err := common.RequiredString(args, "title")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}
	message, err := common.RequiredString(args, "message")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error: %v", err)), nil
	}

	tmpl, err := sc.Client().CreateTemplate(ctx, common.GetAppKeyFromArgs(args), name, title, message)
	if err != nil {
		return common.ErrorResult("creating template", err, false), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Template '%s' created successfully with ID: %s", name, tmpl.ID)), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
