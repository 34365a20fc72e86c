package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/config"
	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

// toolCategory is a titled set of tools in the generated reference.
type toolCategory struct {
	title string
	tools []mcp.Tool
}

func runGenerateDocs(outputFile string) error {
	// Documentation needs no credentials and never calls the API
	cfg := &config.Config{Settings: config.Settings{
		APIURL:      config.DefaultAPIURL,
		HTTPTimeout: onesignal.DefaultTimeout,
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	serverContext, err := newServerContext(context.Background(), cfg, logger, false)
	if err != nil {
		return err
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	categories, err := collectToolCategories(serverContext)
	if err != nil {
		return err
	}

	markdown := generateToolsMarkdown(categories)

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	} else {
		fmt.Print(markdown)
	}

	return nil
}

// collectToolCategories registers each tool group on its own server so the
// reference can be grouped the same way the tools are registered.
func collectToolCategories(sc *server.ServerContext) ([]toolCategory, error) {
	categories := make([]toolCategory, 0, len(toolGroups))
	for _, group := range toolGroups {
		mcpSrv := mcpserver.NewMCPServer("onesignal-mcp", version, mcpserver.WithToolCapabilities(true))
		if err := group.register(mcpSrv, sc); err != nil {
			return nil, fmt.Errorf("failed to register %s tools: %w", group.name, err)
		}

		serverTools := mcpSrv.ListTools()
		tools := make([]mcp.Tool, 0, len(serverTools))
		for _, serverTool := range serverTools {
			tools = append(tools, serverTool.Tool)
		}
		sort.Slice(tools, func(i, j int) bool {
			return tools[i].Name < tools[j].Name
		})

		categories = append(categories, toolCategory{
			title: group.name + " Tools",
			tools: tools,
		})
	}
	return categories, nil
}

func generateToolsMarkdown(categories []toolCategory) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running onesignal-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, category := range categories {
		anchor := strings.ToLower(strings.ReplaceAll(category.title, " ", "-"))
		fmt.Fprintf(&sb, "- [%s](#%s)\n", category.title, anchor)
	}
	sb.WriteString("\n")

	sb.WriteString("## Multi-App Support\n\n")
	sb.WriteString("Tools that call the OneSignal API accept an optional `app_key` parameter naming a configured app:\n\n")
	sb.WriteString("- **Default behavior:** If `app_key` is not specified, the current app is used, then the app from `ONESIGNAL_APP_ID`\n")
	sb.WriteString("- **Multiple apps:** Apps come from `ONESIGNAL_<NAME>_APP_ID` variables or the `add_app` tool\n")
	sb.WriteString("- **Organization tools:** App creation and API key tools need `ONESIGNAL_ORG_API_KEY` or a per-app organization key\n\n")

	for _, category := range categories {
		fmt.Fprintf(&sb, "## %s\n\n", category.title)

		for _, tool := range category.tools {
			sb.WriteString(generateToolMarkdown(tool))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)

	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	if tool.Annotations.ReadOnlyHint != nil && !*tool.Annotations.ReadOnlyHint {
		sb.WriteString("*Write operation: changes OneSignal or app registry state.*\n\n")
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
			if !ok {
				continue
			}

			requiredStr := "optional"
			if contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			fmt.Fprintf(&sb, "- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr)
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			} else {
				fmt.Fprintf(&sb, "%s parameter", getPropertyType(propMap))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
