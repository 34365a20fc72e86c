// Package cmd implements the command-line interface for onesignal-mcp.
//
// This package provides the following commands:
//   - serve: Start the MCP server over stdio or streamable HTTP
//   - apps: Print the redacted app registry the server would start with
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
package cmd
