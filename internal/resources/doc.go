// Package resources provides MCP resources. Resources are read-only data
// sources that MCP clients can fetch to learn how the server is configured
// without calling a tool.
package resources
