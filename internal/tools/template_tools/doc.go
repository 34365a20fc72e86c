// Package template_tools provides MCP tools for OneSignal notification
// templates.
package template_tools
