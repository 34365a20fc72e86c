// Package device_tools provides read-only MCP tools for browsing the
// devices (players) subscribed to a OneSignal app.
package device_tools
