// Package segment_tools provides MCP tools for listing, creating and
// deleting audience segments of a OneSignal app.
package segment_tools
