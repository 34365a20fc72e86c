// Package app_tools provides MCP tools for managing the OneSignal app
// configurations held by the server. They change which credentials later
// calls use and never talk to OneSignal themselves.
package app_tools
