// Package message_tools provides MCP tools for OneSignal messages: sending
// push, email and SMS notifications, browsing and cancelling them, and
// sending invitation emails.
//
// Every tool accepts an optional app_key argument selecting a registered
// app for the call. Tools that send or cancel messages are refused when the
// server runs in read-only mode.
package message_tools
