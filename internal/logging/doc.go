// Package logging provides slog setup and attribute helpers.
//
// Logs always go to stderr: on the stdio transport stdout carries the MCP
// protocol stream. Credentials must only be logged through SanitizeSecret.
//
//	logger := logging.WithTool(slog.Default(), "send_notification")
//	logger.Info("sending", logging.App(appKey), logging.Status(logging.StatusSuccess))
package logging
