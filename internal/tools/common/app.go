package common

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// AppKeyArg is the optional argument every OneSignal tool accepts to pick a
// registered app for a single call.
const AppKeyArg = "app_key"

// AppKeyParam declares the app_key argument.
func AppKeyParam() mcp.ToolOption {
	return mcp.WithString(AppKeyArg,
		mcp.Description("Registered app key to use for this call. Defaults to the current app, then the default app."),
	)
}

// GetAppKeyFromArgs returns the explicit app key, or "" when the call should
// use the current or default app.
func GetAppKeyFromArgs(args map[string]any) string {
	if v, ok := args[AppKeyArg].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
