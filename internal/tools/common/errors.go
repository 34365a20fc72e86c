package common

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/registry"
)

// OrgKeyHint is appended to authorization failures of organization tools.
const OrgKeyHint = "Your Organization API Key is either not configured or doesn't have permission for this operation. " +
	"Set ONESIGNAL_ORG_API_KEY, or org_api_key on the app, to a valid Organization API Key. " +
	"Organization API Keys can be found in your OneSignal dashboard under Organizations > Keys & IDs."

const noAppHint = "Use add_app and switch_app to select an app, pass app_key, or set ONESIGNAL_APP_ID and ONESIGNAL_API_KEY."

// ErrorMessage renders err for a tool result. action completes
// "Error <action>: ...". API errors keep the upstream status and body.
func ErrorMessage(action string, err error, orgScoped bool) string {
	msg := fmt.Sprintf("Error %s: %v", action, err)

	switch {
	case errors.Is(err, registry.ErrNoAppConfigured):
		return msg + "\n\n" + noAppHint
	case errors.Is(err, onesignal.ErrNoOrgAPIKey):
		return msg + "\n\n" + OrgKeyHint
	case orgScoped && onesignal.IsAuthError(err):
		return msg + "\n\n" + OrgKeyHint
	}
	return msg
}

// ErrorResult converts err into an MCP error result.
func ErrorResult(action string, err error, orgScoped bool) *mcp.CallToolResult {
	return mcp.NewToolResultError(ErrorMessage(action, err, orgScoped))
}
