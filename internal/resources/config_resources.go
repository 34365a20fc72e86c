package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/registry"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
)

// ConfigURI is the URI of the server configuration resource.
const ConfigURI = "onesignal://config"

// ConfigInfo is the content of the configuration resource. It never
// carries credentials.
type ConfigInfo struct {
	Version         string             `json:"version"`
	APIURL          string             `json:"api_url"`
	ReadOnly        bool               `json:"read_only"`
	OrgAPIKeyStatus string             `json:"org_api_key_status"`
	Apps            []registry.AppView `json:"apps"`
	CurrentApp      string             `json:"current_app,omitempty"`
	DefaultApp      *DefaultAppInfo    `json:"default_app,omitempty"`
	Capabilities    []string           `json:"capabilities"`
}

// DefaultAppInfo describes the app configured through the environment.
type DefaultAppInfo struct {
	AppID string `json:"app_id"`
	Name  string `json:"name"`
}

var capabilities = []string{
	"Viewing and managing messages (push notifications, emails, SMS)",
	"Sending invitation emails",
	"Viewing and managing user devices",
	"Viewing and managing segments",
	"Creating and managing templates",
	"Viewing app information",
	"Managing multiple OneSignal applications",
}

// RegisterConfigResources registers the configuration resource.
func RegisterConfigResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	configResource := mcp.NewResource(
		ConfigURI,
		"OneSignal Server Configuration",
		mcp.WithResourceDescription("Version, API URL, organization key status and the configured apps (credentials redacted)"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(configResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleConfig(ctx, request, sc)
	})

	return nil
}

// BuildConfigInfo snapshots the server configuration.
func BuildConfigInfo(sc *server.ServerContext) ConfigInfo {
	d := sc.Dispatcher()

	info := ConfigInfo{
		Version:         sc.Version(),
		APIURL:          sc.Client().BaseURL(),
		ReadOnly:        sc.ReadOnly(),
		OrgAPIKeyStatus: "Not configured",
		Apps:            sc.Registry().List(),
		CurrentApp:      sc.Registry().CurrentKey(),
		Capabilities:    capabilities,
	}
	if d.HasOrgAPIKey() {
		info.OrgAPIKeyStatus = "Configured"
	}
	if app, ok := d.DefaultApp(); ok {
		info.DefaultApp = &DefaultAppInfo{AppID: app.AppID, Name: app.DisplayName()}
	}
	return info
}

func handleConfig(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(BuildConfigInfo(sc), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
