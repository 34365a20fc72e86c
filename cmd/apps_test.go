package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weirdbrains/onesignal-mcp/internal/registry"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/toolstest"
)

func TestPrintApps(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.NewAPI(t), toolstest.Config{
		Apps: []registry.AppConfig{
			{Key: "main", AppID: "app-main", APIKey: "secret-main", Name: "Main App"},
			{Key: "side", AppID: "app-side", APIKey: "secret-side", OrgAPIKey: "secret-org"},
		},
		Current:    "main",
		DefaultApp: &registry.AppConfig{Key: "default", AppID: "app-default", APIKey: "secret-default"},
	})

	var buf bytes.Buffer
	require.NoError(t, printApps(&buf, sc.Dispatcher()))
	out := buf.String()

	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "Main App")
	assert.Contains(t, out, "app-side")
	assert.Contains(t, out, "app-default")
	assert.Contains(t, out, "[secret:11 chars]")
	assert.Contains(t, out, "Organization API key: configured for side")
	assert.NotContains(t, out, "secret-main")
	assert.NotContains(t, out, "secret-org")
	assert.NotContains(t, out, "secret-default")
}

func TestPrintApps_GlobalOrgKey(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.NewAPI(t), toolstest.Config{
		Apps:      []registry.AppConfig{{Key: "main", AppID: "app-main", APIKey: "secret-main"}},
		OrgAPIKey: "secret-global-org",
	})

	var buf bytes.Buffer
	require.NoError(t, printApps(&buf, sc.Dispatcher()))
	assert.Contains(t, buf.String(), "Organization API key: configured\n")
	assert.NotContains(t, buf.String(), "secret-global-org")
}

func TestPrintApps_NoOrgKey(t *testing.T) {
	sc := toolstest.NewServerContext(t, toolstest.NewAPI(t), toolstest.Config{})

	var buf bytes.Buffer
	require.NoError(t, printApps(&buf, sc.Dispatcher()))
	assert.Contains(t, buf.String(), "Organization API key: not configured")
}
