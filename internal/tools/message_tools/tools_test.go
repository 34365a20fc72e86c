package message_tools

import (
	"encoding/json"
	"net/http"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weirdbrains/onesignal-mcp/internal/registry"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/batch"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/toolstest"
)

var testApps = []registry.AppConfig{
	{Key: "a", AppID: "app-a", APIKey: "key-a"},
	{Key: "b", AppID: "app-b", APIKey: "key-b"},
}

func setup(t *testing.T, readOnly bool) (*toolstest.API, *mcpserver.MCPServer) {
	t.Helper()
	api := toolstest.NewAPI(t)
	sc := toolstest.NewServerContext(t, api, toolstest.Config{Apps: testApps, Current: "a", ReadOnly: readOnly})
	return api, toolstest.NewMCPServer(t, sc, RegisterMessageTools)
}

func TestRegisterMessageTools(t *testing.T) {
	_, s := setup(t, false)
	assert.ElementsMatch(t, []string{
		"send_notification", "view_messages", "view_message_details", "cancel_message",
		"send_invite_email", "send_bulk_invites",
	}, toolstest.ToolNames(s))
}

func TestSendNotification(t *testing.T) {
	api, s := setup(t, false)
	api.Handle(http.MethodPost, "notifications", http.StatusOK, map[string]any{"id": "n-1", "recipients": 12})

	result := toolstest.Call(t, s, "send_notification", map[string]any{
		"title":   "Hello",
		"message": "World",
		"data":    `{"deep_link": "app://home"}`,
	})
	require.False(t, result.IsError, toolstest.Text(result))
	assert.Equal(t, "Notification sent successfully with ID: n-1\nRecipients: 12", toolstest.Text(result))

	req := api.Last()
	assert.Equal(t, "Basic key-a", req.Authorization())
	assert.Equal(t, "app-a", req.Body["app_id"])
	assert.Equal(t, "push", req.Body["target_channel"])
	assert.Equal(t, []any{"Subscribed Users"}, req.Body["included_segments"])
	assert.Equal(t, map[string]any{"en": "World"}, req.Body["contents"])
	assert.Equal(t, map[string]any{"en": "Hello"}, req.Body["headings"])
	assert.Equal(t, map[string]any{"deep_link": "app://home"}, req.Body["data"])
}

func TestSendNotification_ExplicitAppKey(t *testing.T) {
	api, s := setup(t, false)
	api.Handle(http.MethodPost, "notifications", http.StatusOK, map[string]any{"id": "n-2"})

	result := toolstest.Call(t, s, "send_notification", map[string]any{
		"app_key":        "b",
		"title":          "Hi",
		"message":        "SMS body",
		"segment":        "Active Users",
		"target_channel": "sms",
	})
	require.False(t, result.IsError, toolstest.Text(result))

	req := api.Last()
	assert.Equal(t, "Basic key-b", req.Authorization())
	assert.Equal(t, "app-b", req.Body["app_id"])
	assert.Equal(t, "sms", req.Body["target_channel"])
	assert.Equal(t, []any{"Active Users"}, req.Body["included_segments"])
}

func TestSendNotification_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]any
		contains string
	}{
		{
			name:     "missing message",
			args:     map[string]any{"title": "t"},
			contains: "Error: message is required",
		},
		{
			name:     "invalid data",
			args:     map[string]any{"title": "t", "message": "m", "data": "[1, 2]"},
			contains: "Error: The data parameter must be a JSON object.",
		},
		{
			name:     "unknown app key",
			args:     map[string]any{"title": "t", "message": "m", "app_key": "zzz"},
			contains: "Error sending notification:",
		},
		{
			name:     "bad channel",
			args:     map[string]any{"title": "t", "message": "m", "target_channel": "fax"},
			contains: "target channel must be push, email or sms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api, s := setup(t, false)
			result := toolstest.Call(t, s, "send_notification", tt.args)
			assert.True(t, result.IsError)
			assert.Contains(t, toolstest.Text(result), tt.contains)
			assert.Empty(t, api.Requests())
		})
	}
}

func TestSendNotification_APIErrorSurfacesBody(t *testing.T) {
	api, s := setup(t, false)
	api.Handle(http.MethodPost, "notifications", http.StatusBadRequest, `{"errors":["Segment not found"]}`)

	result := toolstest.Call(t, s, "send_notification", map[string]any{"title": "t", "message": "m"})
	assert.True(t, result.IsError)
	assert.Contains(t, toolstest.Text(result), "Error sending notification:")
	assert.Contains(t, toolstest.Text(result), "400")
	assert.Contains(t, toolstest.Text(result), `{"errors":["Segment not found"]}`)
}

func TestSendNotification_NoAppConfigured(t *testing.T) {
	api := toolstest.NewAPI(t)
	sc := toolstest.NewServerContext(t, api, toolstest.Config{})
	s := toolstest.NewMCPServer(t, sc, RegisterMessageTools)

	result := toolstest.Call(t, s, "send_notification", map[string]any{"title": "t", "message": "m"})
	assert.True(t, result.IsError)
	assert.Contains(t, toolstest.Text(result), "switch_app")
	assert.Empty(t, api.Requests())
}

func TestViewMessages(t *testing.T) {
	api, s := setup(t, false)
	api.Handle(http.MethodGet, "notifications", http.StatusOK, map[string]any{
		"total_count": 3,
		"offset":      0,
		"limit":       2,
		"notifications": []map[string]any{
			{
				"id":           "n-1",
				"headings":     map[string]string{"en": "Sale"},
				"contents":     map[string]string{"en": "50% off"},
				"queued_at":    1700000000,
				"send_after":   1700000060,
				"completed_at": 1700000120,
				"successful":   10,
				"failed":       1,
				"remaining":    0,
			},
			{"id": "n-2", "canceled": true},
		},
	})

	result := toolstest.Call(t, s, "view_messages", map[string]any{"limit": float64(2)})
	require.False(t, result.IsError, toolstest.Text(result))

	text := toolstest.Text(result)
	assert.Contains(t, text, "Messages:\n\nID: n-1\nTitle: Sale\nMessage: 50% off\nCreated: 2023-11-14T22:13:20Z\n")
	assert.Contains(t, text, "Status: Completed 2023-11-14T22:15:20Z\nSuccessful: 10\nFailed: 1\nRemaining: 0\n")
	assert.Contains(t, text, "ID: n-2\nTitle: No Title\nMessage: No Content\n")
	assert.Contains(t, text, "Status: Canceled")
	assert.Contains(t, text, "Showing 2 of 3 messages. Use offset=2 to see more.")

	req := api.Last()
	assert.Equal(t, "2", req.Query.Get("limit"))
	assert.Equal(t, "0", req.Query.Get("offset"))
	assert.Equal(t, "app-a", req.Query.Get("app_id"))
}

func TestViewMessages_LimitCapped(t *testing.T) {
	api, s := setup(t, false)
	api.Handle(http.MethodGet, "notifications", http.StatusOK, map[string]any{"notifications": []any{}})

	result := toolstest.Call(t, s, "view_messages", map[string]any{"limit": float64(500), "offset": "40"})
	assert.Equal(t, "No messages found.", toolstest.Text(result))
	assert.Equal(t, "50", api.Last().Query.Get("limit"))
	assert.Equal(t, "40", api.Last().Query.Get("offset"))
}

func TestViewMessages_InvalidLimit(t *testing.T) {
	api, s := setup(t, false)
	result := toolstest.Call(t, s, "view_messages", map[string]any{"limit": 2.5})
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: limit must be an integer", toolstest.Text(result))
	assert.Empty(t, api.Requests())
}

func TestViewMessageDetails(t *testing.T) {
	api, s := setup(t, false)
	api.Handle(http.MethodGet, "notifications/n-1", http.StatusOK, map[string]any{
		"id":                      "n-1",
		"app_id":                  "app-a",
		"headings":                map[string]string{"en": "Sale"},
		"contents":                map[string]string{"en": "50% off"},
		"url":                     "https://example.com",
		"successful":              5,
		"platform_delivery_stats": map[string]any{"ios": map[string]int{"successful": 5}},
	})

	result := toolstest.Call(t, s, "view_message_details", map[string]any{"message_id": "n-1"})
	require.False(t, result.IsError, toolstest.Text(result))

	text := toolstest.Text(result)
	assert.Contains(t, text, "ID: n-1\nApp ID: app-a\nTitle: Sale\nMessage: 50% off\nURL: https://example.com\n")
	assert.Contains(t, text, "Completed: N/A\n")
	assert.Contains(t, text, "Successful: 5\n")
	assert.Contains(t, text, `Platform Delivery Stats: {"ios":{"successful":5}}`)
}

func TestViewMessageDetails_NotFound(t *testing.T) {
	_, s := setup(t, false)
	result := toolstest.Call(t, s, "view_message_details", map[string]any{"message_id": "missing"})
	assert.True(t, result.IsError)
	assert.Contains(t, toolstest.Text(result), "Error retrieving message details:")
	assert.Contains(t, toolstest.Text(result), "404")
}

func TestCancelMessage(t *testing.T) {
	api, s := setup(t, false)
	api.Handle(http.MethodDelete, "notifications/n-1", http.StatusOK, map[string]any{"success": true})

	result := toolstest.Call(t, s, "cancel_message", map[string]any{"message_id": "n-1"})
	require.False(t, result.IsError, toolstest.Text(result))
	assert.Equal(t, "Message canceled successfully.", toolstest.Text(result))
	assert.Equal(t, "app-a", api.Last().Query.Get("app_id"))
}

func TestWriteTools_ReadOnlyMode(t *testing.T) {
	api, s := setup(t, true)

	for _, name := range []string{"send_notification", "cancel_message", "send_invite_email", "send_bulk_invites"} {
		t.Run(name, func(t *testing.T) {
			result := toolstest.Call(t, s, name, map[string]any{"title": "t", "message": "m", "message_id": "n-1"})
			assert.True(t, result.IsError)
			assert.Contains(t, toolstest.Text(result), "read-only mode")
		})
	}
	assert.Empty(t, api.Requests())

	api.Handle(http.MethodGet, "notifications", http.StatusOK, map[string]any{"notifications": []any{}})
	result := toolstest.Call(t, s, "view_messages", nil)
	assert.False(t, result.IsError)
}

func TestSendInviteEmail(t *testing.T) {
	api, s := setup(t, false)
	api.Handle(http.MethodPost, "notifications", http.StatusOK, map[string]any{"id": "e-1"})

	result := toolstest.Call(t, s, "send_invite_email", map[string]any{
		"email":        "ann@example.com",
		"first_name":   "Ann",
		"invite_url":   "https://example.com/invite/abc",
		"inviter_name": "Bob",
		"app_name":     "Acme",
		"expiry_days":  float64(3),
	})
	require.False(t, result.IsError, toolstest.Text(result))
	assert.Equal(t, "Invitation sent to ann@example.com.\nEmail sent successfully with ID: e-1", toolstest.Text(result))

	body := api.Last().Body
	assert.Equal(t, "email", body["target_channel"])
	assert.Equal(t, []any{"ann@example.com"}, body["include_email_tokens"])
	assert.Equal(t, "Bob invited you to join Acme", body["email_subject"])
	assert.Contains(t, body["email_body"], "Hi Ann,")
	assert.Contains(t, body["email_body"], "expires in 3 days")
}

func TestSendInviteEmail_Invalid(t *testing.T) {
	api, s := setup(t, false)

	result := toolstest.Call(t, s, "send_invite_email", map[string]any{
		"email":        "not-an-address",
		"invite_url":   "https://example.com/invite/abc",
		"inviter_name": "Bob",
		"app_name":     "Acme",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, toolstest.Text(result), "Error sending invitation:")
	assert.Contains(t, toolstest.Text(result), "invalid email")
	assert.Empty(t, api.Requests())
}

func TestSendBulkInvites(t *testing.T) {
	api, s := setup(t, false)
	api.Handle(http.MethodPost, "notifications", http.StatusOK, map[string]any{"id": "e-1"})

	invites := `[
		{"email": "one@example.com", "first_name": "One", "invite_url": "https://example.com/1"},
		{"email": "bad", "invite_url": "https://example.com/2"},
		{"email": "three@example.com", "invite_url": "https://example.com/3", "app_name": "Other", "expiry_days": 1},
		{"email": 42}
	]`

	result := toolstest.Call(t, s, "send_bulk_invites", map[string]any{
		"invites":      invites,
		"app_name":     "Acme",
		"inviter_name": "Team Admin",
	})
	require.False(t, result.IsError, toolstest.Text(result))

	var br batch.BatchResult
	require.NoError(t, json.Unmarshal([]byte(toolstest.Text(result)), &br))
	assert.Equal(t, 4, br.Total)
	assert.Equal(t, 2, br.Successful)
	assert.Equal(t, 2, br.Failed)

	require.Len(t, br.Results, 4)
	assert.Equal(t, "one@example.com", br.Results[0].ID)
	assert.Equal(t, batch.StatusSuccess, br.Results[0].Status)
	assert.Equal(t, "bad", br.Results[1].ID)
	assert.Contains(t, br.Results[1].Error, "invalid email")
	assert.Equal(t, "three@example.com", br.Results[2].ID)
	assert.Equal(t, batch.StatusSuccess, br.Results[2].Status)
	assert.Equal(t, "invites[3]", br.Results[3].ID)
	assert.Contains(t, br.Results[3].Error, "invalid invite")

	// Invitations are sent concurrently, so request order is not fixed
	requests := api.Requests()
	require.Len(t, requests, 2)
	bodies := make(map[any]any, len(requests))
	for _, r := range requests {
		bodies[r.Body["email_subject"]] = r.Body["email_body"]
	}
	require.Contains(t, bodies, "Team Admin invited you to join Acme")
	require.Contains(t, bodies, "Team Admin invited you to join Other")
	assert.Contains(t, bodies["Team Admin invited you to join Other"], "expires in 1 day.")
}

func TestSendBulkInvites_InvalidList(t *testing.T) {
	api, s := setup(t, false)

	result := toolstest.Call(t, s, "send_bulk_invites", map[string]any{"invites": "[]"})
	assert.True(t, result.IsError)
	assert.Equal(t, "Error: invites cannot be empty", toolstest.Text(result))
	assert.Empty(t, api.Requests())
}
