package onesignal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInvite() Invite {
	return Invite{
		Email:       "recipient@example.com",
		FirstName:   "John",
		InviteURL:   "https://example.com/invite/abc123",
		InviterName: "Jane Smith",
		AppName:     "Example App",
	}
}

func TestInvite_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Invite)
	}{
		{"bad email", func(i *Invite) { i.Email = "not-an-email" }},
		{"relative url", func(i *Invite) { i.InviteURL = "/invite/abc" }},
		{"missing inviter", func(i *Invite) { i.InviterName = " " }},
		{"missing app name", func(i *Invite) { i.AppName = "" }},
		{"negative expiry", func(i *Invite) { i.ExpiryDays = -1 }},
	}

	require.NoError(t, validInvite().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := validInvite()
			tt.mutate(&inv)
			assert.ErrorIs(t, inv.Validate(), ErrInvalidArgument)
		})
	}
}

func TestInvite_Render(t *testing.T) {
	inv := validInvite()
	inv.FirstName = "<b>John</b>"

	subject, body, err := inv.Render()
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith invited you to join Example App", subject)
	assert.Contains(t, body, "&lt;b&gt;John&lt;/b&gt;")
	assert.Contains(t, body, `href="https://example.com/invite/abc123"`)
	assert.Contains(t, body, "expires in 7 days")

	inv.ExpiryDays = 1
	_, body, err = inv.Render()
	require.NoError(t, err)
	assert.Contains(t, body, "expires in 1 day.")
}

func TestClient_SendInvite(t *testing.T) {
	api := &fakeAPI{response: `{"id":"e-1"}`}
	client, _ := newTestClient(t, api)

	result, err := client.SendInvite(context.Background(), "a", validInvite())
	require.NoError(t, err)
	assert.Equal(t, "e-1", result.ID)

	got := api.last(t)
	assert.Equal(t, "email", got.Body["target_channel"])
	assert.Equal(t, []any{"recipient@example.com"}, got.Body["include_email_tokens"])
	assert.Equal(t, "Jane Smith invited you to join Example App", got.Body["email_subject"])
	assert.Equal(t, "Example App", got.Body["email_from_name"])
	assert.Equal(t, "app-a", got.Body["app_id"])

	inv := validInvite()
	inv.Email = "bad"
	_, err = client.SendInvite(context.Background(), "a", inv)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, 1, api.count())
}
