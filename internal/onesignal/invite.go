package onesignal

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/mail"
	"net/url"
	"strings"
)

// DefaultInviteExpiryDays is how long an invitation link is advertised as valid.
const DefaultInviteExpiryDays = 7

// Invite is a single invitation email.
type Invite struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	InviteURL   string `json:"invite_url"`
	InviterName string `json:"inviter_name"`
	AppName     string `json:"app_name,omitempty"`
	ExpiryDays  int    `json:"expiry_days,omitempty"`
}

// Validate checks the fields needed to render the invitation.
func (i Invite) Validate() error {
	if _, err := mail.ParseAddress(i.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidArgument, i.Email)
	}
	u, err := url.Parse(i.InviteURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: invite_url must be an absolute URL", ErrInvalidArgument)
	}
	if strings.TrimSpace(i.InviterName) == "" {
		return fmt.Errorf("%w: inviter_name is required", ErrInvalidArgument)
	}
	if strings.TrimSpace(i.AppName) == "" {
		return fmt.Errorf("%w: app_name is required", ErrInvalidArgument)
	}
	if i.ExpiryDays < 0 {
		return fmt.Errorf("%w: expiry_days must not be negative", ErrInvalidArgument)
	}
	return nil
}

var inviteBody = template.Must(template.New("invite").Parse(`<html>
<body style="font-family: sans-serif; line-height: 1.5;">
<p>Hi {{if .FirstName}}{{.FirstName}}{{else}}there{{end}},</p>
<p>{{.InviterName}} has invited you to join <strong>{{.AppName}}</strong>.</p>
<p><a href="{{.InviteURL}}">Accept your invitation</a></p>
<p>This invitation expires in {{.ExpiryDays}} day{{if ne .ExpiryDays 1}}s{{end}}.</p>
<p>If you were not expecting this invitation, you can ignore this email.</p>
</body>
</html>`))

// Render returns the subject and HTML body of the invitation.
func (i Invite) Render() (subject, body string, err error) {
	if i.ExpiryDays == 0 {
		i.ExpiryDays = DefaultInviteExpiryDays
	}

	var buf bytes.Buffer
	if err := inviteBody.Execute(&buf, i); err != nil {
		return "", "", fmt.Errorf("failed to render invitation: %w", err)
	}
	return fmt.Sprintf("%s invited you to join %s", i.InviterName, i.AppName), buf.String(), nil
}

// SendInvite renders and sends an invitation email.
func (c *Client) SendInvite(ctx context.Context, appKey string, invite Invite) (*CreateNotificationResult, error) {
	if err := invite.Validate(); err != nil {
		return nil, err
	}
	subject, body, err := invite.Render()
	if err != nil {
		return nil, err
	}
	return c.SendEmail(ctx, appKey, EmailRequest{
		To:       []string{invite.Email},
		Subject:  subject,
		Body:     body,
		FromName: invite.AppName,
	})
}
