package onesignal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultSegment is the audience used when a notification names none.
	DefaultSegment = "Subscribed Users"

	// DefaultPageSize is the page size used when a list call passes none.
	DefaultPageSize = 20

	// MaxNotificationPageSize is the largest page the notifications endpoint serves.
	MaxNotificationPageSize = 50

	// MaxDevicePageSize is the largest page the players endpoint serves.
	MaxDevicePageSize = 200
)

// Target channels accepted by SendNotification.
const (
	ChannelPush  = "push"
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// ErrInvalidArgument is returned for calls rejected before reaching the API.
var ErrInvalidArgument = errors.New("invalid argument")

func pageQuery(limit, offset, maxLimit int) url.Values {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return url.Values{
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
}

func requireID(kind, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: %s is required", ErrInvalidArgument, kind)
	}
	return url.PathEscape(id), nil
}

// SendNotification creates a notification for a segment of the app's audience.
func (c *Client) SendNotification(ctx context.Context, appKey string, n NotificationRequest) (*CreateNotificationResult, error) {
	if strings.TrimSpace(n.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidArgument)
	}

	segment := n.Segment
	if segment == "" {
		segment = DefaultSegment
	}
	channel := n.TargetChannel
	if channel == "" {
		channel = ChannelPush
	}
	switch channel {
	case ChannelPush, ChannelEmail, ChannelSMS:
	default:
		return nil, fmt.Errorf("%w: target channel must be push, email or sms, got %q", ErrInvalidArgument, channel)
	}

	body := map[string]any{
		"target_channel":    channel,
		"included_segments": []string{segment},
		"contents":          map[string]string{"en": n.Message},
		"headings":          map[string]string{"en": n.Title},
	}
	if len(n.Data) > 0 {
		body["data"] = n.Data
	}

	var result CreateNotificationResult
	if err := c.call(ctx, Request{Method: http.MethodPost, Path: "notifications", Body: body, AppKey: appKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendEmail sends an email to explicit addresses through the email channel.
func (c *Client) SendEmail(ctx context.Context, appKey string, e EmailRequest) (*CreateNotificationResult, error) {
	if len(e.To) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrInvalidArgument)
	}
	if e.Subject == "" || e.Body == "" {
		return nil, fmt.Errorf("%w: email subject and body are required", ErrInvalidArgument)
	}

	body := map[string]any{
		"target_channel":       ChannelEmail,
		"include_email_tokens": e.To,
		"email_subject":        e.Subject,
		"email_body":           e.Body,
	}
	if e.FromName != "" {
		body["email_from_name"] = e.FromName
	}

	var result CreateNotificationResult
	if err := c.call(ctx, Request{Method: http.MethodPost, Path: "notifications", Body: body, AppKey: appKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListNotifications returns a page of sent notifications. limit is capped at
// MaxNotificationPageSize.
func (c *Client) ListNotifications(ctx context.Context, appKey string, limit, offset int) (*NotificationList, error) {
	var result NotificationList
	req := Request{Method: http.MethodGet, Path: "notifications", Query: pageQuery(limit, offset, MaxNotificationPageSize), AppKey: appKey}
	if err := c.call(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetNotification returns a single notification.
func (c *Client) GetNotification(ctx context.Context, appKey, id string) (*Notification, error) {
	id, err := requireID("message id", id)
	if err != nil {
		return nil, err
	}
	var result Notification
	if err := c.call(ctx, Request{Method: http.MethodGet, Path: "notifications/" + id, AppKey: appKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CancelNotification cancels a scheduled notification.
func (c *Client) CancelNotification(ctx context.Context, appKey, id string) (*SuccessResult, error) {
	id, err := requireID("message id", id)
	if err != nil {
		return nil, err
	}
	var result SuccessResult
	if err := c.call(ctx, Request{Method: http.MethodDelete, Path: "notifications/" + id, AppKey: appKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListDevices returns a page of devices. limit is capped at MaxDevicePageSize.
func (c *Client) ListDevices(ctx context.Context, appKey string, limit, offset int) (*DeviceList, error) {
	var result DeviceList
	req := Request{Method: http.MethodGet, Path: "players", Query: pageQuery(limit, offset, MaxDevicePageSize), AppKey: appKey}
	if err := c.call(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDevice returns a single device.
func (c *Client) GetDevice(ctx context.Context, appKey, id string) (*Device, error) {
	id, err := requireID("device id", id)
	if err != nil {
		return nil, err
	}
	var result Device
	if err := c.call(ctx, Request{Method: http.MethodGet, Path: "players/" + id, AppKey: appKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListSegments returns the app's segments. Both the bare array and the
// {"segments": [...]} envelope are accepted.
func (c *Client) ListSegments(ctx context.Context, appKey string) ([]Segment, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "segments", AppKey: appKey})
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(resp.Body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var segments []Segment
		if err := resp.Decode(&segments); err != nil {
			return nil, err
		}
		return segments, nil
	}

	var envelope struct {
		Segments []Segment `json:"segments"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.Segments, nil
}

// CreateSegment creates a segment from filters.
func (c *Client) CreateSegment(ctx context.Context, appKey, name string, filters []map[string]any) (*CreateSegmentResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: segment name is required", ErrInvalidArgument)
	}
	app, err := c.dispatcher.Resolve(appKey)
	if err != nil {
		return nil, err
	}
	if filters == nil {
		filters = []map[string]any{}
	}

	var result CreateSegmentResult
	req := Request{
		Method: http.MethodPost,
		Path:   "apps/" + url.PathEscape(app.AppID) + "/segments",
		Body:   map[string]any{"name": name, "filters": filters},
		Scope:  ScopeApp, // segment endpoints use the app REST key despite the apps/ prefix
		app:    &app,
	}
	if err := c.call(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteSegment deletes a segment.
func (c *Client) DeleteSegment(ctx context.Context, appKey, id string) (*SuccessResult, error) {
	id, err := requireID("segment id", id)
	if err != nil {
		return nil, err
	}
	app, err := c.dispatcher.Resolve(appKey)
	if err != nil {
		return nil, err
	}

	var result SuccessResult
	req := Request{
		Method: http.MethodDelete,
		Path:   "apps/" + url.PathEscape(app.AppID) + "/segments/" + id,
		Scope:  ScopeApp, // segment endpoints use the app REST key despite the apps/ prefix
		app:    &app,
	}
	if err := c.call(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListTemplates returns the app's templates.
func (c *Client) ListTemplates(ctx context.Context, appKey string) (*TemplateList, error) {
	var result TemplateList
	if err := c.call(ctx, Request{Method: http.MethodGet, Path: "templates", AppKey: appKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetTemplate returns a single template.
func (c *Client) GetTemplate(ctx context.Context, appKey, id string) (*Template, error) {
	id, err := requireID("template id", id)
	if err != nil {
		return nil, err
	}
	var result Template
	if err := c.call(ctx, Request{Method: http.MethodGet, Path: "templates/" + id, AppKey: appKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateTemplate creates a push template.
func (c *Client) CreateTemplate(ctx context.Context, appKey, name, title, message string) (*Template, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: template name is required", ErrInvalidArgument)
	}
	body := map[string]any{
		"name":     name,
		"headings": map[string]string{"en": title},
		"contents": map[string]string{"en": message},
	}

	var result Template
	if err := c.call(ctx, Request{Method: http.MethodPost, Path: "templates", Body: body, AppKey: appKey}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetApp returns the organization view of the resolved app.
func (c *Client) GetApp(ctx context.Context, appKey string) (*App, error) {
	app, err := c.dispatcher.Resolve(appKey)
	if err != nil {
		return nil, err
	}

	var result App
	req := Request{Method: http.MethodGet, Path: "apps/" + url.PathEscape(app.AppID), Scope: ScopeOrg, app: &app}
	if err := c.call(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListApps returns every app in the organization.
func (c *Client) ListApps(ctx context.Context, appKey string) ([]App, error) {
	var result []App
	if err := c.call(ctx, Request{Method: http.MethodGet, Path: "apps", AppKey: appKey, Scope: ScopeOrg}, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateApp creates an app in the organization.
func (c *Client) CreateApp(ctx context.Context, appKey string, params AppParams) (*App, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("%w: app name is required", ErrInvalidArgument)
	}
	body := map[string]any{"name": params.Name}
	if params.SiteName != "" {
		body["site_name"] = params.SiteName
	}

	var result App
	if err := c.call(ctx, Request{Method: http.MethodPost, Path: "apps", Body: body, AppKey: appKey, Scope: ScopeOrg}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateApp renames an organization app. At least one field must be set.
func (c *Client) UpdateApp(ctx context.Context, appKey, appID string, params AppParams) (*App, error) {
	appID, err := requireID("app id", appID)
	if err != nil {
		return nil, err
	}
	body := map[string]any{}
	if params.Name != "" {
		body["name"] = params.Name
	}
	if params.SiteName != "" {
		body["site_name"] = params.SiteName
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: specify at least one of name or site_name", ErrInvalidArgument)
	}

	var result App
	if err := c.call(ctx, Request{Method: http.MethodPut, Path: "apps/" + appID, Body: body, AppKey: appKey, Scope: ScopeOrg}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListAPIKeys returns the REST API keys of an organization app.
func (c *Client) ListAPIKeys(ctx context.Context, appKey, appID string) (*APIKeyList, error) {
	appID, err := requireID("app id", appID)
	if err != nil {
		return nil, err
	}
	var result APIKeyList
	if err := c.call(ctx, Request{Method: http.MethodGet, Path: "apps/" + appID + "/auth/tokens", AppKey: appKey, Scope: ScopeOrg}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateAPIKey creates a REST API key for an organization app. The token is
// only ever returned here.
func (c *Client) CreateAPIKey(ctx context.Context, appKey, appID, name string) (*CreatedAPIKey, error) {
	appID, err := requireID("app id", appID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: key name is required", ErrInvalidArgument)
	}

	var result CreatedAPIKey
	req := Request{Method: http.MethodPost, Path: "apps/" + appID + "/auth/tokens", Body: map[string]any{"name": name}, AppKey: appKey, Scope: ScopeOrg}
	if err := c.call(ctx, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) call(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
