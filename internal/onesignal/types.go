package onesignal

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// Timestamp accepts the Unix seconds, RFC 3339 strings and nulls that
// OneSignal uses interchangeably for time fields.
type Timestamp struct {
	time.Time
	raw string
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Timestamp{}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Timestamp{raw: s}
		if parsed, err := time.Parse(time.RFC3339, s); err == nil {
			t.Time = parsed
		} else if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
			t.Time = time.Unix(secs, 0).UTC()
		}
		return nil
	}

	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return err
	}
	*t = Timestamp{Time: time.Unix(int64(secs), 0).UTC()}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() && t.raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// String formats the timestamp as RFC 3339, or returns the raw value when it
// could not be parsed.
func (t Timestamp) String() string {
	switch {
	case !t.IsZero():
		return t.UTC().Format(time.RFC3339)
	case t.raw != "":
		return t.raw
	default:
		return "N/A"
	}
}

// Notification is a message as returned by the notifications endpoints.
type Notification struct {
	ID          string            `json:"id"`
	AppID       string            `json:"app_id,omitempty"`
	Headings    map[string]string `json:"headings,omitempty"`
	Contents    map[string]string `json:"contents,omitempty"`
	Segments    []string          `json:"included_segments,omitempty"`
	URL         string            `json:"url,omitempty"`
	Data        map[string]any    `json:"data,omitempty"`
	QueuedAt    Timestamp         `json:"queued_at"`
	SendAfter   Timestamp         `json:"send_after"`
	CompletedAt Timestamp         `json:"completed_at"`
	Successful  int               `json:"successful"`
	Failed      int               `json:"failed"`
	Errored     int               `json:"errored"`
	Converted   int               `json:"converted"`
	Remaining   int               `json:"remaining"`
	Canceled    bool              `json:"canceled"`

	PlatformDeliveryStats json.RawMessage `json:"platform_delivery_stats,omitempty"`
}

// Heading returns the English heading, if any.
func (n Notification) Heading() string {
	return n.Headings["en"]
}

// Content returns the English content, if any.
func (n Notification) Content() string {
	return n.Contents["en"]
}

// NotificationList is a page of notifications.
type NotificationList struct {
	TotalCount    int            `json:"total_count"`
	Offset        int            `json:"offset"`
	Limit         int            `json:"limit"`
	Notifications []Notification `json:"notifications"`
}

// NotificationRequest describes a notification to send.
type NotificationRequest struct {
	Title   string
	Message string

	// Segment defaults to DefaultSegment.
	Segment string

	// TargetChannel is push, email or sms. Defaults to push.
	TargetChannel string

	Data map[string]any
}

// EmailRequest describes an email sent through the email channel.
type EmailRequest struct {
	To       []string
	Subject  string
	Body     string
	FromName string
}

// CreateNotificationResult is the response to a notification create.
type CreateNotificationResult struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id,omitempty"`
	Recipients int             `json:"recipients,omitempty"`
	Errors     json.RawMessage `json:"errors,omitempty"`
}

// HasErrors reports whether OneSignal reported per-recipient errors.
func (r CreateNotificationResult) HasErrors() bool {
	e := bytes.TrimSpace(r.Errors)
	return len(e) > 0 && !bytes.Equal(e, []byte("null")) && !bytes.Equal(e, []byte("[]")) && !bytes.Equal(e, []byte("{}"))
}

// Device is a subscribed player.
type Device struct {
	ID                string         `json:"id"`
	Identifier        string         `json:"identifier,omitempty"`
	ExternalUserID    string         `json:"external_user_id,omitempty"`
	DeviceType        int            `json:"device_type"`
	DeviceModel       string         `json:"device_model,omitempty"`
	DeviceOS          string         `json:"device_os,omitempty"`
	Language          string         `json:"language,omitempty"`
	Timezone          int            `json:"timezone"`
	Country           string         `json:"country,omitempty"`
	SessionCount      int            `json:"session_count"`
	NotificationTypes int            `json:"notification_types"`
	Tags              map[string]any `json:"tags,omitempty"`
	LastActive        Timestamp      `json:"last_active"`
	CreatedAt         Timestamp      `json:"created_at"`
	InvalidIdentifier bool           `json:"invalid_identifier"`
}

// DeviceTypeName maps OneSignal device type codes to names.
func (d Device) DeviceTypeName() string {
	if name, ok := deviceTypes[d.DeviceType]; ok {
		return name
	}
	return "Unknown (" + strconv.Itoa(d.DeviceType) + ")"
}

var deviceTypes = map[int]string{
	0:  "iOS",
	1:  "Android",
	2:  "Amazon",
	3:  "Windows Phone",
	4:  "Chrome App",
	5:  "Chrome Web Push",
	6:  "Windows",
	7:  "Safari",
	8:  "Firefox",
	9:  "macOS",
	10: "Alexa",
	11: "Email",
	13: "Huawei",
	14: "SMS",
}

// DeviceList is a page of devices.
type DeviceList struct {
	TotalCount int      `json:"total_count"`
	Offset     int      `json:"offset"`
	Limit      int      `json:"limit"`
	Players    []Device `json:"players"`
}

// Segment is an audience segment.
type Segment struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	ReadOnly  bool             `json:"read_only"`
	IsActive  bool             `json:"is_active"`
	Filters   []map[string]any `json:"filters,omitempty"`
	CreatedAt Timestamp        `json:"created_at"`
	UpdatedAt Timestamp        `json:"updated_at"`
}

// CreateSegmentResult is the response to a segment create.
type CreateSegmentResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}

// Template is a saved notification template.
type Template struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Headings  map[string]string `json:"headings,omitempty"`
	Contents  map[string]string `json:"contents,omitempty"`
	CreatedAt Timestamp         `json:"created_at"`
	UpdatedAt Timestamp         `json:"updated_at"`
}

// TemplateList is the template index of an app.
type TemplateList struct {
	TotalCount int        `json:"total_count"`
	Templates  []Template `json:"templates"`
}

// App is a OneSignal application as seen by the organization endpoints.
type App struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Players            int       `json:"players"`
	MessageablePlayers int       `json:"messageable_players"`
	SiteName           string    `json:"site_name,omitempty"`
	GCMKey             string    `json:"gcm_key,omitempty"`
	APNSEnv            string    `json:"apns_env,omitempty"`
	ChromeWebKey       string    `json:"chrome_web_key,omitempty"`
	SafariSiteOrigin   string    `json:"safari_site_origin,omitempty"`
	CreatedAt          Timestamp `json:"created_at"`
	UpdatedAt          Timestamp `json:"updated_at"`

	EmailMarketing json.RawMessage `json:"email_marketing,omitempty"`
	SMSMarketing   json.RawMessage `json:"sms_marketing,omitempty"`
}

// Channel reports which delivery channels have credentials configured.
func (a App) Channel(name string) bool {
	switch name {
	case "gcm":
		return a.GCMKey != ""
	case "apns":
		return a.APNSEnv != ""
	case "chrome":
		return a.ChromeWebKey != ""
	case "safari":
		return a.SafariSiteOrigin != ""
	case "email":
		return truthy(a.EmailMarketing)
	case "sms":
		return truthy(a.SMSMarketing)
	}
	return false
}

func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	}
	return false
}

// AppParams are the mutable fields of an App.
type AppParams struct {
	Name     string
	SiteName string
}

// APIKey is an app REST API key as listed by the organization endpoints.
// The token itself is only returned once, on create.
type APIKey struct {
	ID              string    `json:"id,omitempty"`
	TokenID         string    `json:"token_id,omitempty"`
	Name            string    `json:"name"`
	IPAllowlistMode string    `json:"ip_allowlist_mode,omitempty"`
	CreatedAt       Timestamp `json:"created_at"`
	UpdatedAt       Timestamp `json:"updated_at"`
}

// KeyID returns whichever identifier the API populated.
func (k APIKey) KeyID() string {
	if k.TokenID != "" {
		return k.TokenID
	}
	return k.ID
}

// APIKeyList is the key index of an app.
type APIKeyList struct {
	Tokens []APIKey `json:"tokens"`
}

// CreatedAPIKey is the response to an API key create.
type CreatedAPIKey struct {
	ID             string `json:"id,omitempty"`
	TokenID        string `json:"token_id,omitempty"`
	Token          string `json:"token,omitempty"`
	FormattedToken string `json:"formatted_token,omitempty"`
}

// KeyID returns whichever identifier the API populated.
func (k CreatedAPIKey) KeyID() string {
	if k.TokenID != "" {
		return k.TokenID
	}
	return k.ID
}

// Secret returns the token value.
func (k CreatedAPIKey) Secret() string {
	if k.FormattedToken != "" {
		return k.FormattedToken
	}
	return k.Token
}

// SuccessResult is the generic {"success": bool} response.
type SuccessResult struct {
	Success bool `json:"success"`
}
