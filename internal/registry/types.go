package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned when adding an app whose key already exists.
	ErrDuplicateKey = errors.New("app key already exists")

	// ErrNotFound is returned when an operation names an app key that does not exist.
	ErrNotFound = errors.New("app key not found")

	// ErrNoAppConfigured is returned when no app configuration can be resolved
	// for a call.
	ErrNoAppConfigured = errors.New("no app configured")

	// ErrInvalidConfig is returned when an app configuration or update is malformed.
	ErrInvalidConfig = errors.New("invalid app configuration")
)

// AppConfig is a named bundle of OneSignal credentials for one application.
type AppConfig struct {
	// Key uniquely identifies the configuration inside the registry.
	Key string

	// AppID is the OneSignal application ID.
	AppID string

	// APIKey is the app's REST API key.
	APIKey string

	// OrgAPIKey is the optional organization API key used for org-scoped endpoints.
	OrgAPIKey string

	// Name is a display name. Defaults to Key.
	Name string
}

// DisplayName returns Name, or Key when no name was set.
func (c AppConfig) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Key
}

// String never includes credentials.
func (c AppConfig) String() string {
	return fmt.Sprintf("%s (%s)", c.DisplayName(), c.AppID)
}

// View returns the redacted projection of the configuration.
func (c AppConfig) View(current bool) AppView {
	return AppView{
		Key:          c.Key,
		AppID:        c.AppID,
		Name:         c.DisplayName(),
		HasOrgAPIKey: c.OrgAPIKey != "",
		Current:      current,
	}
}

// AppView is the client-facing view of an AppConfig with secrets removed.
type AppView struct {
	Key          string `json:"key"`
	AppID        string `json:"app_id"`
	Name         string `json:"name"`
	HasOrgAPIKey bool   `json:"has_org_api_key"`
	Current      bool   `json:"current"`
}

// AppUpdate is a partial update. Nil fields are left unchanged.
type AppUpdate struct {
	AppID     *string
	APIKey    *string
	OrgAPIKey *string
	Name      *string
}

// IsEmpty reports whether the update changes nothing.
func (u AppUpdate) IsEmpty() bool {
	return u.AppID == nil && u.APIKey == nil && u.OrgAPIKey == nil && u.Name == nil
}

// KeyError records a failed registry operation and the app key involved.
type KeyError struct {
	// Op is the registry operation that failed (add, update, remove, get, switch)
	Op string

	// Key is the app key the operation was called with
	Key string

	// Err is the underlying error, usually one of the package sentinels
	Err error
}

// Error implements the error interface
func (e *KeyError) Error() string {
	return fmt.Sprintf("registry %s %q: %v", e.Op, e.Key, e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *KeyError) Unwrap() error {
	return e.Err
}
