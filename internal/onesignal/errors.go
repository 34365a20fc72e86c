package onesignal

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoOrgAPIKey is returned when an organization-scoped call has no
// organization API key available.
var ErrNoOrgAPIKey = errors.New("no organization API key configured")

// APIError is a non-2xx response from the OneSignal API.
type APIError struct {
	Method     string
	Path       string
	StatusCode int

	// Body is the response body exactly as received.
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("onesignal %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("onesignal %s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// IsAuthError reports whether the API rejected the credentials.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// NetworkError is a failure to complete the HTTP exchange.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("onesignal %s %s: network error: %v", e.Method, e.Path, e.Err)
}

// Unwrap implements the errors.Unwrap interface.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an APIError with status 401 or 403.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsAuthError()
}
