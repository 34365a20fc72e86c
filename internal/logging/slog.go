package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Attribute keys.
const (
	KeyTool      = "tool"
	KeyApp       = "app"
	KeyOperation = "operation"
	KeyStatus    = "status"
	KeyError     = "error"
	KeyMethod    = "method"
	KeyEndpoint  = "endpoint"
)

// Status values, duplicated from instrumentation to keep this package leaf-level.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Options configures New.
type Options struct {
	// Level is the minimum level that is logged.
	Level slog.Level

	// Format is "text" or "json".
	Format string

	// Writer defaults to os.Stderr.
	Writer io.Writer
}

// New builds a logger for opts.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// WithTool returns a logger with the tool attribute set.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithApp returns a logger with the app key attribute set.
func WithApp(logger *slog.Logger, appKey string) *slog.Logger {
	return logger.With(App(appKey))
}

// Tool returns an attribute for the tool name.
func Tool(tool string) slog.Attr {
	return slog.String(KeyTool, tool)
}

// App returns an attribute for an app key. An empty key is reported as
// "<current>" since the call then targets the current or default app.
func App(appKey string) slog.Attr {
	if appKey == "" {
		appKey = "<current>"
	}
	return slog.String(KeyApp, appKey)
}

// Operation returns an attribute for an operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Status returns an attribute for a status value.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Endpoint returns attributes for an outbound API call.
func Endpoint(method, endpoint string) slog.Attr {
	return slog.Group("request", slog.String(KeyMethod, method), slog.String(KeyEndpoint, endpoint))
}

// Err returns an attribute for err. A nil error yields an empty group,
// which slog omits.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizeSecret masks an API key so that only its length is visible.
func SanitizeSecret(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	return fmt.Sprintf("[secret:%d chars]", len(secret))
}
