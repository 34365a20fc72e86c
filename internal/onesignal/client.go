package onesignal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weirdbrains/onesignal-mcp/internal/instrumentation"
	"github.com/weirdbrains/onesignal-mcp/internal/logging"
	"github.com/weirdbrains/onesignal-mcp/internal/registry"
)

const (
	// DefaultBaseURL is the OneSignal REST API root.
	DefaultBaseURL = "https://api.onesignal.com/api/v1"

	// DefaultTimeout bounds a single API request.
	DefaultTimeout = 30 * time.Second

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 10 << 20
)

// orgEndpoints are path roots that need the organization API key.
var orgEndpoints = []string{"apps", "players/csv_export", "notifications/csv_export"}

// Scope selects which credential a request is signed with.
type Scope int

const (
	// ScopeAuto picks ScopeOrg for organization endpoints and ScopeApp otherwise.
	ScopeAuto Scope = iota
	// ScopeApp signs with the resolved app's REST API key.
	ScopeApp
	// ScopeOrg signs with the organization API key.
	ScopeOrg
)

// Request is a single OneSignal API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any

	// AppKey selects a registered app. Empty means the current or default app.
	AppKey string
	Scope  Scope

	// app pins an already resolved app so that a switch between resolving
	// and sending cannot change the credentials.
	app *registry.AppConfig
}

// Response is a successful OneSignal API response.
type Response struct {
	StatusCode int
	Body       []byte

	// App is the app the request was resolved to. Zero for org-scoped
	// requests.
	App registry.AppConfig
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// Timeout defaults to DefaultTimeout. Ignored when HTTPClient is set.
	Timeout time.Duration

	// HTTPClient overrides the instrumented default client.
	HTTPClient *http.Client

	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// Client performs OneSignal API calls on behalf of registered apps.
type Client struct {
	baseURL    string
	httpClient *http.Client
	dispatcher *Dispatcher
	metrics    *instrumentation.Metrics
	logger     *slog.Logger
}

// NewClient returns a client that resolves credentials through d.
func NewClient(d *Dispatcher, cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		dispatcher: d,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// SetMetrics sets the metrics recorder. Call before serving requests.
func (c *Client) SetMetrics(m *instrumentation.Metrics) {
	c.metrics = m
}

// Dispatcher returns the credential dispatcher.
func (c *Client) Dispatcher() *Dispatcher {
	return c.dispatcher
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsOrgEndpoint reports whether path is organization scoped.
func IsOrgEndpoint(path string) bool {
	path = strings.Trim(path, "/")
	for _, root := range orgEndpoints {
		if path == root || strings.HasPrefix(path, root+"/") {
			return true
		}
	}
	return false
}

func isAppsPath(path string) bool {
	path = strings.Trim(path, "/")
	return path == "apps" || strings.HasPrefix(path, "apps/")
}

// Do signs and sends req. Non-2xx responses return *APIError and transport
// failures return *NetworkError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	path := strings.Trim(req.Path, "/")

	scope := req.Scope
	if scope == ScopeAuto {
		scope = ScopeApp
		if IsOrgEndpoint(path) {
			scope = ScopeOrg
		}
	}

	query := url.Values{}
	for k, v := range req.Query {
		query[k] = append([]string(nil), v...)
	}
	var body map[string]any
	if req.Body != nil {
		body = make(map[string]any, len(req.Body)+1)
		for k, v := range req.Body {
			body[k] = v
		}
	}

	var (
		apiKey string
		app    registry.AppConfig
	)
	switch scope {
	case ScopeOrg:
		var (
			key string
			err error
		)
		if req.app != nil {
			key, err = c.dispatcher.OrgKeyFor(*req.app)
		} else {
			key, err = c.dispatcher.ResolveOrgKey(req.AppKey)
		}
		if err != nil {
			return nil, err
		}
		apiKey = key
	default:
		cfg, err := c.resolve(req)
		if err != nil {
			return nil, err
		}
		app = cfg
		apiKey = cfg.APIKey
		if !isAppsPath(path) {
			body = injectAppID(method, query, body, cfg.AppID)
		}
	}

	endpoint := instrumentation.NormalizeEndpoint(path)
	ctx, span := instrumentation.StartAPISpan(ctx, method, endpoint, scope == ScopeOrg)
	defer span.End()

	httpReq, err := c.newRequest(ctx, method, path, query, body, apiKey)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return nil, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordAPIRequest(ctx, method, endpoint, 0, time.Since(start))
		netErr := &NetworkError{Method: method, Path: path, Err: err}
		instrumentation.SetSpanError(span, netErr)
		c.logger.WarnContext(ctx, "OneSignal request failed", logging.Endpoint(method, endpoint), logging.Err(err))
		return nil, netErr
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.RecordAPIRequest(ctx, method, endpoint, resp.StatusCode, time.Since(start))
	if err != nil {
		netErr := &NetworkError{Method: method, Path: path, Err: fmt.Errorf("failed to read response: %w", err)}
		instrumentation.SetSpanError(span, netErr)
		return nil, netErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: string(respBody)}
		instrumentation.SetSpanError(span, apiErr)
		c.logger.DebugContext(ctx, "OneSignal API error",
			logging.Endpoint(method, endpoint), slog.Int("status_code", resp.StatusCode))
		return nil, apiErr
	}

	instrumentation.SetSpanSuccess(span)
	c.logger.DebugContext(ctx, "OneSignal request completed",
		logging.Endpoint(method, endpoint), slog.Int("status_code", resp.StatusCode))

	return &Response{StatusCode: resp.StatusCode, Body: respBody, App: app}, nil
}

func (c *Client) resolve(req Request) (registry.AppConfig, error) {
	if req.app != nil {
		return *req.app, nil
	}
	return c.dispatcher.Resolve(req.AppKey)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body map[string]any, apiKey string) (*http.Request, error) {
	target := c.baseURL + "/" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Basic "+apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	return httpReq, nil
}

// injectAppID adds app_id to the query for GET/DELETE and to the body for
// methods that carry one, unless the caller already set it.
func injectAppID(method string, query url.Values, body map[string]any, appID string) map[string]any {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		if body == nil {
			body = map[string]any{}
		}
		if _, ok := body["app_id"]; !ok {
			body["app_id"] = appID
		}
	default:
		if query.Get("app_id") == "" {
			query.Set("app_id", appID)
		}
	}
	return body
}
