// Package toolstest provides a fake OneSignal API and server wiring for
// testing MCP tool packages.
package toolstest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"

	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/registry"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
)

// Request is a request captured by API.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   map[string]any
}

// Authorization returns the Authorization header of the request.
func (r Request) Authorization() string {
	return r.Header.Get("Authorization")
}

type route struct {
	status int
	body   []byte
}

// API is an httptest server standing in for the OneSignal REST API. Routes
// are keyed by method and path relative to the API root; unknown routes
// answer 404.
type API struct {
	srv *httptest.Server

	mu       sync.Mutex
	routes   map[string]route
	requests []Request
}

// NewAPI starts a fake API that is closed when the test ends.
func NewAPI(t *testing.T) *API {
	t.Helper()
	a := &API{routes: make(map[string]route)}
	a.srv = httptest.NewServer(http.HandlerFunc(a.serve))
	t.Cleanup(a.srv.Close)
	return a
}

// URL returns the API root.
func (a *API) URL() string {
	return a.srv.URL
}

// Handle makes method and path answer with status and body. A string or
// []byte body is sent as is, anything else is encoded as JSON.
func (a *API) Handle(method, path string, status int, body any) {
	var raw []byte
	switch v := body.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		raw, _ = json.Marshal(v)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.routes[method+" "+strings.Trim(path, "/")] = route{status: status, body: raw}
}

// Requests returns every request received so far.
func (a *API) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.requests...)
}

// Last returns the most recent request, or the zero Request.
func (a *API) Last() Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.requests) == 0 {
		return Request{}
	}
	return a.requests[len(a.requests)-1]
}

func (a *API) serve(w http.ResponseWriter, r *http.Request) {
	req := Request{
		Method: r.Method,
		Path:   strings.Trim(r.URL.EscapedPath(), "/"),
		Query:  r.URL.Query(),
		Header: r.Header.Clone(),
	}
	if data, _ := io.ReadAll(r.Body); len(data) > 0 {
		_ = json.Unmarshal(data, &req.Body)
	}

	a.mu.Lock()
	a.requests = append(a.requests, req)
	rt, ok := a.routes[req.Method+" "+req.Path]
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":["Not Found"]}`))
		return
	}
	w.WriteHeader(rt.status)
	_, _ = w.Write(rt.body)
}

// Config describes the credentials a test server starts with.
type Config struct {
	ReadOnly bool

	// Apps are added to the registry in order.
	Apps []registry.AppConfig

	// Current is switched to after the apps are added.
	Current string

	DefaultApp *registry.AppConfig
	OrgAPIKey  string
}

// NewServerContext returns a ServerContext whose client talks to api.
func NewServerContext(t *testing.T, api *API, cfg Config) *server.ServerContext {
	t.Helper()

	reg := registry.New()
	for _, app := range cfg.Apps {
		require.NoError(t, reg.Add(app))
	}
	if cfg.Current != "" {
		require.NoError(t, reg.Switch(cfg.Current))
	}

	var opts []onesignal.DispatcherOption
	if cfg.DefaultApp != nil {
		opts = append(opts, onesignal.WithDefaultApp(*cfg.DefaultApp))
	}
	if cfg.OrgAPIKey != "" {
		opts = append(opts, onesignal.WithOrgAPIKey(cfg.OrgAPIKey))
	}

	client := onesignal.NewClient(onesignal.NewDispatcher(reg, opts...), onesignal.ClientConfig{
		BaseURL:    api.URL(),
		HTTPClient: http.DefaultClient,
	})
	sc, err := server.NewServerContext(context.Background(), client, server.Options{
		Version:  "test",
		ReadOnly: cfg.ReadOnly,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

// NewMCPServer returns an MCP server with tools registered by register.
func NewMCPServer(t *testing.T, sc *server.ServerContext, register func(*mcpserver.MCPServer, *server.ServerContext) error) *mcpserver.MCPServer {
	t.Helper()
	s := mcpserver.NewMCPServer("test", "test", mcpserver.WithToolCapabilities(true))
	require.NoError(t, register(s, sc))
	return s
}

// Call invokes the tool named name with args and fails the test if the
// handler returns a Go error.
func Call(t *testing.T, s *mcpserver.MCPServer, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool, ok := s.ListTools()[name]
	require.True(t, ok, "tool %s is not registered", name)

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

// Text returns the concatenated text content of result.
func Text(result *mcp.CallToolResult) string {
	var sb strings.Builder
	for _, c := range result.Content {
		if tc, ok := mcp.AsTextContent(c); ok {
			sb.WriteString(tc.Text)
		}
	}
	return sb.String()
}

// ToolNames returns the names of every tool registered on s.
func ToolNames(s *mcpserver.MCPServer) []string {
	tools := s.ListTools()
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	return names
}
