package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/weirdbrains/onesignal-mcp/internal/instrumentation"
)

const initializeRequest = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`

func newTestHTTPServer(t *testing.T, cfg HTTPServerConfig) *httptest.Server {
	t.Helper()
	mcpSrv := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithToolCapabilities(true))
	cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(NewHTTPServer(mcpSrv, cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func postInitialize(t *testing.T, url, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+MCPEndpointPath, strings.NewReader(initializeRequest))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHTTPServer_BearerAuth(t *testing.T) {
	srv := newTestHTTPServer(t, HTTPServerConfig{AuthToken: "s3cret", RateLimit: -1})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong token", "nope", http.StatusUnauthorized},
		{"valid token", "s3cret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postInitialize(t, srv.URL, tt.token)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.NotEmpty(t, resp.Header.Get("WWW-Authenticate"))
			}
		})
	}
}

func TestHTTPServer_HealthIsUnauthenticated(t *testing.T) {
	sc := newTestServerContext(t)
	srv := newTestHTTPServer(t, HTTPServerConfig{AuthToken: "s3cret", Health: NewHealthChecker(sc)})

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestHTTPServer_RateLimit(t *testing.T) {
	srv := newTestHTTPServer(t, HTTPServerConfig{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, postInitialize(t, srv.URL, "").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, postInitialize(t, srv.URL, "").StatusCode)
}

func TestHTTPServer_RecordsRequests(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)

	srv := newTestHTTPServer(t, HTTPServerConfig{RateLimit: -1, Metrics: m})
	postInitialize(t, srv.URL, "")
	resp, err := http.Get(srv.URL + "/unknown")
	require.NoError(t, err)
	_ = resp.Body.Close()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	paths := map[string]bool{}
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if metric.Name != "http_requests_total" {
				continue
			}
			for _, dp := range metric.Data.(metricdata.Sum[int64]).DataPoints {
				path, _ := dp.Attributes.Value("path")
				paths[path.AsString()] = true
			}
		}
	}
	assert.True(t, paths[MCPEndpointPath])
	assert.True(t, paths["other"])
}

func TestHTTPServer_StartAndShutdown(t *testing.T) {
	mcpSrv := mcpserver.NewMCPServer("test", "1.0.0")
	s := NewHTTPServer(mcpSrv, HTTPServerConfig{Addr: "127.0.0.1:0", Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- s.StartWithReadySignal(ready) }()

	<-ready
	require.NoError(t, s.Shutdown(context.Background()))
	assert.True(t, IsServerClosed(<-done))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/mcp", routeLabel("/mcp"))
	assert.Equal(t, "/readyz", routeLabel("/readyz"))
	assert.Equal(t, "other", routeLabel("/mcp/extra"))
}
