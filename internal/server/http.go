package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weirdbrains/onesignal-mcp/internal/instrumentation"
	"github.com/weirdbrains/onesignal-mcp/internal/logging"
)

const (
	// MCPEndpointPath is where the streamable HTTP transport is served.
	MCPEndpointPath = "/mcp"

	// DefaultHTTPWriteTimeout leaves room for a OneSignal call at its default timeout.
	DefaultHTTPWriteTimeout = 60 * time.Second
)

// HTTPServerConfig configures the streamable HTTP transport.
type HTTPServerConfig struct {
	Addr string

	// AuthToken, when set, is required as a bearer token on the MCP endpoint.
	AuthToken string

	// RateLimit and RateBurst bound requests per client IP. Zero uses the
	// defaults; a negative RateLimit disables limiting.
	RateLimit float64
	RateBurst int

	// DisableStreaming makes the MCP endpoint answer with plain JSON instead
	// of an SSE stream.
	DisableStreaming bool

	// WriteTimeout defaults to DefaultHTTPWriteTimeout.
	WriteTimeout time.Duration

	Health  *HealthChecker
	Metrics *instrumentation.Metrics
	Logger  *slog.Logger
}

// HTTPServer serves MCP over streamable HTTP together with health probes.
type HTTPServer struct {
	mcpServer  *mcpserver.MCPServer
	config     HTTPServerConfig
	limiter    *ipRateLimiter
	logger     *slog.Logger
	mu         sync.Mutex
	httpServer *http.Server
}

// NewHTTPServer creates a streamable HTTP server for mcpServer
func NewHTTPServer(mcpServer *mcpserver.MCPServer, config HTTPServerConfig) *HTTPServer {
	if config.RateLimit == 0 {
		config.RateLimit = DefaultRateLimit
	}
	if config.RateBurst <= 0 {
		config.RateBurst = DefaultRateBurst
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultHTTPWriteTimeout
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &HTTPServer{
		mcpServer: mcpServer,
		config:    config,
		logger:    logger,
	}
	if config.RateLimit > 0 {
		s.limiter = newIPRateLimiter(config.RateLimit, config.RateBurst)
	}
	return s
}

// Handler builds the full handler chain
func (s *HTTPServer) Handler() http.Handler {
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(MCPEndpointPath),
		mcpserver.WithDisableStreaming(s.config.DisableStreaming),
		mcpserver.WithLogger(logging.NewSlogAdapter(s.logger)),
	)

	var mcpHandler http.Handler = streamable
	if s.config.AuthToken != "" {
		mcpHandler = bearerAuth(s.config.AuthToken, mcpHandler)
	}
	if s.limiter != nil {
		mcpHandler = s.limiter.Middleware(mcpHandler)
	}

	mux := http.NewServeMux()
	mux.Handle(MCPEndpointPath, mcpHandler)
	if s.config.Health != nil {
		s.config.Health.RegisterHealthEndpoints(mux)
	}

	return otelhttp.NewHandler(recordRequests(s.config.Metrics, mux), "mcp-http",
		otelhttp.WithFilter(func(r *http.Request) bool {
			return !isHealthPath(r.URL.Path)
		}),
	)
}

// Start listens on the configured address and serves until Shutdown
func (s *HTTPServer) Start() error {
	return s.StartWithReadySignal(nil)
}

// StartWithReadySignal is like Start but closes ready once the listener is bound.
func (s *HTTPServer) StartWithReadySignal(ready chan<- struct{}) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}

	s.logger.Info("starting MCP HTTP server",
		slog.String("addr", ln.Addr().String()),
		slog.String("endpoint", MCPEndpointPath),
		slog.Bool("auth", s.config.AuthToken != ""))
	if ready != nil {
		close(ready)
	}
	return srv.Serve(ln)
}

// Shutdown gracefully shuts down the server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// bearerAuth requires "Authorization: Bearer <token>".
func bearerAuth(token string, next http.Handler) http.Handler {
	expected := []byte(token)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), expected) != 1 {
			w.Header().Set("WWW-Authenticate", `Bearer realm="onesignal-mcp"`)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func isHealthPath(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/healthz/detailed"
}

// routeLabel keeps the path label bounded.
func routeLabel(path string) string {
	if path == MCPEndpointPath || isHealthPath(path) {
		return path
	}
	return "other"
}

// statusRecorder captures the response status while passing Flush through,
// which the SSE stream depends on.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func recordRequests(m *instrumentation.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r.URL.Path), status, time.Since(start))
	})
}

// IsServerClosed reports whether err is the normal result of Shutdown.
func IsServerClosed(err error) bool {
	return errors.Is(err, http.ErrServerClosed)
}
