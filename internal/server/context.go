package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/weirdbrains/onesignal-mcp/internal/instrumentation"
	"github.com/weirdbrains/onesignal-mcp/internal/logging"
	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/registry"
)

// Options configures a ServerContext.
type Options struct {
	// Version is reported by the config resource and health endpoints.
	Version string

	// ReadOnly disables tools that change OneSignal or registry state.
	ReadOnly bool

	Logger *slog.Logger
}

// ServerContext holds the dependencies shared by all MCP tools
type ServerContext struct {
	ctx         context.Context
	cancel      context.CancelFunc
	client      *onesignal.Client
	version     string
	readOnly    bool
	logger      *slog.Logger
	metrics     *instrumentation.Metrics
	auditLogger *instrumentation.AuditLogger
	mu          sync.RWMutex
	shutdown    bool
}

// NewServerContext creates a new server context around client
func NewServerContext(ctx context.Context, client *onesignal.Client, opts Options) (*ServerContext, error) {
	if client == nil {
		return nil, errors.New("onesignal client is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	return &ServerContext{
		ctx:      shutdownCtx,
		cancel:   cancel,
		client:   client,
		version:  opts.Version,
		readOnly: opts.ReadOnly,
		logger:   logger,
	}, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Client returns the OneSignal API client
func (sc *ServerContext) Client() *onesignal.Client {
	return sc.client
}

// Dispatcher returns the credential dispatcher
func (sc *ServerContext) Dispatcher() *onesignal.Dispatcher {
	return sc.client.Dispatcher()
}

// Registry returns the app registry
func (sc *ServerContext) Registry() *registry.Registry {
	return sc.client.Dispatcher().Registry()
}

// Version returns the server version
func (sc *ServerContext) Version() string {
	return sc.version
}

// ReadOnly reports whether write tools are disabled
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// Logger returns the server logger
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SetMetrics sets the metrics recorder for tools and the API client
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
	sc.client.SetMetrics(m)
}

// Metrics returns the metrics recorder, or nil
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetAuditLogger sets the tool audit logger
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// AuditLogger returns the tool audit logger, or nil
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// AddApp registers an app configuration
func (sc *ServerContext) AddApp(ctx context.Context, cfg registry.AppConfig) error {
	err := sc.Registry().Add(cfg)
	sc.recordMutation(ctx, instrumentation.RegistryOpAdd, cfg.Key, err)
	return err
}

// UpdateApp applies a partial update and returns the changed fields
func (sc *ServerContext) UpdateApp(ctx context.Context, key string, update registry.AppUpdate) ([]string, error) {
	changed, err := sc.Registry().Update(key, update)
	sc.recordMutation(ctx, instrumentation.RegistryOpUpdate, key, err)
	return changed, err
}

// RemoveApp removes an app configuration
func (sc *ServerContext) RemoveApp(ctx context.Context, key string) (bool, error) {
	wasCurrent, err := sc.Registry().Remove(key)
	sc.recordMutation(ctx, instrumentation.RegistryOpRemove, key, err)
	return wasCurrent, err
}

// SwitchApp makes key the current app
func (sc *ServerContext) SwitchApp(ctx context.Context, key string) error {
	err := sc.Registry().Switch(key)
	sc.recordMutation(ctx, instrumentation.RegistryOpSwitch, key, err)
	return err
}

func (sc *ServerContext) recordMutation(ctx context.Context, op, key string, err error) {
	status := instrumentation.StatusFor(err)
	sc.Metrics().RecordRegistryMutation(ctx, op, status)

	attrs := []any{logging.Operation(op), logging.App(key), logging.Status(status)}
	if err != nil {
		sc.logger.WarnContext(ctx, "app registry operation failed", append(attrs, logging.Err(err))...)
		return
	}
	sc.logger.InfoContext(ctx, "app registry updated", attrs...)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
