package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/instrumentation"
	"github.com/weirdbrains/onesignal-mcp/internal/logging"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

type serveOptions struct {
	runtimeOptions

	transport        string
	httpAddr         string
	disableStreaming bool
	metrics          MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server to expose the OneSignal REST API as tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport served at /mcp

Apps are configured through ONESIGNAL_APP_ID and ONESIGNAL_API_KEY for the
default app, and ONESIGNAL_<NAME>_APP_ID / ONESIGNAL_<NAME>_API_KEY for named
apps. Apps added at runtime are kept in memory unless --apps-file is set.

Use --read-only to refuse every tool that sends messages or changes
OneSignal resources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			loadMetricsEnv(cmd, &opts.metrics)
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportStdio, "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.disableStreaming, "disable-streaming", false, "Answer MCP requests with plain JSON instead of SSE streams")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Disable tools that send messages or modify OneSignal resources")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.envFile, "env-file", "", "Path to a dotenv file (default: .env when present)")
	cmd.Flags().StringVar(&opts.appsFile, "apps-file", "", "Persist the app registry to this file (overrides ONESIGNAL_APPS_FILE)")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", false, "Serve Prometheus metrics on a dedicated port (streamable-http only)")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	return cmd
}

// loadMetricsEnv applies METRICS_ENABLED and METRICS_ADDR when the matching
// flag was not set explicitly.
func loadMetricsEnv(cmd *cobra.Command, metrics *MetricsConfig) {
	if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "true" {
		metrics.Enabled = true
	}
	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			metrics.Addr = addr
		}
	}
}

func runServe(opts serveOptions) error {
	if opts.transport != transportStdio && opts.transport != transportStreamableHTTP {
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, logger, err := loadConfig(opts.runtimeOptions)
	if err != nil {
		return err
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	serverContext, err := newServerContext(shutdownCtx, cfg, logger, opts.readOnly)
	if err != nil {
		return err
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()

	// Set metrics and audit logger on server context for tool instrumentation
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))
	}

	// Start metrics server if enabled and not in stdio mode
	if opts.transport != transportStdio && opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err := startMetricsServer(opts.metrics, provider, logger)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	mcpSrv, err := newMCPServer(serverContext, mcpserver.WithHooks(server.NewSessionHooks(serverContext)))
	if err != nil {
		return err
	}

	if opts.readOnly {
		logger.Info("starting server in READ-ONLY mode (restart without --read-only to enable write operations)")
	}
	if _, ok := serverContext.Dispatcher().DefaultApp(); !ok && serverContext.Registry().Len() == 0 {
		logger.Warn("no OneSignal apps configured; set ONESIGNAL_APP_ID and ONESIGNAL_API_KEY or use add_app")
	}

	switch opts.transport {
	case transportStdio:
		return runStdioServer(shutdownCtx, mcpSrv, logger)
	default:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts, cfg.AuthToken, provider, logger)
	}
}

func startMetricsServer(config MetricsConfig, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		Enabled:                 true,
		InstrumentationProvider: provider,
		Logger:                  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	// Use ready channel to confirm metrics server started successfully
	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started",
			slog.String("addr", metricsServer.Addr()),
			slog.String("path", metricsServer.Path()))
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, errors.New("metrics server startup timed out")
	}
}

func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	stdio := mcpserver.NewStdioServer(mcpSrv)
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, opts serveOptions, authToken string, provider *instrumentation.Provider, logger *slog.Logger) error {
	healthChecker := server.NewHealthChecker(sc)

	httpConfig := server.HTTPServerConfig{
		Addr:             opts.httpAddr,
		AuthToken:        authToken,
		DisableStreaming: opts.disableStreaming,
		Health:           healthChecker,
		Logger:           logger,
	}
	if provider.Enabled() {
		httpConfig.Metrics = provider.Metrics()
	}
	httpServer := server.NewHTTPServer(mcpSrv, httpConfig)

	if authToken == "" {
		logger.Warn("MCP_AUTH_TOKEN is not set; the MCP endpoint accepts unauthenticated requests")
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !server.IsServerClosed(err) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
