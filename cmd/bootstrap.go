package cmd

import (
	"context"
	"fmt"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/weirdbrains/onesignal-mcp/internal/config"
	"github.com/weirdbrains/onesignal-mcp/internal/logging"
	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/registry"
	"github.com/weirdbrains/onesignal-mcp/internal/resources"
	"github.com/weirdbrains/onesignal-mcp/internal/server"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/app_tools"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/device_tools"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/message_tools"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/org_tools"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/segment_tools"
	"github.com/weirdbrains/onesignal-mcp/internal/tools/template_tools"
)

// runtimeOptions are the settings shared by every command that builds a
// server context.
type runtimeOptions struct {
	envFile  string
	appsFile string
	debug    bool
	readOnly bool
}

// loadConfig loads the environment and builds the process logger.
// Logs always go to stderr so the stdio transport keeps stdout clean.
func loadConfig(opts runtimeOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, nil, err
	}
	if opts.appsFile != "" {
		cfg.AppsFile = opts.appsFile
	}

	level := cfg.SlogLevel()
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := logging.New(logging.Options{Level: level, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newRegistry opens the persisted registry when an apps file is configured
// and seeds it with the apps discovered in the environment.
func newRegistry(cfg *config.Config, logger *slog.Logger) (*registry.Registry, error) {
	reg := registry.New()
	if cfg.AppsFile != "" {
		var err error
		reg, err = registry.NewWithStore(registry.NewEnvFileStore(cfg.AppsFile))
		if err != nil {
			return nil, fmt.Errorf("failed to open apps file: %w", err)
		}
		logger.Debug("loaded app registry", slog.String("path", cfg.AppsFile), slog.Int("apps", reg.Len()))
	}

	added, err := reg.Seed(cfg.Apps)
	if err != nil {
		return nil, fmt.Errorf("failed to seed apps from environment: %w", err)
	}
	if added > 0 {
		logger.Debug("seeded apps from environment", slog.Int("apps", added))
	}
	return reg, nil
}

// newServerContext wires the registry, dispatcher and OneSignal client.
func newServerContext(ctx context.Context, cfg *config.Config, logger *slog.Logger, readOnly bool) (*server.ServerContext, error) {
	reg, err := newRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}

	var dispatcherOpts []onesignal.DispatcherOption
	if app, ok := cfg.DefaultApp(); ok {
		dispatcherOpts = append(dispatcherOpts, onesignal.WithDefaultApp(app))
	}
	if cfg.OrgAPIKey != "" {
		dispatcherOpts = append(dispatcherOpts, onesignal.WithOrgAPIKey(cfg.OrgAPIKey))
	}
	dispatcher := onesignal.NewDispatcher(reg, dispatcherOpts...)

	client := onesignal.NewClient(dispatcher, onesignal.ClientConfig{
		BaseURL: cfg.APIURL,
		Timeout: cfg.HTTPTimeout,
		Logger:  logger,
	})

	sc, err := server.NewServerContext(ctx, client, server.Options{
		Version:  version,
		ReadOnly: readOnly,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	return sc, nil
}

// newMCPServer creates the MCP server with every tool and resource registered.
func newMCPServer(sc *server.ServerContext, opts ...mcpserver.ServerOption) (*mcpserver.MCPServer, error) {
	opts = append([]mcpserver.ServerOption{
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	}, opts...)
	mcpSrv := mcpserver.NewMCPServer("onesignal-mcp", version, opts...)

	if err := registerAllTools(mcpSrv, sc); err != nil {
		return nil, err
	}
	return mcpSrv, nil
}

// toolGroup is a set of related tools registered together.
type toolGroup struct {
	name     string
	register func(*mcpserver.MCPServer, *server.ServerContext) error
}

var toolGroups = []toolGroup{
	{name: "App", register: app_tools.RegisterAppTools},
	{name: "Message", register: message_tools.RegisterMessageTools},
	{name: "Device", register: device_tools.RegisterDeviceTools},
	{name: "Segment", register: segment_tools.RegisterSegmentTools},
	{name: "Template", register: template_tools.RegisterTemplateTools},
	{name: "Organization", register: org_tools.RegisterOrgTools},
}

// registerAllTools registers all MCP tools and resources
func registerAllTools(mcpSrv *mcpserver.MCPServer, sc *server.ServerContext) error {
	for _, group := range toolGroups {
		if err := group.register(mcpSrv, sc); err != nil {
			return fmt.Errorf("failed to register %s tools: %w", group.name, err)
		}
	}

	if err := resources.RegisterConfigResources(mcpSrv, sc); err != nil {
		return fmt.Errorf("failed to register config resources: %w", err)
	}
	return nil
}
