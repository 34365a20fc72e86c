// Package server provides the MCP server context, health probes and the
// HTTP transports for onesignal-mcp.
//
// # Key Components
//
// ServerContext owns the OneSignal client and, through it, the app registry.
// Tool handlers reach the registry through ServerContext so that every
// add, update, remove and switch is logged and counted.
//
// HTTPServer serves the streamable HTTP transport at /mcp together with the
// Kubernetes probes /healthz, /readyz and /healthz/detailed. The MCP endpoint
// is wrapped with:
//   - per-IP rate limiting (golang.org/x/time/rate)
//   - optional bearer token authentication (MCP_AUTH_TOKEN)
//   - OpenTelemetry tracing via otelhttp and request metrics
//
// MetricsServer exposes Prometheus metrics on a dedicated port so that
// operational data is not reachable through the MCP listener.
package server
