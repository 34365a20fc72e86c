// Package instrumentation provides OpenTelemetry metrics, tracing and tool
// audit logging for the OneSignal MCP server.
//
// # Metrics
//
// MCP tools:
//   - mcp_tool_invocations_total: tool invocations by tool and status
//   - mcp_tool_duration_seconds: tool execution duration
//
// OneSignal API:
//   - onesignal_api_requests_total: outbound requests by method, endpoint and status code
//   - onesignal_api_request_duration_seconds: outbound request duration
//
// App registry:
//   - app_registry_mutations_total: add/update/remove/switch operations by result
//
// Inbound HTTP (streamable-http transport only):
//   - http_requests_total, http_request_duration_seconds
//   - mcp_active_sessions
//
// Endpoint labels are normalized with NormalizeEndpoint so that notification,
// device and template IDs never become label values.
//
// # Configuration
//
// DefaultConfig binds the following environment variables:
//   - INSTRUMENTATION_ENABLED (default: true)
//   - METRICS_EXPORTER: prometheus, otlp or stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout or none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT, OTEL_EXPORTER_OTLP_INSECURE
//   - OTEL_TRACES_SAMPLER_ARG (default: 0.1)
//   - OTEL_SERVICE_NAME (default: onesignal-mcp)
//   - METRICS_DETAILED_LABELS: add the app key to tool metrics (default: false)
//   - AUDIT_LOGGING_ENABLED, AUDIT_LOGGING_INCLUDE_APP_IDS
//
// # Example
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	m := provider.Metrics()
//	m.RecordAPIRequest(ctx, "GET", "notifications/{id}", 200, time.Since(start))
package instrumentation
