package instrumentation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("HOSTNAME", "pod-1")

	cfg := DefaultConfig()
	assert.Equal(t, "onesignal-mcp", cfg.ServiceName)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, ExporterPrometheus, cfg.MetricsExporter)
	assert.Equal(t, ExporterNone, cfg.TracingExporter)
	assert.InDelta(t, 0.1, cfg.TraceSamplingRate, 1e-9)
	assert.Equal(t, "/metrics", cfg.PrometheusEndpoint)
	assert.False(t, cfg.DetailedLabels)
	assert.True(t, cfg.AuditLogging.Enabled)
	assert.False(t, cfg.AuditLogging.IncludeAppIDs)
	assert.Equal(t, "pod-1", cfg.K8sPodName)
}

func TestDefaultConfig_FromEnv(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "custom")
	t.Setenv("TRACING_EXPORTER", "otlp")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("METRICS_DETAILED_LABELS", "true")
	t.Setenv("AUDIT_LOGGING_INCLUDE_APP_IDS", "true")

	cfg := DefaultConfig()
	assert.Equal(t, "custom", cfg.ServiceName)
	assert.Equal(t, ExporterOTLP, cfg.TracingExporter)
	assert.Equal(t, "collector:4318", cfg.OTLPEndpoint)
	assert.True(t, cfg.DetailedLabels)
	assert.True(t, cfg.AuditLogging.IncludeAppIDs)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "defaults", config: Config{MetricsExporter: ExporterPrometheus, TracingExporter: ExporterNone}},
		{name: "sampling rate too high", config: Config{TraceSamplingRate: 1.5}, wantErr: true},
		{name: "negative sampling rate", config: Config{TraceSamplingRate: -0.1}, wantErr: true},
		{name: "unknown metrics exporter", config: Config{MetricsExporter: "statsd"}, wantErr: true},
		{name: "unknown tracing exporter", config: Config{TracingExporter: "jaeger"}, wantErr: true},
		{name: "otlp tracing without endpoint", config: Config{TracingExporter: ExporterOTLP}, wantErr: true},
		{name: "otlp metrics with endpoint", config: Config{MetricsExporter: ExporterOTLP, OTLPEndpoint: "localhost:4318"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() error = %v", err)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, StatusSuccess, StatusFor(nil))
	assert.Equal(t, StatusError, StatusFor(errors.New("x")))
}
