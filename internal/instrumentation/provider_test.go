package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{ServiceName: "test", Enabled: false})
	require.NoError(t, err)

	assert.False(t, provider.Enabled())
	assert.False(t, provider.PrometheusEnabled())
	assert.NotNil(t, provider.Metrics())
	assert.NoError(t, provider.Shutdown(context.Background()))
}

func TestNewProvider_Exporters(t *testing.T) {
	tests := []struct {
		name           string
		metrics        string
		tracing        string
		wantPrometheus bool
	}{
		{name: "prometheus without tracing", metrics: ExporterPrometheus, tracing: ExporterNone, wantPrometheus: true},
		{name: "stdout metrics and traces", metrics: ExporterStdout, tracing: ExporterStdout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			provider, err := NewProvider(ctx, Config{
				ServiceName:       "test",
				ServiceVersion:    "1.0.0",
				Enabled:           true,
				MetricsExporter:   tt.metrics,
				TracingExporter:   tt.tracing,
				TraceSamplingRate: 1,
			})
			require.NoError(t, err)
			defer func() { _ = provider.Shutdown(ctx) }()

			assert.True(t, provider.Enabled())
			assert.Equal(t, tt.wantPrometheus, provider.PrometheusEnabled())
			require.NotNil(t, provider.Metrics())
			provider.Metrics().RecordAPIRequest(ctx, "GET", "apps", 200, time.Millisecond)
		})
	}
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{
		Enabled:         true,
		MetricsExporter: "bogus",
	})
	assert.Error(t, err)
}

func TestProvider_PrometheusEndpoint(t *testing.T) {
	p := &Provider{}
	assert.Equal(t, "/metrics", p.PrometheusEndpoint())

	p = &Provider{config: Config{PrometheusEndpoint: "/custom"}}
	assert.Equal(t, "/custom", p.PrometheusEndpoint())
}
