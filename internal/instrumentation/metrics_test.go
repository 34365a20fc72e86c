package instrumentation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T, detailed bool) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"), detailed)
	require.NoError(t, err)
	return m, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumPoints(t *testing.T, m metricdata.Metrics) []metricdata.DataPoint[int64] {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	return sum.DataPoints
}

func attrValue(set attribute.Set, key string) string {
	v, _ := set.Value(attribute.Key(key))
	return v.Emit()
}

func TestMetrics_RecordAPIRequest(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordAPIRequest(ctx, "GET", "notifications/{id}", 200, 120*time.Millisecond)
	m.RecordAPIRequest(ctx, "POST", "notifications", 400, 80*time.Millisecond)
	m.RecordAPIRequest(ctx, "GET", "players", 0, time.Second)

	got := collect(t, reader)
	require.Contains(t, got, "onesignal_api_requests_total")
	require.Contains(t, got, "onesignal_api_request_duration_seconds")

	statuses := map[string]string{}
	for _, dp := range sumPoints(t, got["onesignal_api_requests_total"]) {
		statuses[attrValue(dp.Attributes, attrEndpoint)+" "+attrValue(dp.Attributes, attrCode)] = attrValue(dp.Attributes, attrStatus)
		assert.Equal(t, int64(1), dp.Value)
	}
	assert.Equal(t, map[string]string{
		"notifications/{id} 200": StatusSuccess,
		"notifications 400":      StatusError,
		"players 0":              StatusError,
	}, statuses)
}

func TestMetrics_RecordToolInvocation(t *testing.T) {
	tests := []struct {
		name     string
		detailed bool
		wantApp  bool
	}{
		{name: "app label omitted by default", detailed: false, wantApp: false},
		{name: "app label with detailed labels", detailed: true, wantApp: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, reader := newTestMetrics(t, tt.detailed)
			m.RecordToolInvocation(context.Background(), "send_notification", StatusSuccess, "prod", 10*time.Millisecond)

			points := sumPoints(t, collect(t, reader)["mcp_tool_invocations_total"])
			require.Len(t, points, 1)

			_, hasApp := points[0].Attributes.Value(attribute.Key(attrApp))
			assert.Equal(t, tt.wantApp, hasApp)
			assert.Equal(t, "send_notification", attrValue(points[0].Attributes, attrTool))
		})
	}
}

func TestMetrics_RecordRegistryMutation(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.RecordRegistryMutation(ctx, RegistryOpAdd, StatusSuccess)
	m.RecordRegistryMutation(ctx, RegistryOpAdd, StatusSuccess)
	m.RecordRegistryMutation(ctx, RegistryOpSwitch, StatusError)

	counts := map[string]int64{}
	for _, dp := range sumPoints(t, collect(t, reader)["app_registry_mutations_total"]) {
		counts[attrValue(dp.Attributes, attrOperation)+"/"+attrValue(dp.Attributes, attrStatus)] = dp.Value
	}
	assert.Equal(t, map[string]int64{"add/success": 2, "switch/error": 1}, counts)
}

func TestMetrics_ActiveSessions(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	ctx := context.Background()

	m.IncrementActiveSessions(ctx)
	m.IncrementActiveSessions(ctx)
	m.DecrementActiveSessions(ctx)

	points := sumPoints(t, collect(t, reader)["mcp_active_sessions"])
	require.Len(t, points, 1)
	assert.Equal(t, int64(1), points[0].Value)
}

func TestMetrics_RecordHTTPRequest(t *testing.T) {
	m, reader := newTestMetrics(t, false)
	m.RecordHTTPRequest(context.Background(), "POST", "/mcp", 200, 5*time.Millisecond)

	points := sumPoints(t, collect(t, reader)["http_requests_total"])
	require.Len(t, points, 1)
	assert.Equal(t, "200", attrValue(points[0].Attributes, attrStatus))
}

func TestMetrics_NilAndZeroValueAreNoOps(t *testing.T) {
	ctx := context.Background()

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.RecordAPIRequest(ctx, "GET", "apps", 200, time.Millisecond)
		nilMetrics.RecordToolInvocation(ctx, "view_apps", StatusSuccess, "", time.Millisecond)
		nilMetrics.IncrementActiveSessions(ctx)
	})

	zero := &Metrics{}
	assert.NotPanics(t, func() {
		zero.RecordHTTPRequest(ctx, "GET", "/healthz", 200, time.Millisecond)
		zero.RecordRegistryMutation(ctx, RegistryOpRemove, StatusSuccess)
		zero.DecrementActiveSessions(ctx)
	})
}
