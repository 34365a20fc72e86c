package server

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/weirdbrains/onesignal-mcp/internal/instrumentation"
	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/registry"
)

func newTestServerContext(t *testing.T, opts ...onesignal.DispatcherOption) *ServerContext {
	t.Helper()
	d := onesignal.NewDispatcher(registry.New(), opts...)
	client := onesignal.NewClient(d, onesignal.ClientConfig{BaseURL: "http://127.0.0.1:1"})
	sc, err := NewServerContext(context.Background(), client, Options{
		Version: "test",
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })
	return sc
}

func TestNewServerContext_RequiresClient(t *testing.T) {
	_, err := NewServerContext(context.Background(), nil, Options{})
	assert.Error(t, err)
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := newTestServerContext(t)
	assert.False(t, sc.IsShutdown())

	require.NoError(t, sc.Shutdown())
	assert.True(t, sc.IsShutdown())
	assert.ErrorIs(t, sc.Context().Err(), context.Canceled)

	// idempotent
	assert.NoError(t, sc.Shutdown())
}

func TestServerContext_RegistryMutations(t *testing.T) {
	sc := newTestServerContext(t)
	ctx := context.Background()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := instrumentation.NewMetrics(mp.Meter("test"), false)
	require.NoError(t, err)
	sc.SetMetrics(m)
	assert.Same(t, m, sc.Metrics())

	require.NoError(t, sc.AddApp(ctx, registry.AppConfig{Key: "a", AppID: "app-a", APIKey: "k"}))
	assert.ErrorIs(t, sc.AddApp(ctx, registry.AppConfig{Key: "a", AppID: "app-a", APIKey: "k"}), registry.ErrDuplicateKey)
	require.NoError(t, sc.SwitchApp(ctx, "a"))

	name := "Renamed"
	changed, err := sc.UpdateApp(ctx, "a", registry.AppUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, changed)

	wasCurrent, err := sc.RemoveApp(ctx, "a")
	require.NoError(t, err)
	assert.True(t, wasCurrent)
	assert.Equal(t, 0, sc.Registry().Len())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	counts := map[string]int64{}
	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if metric.Name != "app_registry_mutations_total" {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				op, _ := dp.Attributes.Value("operation")
				status, _ := dp.Attributes.Value("status")
				counts[op.AsString()+"/"+status.AsString()] += dp.Value
			}
		}
	}
	assert.Equal(t, map[string]int64{
		"add/success":    1,
		"add/error":      1,
		"switch/success": 1,
		"update/success": 1,
		"remove/success": 1,
	}, counts)
}

func TestServerContext_Accessors(t *testing.T) {
	sc := newTestServerContext(t, onesignal.WithOrgAPIKey("org"))
	assert.Equal(t, "test", sc.Version())
	assert.False(t, sc.ReadOnly())
	assert.NotNil(t, sc.Client())
	assert.True(t, sc.Dispatcher().HasOrgAPIKey())
	assert.Nil(t, sc.AuditLogger())

	al := instrumentation.NewAuditLogger(sc.Logger())
	sc.SetAuditLogger(al)
	assert.Same(t, al, sc.AuditLogger())
}
