package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weirdbrains/onesignal-mcp/internal/onesignal"
	"github.com/weirdbrains/onesignal-mcp/internal/registry"
)

func serve(t *testing.T, h http.Handler) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)
	rec, body := serve(t, h.LivenessHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestHealthChecker_Readiness(t *testing.T) {
	t.Run("ready without apps", func(t *testing.T) {
		sc := newTestServerContext(t)
		rec, body := serve(t, NewHealthChecker(sc).ReadinessHandler())
		assert.Equal(t, http.StatusOK, rec.Code)
		checks := body["checks"].(map[string]any)
		assert.Equal(t, healthStatusNoApps, checks["apps"])
	})

	t.Run("apps configured", func(t *testing.T) {
		sc := newTestServerContext(t, onesignal.WithDefaultApp(registry.AppConfig{Key: "default", AppID: "x", APIKey: "k"}))
		_, body := serve(t, NewHealthChecker(sc).ReadinessHandler())
		checks := body["checks"].(map[string]any)
		assert.Equal(t, healthStatusOK, checks["apps"])
	})

	t.Run("not ready", func(t *testing.T) {
		h := NewHealthChecker(newTestServerContext(t))
		h.SetReady(false)
		assert.False(t, h.IsReady())
		rec, body := serve(t, h.ReadinessHandler())
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, healthStatusNotReady, body["status"])
	})

	t.Run("shutting down", func(t *testing.T) {
		sc := newTestServerContext(t)
		require.NoError(t, sc.Shutdown())
		rec, body := serve(t, NewHealthChecker(sc).ReadinessHandler())
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		checks := body["checks"].(map[string]any)
		assert.Equal(t, healthStatusShuttingDown, checks["shutdown"])
	})
}

func TestHealthChecker_Detailed(t *testing.T) {
	sc := newTestServerContext(t, onesignal.WithOrgAPIKey("org"))
	require.NoError(t, sc.Registry().Add(registry.AppConfig{Key: "a", AppID: "app-a", APIKey: "k"}))
	require.NoError(t, sc.Registry().Switch("a"))

	rec, body := serve(t, NewHealthChecker(sc).DetailedHealthHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.Equal(t, float64(1), body["apps"])
	assert.Equal(t, "a", body["current_app"])
	assert.Equal(t, false, body["default_app"])
	assert.Equal(t, true, body["org_api_key"])
	assert.NotContains(t, rec.Body.String(), "\"k\"")
}

func TestHealthChecker_DetailedShuttingDown(t *testing.T) {
	sc := newTestServerContext(t)
	h := NewHealthChecker(sc)
	require.NoError(t, sc.Shutdown())

	rec, body := serve(t, h.DetailedHealthHandler())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, healthStatusShuttingDown, body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, healthStatusNoApps, checks["apps"])
}

func TestRegisterHealthEndpoints(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthChecker(newTestServerContext(t)).RegisterHealthEndpoints(mux)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), path)
	}
}
