package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Health status values reported by the probe endpoints.
const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusNoApps       = "no apps configured"
)

// HealthChecker serves liveness and readiness probes for the HTTP transport.
type HealthChecker struct {
	ready     atomic.Bool
	sc        *ServerContext
	startTime time.Time
}

// NewHealthChecker creates a HealthChecker that starts out ready. sc may be
// nil, in which case only the ready flag is checked.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{sc: sc, startTime: time.Now()}
	h.ready.Store(true)
	return h
}

// SetReady marks the server ready or not ready. It is cleared during shutdown
// so load balancers drain the instance.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports the ready flag.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse is the body of /healthz/detailed. It never carries
// credentials.
type DetailedHealthResponse struct {
	HealthResponse

	Uptime     string `json:"uptime"`
	Version    string `json:"version,omitempty"`
	ReadOnly   bool   `json:"read_only"`
	Apps       int    `json:"apps"`
	CurrentApp string `json:"current_app,omitempty"`
	DefaultApp bool   `json:"default_app"`
	OrgAPIKey  bool   `json:"org_api_key"`
}

// checks evaluates every readiness check. The apps check is informational:
// apps can be added at runtime with add_app, so having none does not make
// the server unready.
func (h *HealthChecker) checks() (map[string]string, string) {
	checks := map[string]string{
		"ready":    healthStatusOK,
		"shutdown": healthStatusOK,
	}
	status := healthStatusOK

	if !h.ready.Load() {
		checks["ready"] = healthStatusNotReady
		status = healthStatusNotReady
	}
	if h.sc != nil && h.sc.IsShutdown() {
		checks["shutdown"] = healthStatusShuttingDown
		status = healthStatusShuttingDown
	}
	if h.sc != nil {
		checks["apps"] = h.appsStatus()
	}
	return checks, status
}

func (h *HealthChecker) appsStatus() string {
	if _, ok := h.sc.Dispatcher().DefaultApp(); ok || h.sc.Registry().Len() > 0 {
		return healthStatusOK
	}
	return healthStatusNoApps
}

// LivenessHandler serves /healthz. The process is alive as long as it answers.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, healthStatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, status := h.checks()
		resp := HealthResponse{Status: status, Checks: checks}
		if status != healthStatusOK {
			resp.Status = healthStatusNotReady
		}
		writeHealth(w, status, resp)
	})
}

// DetailedHealthHandler serves /healthz/detailed with the registry summary.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		checks, status := h.checks()
		resp := DetailedHealthResponse{
			HealthResponse: HealthResponse{Status: status, Checks: checks},
			Uptime:         time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if sc := h.sc; sc != nil {
			d := sc.Dispatcher()
			_, resp.DefaultApp = d.DefaultApp()
			resp.Version = sc.Version()
			resp.ReadOnly = sc.ReadOnly()
			resp.Apps = sc.Registry().Len()
			resp.CurrentApp = sc.Registry().CurrentKey()
			resp.OrgAPIKey = d.HasOrgAPIKey()
		}
		writeHealth(w, status, resp)
	})
}

// RegisterHealthEndpoints registers the probe endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func writeHealth(w http.ResponseWriter, status string, body any) {
	code := http.StatusOK
	if status != healthStatusOK {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
