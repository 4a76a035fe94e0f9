package rest

import (
	"context"
	"net/http"
	"time"
)

const pingTimeout = 3 * time.Second

// storePinger defines the minimal interface for store health checks.
type storePinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	store   storePinger
	backend string
	version string
}

// NewHealthHandler creates a HealthHandler. A nil store means no store is
// configured; the service is then alive but never ready.
func NewHealthHandler(store storePinger, backend, version string) *HealthHandler {
	return &HealthHandler{store: store, backend: backend, version: version}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Backend string `json:"backend,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 if the store answers, 503 if not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	comp := h.checkStore(r.Context())

	status, code := "ok", http.StatusOK
	if comp.Status != "ok" {
		status, code = "down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
	})
}

// Health is the full health check with store latency and version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	comp := h.checkStore(r.Context())

	status, code := "ok", http.StatusOK
	if comp.Status != "ok" {
		status, code = "down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: map[string]CompStatus{"store": comp},
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) checkStore(ctx context.Context) CompStatus {
	if h.store == nil {
		return CompStatus{Status: "disabled", Backend: h.backend}
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	start := time.Now()
	if err := h.store.Ping(ctx); err != nil {
		return CompStatus{Status: "down", Backend: h.backend}
	}
	return CompStatus{Status: "ok", Backend: h.backend, Latency: time.Since(start).String()}
}
