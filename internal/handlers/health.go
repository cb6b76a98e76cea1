package handlers

import (
	"context"
	"net/http"
	"time"
)

const version = "1.0.0"

// Check represents the status of a health check.
type Check struct {
	Status  string `json:"status"`            // "pass", "fail" or "skip"
	Latency string `json:"latency,omitempty"` // e.g., "2ms"
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status       string           `json:"status"` // "healthy" or "degraded"
	Version      string           `json:"version"`
	StoreEnabled bool             `json:"store_enabled"`
	StoreBackend string           `json:"store_backend"`
	Checks       map[string]Check `json:"checks"`
	Timestamp    string           `json:"timestamp"`
}

// Health handles the health check endpoint. It always answers 200; a
// failing store shows up as a degraded status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	status := "healthy"

	if h.storeEnabled() {
		start := time.Now()
		if err := h.store.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Str("backend", h.backend()).Msg("store ping failed")
			checks["store"] = Check{Status: "fail", Message: "connection failed"}
			status = "degraded"
		} else {
			checks["store"] = Check{Status: "pass", Latency: time.Since(start).String()}
		}
	} else {
		checks["store"] = Check{Status: "skip", Message: "not configured"}
	}

	h.JSON(w, http.StatusOK, HealthResponse{
		Status:       status,
		Version:      version,
		StoreEnabled: h.storeEnabled(),
		StoreBackend: h.backend(),
		Checks:       checks,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	})
}

// RootResponse represents the root endpoint response.
type RootResponse struct {
	Message      string `json:"message"`
	Version      string `json:"version"`
	StoreEnabled bool   `json:"store_enabled"`
	StoreBackend string `json:"store_backend"`
}

// Root handles the root endpoint.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, RootResponse{
		Message:      "ShareNear API",
		Version:      version,
		StoreEnabled: h.storeEnabled(),
		StoreBackend: h.backend(),
	})
}

// TestConnectionResponse reports a store round trip.
type TestConnectionResponse struct {
	Status       string            `json:"status"`
	StoreBackend string            `json:"store_backend"`
	Latency      string            `json:"latency,omitempty"`
	Details      map[string]string `json:"details,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// TestConnection writes and reads back a probe record. Failures are
// reported in the body; the status code is always 200.
func (h *Handler) TestConnection(w http.ResponseWriter, r *http.Request) {
	if !h.storeEnabled() {
		h.JSON(w, http.StatusOK, TestConnectionResponse{
			Status:       "store not configured",
			StoreBackend: h.backend(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	res, err := h.store.Probe(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Str("backend", h.backend()).Msg("connection probe failed")
		h.JSON(w, http.StatusOK, TestConnectionResponse{
			Status:       "connection failed",
			StoreBackend: h.backend(),
			Error:        err.Error(),
		})
		return
	}

	h.JSON(w, http.StatusOK, TestConnectionResponse{
		Status:       "connection successful",
		StoreBackend: res.Backend,
		Latency:      res.Latency,
		Details:      res.Details,
	})
}
