package handlers

import (
	"errors"
	"net/http"

	"github.com/Afhammirza1/sharingapp/internal/api/middleware"
	"github.com/Afhammirza1/sharingapp/internal/metrics"
)

// SignalResponse represents the signal response.
type SignalResponse struct {
	Message string `json:"message"`
}

// PostSignal relays an opaque WebRTC signaling payload into the room's
// signal collection. The payload must be a JSON object.
func (h *Handler) PostSignal(w http.ResponseWriter, r *http.Request) {
	code, ok := h.roomCode(w, r)
	if !ok {
		return
	}

	payload, err := decodeObject(r)
	if errors.Is(err, errNotObject) {
		h.Error(w, http.StatusBadRequest, "signal must be a JSON object")
		return
	}
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	sig, err := h.store.AddSignal(r.Context(), caller, code, payload)
	if err != nil {
		h.storeError(w, "send signal", code, err)
		return
	}

	metrics.SignalsPosted.Inc()
	h.logger.Debug().
		Str("room", code).
		Str("signal_id", sig.ID).
		Int("keys", len(payload)).
		Msg("signal stored")

	h.JSON(w, http.StatusOK, SignalResponse{Message: "Signal sent"})
}
