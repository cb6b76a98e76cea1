package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Afhammirza1/sharingapp/internal/api/middleware"
	"github.com/Afhammirza1/sharingapp/internal/metrics"
	"github.com/Afhammirza1/sharingapp/internal/models"
)

const (
	maxMessageBytes     = 4096
	defaultMessageLimit = 50
	maxMessageLimit     = 200
)

// SendMessageRequest represents the send message request.
type SendMessageRequest struct {
	Text   string `json:"text"`
	Sender string `json:"sender"`
}

// SendMessageResponse represents the send message response.
type SendMessageResponse struct {
	Message   string    `json:"message"`
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// MessagesResponse represents the list messages response.
type MessagesResponse struct {
	Messages []models.Message `json:"messages"`
}

// SendMessage handles posting a chat message to a room.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	code, ok := h.roomCode(w, r)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Validate text
	if isBlank(req.Text) {
		h.Error(w, http.StatusBadRequest, "text is required")
		return
	}
	if len(req.Text) > maxMessageBytes {
		h.Error(w, http.StatusBadRequest, "text too long (max 4096 bytes)")
		return
	}

	if isBlank(req.Sender) {
		h.Error(w, http.StatusBadRequest, "sender is required")
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	msg, err := h.store.AddMessage(r.Context(), caller, code, req.Text, req.Sender)
	if err != nil {
		h.storeError(w, "send message", code, err)
		return
	}

	metrics.MessagesPosted.Inc()

	h.JSON(w, http.StatusOK, SendMessageResponse{
		Message:   "Message sent successfully",
		ID:        msg.ID,
		Timestamp: msg.Timestamp,
	})
}

// GetMessages handles listing a room's messages, oldest first.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	code, ok := h.roomCode(w, r)
	if !ok {
		return
	}

	limit, ok := parseLimit(r.URL.Query().Get("limit"))
	if !ok {
		h.Error(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	messages, err := h.store.ListMessages(r.Context(), code, limit)
	if err != nil {
		h.storeError(w, "get messages", code, err)
		return
	}

	h.JSON(w, http.StatusOK, MessagesResponse{Messages: messages})
}

// parseLimit parses the limit query parameter, defaulting to 50 and
// capping at 200.
func parseLimit(raw string) (int, bool) {
	if raw == "" {
		return defaultMessageLimit, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, false
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}
	return limit, true
}
