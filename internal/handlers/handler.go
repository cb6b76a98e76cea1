package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Afhammirza1/sharingapp/internal/store"
)

var errNotObject = errors.New("not a JSON object")

// roomCodeRegex validates room codes in paths and bodies.
var roomCodeRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	store  store.RoomStore
	logger zerolog.Logger
}

// NewHandler creates a new Handler. A nil store disables every
// store-backed route.
func NewHandler(s store.RoomStore, logger zerolog.Logger) *Handler {
	return &Handler{store: s, logger: logger}
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, ErrorResponse{Error: message})
}

// storeEnabled reports whether a backend is configured.
func (h *Handler) storeEnabled() bool {
	return h.store != nil
}

// backend names the configured backend, or "none".
func (h *Handler) backend() string {
	if h.store == nil {
		return "none"
	}
	return h.store.Backend()
}

// RequireStore rejects requests with 503 when no store is configured. It
// runs before any request validation.
func (h *Handler) RequireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.storeEnabled() {
			h.Error(w, http.StatusServiceUnavailable, store.ErrStoreUnavailable.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// storeError maps a store error to a status code. Unexpected failures are
// logged and reported as 500 with the underlying error as detail.
func (h *Handler) storeError(w http.ResponseWriter, op, code string, err error) {
	switch {
	case errors.Is(err, store.ErrRoomNotFound):
		h.Error(w, http.StatusNotFound, "room not found")
	case errors.Is(err, store.ErrRoomExists):
		h.Error(w, http.StatusConflict, "room code already in use")
	case errors.Is(err, store.ErrCodeSpaceExhausted):
		h.Error(w, http.StatusServiceUnavailable, "could not allocate a room code, try again")
	case errors.Is(err, store.ErrStoreUnavailable):
		h.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error().
			Err(err).
			Str("op", op).
			Str("room", code).
			Str("backend", h.backend()).
			Msg("store operation failed")
		h.JSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:  "failed to " + op,
			Detail: err.Error(),
		})
	}
}

// roomCode reads and validates the {code} path parameter. It writes a 400
// and returns false when the code is malformed.
func (h *Handler) roomCode(w http.ResponseWriter, r *http.Request) (string, bool) {
	code := chi.URLParam(r, "code")
	if !isValidRoomCode(code) {
		h.Error(w, http.StatusBadRequest, "invalid room code")
		return "", false
	}
	return code, true
}

func isValidRoomCode(code string) bool {
	return roomCodeRegex.MatchString(code)
}

// decodeBody decodes a JSON body into dst. An empty body leaves dst
// untouched when allowEmpty is set.
func decodeBody(r *http.Request, dst interface{}, allowEmpty bool) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) && allowEmpty {
		return nil
	}
	return err
}

// decodeObject decodes a JSON object body keeping numbers as json.Number,
// so integers beyond float64 precision reach the store unchanged.
func decodeObject(r *http.Request) (map[string]interface{}, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var body interface{}
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, errNotObject
	}
	return obj, nil
}

// isBlank reports whether s has no visible content. Names are stored as
// submitted; only blank ones are rejected.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
