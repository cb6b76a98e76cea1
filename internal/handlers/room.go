package handlers

import (
	"net/http"
	"strings"

	"github.com/Afhammirza1/sharingapp/internal/api/middleware"
	"github.com/Afhammirza1/sharingapp/internal/metrics"
	"github.com/Afhammirza1/sharingapp/internal/models"
)

// CreateRoomRequest represents the room creation request. Code is
// optional; one is generated when it is empty.
type CreateRoomRequest struct {
	Code string `json:"code,omitempty"`
}

// CreateRoomResponse represents the room creation response.
type CreateRoomResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AppendFileRequest represents the file metadata request.
type AppendFileRequest struct {
	FileName string `json:"file_name"`
	FileSize *int64 `json:"file_size"`
	FileType string `json:"file_type"`
}

// AppendFileResponse represents the file metadata response.
type AppendFileResponse struct {
	Message string `json:"message"`
	FileID  string `json:"file_id"`
}

// CreateRoom handles room creation.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := decodeBody(r, &req, true); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Code = strings.TrimSpace(req.Code)
	if req.Code != "" && !isValidRoomCode(req.Code) {
		h.Error(w, http.StatusBadRequest, "code must be 1-64 characters, alphanumeric with hyphens and underscores only")
		return
	}

	caller := middleware.GetCallerFromContext(r.Context())
	room, err := h.store.CreateRoom(r.Context(), caller, req.Code)
	if err != nil {
		h.storeError(w, "create room", req.Code, err)
		return
	}

	metrics.RoomsCreated.Inc()
	h.logger.Info().
		Str("room", room.Code).
		Str("caller", caller.ID).
		Bool("generated", req.Code == "").
		Msg("room created")

	h.JSON(w, http.StatusCreated, CreateRoomResponse{
		Code:    room.Code,
		Message: "Room created successfully",
	})
}

// GetRoom handles fetching a room with its file metadata.
func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	code, ok := h.roomCode(w, r)
	if !ok {
		return
	}

	room, err := h.store.GetRoom(r.Context(), code)
	if err != nil {
		h.storeError(w, "get room", code, err)
		return
	}

	h.JSON(w, http.StatusOK, room)
}

// AppendFile handles recording file metadata in a room.
func (h *Handler) AppendFile(w http.ResponseWriter, r *http.Request) {
	code, ok := h.roomCode(w, r)
	if !ok {
		return
	}

	var req AppendFileRequest
	if err := decodeBody(r, &req, false); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	upload := models.FileUpload{
		Name: req.FileName,
		Type: req.FileType,
	}
	switch {
	case isBlank(upload.Name):
		h.Error(w, http.StatusBadRequest, "file_name is required")
		return
	case req.FileSize == nil:
		h.Error(w, http.StatusBadRequest, "file_size is required")
		return
	case *req.FileSize < 0:
		h.Error(w, http.StatusBadRequest, "file_size must not be negative")
		return
	case isBlank(upload.Type):
		h.Error(w, http.StatusBadRequest, "file_type is required")
		return
	}
	upload.Size = *req.FileSize

	caller := middleware.GetCallerFromContext(r.Context())
	file, err := h.store.AppendFile(r.Context(), caller, code, upload)
	if err != nil {
		h.storeError(w, "save file metadata", code, err)
		return
	}

	metrics.FilesRecorded.Inc()

	h.JSON(w, http.StatusOK, AppendFileResponse{
		Message: "File metadata saved",
		FileID:  file.ID,
	})
}
