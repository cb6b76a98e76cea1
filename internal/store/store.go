package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Afhammirza1/sharingapp/internal/ids"
	"github.com/Afhammirza1/sharingapp/internal/models"
)

var (
	// ErrRoomNotFound is returned when a room code does not resolve.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomExists is returned when creating a room whose code is taken.
	ErrRoomExists = errors.New("room already exists")
	// ErrCodeSpaceExhausted is returned when every generated code collided.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique room code")
	// ErrStoreUnavailable is returned when no store backend is configured.
	ErrStoreUnavailable = errors.New("store not configured")
)

const (
	// maxCodeAttempts bounds the retries when a generated code is taken.
	maxCodeAttempts = 5
	// maxAppendRetries bounds optimistic-concurrency retries on file append.
	maxAppendRetries = 64
)

// RoomStore is the persistence contract for rooms, their embedded file
// metadata, and their message and signal collections. Every implementation
// must append files atomically.
type RoomStore interface {
	// Connection management
	Backend() string
	Close() error
	Ping(ctx context.Context) error
	Probe(ctx context.Context) (*ProbeResult, error)

	// Room operations
	CreateRoom(ctx context.Context, caller models.Caller, code string) (*models.Room, error)
	GetRoom(ctx context.Context, code string) (*models.Room, error)
	AppendFile(ctx context.Context, caller models.Caller, code string, upload models.FileUpload) (*models.FileMeta, error)

	// Message and signal collections
	AddMessage(ctx context.Context, caller models.Caller, code, text, sender string) (*models.Message, error)
	ListMessages(ctx context.Context, code string, limit int) ([]models.Message, error)
	AddSignal(ctx context.Context, caller models.Caller, code string, payload map[string]any) (*models.Signal, error)
}

// ProbeResult describes a diagnostic write/read round trip.
type ProbeResult struct {
	Backend string            `json:"backend"`
	Latency string            `json:"latency"`
	Details map[string]string `json:"details,omitempty"`
}

// now is the clock used for server-assigned timestamps.
var now = func() time.Time { return time.Now().UTC() }

// createRoom inserts a room under the given code, or under a generated code
// when none is given. insert must return ErrRoomExists if the code is taken.
func createRoom(ctx context.Context, caller models.Caller, code string, insert func(context.Context, *models.Room) error) (*models.Room, error) {
	if code != "" {
		room := models.NewRoom(code, caller, now())
		if err := insert(ctx, room); err != nil {
			return nil, err
		}
		return room, nil
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		room := models.NewRoom(ids.NewRoomCode(), caller, now())
		err := insert(ctx, room)
		if errors.Is(err, ErrRoomExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return room, nil
	}
	return nil, ErrCodeSpaceExhausted
}

// newFile builds the stored metadata for an upload.
func newFile(caller models.Caller, upload models.FileUpload) models.FileMeta {
	return models.FileMeta{
		ID:         ids.NewFileID(),
		Name:       upload.Name,
		Size:       upload.Size,
		Type:       upload.Type,
		UploadedAt: now(),
		UploadedBy: caller.ID,
	}
}

// newMessage builds a message with a store-assigned ID and timestamp.
func newMessage(caller models.Caller, text, sender string) *models.Message {
	return &models.Message{
		ID:        ids.NewMessageID(),
		Text:      text,
		Sender:    sender,
		Timestamp: now(),
		PostedBy:  caller.ID,
	}
}

// newSignal builds a signal with a store-assigned ID and timestamp.
func newSignal(caller models.Caller, code string, payload map[string]any) *models.Signal {
	if payload == nil {
		payload = map[string]any{}
	}
	return &models.Signal{
		ID:        ids.NewMessageID(),
		RoomCode:  code,
		Payload:   payload,
		Timestamp: now(),
		PostedBy:  caller.ID,
	}
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
