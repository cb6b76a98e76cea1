// Package ids generates the identifiers handed out by the store.
package ids

import (
	"strings"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// RoomCodeLength is the length of generated room codes.
const RoomCodeLength = 6

// NewRoomCode returns a short uppercase alphanumeric code taken from a
// random UUID. Six hex digits give 16^6 (~16.7M) codes; callers retry on
// collision.
func NewRoomCode() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(hex[:RoomCodeLength])
}

// NewFileID generates a random UUID v4 for file metadata.
func NewFileID() string {
	return uuid.NewString()
}

// NewMessageID generates a time-ordered ULID. IDs created by one process
// within the same millisecond sort in creation order.
func NewMessageID() string {
	return ulid.Make().String()
}
