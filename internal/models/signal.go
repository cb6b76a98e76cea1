package models

import "time"

// Signal is an opaque WebRTC signaling payload relayed between peers.
type Signal struct {
	ID        string         `json:"id"`
	RoomCode  string         `json:"room_code"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
	PostedBy  string         `json:"posted_by"`
}

// Server-assigned signal fields. They override same-named payload keys.
const (
	SignalTimestampField = "timestamp"
	SignalPostedByField  = "posted_by"
)

// Document flattens the signal into the stored layout: the payload keys
// plus the server fields.
func (s *Signal) Document() map[string]any {
	doc := make(map[string]any, len(s.Payload)+2)
	for k, v := range s.Payload {
		doc[k] = v
	}
	doc[SignalTimestampField] = s.Timestamp
	doc[SignalPostedByField] = s.PostedBy
	return doc
}
