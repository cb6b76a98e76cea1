package models

import "time"

// Message represents a chat message in a room's message collection.
// ID must stay the first field: the redis store relies on the encoded
// member sorting by ID within one timestamp.
type Message struct {
	ID        string    `json:"id" firestore:"id"`
	Text      string    `json:"text" firestore:"text"`
	Sender    string    `json:"sender" firestore:"sender"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
	PostedBy  string    `json:"posted_by,omitempty" firestore:"posted_by"`
}
