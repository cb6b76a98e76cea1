package models

import (
	"time"
)

// Room groups participants, shared file metadata and chat history under a
// short shareable code.
type Room struct {
	Code      string     `json:"code" firestore:"code"`
	CreatedAt time.Time  `json:"created_at" firestore:"created_at"`
	CreatedBy string     `json:"created_by" firestore:"created_by"`
	Users     []string   `json:"users" firestore:"users"`
	Files     []FileMeta `json:"files" firestore:"files"`
	Active    bool       `json:"active" firestore:"active"`
}

// NewRoom returns an active room whose only user is its creator.
func NewRoom(code string, caller Caller, now time.Time) *Room {
	return &Room{
		Code:      code,
		CreatedAt: now,
		CreatedBy: caller.ID,
		Users:     []string{caller.ID},
		Files:     []FileMeta{},
		Active:    true,
	}
}

// FileMeta describes a file shared in a room. Only metadata is stored.
type FileMeta struct {
	ID         string    `json:"id" firestore:"id"`
	Name       string    `json:"name" firestore:"name"`
	Size       int64     `json:"size" firestore:"size"`
	Type       string    `json:"type" firestore:"type"`
	UploadedAt time.Time `json:"uploaded_at" firestore:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by" firestore:"uploaded_by"`
}

// FileUpload is the caller-supplied part of a FileMeta.
type FileUpload struct {
	Name string
	Size int64
	Type string
}
