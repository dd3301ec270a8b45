package store

import "time"

type NoteType string

const (
	NoteTypeText NoteType = "text"
	NoteTypeFile NoteType = "file"
)

// Note is the persisted record pairing user content with its AI summary.
// The JSON field names are the wire contract with clients and must not change.
type Note struct {
	ID           string   `json:"id"` // UUID, store-assigned
	OwnerID      string   `json:"ownerId"`
	Title        string   `json:"title"`
	OriginalText string   `json:"originalText"`
	Summary      string   `json:"summary"`
	Type         NoteType `json:"type"`
	FileURL      string   `json:"fileUrl,omitempty"` // set iff an uploaded file backs this note
	Timestamp    int64    `json:"timestamp"`         // creation time, epoch milliseconds
}

// UserProfile is created exactly once at signup. Only Name and AvatarURL are
// mutable afterwards.
type UserProfile struct {
	UID          string    `json:"uid"` // UUID, store-assigned
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	PasswordHash string    `json:"-"` // never serialized
	CreatedAt    time.Time `json:"-"`
}

// NotePatch is a partial field merge for an existing note. Nil fields are left
// untouched. Type and Timestamp are immutable and deliberately absent.
type NotePatch struct {
	Title        *string
	OriginalText *string
	Summary      *string
	FileURL      *string
}

// UserPatch covers the mutable profile fields.
type UserPatch struct {
	Name      *string
	AvatarURL *string
}
