package domain

import (
	"time"

	"github.com/google/uuid"
)

type Note struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// NoteChanges is a partial update; nil fields are left untouched.
type NoteChanges struct {
	Title   *string
	Content *string
}

// IsEmpty reports whether no field was supplied.
func (c NoteChanges) IsEmpty() bool {
	return c.Title == nil && c.Content == nil
}

type NoteEventType string

const (
	NoteEventCreated NoteEventType = "NOTE_CREATED"
	NoteEventUpdated NoteEventType = "NOTE_UPDATED"
	NoteEventDeleted NoteEventType = "NOTE_DELETED"
)

// NoteEvent describes a change to one of a user's notes. Note is nil for deletions.
type NoteEvent struct {
	Type   NoteEventType
	NoteID uuid.UUID
	Note   *Note
}
