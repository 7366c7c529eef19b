package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/notes-api/internal/domain"
)

type MessageType string

const (
	// Server to Client
	MessageTypeConnected   MessageType = "CONNECTED"
	MessageTypeNoteCreated MessageType = MessageType(domain.NoteEventCreated)
	MessageTypeNoteUpdated MessageType = MessageType(domain.NoteEventUpdated)
	MessageTypeNoteDeleted MessageType = MessageType(domain.NoteEventDeleted)
	MessageTypeSessionEnd  MessageType = "SESSION_ENDED"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

type ConnectedPayload struct {
	Username  string `json:"username"`
	ExpiresAt int64  `json:"expiresAt"`
}

type NotePayload struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type NoteEventPayload struct {
	NoteID string       `json:"noteId"`
	Note   *NotePayload `json:"note,omitempty"`
}

type SessionEndPayload struct {
	Reason string `json:"reason"`
}

func noteEventMessage(event domain.NoteEvent) (*Message, error) {
	payload := NoteEventPayload{NoteID: event.NoteID.String()}
	if event.Note != nil {
		payload.Note = &NotePayload{
			ID:      event.Note.ID.String(),
			UserID:  event.Note.UserID.String(),
			Title:   event.Note.Title,
			Content: event.Note.Content,
		}
	}
	return NewMessage(MessageType(event.Type), payload)
}
