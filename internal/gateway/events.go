package gateway

import (
	"encoding/json"
	"time"

	"beacon-chat/internal/domain/message"

	"github.com/google/uuid"
)

// Client -> server events
const (
	EventJoinConversation  = "join-conversation"
	EventLeaveConversation = "leave-conversation"
	EventSendMessage       = "send-message"
	EventTypingStart       = "typing-start"
	EventTypingStop        = "typing-stop"
	EventMarkMessagesRead  = "mark-messages-read"
	EventUpdateStatus      = "update-status"
)

// Server -> client events
const (
	EventNewMessage        = "new-message"
	EventMessageEdited     = "message-edited"
	EventMessageDeleted    = "message-deleted"
	EventUserOnline        = "user-online"
	EventUserOffline       = "user-offline"
	EventUserTyping        = "user-typing"
	EventUserStoppedTyping = "user-stopped-typing"
	EventMessagesRead      = "messages-read"
	EventUserStatusChanged = "user-status-changed"
	EventUserJoined        = "user-joined-conversation"
	EventUserLeft          = "user-left-conversation"
	EventError             = "error"
)

// Envelope is the wire frame for every gateway event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound payloads

type joinPayload struct {
	ConversationID uuid.UUID `json:"conversation_id"`
}

type sendMessagePayload struct {
	ConversationID uuid.UUID  `json:"conversation_id"`
	Kind           string     `json:"kind"`
	Content        string     `json:"content"`
	FileURL        string     `json:"file_url,omitempty"`
	FileName       string     `json:"file_name,omitempty"`
	FileSize       int64      `json:"file_size,omitempty"`
	ReplyToID      *uuid.UUID `json:"reply_to_id,omitempty"`
}

type markReadPayload struct {
	ConversationID uuid.UUID   `json:"conversation_id"`
	MessageIDs     []uuid.UUID `json:"message_ids"`
}

type statusPayload struct {
	Status string `json:"status"`
}

// Outbound payloads

type MessageEvent struct {
	ID             uuid.UUID  `json:"id"`
	ConversationID uuid.UUID  `json:"conversation_id"`
	SenderID       uuid.UUID  `json:"sender_id"`
	Kind           string     `json:"kind"`
	Content        string     `json:"content"`
	FileURL        string     `json:"file_url,omitempty"`
	FileName       string     `json:"file_name,omitempty"`
	FileSize       int64      `json:"file_size,omitempty"`
	ReplyToID      *uuid.UUID `json:"reply_to_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type PresenceEvent struct {
	AccountID uuid.UUID  `json:"account_id"`
	LastSeen  *time.Time `json:"last_seen,omitempty"`
}

type TypingEvent struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	AccountID      uuid.UUID `json:"account_id"`
}

type MessagesReadEvent struct {
	ConversationID uuid.UUID   `json:"conversation_id"`
	AccountID      uuid.UUID   `json:"account_id"`
	MessageIDs     []uuid.UUID `json:"message_ids"`
}

type StatusEvent struct {
	AccountID uuid.UUID `json:"account_id"`
	Status    string    `json:"status"`
}

type RoomEvent struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	AccountID      uuid.UUID `json:"account_id"`
}

type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Encode marshals an envelope with a typed payload.
func Encode(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

// FromMessage shapes the broadcast view of a persisted message.
func FromMessage(m message.Message) MessageEvent {
	ev := MessageEvent{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Kind:           m.Kind,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
	if m.FileURL.Valid {
		ev.FileURL = m.FileURL.String
	}
	if m.FileName.Valid {
		ev.FileName = m.FileName.String
	}
	if m.FileSize.Valid {
		ev.FileSize = m.FileSize.Int64
	}
	if m.ReplyToID.Valid {
		id := m.ReplyToID.UUID
		ev.ReplyToID = &id
	}
	return ev
}
