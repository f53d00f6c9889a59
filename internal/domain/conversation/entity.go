package conversation

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Conversation types
const (
	TypeDirect = "DIRECT"
	TypeGroup  = "GROUP"
)

// Conversation represents the conversations table
type Conversation struct {
	ID   uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Type string         `gorm:"type:text;not null"`
	Name sql.NullString `gorm:"type:text"`

	// Denormalized pointer to the newest message, updated on every send.
	LastMessageID  uuid.NullUUID `gorm:"type:uuid"`
	LastActivityAt time.Time     `gorm:"not null;index:idx_conversations_activity,sort:desc"`

	CreatedBy uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP"`

	// Relationships
	Participants []Participant `gorm:"foreignKey:ConversationID"`
}

// Participant represents the participants table. A per-user "delete" of a
// conversation sets LeftAt instead of removing the row, so history survives.
type Participant struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID      uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_participants_account"`
	JoinedAt       time.Time `gorm:"not null"`
	LeftAt         sql.NullTime
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Participant) TableName() string {
	return "participants"
}

// HasActiveParticipant reports whether the account is a current (not left)
// participant of the conversation. Requires Participants to be loaded.
func (c Conversation) HasActiveParticipant(accountID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.AccountID == accountID && !p.LeftAt.Valid {
			return true
		}
	}
	return false
}
