package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Message kinds
const (
	KindText   = "TEXT"
	KindImage  = "IMAGE"
	KindFile   = "FILE"
	KindSystem = "SYSTEM"
)

// DeletedPlaceholder replaces the content of a soft-deleted message in
// every read view. The row itself is retained for ordering and audit.
const DeletedPlaceholder = "This message was deleted"

// Message represents the messages table
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index:idx_messages_conversation"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	Kind           string    `gorm:"type:text;not null"`
	Content        string    `gorm:"type:text"`

	// File metadata, set for IMAGE/FILE kinds, hidden once deleted.
	FileURL  sql.NullString `gorm:"type:text"`
	FileName sql.NullString `gorm:"type:text"`
	FileSize sql.NullInt64

	ReplyToID uuid.NullUUID `gorm:"type:uuid"`

	IsEdited  bool `gorm:"default:false"`
	EditedAt  sql.NullTime
	IsDeleted bool `gorm:"default:false"`
	DeletedAt sql.NullTime

	CreatedAt time.Time `gorm:"not null;index:idx_messages_created,sort:desc"`

	// Relationships
	Receipts []Receipt `gorm:"foreignKey:MessageID"`
}

// Receipt represents the message_receipts table: one row per reader per
// message, append-only and idempotent. The composite primary key is what
// lets ON CONFLICT DO NOTHING suppress duplicate marks.
type Receipt struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey;index:idx_receipts_account"`
	ReadAt    time.Time `gorm:"not null"`
}

func (Message) TableName() string {
	return "messages"
}

func (Receipt) TableName() string {
	return "message_receipts"
}

// ReadBy reports whether the account already has a receipt on the message.
// Requires Receipts to be loaded.
func (m Message) ReadBy(accountID uuid.UUID) bool {
	for _, r := range m.Receipts {
		if r.AccountID == accountID {
			return true
		}
	}
	return false
}

// Masked returns the read view of the message: soft-deleted messages keep
// their position but expose only the placeholder and no file metadata.
func (m Message) Masked() Message {
	if !m.IsDeleted {
		return m
	}
	masked := m
	masked.Content = DeletedPlaceholder
	masked.FileURL = sql.NullString{}
	masked.FileName = sql.NullString{}
	masked.FileSize = sql.NullInt64{}
	return masked
}
