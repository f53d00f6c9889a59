package repository

import (
	"context"
	"time"

	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/domain/conversation"
	"beacon-chat/internal/domain/message"

	"github.com/google/uuid"
)

// AccountRepository persists credentialed principals (users and admins).
type AccountRepository interface {
	Create(ctx context.Context, a *account.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (account.Account, error)
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	GetByUsername(ctx context.Context, username string) (account.Account, error)
	Update(ctx context.Context, a account.Account) error
	SetPresence(ctx context.Context, id uuid.UUID, online bool, connectionID string) error
	RecordFailedLogin(ctx context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error
	ResetLockout(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]account.Account, error)
	List(ctx context.Context, kind string, page, limit int) ([]account.Account, int64, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// ConversationRepository persists direct and group threads.
type ConversationRepository interface {
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	GetDirectBetween(ctx context.Context, a, b uuid.UUID) (conversation.Conversation, error)
	GetAccountConversations(ctx context.Context, accountID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error)
	UpdateLastMessage(ctx context.Context, conversationID, messageID uuid.UUID, at time.Time) error
	AddParticipant(ctx context.Context, p *conversation.Participant) error
	RemoveParticipant(ctx context.Context, conversationID, accountID uuid.UUID) error
	IsParticipant(ctx context.Context, conversationID, accountID uuid.UUID) (bool, error)
	HardDelete(ctx context.Context, id uuid.UUID) error
}

// MessageRepository persists messages and their read receipts.
type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (message.Message, error)
	GetConversationMessages(ctx context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]message.Message, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	MarkRead(ctx context.Context, messageID, accountID uuid.UUID, at time.Time) error
	GetReceipts(ctx context.Context, messageID uuid.UUID) ([]message.Receipt, error)
	UnreadCount(ctx context.Context, conversationID, accountID uuid.UUID) (int64, error)
	BulkDeleteByConversation(ctx context.Context, conversationID uuid.UUID) (int64, error)
}
