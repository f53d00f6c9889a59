package repository

import (
	"context"
	"errors"
	"time"

	"beacon-chat/internal/domain/message"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return beacon_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).
		Preload("Receipts").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, beacon_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

// GetConversationMessages returns messages ordered by creation time, newest
// first, before the given cursor. Soft-deleted rows are included; masking is
// the service layer's job so deleted messages keep their position.
func (r *PostgresMessageRepository) GetConversationMessages(ctx context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]message.Message, error) {
	var messages []message.Message
	q := r.db.WithContext(ctx).
		Preload("Receipts").
		Where("conversation_id = ?", conversationID)

	if !before.IsZero() {
		q = q.Where("created_at < ?", before)
	}

	err := q.Order("created_at DESC").Limit(limit).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *PostgresMessageRepository) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ? AND is_deleted = false", id).
		Updates(map[string]interface{}{
			"content":   content,
			"is_edited": true,
			"edited_at": editedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return beacon_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresMessageRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("id = ? AND is_deleted = false", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return beacon_errors.ErrNotFound
	}
	return nil
}

// MarkRead appends a read receipt. Re-marking is a no-op thanks to the
// composite primary key and DO NOTHING on conflict.
func (r *PostgresMessageRepository) MarkRead(ctx context.Context, messageID, accountID uuid.UUID, at time.Time) error {
	receipt := message.Receipt{
		MessageID: messageID,
		AccountID: accountID,
		ReadAt:    at,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&receipt).Error
}

func (r *PostgresMessageRepository) GetReceipts(ctx context.Context, messageID uuid.UUID) ([]message.Receipt, error) {
	var receipts []message.Receipt
	err := r.db.WithContext(ctx).
		Where("message_id = ?", messageID).
		Find(&receipts).Error
	if err != nil {
		return nil, err
	}
	return receipts, nil
}

// UnreadCount is a point-in-time scan: messages in the conversation not
// authored by the account, not deleted, and without a receipt from it.
func (r *PostgresMessageRepository) UnreadCount(ctx context.Context, conversationID, accountID uuid.UUID) (int64, error) {
	var count int64

	subQuery := r.db.Model(&message.Receipt{}).
		Select("message_id").
		Where("account_id = ?", accountID)

	err := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Where("conversation_id = ? AND sender_id != ? AND is_deleted = false AND id NOT IN (?)",
			conversationID, accountID, subQuery).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresMessageRepository) BulkDeleteByConversation(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subQuery := tx.Model(&message.Message{}).
			Select("id").
			Where("conversation_id = ?", conversationID)
		if err := tx.Delete(&message.Receipt{}, "message_id IN (?)", subQuery).Error; err != nil {
			return err
		}
		res := tx.Delete(&message.Message{}, "conversation_id = ?", conversationID)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
