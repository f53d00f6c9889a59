package services

import (
	"context"
	"database/sql"
	"time"

	"beacon-chat/internal/domain/message"
	"beacon-chat/internal/repository"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageService struct {
	db               *gorm.DB
	messageRepo      repository.MessageRepository
	conversationRepo repository.ConversationRepository
	editWindow       time.Duration
}

// NewMessageService wires the message flows. db may be nil (tests); when set,
// Send runs the message insert and the conversation pointer update in one
// transaction.
func NewMessageService(db *gorm.DB, messageRepo repository.MessageRepository, conversationRepo repository.ConversationRepository, editWindow time.Duration) *MessageService {
	return &MessageService{
		db:               db,
		messageRepo:      messageRepo,
		conversationRepo: conversationRepo,
		editWindow:       editWindow,
	}
}

type SendMessageInput struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Kind           string
	Content        string
	FileURL        string
	FileName       string
	FileSize       int64
	ReplyToID      *uuid.UUID
}

// Send validates membership, persists the message and moves the
// conversation's last-message pointer and activity timestamp.
func (s *MessageService) Send(ctx context.Context, in SendMessageInput) (message.Message, error) {
	if err := validateSend(in); err != nil {
		return message.Message{}, err
	}

	ok, err := s.conversationRepo.IsParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return message.Message{}, err
	}
	if !ok {
		return message.Message{}, beacon_errors.ErrNotParticipant
	}

	if in.ReplyToID != nil {
		parent, err := s.messageRepo.GetByID(ctx, *in.ReplyToID)
		if err != nil {
			return message.Message{}, err
		}
		if parent.ConversationID != in.ConversationID {
			return message.Message{}, beacon_errors.ErrInvalidInput
		}
	}

	now := time.Now()
	msg := message.Message{
		ID:             uuid.New(),
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Kind:           in.Kind,
		Content:        in.Content,
		CreatedAt:      now,
	}
	if in.FileURL != "" {
		msg.FileURL = sql.NullString{String: in.FileURL, Valid: true}
	}
	if in.FileName != "" {
		msg.FileName = sql.NullString{String: in.FileName, Valid: true}
	}
	if in.FileSize > 0 {
		msg.FileSize = sql.NullInt64{Int64: in.FileSize, Valid: true}
	}
	if in.ReplyToID != nil {
		msg.ReplyToID = uuid.NullUUID{UUID: *in.ReplyToID, Valid: true}
	}

	if s.db != nil {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			msgRepo := repository.NewMessageRepository(tx)
			convRepo := repository.NewConversationRepository(tx)
			if err := msgRepo.Create(ctx, &msg); err != nil {
				return err
			}
			return convRepo.UpdateLastMessage(ctx, in.ConversationID, msg.ID, now)
		})
	} else {
		if err = s.messageRepo.Create(ctx, &msg); err == nil {
			err = s.conversationRepo.UpdateLastMessage(ctx, in.ConversationID, msg.ID, now)
		}
	}
	if err != nil {
		return message.Message{}, err
	}
	return msg, nil
}

// List returns the conversation's messages for a participant, newest first,
// with soft-deleted rows masked to the placeholder view.
func (s *MessageService) List(ctx context.Context, conversationID, accountID uuid.UUID, before time.Time, limit int) ([]message.Message, error) {
	ok, err := s.conversationRepo.IsParticipant(ctx, conversationID, accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, beacon_errors.ErrNotParticipant
	}

	if limit <= 0 || limit > 100 {
		limit = 50
	}
	messages, err := s.messageRepo.GetConversationMessages(ctx, conversationID, before, limit)
	if err != nil {
		return nil, err
	}

	for i := range messages {
		messages[i] = messages[i].Masked()
	}
	return messages, nil
}

// Edit replaces the content within the edit window. The boundary itself is
// still editable; one second past it is not.
func (s *MessageService) Edit(ctx context.Context, messageID, accountID uuid.UUID, content string) (message.Message, error) {
	if content == "" {
		return message.Message{}, beacon_errors.ErrInvalidInput
	}

	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return message.Message{}, err
	}
	if msg.SenderID != accountID {
		return message.Message{}, beacon_errors.ErrForbidden
	}
	if msg.IsDeleted {
		return message.Message{}, beacon_errors.ErrNotFound
	}

	now := time.Now()
	if now.Sub(msg.CreatedAt) > s.editWindow {
		return message.Message{}, beacon_errors.ErrEditWindow
	}

	if err := s.messageRepo.UpdateContent(ctx, messageID, content, now); err != nil {
		return message.Message{}, err
	}

	msg.Content = content
	msg.IsEdited = true
	msg.EditedAt = sql.NullTime{Time: now, Valid: true}
	return msg, nil
}

// Delete soft-deletes: the row keeps its position, readers see the
// placeholder and no file metadata.
func (s *MessageService) Delete(ctx context.Context, messageID, accountID uuid.UUID) error {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != accountID {
		return beacon_errors.ErrForbidden
	}
	return s.messageRepo.SoftDelete(ctx, messageID)
}

// MarkRead appends receipts for the caller on each named message. Re-marking
// is a no-op, messages that don't exist or belong to another conversation are
// silently skipped. Returns the ids actually marked.
func (s *MessageService) MarkRead(ctx context.Context, conversationID, accountID uuid.UUID, messageIDs []uuid.UUID) ([]uuid.UUID, error) {
	ok, err := s.conversationRepo.IsParticipant(ctx, conversationID, accountID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, beacon_errors.ErrNotParticipant
	}

	now := time.Now()
	marked := make([]uuid.UUID, 0, len(messageIDs))
	for _, id := range messageIDs {
		msg, err := s.messageRepo.GetByID(ctx, id)
		if err != nil {
			if err == beacon_errors.ErrNotFound {
				continue
			}
			return nil, err
		}
		if msg.ConversationID != conversationID {
			continue
		}
		if err := s.messageRepo.MarkRead(ctx, id, accountID, now); err != nil {
			return nil, err
		}
		marked = append(marked, id)
	}
	return marked, nil
}

func (s *MessageService) GetByID(ctx context.Context, messageID uuid.UUID) (message.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return message.Message{}, err
	}
	return msg.Masked(), nil
}

func (s *MessageService) UnreadCount(ctx context.Context, conversationID, accountID uuid.UUID) (int64, error) {
	return s.messageRepo.UnreadCount(ctx, conversationID, accountID)
}

func validateSend(in SendMessageInput) error {
	switch in.Kind {
	case message.KindText, message.KindSystem:
		if in.Content == "" {
			return beacon_errors.ErrInvalidInput
		}
	case message.KindImage, message.KindFile:
		if in.FileURL == "" {
			return beacon_errors.ErrInvalidInput
		}
	default:
		return beacon_errors.ErrInvalidInput
	}
	return nil
}
