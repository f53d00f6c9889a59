package services

import (
	"context"
	"database/sql"
	"time"

	"beacon-chat/internal/domain/conversation"
	"beacon-chat/internal/repository"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/google/uuid"
)

type ConversationService struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
}

func NewConversationService(conversationRepo repository.ConversationRepository, messageRepo repository.MessageRepository) *ConversationService {
	return &ConversationService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
	}
}

type CreateConversationInput struct {
	Type           string
	Name           string
	CreatorID      uuid.UUID
	ParticipantIDs []uuid.UUID // must include the creator
}

// ConversationView decorates a conversation with its on-demand unread count.
type ConversationView struct {
	conversation.Conversation
	UnreadCount int64
}

// Create enforces participant-count rules at write time: direct threads have
// exactly two participants, groups at least two. Direct creation first looks
// up the existing thread for the unordered pair and returns it unchanged.
func (s *ConversationService) Create(ctx context.Context, in CreateConversationInput) (conversation.Conversation, error) {
	ids := dedupeIDs(in.ParticipantIDs)

	switch in.Type {
	case conversation.TypeDirect:
		if len(ids) != 2 {
			return conversation.Conversation{}, beacon_errors.ErrInvalidInput
		}
		existing, err := s.conversationRepo.GetDirectBetween(ctx, ids[0], ids[1])
		if err == nil {
			return existing, nil
		}
		if err != beacon_errors.ErrNotFound {
			return conversation.Conversation{}, err
		}
	case conversation.TypeGroup:
		if len(ids) < 2 {
			return conversation.Conversation{}, beacon_errors.ErrInvalidInput
		}
	default:
		return conversation.Conversation{}, beacon_errors.ErrInvalidInput
	}

	now := time.Now()
	conv := conversation.Conversation{
		ID:             uuid.New(),
		Type:           in.Type,
		CreatedBy:      in.CreatorID,
		LastActivityAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.Name != "" {
		conv.Name = sql.NullString{String: in.Name, Valid: true}
	}
	for _, id := range ids {
		conv.Participants = append(conv.Participants, conversation.Participant{
			ConversationID: conv.ID,
			AccountID:      id,
			JoinedAt:       now,
		})
	}

	if err := s.conversationRepo.Create(ctx, &conv); err != nil {
		return conversation.Conversation{}, err
	}
	return conv, nil
}

func (s *ConversationService) GetByID(ctx context.Context, conversationID, accountID uuid.UUID) (conversation.Conversation, error) {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	if !conv.HasActiveParticipant(accountID) {
		return conversation.Conversation{}, beacon_errors.ErrNotParticipant
	}
	return conv, nil
}

// ListForAccount returns the account's conversations ordered by last
// activity, each decorated with a point-in-time unread count.
func (s *ConversationService) ListForAccount(ctx context.Context, accountID uuid.UUID, page, limit int) ([]ConversationView, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, total, err := s.conversationRepo.GetAccountConversations(ctx, accountID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	views := make([]ConversationView, 0, len(items))
	for _, conv := range items {
		unread, err := s.messageRepo.UnreadCount(ctx, conv.ID, accountID)
		if err != nil {
			return nil, 0, err
		}
		views = append(views, ConversationView{Conversation: conv, UnreadCount: unread})
	}
	return views, total, nil
}

// AddMember adds a participant to a group conversation. Only the creator may
// add members; direct threads cannot grow.
func (s *ConversationService) AddMember(ctx context.Context, conversationID, actorID, memberID uuid.UUID) error {
	conv, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return err
	}
	if conv.Type != conversation.TypeGroup {
		return beacon_errors.ErrInvalidInput
	}
	if conv.CreatedBy != actorID {
		return beacon_errors.ErrForbidden
	}
	return s.conversationRepo.AddParticipant(ctx, &conversation.Participant{
		ConversationID: conversationID,
		AccountID:      memberID,
		JoinedAt:       time.Now(),
	})
}

// Leave removes the account from the participant set. For direct threads
// this is the per-user soft delete; for groups it is an explicit leave.
func (s *ConversationService) Leave(ctx context.Context, conversationID, accountID uuid.UUID) error {
	return s.conversationRepo.RemoveParticipant(ctx, conversationID, accountID)
}

// IsParticipant is the membership gate used by the realtime gateway. It is
// re-verified on every room join since membership can change between joins.
func (s *ConversationService) IsParticipant(ctx context.Context, conversationID, accountID uuid.UUID) (bool, error) {
	return s.conversationRepo.IsParticipant(ctx, conversationID, accountID)
}

func (s *ConversationService) UnreadCount(ctx context.Context, conversationID, accountID uuid.UUID) (int64, error) {
	return s.messageRepo.UnreadCount(ctx, conversationID, accountID)
}

// HardDelete removes a conversation and all its messages. Admin bulk
// operation; regular deletion is always the soft, per-user leave.
func (s *ConversationService) HardDelete(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	deleted, err := s.messageRepo.BulkDeleteByConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if err := s.conversationRepo.HardDelete(ctx, conversationID); err != nil {
		return deleted, err
	}
	return deleted, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
