package services

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/domain/conversation"
	"beacon-chat/internal/domain/message"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/google/uuid"
)

// In-memory repository fakes mirroring the Postgres implementations'
// semantics closely enough for service-level tests.

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]account.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]account.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[a.ID] = *a
	return nil
}

func (r *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return account.Account{}, beacon_errors.ErrNotFound
	}
	return a, nil
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return account.Account{}, beacon_errors.ErrNotFound
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return account.Account{}, beacon_errors.ErrNotFound
}

func (r *fakeAccountRepo) Update(_ context.Context, a account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accounts[a.ID]; !ok {
		return beacon_errors.ErrNotFound
	}
	r.accounts[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) SetPresence(_ context.Context, id uuid.UUID, online bool, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return beacon_errors.ErrNotFound
	}
	a.IsOnline = online
	if online {
		a.ConnectionID = sql.NullString{String: connectionID, Valid: true}
	} else {
		a.ConnectionID = sql.NullString{}
		a.LastSeenAt = sql.NullTime{Time: time.Now(), Valid: true}
	}
	r.accounts[id] = a
	return nil
}

func (r *fakeAccountRepo) RecordFailedLogin(_ context.Context, id uuid.UUID, attempts int, lockedUntil *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return beacon_errors.ErrNotFound
	}
	a.FailedLoginAttempts = attempts
	if lockedUntil != nil {
		a.LockedUntil = sql.NullTime{Time: *lockedUntil, Valid: true}
	}
	r.accounts[id] = a
	return nil
}

func (r *fakeAccountRepo) ResetLockout(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return beacon_errors.ErrNotFound
	}
	a.FailedLoginAttempts = 0
	a.LockedUntil = sql.NullTime{}
	r.accounts[id] = a
	return nil
}

func (r *fakeAccountRepo) Search(_ context.Context, query string, limit int) ([]account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []account.Account
	for _, a := range r.accounts {
		if a.Kind != account.KindUser || !a.IsActive {
			continue
		}
		if strings.Contains(strings.ToLower(a.Username), q) ||
			strings.Contains(strings.ToLower(a.DisplayName), q) {
			out = append(out, a)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) List(_ context.Context, kind string, page, limit int) ([]account.Account, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []account.Account
	for _, a := range r.accounts {
		if kind == "" || a.Kind == kind {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAccountRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return beacon_errors.ErrNotFound
	}
	a.IsActive = false
	r.accounts[id] = a
	return nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]conversation.Conversation
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[uuid.UUID]conversation.Conversation)}
}

func (r *fakeConversationRepo) Create(_ context.Context, c *conversation.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[c.ID] = *c
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id uuid.UUID) (conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return conversation.Conversation{}, beacon_errors.ErrNotFound
	}
	return c, nil
}

func (r *fakeConversationRepo) GetDirectBetween(_ context.Context, a, b uuid.UUID) (conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.conversations {
		if c.Type != conversation.TypeDirect {
			continue
		}
		hasA, hasB := false, false
		for _, p := range c.Participants {
			if p.AccountID == a {
				hasA = true
			}
			if p.AccountID == b {
				hasB = true
			}
		}
		if hasA && hasB {
			return c, nil
		}
	}
	return conversation.Conversation{}, beacon_errors.ErrNotFound
}

func (r *fakeConversationRepo) GetAccountConversations(_ context.Context, accountID uuid.UUID, page, limit int) ([]conversation.Conversation, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []conversation.Conversation
	for _, c := range r.conversations {
		if c.HasActiveParticipant(accountID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivityAt.After(out[j].LastActivityAt)
	})
	return out, int64(len(out)), nil
}

func (r *fakeConversationRepo) UpdateLastMessage(_ context.Context, conversationID, messageID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return beacon_errors.ErrNotFound
	}
	c.LastMessageID = uuid.NullUUID{UUID: messageID, Valid: true}
	c.LastActivityAt = at
	r.conversations[conversationID] = c
	return nil
}

func (r *fakeConversationRepo) AddParticipant(_ context.Context, p *conversation.Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[p.ConversationID]
	if !ok {
		return beacon_errors.ErrNotFound
	}
	for i := range c.Participants {
		if c.Participants[i].AccountID == p.AccountID {
			c.Participants[i].LeftAt = sql.NullTime{}
			r.conversations[p.ConversationID] = c
			return nil
		}
	}
	c.Participants = append(c.Participants, *p)
	r.conversations[p.ConversationID] = c
	return nil
}

func (r *fakeConversationRepo) RemoveParticipant(_ context.Context, conversationID, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return beacon_errors.ErrNotFound
	}
	for i := range c.Participants {
		if c.Participants[i].AccountID == accountID {
			c.Participants[i].LeftAt = sql.NullTime{Time: time.Now(), Valid: true}
			r.conversations[conversationID] = c
			return nil
		}
	}
	return beacon_errors.ErrNotFound
}

func (r *fakeConversationRepo) IsParticipant(_ context.Context, conversationID, accountID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return false, nil
	}
	return c.HasActiveParticipant(accountID), nil
}

func (r *fakeConversationRepo) HardDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, id)
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages map[uuid.UUID]message.Message
	receipts map[uuid.UUID]map[uuid.UUID]time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{
		messages: make(map[uuid.UUID]message.Message),
		receipts: make(map[uuid.UUID]map[uuid.UUID]time.Time),
	}
}

func (r *fakeMessageRepo) Create(_ context.Context, m *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.ID] = *m
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, id uuid.UUID) (message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return message.Message{}, beacon_errors.ErrNotFound
	}
	m.Receipts = r.receiptsFor(id)
	return m, nil
}

func (r *fakeMessageRepo) GetConversationMessages(_ context.Context, conversationID uuid.UUID, before time.Time, limit int) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []message.Message
	for id, m := range r.messages {
		if m.ConversationID == conversationID && m.CreatedAt.Before(before) {
			m.Receipts = r.receiptsFor(id)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) UpdateContent(_ context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return beacon_errors.ErrNotFound
	}
	m.Content = content
	m.IsEdited = true
	m.EditedAt = sql.NullTime{Time: editedAt, Valid: true}
	r.messages[id] = m
	return nil
}

func (r *fakeMessageRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return beacon_errors.ErrNotFound
	}
	m.IsDeleted = true
	m.DeletedAt = sql.NullTime{Time: time.Now(), Valid: true}
	r.messages[id] = m
	return nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, messageID, accountID uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[messageID]; !ok {
		return beacon_errors.ErrNotFound
	}
	if r.receipts[messageID] == nil {
		r.receipts[messageID] = make(map[uuid.UUID]time.Time)
	}
	if _, seen := r.receipts[messageID][accountID]; seen {
		return nil // conflict target: do nothing
	}
	r.receipts[messageID][accountID] = at
	return nil
}

func (r *fakeMessageRepo) GetReceipts(_ context.Context, messageID uuid.UUID) ([]message.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.receiptsFor(messageID), nil
}

func (r *fakeMessageRepo) UnreadCount(_ context.Context, conversationID, accountID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for id, m := range r.messages {
		if m.ConversationID != conversationID || m.SenderID == accountID || m.IsDeleted {
			continue
		}
		if _, read := r.receipts[id][accountID]; !read {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) BulkDeleteByConversation(_ context.Context, conversationID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed int64
	for id, m := range r.messages {
		if m.ConversationID == conversationID {
			delete(r.messages, id)
			delete(r.receipts, id)
			removed++
		}
	}
	return removed, nil
}

// receiptsFor requires r.mu held.
func (r *fakeMessageRepo) receiptsFor(messageID uuid.UUID) []message.Receipt {
	var out []message.Receipt
	for accountID, at := range r.receipts[messageID] {
		out = append(out, message.Receipt{MessageID: messageID, AccountID: accountID, ReadAt: at})
	}
	return out
}
