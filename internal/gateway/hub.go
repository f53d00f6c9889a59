package gateway

import (
	"context"
	"sync"
	"time"

	"beacon-chat/internal/domain/account"
	"beacon-chat/internal/domain/message"
	"beacon-chat/internal/services"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/google/uuid"
)

// ConversationGate answers the membership question for room admission and
// message authorization.
type ConversationGate interface {
	IsParticipant(ctx context.Context, conversationID, accountID uuid.UUID) (bool, error)
}

// MessageStore persists messages and receipts on behalf of the gateway.
type MessageStore interface {
	Send(ctx context.Context, in services.SendMessageInput) (message.Message, error)
	MarkRead(ctx context.Context, conversationID, accountID uuid.UUID, messageIDs []uuid.UUID) ([]uuid.UUID, error)
}

// PresenceStore persists presence transitions to the account store.
type PresenceStore interface {
	SetPresence(ctx context.Context, accountID uuid.UUID, online bool, connectionID string) error
}

// MessageLimiter throttles send-message events per identity.
type MessageLimiter interface {
	AllowMessage(ctx context.Context, accountID string) (bool, error)
}

// Hub owns the presence registry and the per-conversation broadcast rooms.
// Room membership is distinct from conversation membership: leaving a room
// does not leave the conversation's participant list.
type Hub struct {
	registry      *Registry
	conversations ConversationGate
	messages      MessageStore
	presence      PresenceStore
	limiter       MessageLimiter
	logger        *Logger

	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Client]struct{}
}

func NewHub(registry *Registry, conversations ConversationGate, messages MessageStore, presence PresenceStore, limiter MessageLimiter, logger *Logger) *Hub {
	return &Hub{
		registry:      registry,
		conversations: conversations,
		messages:      messages,
		presence:      presence,
		limiter:       limiter,
		logger:        logger,
		rooms:         make(map[uuid.UUID]map[*Client]struct{}),
	}
}

// Register binds the client in the registry, persists the online transition
// and announces it. A previous connection for the same identity is closed;
// its own cleanup will find the registry already rebound and skip the
// offline transition.
func (h *Hub) Register(ctx context.Context, c *Client) {
	prev := h.registry.Register(c.accountID, c)
	if prev != nil {
		h.logger.Info("connection replaced", c.accountID, prev.connectionID)
		prev.conn.Close()
	}

	// Presence is a user-account concern; admin connections are registered
	// for delivery but leave no presence trail.
	if c.kind == account.KindUser {
		if err := h.presence.SetPresence(ctx, c.accountID, true, c.connectionID); err != nil {
			h.logger.Error("persist online failed", c.accountID, c.connectionID, err)
		}
	}

	if payload, err := Encode(EventUserOnline, PresenceEvent{AccountID: c.accountID}); err == nil {
		h.BroadcastToAll(payload, c)
	}

	h.logger.Info("client connected", c.accountID, c.connectionID)
}

// Unregister runs the disconnect transition: leave all rooms, drop the
// registry binding, persist offline with last-seen and announce it. Callers
// guarantee exactly-once via the client's close guard. Cleanup failures are
// logged only; there is no caller left to notify.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	for conversationID := range c.rooms {
		h.removeFromRoom(c, conversationID)
	}
	wasCurrent := h.registry.Unregister(c.accountID, c)
	c.closed = true
	close(c.send)
	h.mu.Unlock()

	if !wasCurrent {
		h.logger.Info("stale connection closed", c.accountID, c.connectionID)
		return
	}

	if c.kind == account.KindUser {
		if err := h.presence.SetPresence(context.Background(), c.accountID, false, ""); err != nil {
			h.logger.Error("persist offline failed", c.accountID, c.connectionID, err)
		}
	}

	lastSeen := time.Now()
	if payload, err := Encode(EventUserOffline, PresenceEvent{AccountID: c.accountID, LastSeen: &lastSeen}); err == nil {
		h.BroadcastToAll(payload, c)
	}

	h.logger.Info("client disconnected", c.accountID, c.connectionID)
}

// JoinRoom re-verifies conversation membership on every attempt before
// admitting the connection to the room, then notifies the other members.
func (h *Hub) JoinRoom(ctx context.Context, c *Client, conversationID uuid.UUID) error {
	ok, err := h.conversations.IsParticipant(ctx, conversationID, c.accountID)
	if err != nil {
		return err
	}
	if !ok {
		return beacon_errors.ErrNotParticipant
	}

	h.mu.Lock()
	if h.rooms[conversationID] == nil {
		h.rooms[conversationID] = make(map[*Client]struct{})
	}
	h.rooms[conversationID][c] = struct{}{}
	c.rooms[conversationID] = struct{}{}
	h.mu.Unlock()

	if payload, err := Encode(EventUserJoined, RoomEvent{ConversationID: conversationID, AccountID: c.accountID}); err == nil {
		h.BroadcastToRoom(conversationID, payload, c)
	}
	return nil
}

// LeaveRoom is unconditional: a connection may drop out of a broadcast room
// without leaving the conversation's participant list.
func (h *Hub) LeaveRoom(c *Client, conversationID uuid.UUID) {
	h.mu.Lock()
	h.removeFromRoom(c, conversationID)
	h.mu.Unlock()

	if payload, err := Encode(EventUserLeft, RoomEvent{ConversationID: conversationID, AccountID: c.accountID}); err == nil {
		h.BroadcastToRoom(conversationID, payload, c)
	}
}

// removeFromRoom requires h.mu held.
func (h *Hub) removeFromRoom(c *Client, conversationID uuid.UUID) {
	if members, ok := h.rooms[conversationID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, conversationID)
		}
	}
	delete(c.rooms, conversationID)
}

// BroadcastToRoom sends the payload to every connection in the room, except
// the excluded one when set.
func (h *Hub) BroadcastToRoom(conversationID uuid.UUID, payload []byte, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for member := range h.rooms[conversationID] {
		if member == except {
			continue
		}
		h.trySend(member, payload)
	}
}

// NotifyNewMessage fans a message persisted outside the socket path (REST
// send) out to the conversation's room.
func (h *Hub) NotifyNewMessage(m message.Message) {
	h.notifyRoom(EventNewMessage, m)
}

// NotifyMessageEdited announces an edit to the room so live clients can
// replace the message in place rather than append it.
func (h *Hub) NotifyMessageEdited(m message.Message) {
	h.notifyRoom(EventMessageEdited, m)
}

// NotifyMessageDeleted announces a soft delete; m must already be the
// masked view.
func (h *Hub) NotifyMessageDeleted(m message.Message) {
	h.notifyRoom(EventMessageDeleted, m)
}

func (h *Hub) notifyRoom(event string, m message.Message) {
	payload, err := Encode(event, FromMessage(m))
	if err != nil {
		return
	}
	h.BroadcastToRoom(m.ConversationID, payload, nil)
}

// NotifyMessagesRead announces receipts recorded outside the socket path.
func (h *Hub) NotifyMessagesRead(conversationID, readerID uuid.UUID, messageIDs []uuid.UUID) {
	payload, err := Encode(EventMessagesRead, MessagesReadEvent{
		ConversationID: conversationID,
		AccountID:      readerID,
		MessageIDs:     messageIDs,
	})
	if err != nil {
		return
	}
	h.BroadcastToRoom(conversationID, payload, nil)
}

// BroadcastToAll sends the payload to every registered connection, except
// the excluded one when set.
func (h *Hub) BroadcastToAll(payload []byte, except *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range h.registry.OnlineIDs() {
		c, ok := h.registry.Lookup(id)
		if !ok || c == except {
			continue
		}
		h.trySend(c, payload)
	}
}

// RoomSize reports the number of live connections in a conversation's room.
func (h *Hub) RoomSize(conversationID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[conversationID])
}

// Send delivers a payload to one connection, dropping it if the buffer is
// full or the connection is already closed.
func (h *Hub) Send(c *Client, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	h.trySend(c, payload)
}

// trySend requires h.mu held (read or write).
func (h *Hub) trySend(c *Client, payload []byte) {
	if c.closed {
		return
	}
	select {
	case c.send <- payload:
	default:
		h.logger.Warn("client send buffer full", c.accountID, c.connectionID)
	}
}

// Stop closes every live connection and clears the registry.
func (h *Hub) Stop() {
	for _, id := range h.registry.OnlineIDs() {
		if c, ok := h.registry.Lookup(id); ok {
			c.conn.Close()
		}
	}
	h.registry.Clear()
}
