package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"beacon-chat/internal/domain/message"
	"beacon-chat/internal/services"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Client represents a single authenticated WebSocket connection. Events are
// handled to completion, database round-trips included, before the next
// event on the connection is read.
type Client struct {
	hub          *Hub
	conn         *websocket.Conn
	send         chan []byte
	accountID    uuid.UUID
	kind         string
	connectionID string
	rooms        map[uuid.UUID]struct{} // guarded by hub.mu
	closed       bool                   // guarded by hub.mu
	closeOnce    sync.Once
	logger       *Logger
}

func NewClient(hub *Hub, conn *websocket.Conn, accountID uuid.UUID, kind, connectionID string, logger *Logger) *Client {
	return &Client{
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, 256),
		accountID:    accountID,
		kind:         kind,
		connectionID: connectionID,
		rooms:        make(map[uuid.UUID]struct{}),
		logger:       logger,
	}
}

// AccountID returns the authenticated identity bound to the connection.
func (c *Client) AccountID() uuid.UUID {
	return c.accountID
}

// ConnectionID returns the connection identifier assigned at handshake.
func (c *Client) ConnectionID() string {
	return c.connectionID
}

// close runs the disconnect transition exactly once, also under abrupt
// transport failure: both pumps funnel through here.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.hub.Unregister(c)
		c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("websocket unexpected close", c.accountID, c.connectionID, err)
			}
			return
		}
		c.handleEvent(raw)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleEvent dispatches one inbound frame. Failures never propagate to
// crash the connection: they are logged and reported back to the origin
// connection only, as an error event.
func (c *Client) handleEvent(raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.sendError("INVALID_EVENT", "malformed event")
		return
	}

	ctx := context.Background()
	var err error

	switch env.Event {
	case EventJoinConversation:
		err = c.handleJoin(ctx, env.Data)
	case EventLeaveConversation:
		err = c.handleLeave(env.Data)
	case EventSendMessage:
		err = c.handleSendMessage(ctx, env.Data)
	case EventTypingStart:
		err = c.handleTyping(env.Data, EventUserTyping)
	case EventTypingStop:
		err = c.handleTyping(env.Data, EventUserStoppedTyping)
	case EventMarkMessagesRead:
		err = c.handleMarkRead(ctx, env.Data)
	case EventUpdateStatus:
		err = c.handleUpdateStatus(env.Data)
	default:
		c.logger.Warn("unknown event type", c.accountID, c.connectionID)
		return
	}

	if err != nil {
		c.logger.Error("event handling failed", c.accountID, c.connectionID, err)
		c.sendError(errorCode(err), err.Error())
	}
}

func (c *Client) handleJoin(ctx context.Context, data json.RawMessage) error {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return beacon_errors.ErrInvalidInput
	}
	return c.hub.JoinRoom(ctx, c, p.ConversationID)
}

func (c *Client) handleLeave(data json.RawMessage) error {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return beacon_errors.ErrInvalidInput
	}
	c.hub.LeaveRoom(c, p.ConversationID)
	return nil
}

func (c *Client) handleSendMessage(ctx context.Context, data json.RawMessage) error {
	var p sendMessagePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return beacon_errors.ErrInvalidInput
	}

	if c.hub.limiter != nil {
		allowed, err := c.hub.limiter.AllowMessage(ctx, c.accountID.String())
		if err != nil {
			c.logger.Error("rate limit check failed", c.accountID, c.connectionID, err)
		} else if !allowed {
			return beacon_errors.ErrRateLimited
		}
	}

	kind := p.Kind
	if kind == "" {
		kind = message.KindText
	}

	msg, err := c.hub.messages.Send(ctx, services.SendMessageInput{
		ConversationID: p.ConversationID,
		SenderID:       c.accountID,
		Kind:           kind,
		Content:        p.Content,
		FileURL:        p.FileURL,
		FileName:       p.FileName,
		FileSize:       p.FileSize,
		ReplyToID:      p.ReplyToID,
	})
	if err != nil {
		return err
	}

	payload, err := Encode(EventNewMessage, FromMessage(msg))
	if err != nil {
		return err
	}
	// The whole room gets the message, the sender's connection included, so
	// every device converges on the same thread state. Participants without
	// a live connection are simply offline; no delivery queue exists.
	c.hub.BroadcastToRoom(p.ConversationID, payload, nil)
	return nil
}

func (c *Client) handleTyping(data json.RawMessage, event string) error {
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return beacon_errors.ErrInvalidInput
	}
	payload, err := Encode(event, TypingEvent{ConversationID: p.ConversationID, AccountID: c.accountID})
	if err != nil {
		return err
	}
	// Fire and forget: nothing persisted, no timeout-based auto-stop.
	c.hub.BroadcastToRoom(p.ConversationID, payload, c)
	return nil
}

func (c *Client) handleMarkRead(ctx context.Context, data json.RawMessage) error {
	var p markReadPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return beacon_errors.ErrInvalidInput
	}

	marked, err := c.hub.messages.MarkRead(ctx, p.ConversationID, c.accountID, p.MessageIDs)
	if err != nil {
		return err
	}
	if len(marked) == 0 {
		return nil
	}

	payload, err := Encode(EventMessagesRead, MessagesReadEvent{
		ConversationID: p.ConversationID,
		AccountID:      c.accountID,
		MessageIDs:     marked,
	})
	if err != nil {
		return err
	}
	c.hub.BroadcastToRoom(p.ConversationID, payload, c)
	return nil
}

func (c *Client) handleUpdateStatus(data json.RawMessage) error {
	var p statusPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return beacon_errors.ErrInvalidInput
	}
	payload, err := Encode(EventUserStatusChanged, StatusEvent{AccountID: c.accountID, Status: p.Status})
	if err != nil {
		return err
	}
	// Not persisted and not validated against an enum at this layer.
	c.hub.BroadcastToAll(payload, c)
	return nil
}

func (c *Client) sendError(code, msg string) {
	payload, err := Encode(EventError, ErrorEvent{Code: code, Message: msg})
	if err != nil {
		return
	}
	c.hub.Send(c, payload)
}

func errorCode(err error) string {
	switch err {
	case beacon_errors.ErrNotParticipant, beacon_errors.ErrForbidden:
		return "FORBIDDEN"
	case beacon_errors.ErrNotFound:
		return "NOT_FOUND"
	case beacon_errors.ErrInvalidInput:
		return "INVALID_EVENT"
	case beacon_errors.ErrRateLimited:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
