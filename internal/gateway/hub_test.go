package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"beacon-chat/internal/domain/message"
	"beacon-chat/internal/services"
	beacon_errors "beacon-chat/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGate struct {
	mu      sync.Mutex
	members map[uuid.UUID]map[uuid.UUID]bool
}

func newFakeGate() *fakeGate {
	return &fakeGate{members: make(map[uuid.UUID]map[uuid.UUID]bool)}
}

func (g *fakeGate) admit(conversationID, accountID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.members[conversationID] == nil {
		g.members[conversationID] = make(map[uuid.UUID]bool)
	}
	g.members[conversationID][accountID] = true
}

func (g *fakeGate) IsParticipant(_ context.Context, conversationID, accountID uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.members[conversationID][accountID], nil
}

type fakeMessageStore struct{}

func (fakeMessageStore) Send(_ context.Context, in services.SendMessageInput) (message.Message, error) {
	return message.Message{ID: uuid.New(), ConversationID: in.ConversationID, SenderID: in.SenderID, Kind: in.Kind, Content: in.Content}, nil
}

func (fakeMessageStore) MarkRead(_ context.Context, _, _ uuid.UUID, ids []uuid.UUID) ([]uuid.UUID, error) {
	return ids, nil
}

type presenceCall struct {
	accountID    uuid.UUID
	online       bool
	connectionID string
}

type fakePresence struct {
	mu    sync.Mutex
	calls []presenceCall
}

func (p *fakePresence) SetPresence(_ context.Context, accountID uuid.UUID, online bool, connectionID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, presenceCall{accountID, online, connectionID})
	return nil
}

func (p *fakePresence) snapshot() []presenceCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]presenceCall, len(p.calls))
	copy(out, p.calls)
	return out
}

type allowAllLimiter struct{}

func (allowAllLimiter) AllowMessage(context.Context, string) (bool, error) { return true, nil }

func newTestHub(gate *fakeGate) (*Hub, *fakePresence) {
	presence := &fakePresence{}
	hub := NewHub(NewRegistry(), gate, fakeMessageStore{}, presence, allowAllLimiter{}, NewLogger())
	return hub, presence
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.send:
		return payload
	default:
		t.Fatal("expected a buffered payload, got none")
		return nil
	}
}

func TestJoinRoomRejectsNonParticipants(t *testing.T) {
	gate := newFakeGate()
	hub, _ := newTestHub(gate)
	ctx := context.Background()

	conversationID := uuid.New()
	member := newTestClient(uuid.New(), "conn-member")
	outsider := newTestClient(uuid.New(), "conn-outsider")
	gate.admit(conversationID, member.accountID)

	hub.Register(ctx, member)
	hub.Register(ctx, outsider)
	drain(member)
	drain(outsider)

	require.NoError(t, hub.JoinRoom(ctx, member, conversationID))
	drain(member)

	err := hub.JoinRoom(ctx, outsider, conversationID)
	assert.ErrorIs(t, err, beacon_errors.ErrNotParticipant)
	assert.Equal(t, 1, hub.RoomSize(conversationID))

	// The rejected join must leak nothing into the room.
	hub.BroadcastToRoom(conversationID, []byte("room-only"), nil)
	assert.Equal(t, []byte("room-only"), receive(t, member))
	select {
	case payload := <-outsider.send:
		t.Fatalf("outsider received room payload %q", payload)
	default:
	}
}

func TestRoomBroadcastReachesAllMembers(t *testing.T) {
	gate := newFakeGate()
	hub, _ := newTestHub(gate)
	ctx := context.Background()

	conversationID := uuid.New()
	a := newTestClient(uuid.New(), "conn-a")
	b := newTestClient(uuid.New(), "conn-b")
	bystander := newTestClient(uuid.New(), "conn-c")
	gate.admit(conversationID, a.accountID)
	gate.admit(conversationID, b.accountID)

	hub.Register(ctx, a)
	hub.Register(ctx, b)
	hub.Register(ctx, bystander)

	require.NoError(t, hub.JoinRoom(ctx, a, conversationID))
	require.NoError(t, hub.JoinRoom(ctx, b, conversationID))
	drain(a)
	drain(b)
	drain(bystander)

	payload, err := Encode(EventNewMessage, MessageEvent{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       a.accountID,
		Kind:           message.KindText,
		Content:        "hello",
	})
	require.NoError(t, err)

	hub.BroadcastToRoom(conversationID, payload, nil)
	assert.Equal(t, payload, receive(t, a))
	assert.Equal(t, payload, receive(t, b))

	// Connected but not in the room: no delivery.
	select {
	case got := <-bystander.send:
		t.Fatalf("bystander received room payload %q", got)
	default:
	}

	// Excluding the sender suppresses only their copy.
	hub.BroadcastToRoom(conversationID, payload, a)
	assert.Equal(t, payload, receive(t, b))
	select {
	case <-a.send:
		t.Fatal("excluded client received payload")
	default:
	}
}

func TestRegisterPersistsOnlineForUsersOnly(t *testing.T) {
	gate := newFakeGate()
	hub, presence := newTestHub(gate)
	ctx := context.Background()

	user := newTestClient(uuid.New(), "conn-user")
	admin := NewClient(nil, nil, uuid.New(), "ADMIN", "conn-admin", NewLogger())

	hub.Register(ctx, user)
	hub.Register(ctx, admin)

	calls := presence.snapshot()
	require.Len(t, calls, 1)
	assert.Equal(t, user.accountID, calls[0].accountID)
	assert.True(t, calls[0].online)
	assert.Equal(t, "conn-user", calls[0].connectionID)
}

func TestUnregisterLeavesRoomsAndPersistsOffline(t *testing.T) {
	gate := newFakeGate()
	hub, presence := newTestHub(gate)
	ctx := context.Background()

	conversationID := uuid.New()
	c := newTestClient(uuid.New(), "conn-1")
	gate.admit(conversationID, c.accountID)

	hub.Register(ctx, c)
	require.NoError(t, hub.JoinRoom(ctx, c, conversationID))
	require.Equal(t, 1, hub.RoomSize(conversationID))

	hub.Unregister(c)

	assert.Equal(t, 0, hub.RoomSize(conversationID))
	_, ok := hub.registry.Lookup(c.accountID)
	assert.False(t, ok)

	calls := presence.snapshot()
	require.Len(t, calls, 2)
	assert.True(t, calls[0].online)
	assert.False(t, calls[1].online)
	assert.Empty(t, calls[1].connectionID)

	// The send channel is closed so the write pump exits.
	_, open := <-c.send
	assert.False(t, open)
}

func TestStaleDisconnectDoesNotMarkSuccessorOffline(t *testing.T) {
	gate := newFakeGate()
	hub, presence := newTestHub(gate)
	ctx := context.Background()

	accountID := uuid.New()
	c1 := newTestClient(accountID, "conn-1")
	c2 := newTestClient(accountID, "conn-2")

	hub.Register(ctx, c1)
	// The replacement rebinds the registry before the old connection's
	// cleanup runs.
	hub.registry.Register(accountID, c2)

	hub.Unregister(c1)

	got, ok := hub.registry.Lookup(accountID)
	require.True(t, ok)
	assert.Same(t, c2, got)

	for _, call := range presence.snapshot() {
		assert.True(t, call.online, "stale cleanup must not persist an offline transition")
	}
}

// Edits and deletes arriving over REST must reach live clients under their
// own event names, so a client can tell them apart from fresh messages.
func TestNotifyEditAndDeleteUseDistinctEvents(t *testing.T) {
	gate := newFakeGate()
	hub, _ := newTestHub(gate)
	ctx := context.Background()

	conversationID := uuid.New()
	a := newTestClient(uuid.New(), "conn-a")
	b := newTestClient(uuid.New(), "conn-b")
	gate.admit(conversationID, a.accountID)
	gate.admit(conversationID, b.accountID)

	hub.Register(ctx, a)
	hub.Register(ctx, b)
	require.NoError(t, hub.JoinRoom(ctx, a, conversationID))
	require.NoError(t, hub.JoinRoom(ctx, b, conversationID))
	drain(a)
	drain(b)

	edited := message.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       a.accountID,
		Kind:           message.KindText,
		Content:        "hello (fixed)",
		IsEdited:       true,
	}
	hub.NotifyMessageEdited(edited)

	var env Envelope
	require.NoError(t, json.Unmarshal(receive(t, a), &env))
	assert.Equal(t, EventMessageEdited, env.Event)

	var ev MessageEvent
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, edited.ID, ev.ID)
	assert.Equal(t, "hello (fixed)", ev.Content)
	drain(b)

	deleted := edited
	deleted.IsDeleted = true
	hub.NotifyMessageDeleted(deleted.Masked())

	require.NoError(t, json.Unmarshal(receive(t, b), &env))
	assert.Equal(t, EventMessageDeleted, env.Event)
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, message.DeletedPlaceholder, ev.Content)
}

func TestNotifyMessagesReadStaysInRoom(t *testing.T) {
	gate := newFakeGate()
	hub, _ := newTestHub(gate)
	ctx := context.Background()

	conversationID := uuid.New()
	member := newTestClient(uuid.New(), "conn-member")
	bystander := newTestClient(uuid.New(), "conn-bystander")
	gate.admit(conversationID, member.accountID)

	hub.Register(ctx, member)
	hub.Register(ctx, bystander)
	require.NoError(t, hub.JoinRoom(ctx, member, conversationID))
	drain(member)
	drain(bystander)

	reader := uuid.New()
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	hub.NotifyMessagesRead(conversationID, reader, ids)

	var env Envelope
	require.NoError(t, json.Unmarshal(receive(t, member), &env))
	assert.Equal(t, EventMessagesRead, env.Event)

	var ev MessagesReadEvent
	require.NoError(t, json.Unmarshal(env.Data, &ev))
	assert.Equal(t, reader, ev.AccountID)
	assert.ElementsMatch(t, ids, ev.MessageIDs)

	select {
	case payload := <-bystander.send:
		t.Fatalf("bystander received read receipt payload %q", payload)
	default:
	}
}
