package gateway

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(accountID uuid.UUID, connectionID string) *Client {
	return NewClient(nil, nil, accountID, "USER", connectionID, NewLogger())
}

func TestRegistryBindsOneConnectionPerIdentity(t *testing.T) {
	r := NewRegistry()
	accountID := uuid.New()

	c1 := newTestClient(accountID, "conn-1")
	prev := r.Register(accountID, c1)
	assert.Nil(t, prev)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Lookup(accountID)
	require.True(t, ok)
	assert.Same(t, c1, got)

	// A reconnect rebinds the identity and surfaces the replaced connection.
	c2 := newTestClient(accountID, "conn-2")
	prev = r.Register(accountID, c2)
	assert.Same(t, c1, prev)
	assert.Equal(t, 1, r.Len())

	got, ok = r.Lookup(accountID)
	require.True(t, ok)
	assert.Same(t, c2, got)
}

func TestRegistryUnregisterIgnoresStaleConnections(t *testing.T) {
	r := NewRegistry()
	accountID := uuid.New()

	c1 := newTestClient(accountID, "conn-1")
	c2 := newTestClient(accountID, "conn-2")
	r.Register(accountID, c1)
	r.Register(accountID, c2)

	// The replaced connection's late cleanup must not evict its successor.
	assert.False(t, r.Unregister(accountID, c1))
	got, ok := r.Lookup(accountID)
	require.True(t, ok)
	assert.Same(t, c2, got)

	assert.True(t, r.Unregister(accountID, c2))
	_, ok = r.Lookup(accountID)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryOnlineIDs(t *testing.T) {
	r := NewRegistry()
	a, b := uuid.New(), uuid.New()
	r.Register(a, newTestClient(a, "conn-a"))
	r.Register(b, newTestClient(b, "conn-b"))

	ids := r.OnlineIDs()
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)
}
