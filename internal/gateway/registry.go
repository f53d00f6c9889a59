package gateway

import (
	"sync"

	"github.com/google/uuid"
)

// Registry is the process-local presence map: authenticated identity to its
// single active connection. It is created at startup, cleared at shutdown
// and mutated only by the connection lifecycle; it holds no durable state
// and is rebuilt from nothing on restart.
type Registry struct {
	mu    sync.RWMutex
	conns map[uuid.UUID]*Client
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[uuid.UUID]*Client)}
}

// Register binds the identity to the connection and returns the previous
// connection if one was bound (a reconnect replaces the old connection).
func (r *Registry) Register(accountID uuid.UUID, c *Client) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.conns[accountID]
	r.conns[accountID] = c
	return prev
}

// Unregister removes the binding only if it still points at this connection,
// so a replaced connection's late cleanup cannot evict its successor.
// Reports whether the binding was removed.
func (r *Registry) Unregister(accountID uuid.UUID, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[accountID] != c {
		return false
	}
	delete(r.conns, accountID)
	return true
}

// Lookup returns the live connection for the identity, if present.
func (r *Registry) Lookup(accountID uuid.UUID) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[accountID]
	return c, ok
}

// OnlineIDs snapshots the identities currently registered.
func (r *Registry) OnlineIDs() []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Clear drops every binding. Called at shutdown.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns = make(map[uuid.UUID]*Client)
}
