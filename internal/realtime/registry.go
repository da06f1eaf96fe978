// Package realtime tracks live client connections, broadcasts presence and
// pushes events to connected users.
package realtime

import (
	"errors"
	"sort"
	"sync"

	"github.com/Kushagra128/LangBridge/internal/models"
)

var (
	ErrConnClosed    = errors.New("connection closed")
	ErrSendQueueFull = errors.New("send queue full")
)

// Conn is one live bidirectional channel for a single user.
type Conn interface {
	// Send queues an event for delivery. It must not block on the network.
	Send(evt models.Event) error
	Close() error
}

// Registry maps user IDs to their active connection. The most recent
// registration for a user wins.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Conn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]Conn)}
}

// Register stores conn for userID and returns the handle it replaced, if any.
func (r *Registry) Register(userID string, conn Conn) Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev := r.conns[userID]
	r.conns[userID] = conn
	return prev
}

// Unregister removes userID only while conn is still its registered handle,
// so a late disconnect cannot evict a newer connection. Reports whether a
// mapping was removed.
func (r *Registry) Unregister(userID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.conns[userID]; ok && cur == conn {
		delete(r.conns, userID)
		return true
	}
	return false
}

// Lookup returns the live connection for userID.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[userID]
	return conn, ok
}

// Snapshot returns the sorted IDs of every connected user.
func (r *Registry) Snapshot() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedIDs(r.conns)
}

// Entries returns a copy of the current mapping.
func (r *Registry) Entries() map[string]Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Conn, len(r.conns))
	for id, conn := range r.conns {
		out[id] = conn
	}
	return out
}

// Len returns the number of connected users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

func sortedIDs(conns map[string]Conn) []string {
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close closes every registered connection and empties the registry.
func (r *Registry) Close() {
	r.mu.Lock()
	conns := r.conns
	r.conns = make(map[string]Conn)
	r.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}
