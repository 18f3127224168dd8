// Package realtime keeps the process-wide registry of live websocket
// connections, one active connection per user.
package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Registry maps user ids to their active connection. Entries are ephemeral:
// populated on connect, purged on disconnect, replaced on reconnect.
type Registry struct {
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	clients map[string]*Client
}

// NewRegistry returns an empty Registry.
func NewRegistry(logger *zap.SugaredLogger) *Registry {
	return &Registry{
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Register records conn as the user's active connection and starts its
// pumps. A previous connection of the same user is closed and replaced.
func (r *Registry) Register(userID string, conn *websocket.Conn) {
	c := newClient(userID, conn)

	r.mu.Lock()
	if old, ok := r.clients[userID]; ok {
		r.closeLocked(old)
	}
	r.clients[userID] = c
	r.mu.Unlock()

	go c.writePump()
	go c.readPump(r.drop)

	r.logger.Debugf("Registered connection for user (id: %s)", userID)
}

// drop purges the client if it is still the user's current connection.
// Called from the read pump on disconnect.
func (r *Registry) drop(c *Client) {
	r.mu.Lock()
	if current, ok := r.clients[c.userID]; ok && current == c {
		delete(r.clients, c.userID)
	}
	r.closeLocked(c)
	r.mu.Unlock()

	r.logger.Debugf("Dropped connection for user (id: %s)", c.userID)
}

// closeLocked shuts the client's send channel exactly once. Caller must hold
// the registry mutex, which is what keeps the close from racing Send.
func (r *Registry) closeLocked(c *Client) {
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Send pushes the payload to the user's active connection. It reports false
// when the user has no connection or the connection cannot keep up; neither
// case is an error.
func (r *Registry) Send(userID string, payload []byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.clients[userID]
	if !ok || c.closed {
		return false
	}
	return c.enqueue(payload)
}

// Connected reports whether the user currently has an active connection.
func (r *Registry) Connected(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[userID]
	return ok
}
