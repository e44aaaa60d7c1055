package wsocket

import (
	"fmt"
	"sync"

	"pressroom_ai_go_backend/internal/services"

	"github.com/gorilla/websocket"
)

// Registry tracks live WebSocket connections by connection ID and serializes
// writes per connection. gorilla/websocket allows only one concurrent writer,
// so Send holds the registry lock across the write.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

// NewRegistry creates a new Registry
func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*websocket.Conn)}
}

// Add registers a connection under its ID.
func (r *Registry) Add(connectionID string, conn *websocket.Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connectionID] = conn
}

// Remove drops a connection's record. Removing an unknown ID is a no-op.
func (r *Registry) Remove(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, connectionID)
}

// Send writes one JSON payload to the identified connection. An unknown ID
// or a write failure both mean the recipient is no longer reachable and are
// reported as services.ErrRecipientGone.
func (r *Registry) Send(connectionID string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.conns[connectionID]
	if !ok {
		return fmt.Errorf("connection %s: %w", connectionID, services.ErrRecipientGone)
	}
	if err := conn.WriteJSON(payload); err != nil {
		return fmt.Errorf("write to %s failed (%v): %w", connectionID, err, services.ErrRecipientGone)
	}
	return nil
}
