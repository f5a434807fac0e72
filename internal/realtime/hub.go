package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks open sockets by session id so a revoked session can have its
// connection closed from the outside.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*websocket.Conn)}
}

func (h *Hub) Register(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A reconnect for the same session replaces the old socket.
	if old, ok := h.conns[sessionID]; ok {
		old.Close()
	}
	h.conns[sessionID] = conn
}

func (h *Hub) Unregister(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conns[sessionID] == conn {
		delete(h.conns, sessionID)
	}
}

// CloseSession force-closes the socket of a revoked session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	conn, ok := h.conns[sessionID]
	if ok {
		delete(h.conns, sessionID)
	}
	h.mu.Unlock()

	if ok {
		conn.Close()
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
