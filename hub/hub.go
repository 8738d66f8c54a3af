package hub

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/quiradon/RPGLive/domain"
	"github.com/quiradon/RPGLive/metrics"
)

// Hub is the set of connected peers. Every peer receives every broadcast.
type Hub struct {
	clients map[string]domain.Connection
	metrics *metrics.Metrics
	mu      sync.Mutex
}

func New(m *metrics.Metrics) *Hub {
	return &Hub{
		clients: make(map[string]domain.Connection),
		metrics: m,
	}
}

func (h *Hub) Register(conn domain.Connection) {
	h.mu.Lock()
	_, exists := h.clients[conn.ID()]
	h.clients[conn.ID()] = conn
	count := len(h.clients)
	h.mu.Unlock()

	if !exists {
		h.metrics.PeerConnected()
	}
	slog.Info("client connected", "clientId", conn.ID(), "clients", count)
}

func (h *Hub) Unregister(conn domain.Connection) {
	h.mu.Lock()
	removed := h.remove(conn)
	count := len(h.clients)
	h.mu.Unlock()

	if removed {
		slog.Info("client disconnected", "clientId", conn.ID(), "clients", count)
	}
}

// Send delivers data to a single registered peer. A peer that cannot accept
// the message is dropped and closed; one already closed is just removed.
func (h *Hub) Send(conn domain.Connection, data []byte) error {
	err := conn.Send(data)
	if err != nil {
		h.mu.Lock()
		h.drop(conn, err)
		h.mu.Unlock()
	}
	return err
}

// Broadcast delivers data to every registered peer, the sender included.
// Peers whose send fails are dropped and closed peers are skipped; the rest
// still receive the message.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conn := range h.clients {
		if err := conn.Send(data); err != nil {
			h.drop(conn, err)
		}
	}
}

// CloseAll closes and forgets every peer. Used on server shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, conn := range h.clients {
		h.remove(conn)
		if err := conn.Close(); err != nil {
			slog.Debug("close error", "clientId", conn.ID(), "error", err)
		}
	}
	slog.Info("all clients closed")
}

func (h *Hub) Stats() (clients int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// drop must be called with mu held. Peers that are already closed are
// forgotten quietly.
func (h *Hub) drop(conn domain.Connection, cause error) {
	if !h.remove(conn) {
		return
	}
	if errors.Is(cause, domain.ErrConnClosed) {
		slog.Debug("skipping closed client", "clientId", conn.ID(), "clients", len(h.clients))
		return
	}
	h.metrics.PeerDropped()
	slog.Warn("dropping client", "clientId", conn.ID(), "error", cause, "clients", len(h.clients))
	if err := conn.Close(); err != nil {
		slog.Debug("close error", "clientId", conn.ID(), "error", err)
	}
}

// remove must be called with mu held.
func (h *Hub) remove(conn domain.Connection) bool {
	current, ok := h.clients[conn.ID()]
	if !ok || current != conn {
		return false
	}
	delete(h.clients, conn.ID())
	h.metrics.PeerDisconnected()
	return true
}
