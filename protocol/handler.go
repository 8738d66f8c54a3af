package protocol

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/quiradon/RPGLive/domain"
	"github.com/quiradon/RPGLive/metrics"
)

// Handler applies inbound messages to the counters and fans results out.
// mu serialises connect, sync and apply+broadcast so every peer observes
// mutations in the order the server received them.
type Handler struct {
	counters    domain.CounterStore
	broadcaster domain.Broadcaster
	metrics     *metrics.Metrics
	mu          sync.Mutex
}

func NewHandler(c domain.CounterStore, b domain.Broadcaster, m *metrics.Metrics) *Handler {
	return &Handler{counters: c, broadcaster: b, metrics: m}
}

// Connect registers conn and sends it the current snapshot before any of its
// own messages can be handled.
func (h *Handler) Connect(conn domain.Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.broadcaster.Register(conn)
	h.sendSnapshot(conn)
}

func (h *Handler) Disconnect(conn domain.Connection) {
	h.broadcaster.Unregister(conn)
}

// Handle never replies with an error: payloads that are not a sync request
// or a mutation are discarded.
func (h *Handler) Handle(conn domain.Connection, data []byte) {
	msg, ok := domain.ParseInbound(data)
	if !ok {
		h.metrics.IgnoredMessage()
		slog.Debug("ignoring message", "clientId", conn.ID(), "size", len(data))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if msg.IsSync() {
		h.metrics.Sync()
		h.sendSnapshot(conn)
		return
	}

	id, delta := *msg.ID, *msg.Delta
	count, err := h.counters.ApplyDelta(id, delta)
	if err != nil {
		h.metrics.IgnoredMessage()
		slog.Debug("ignoring mutation", "clientId", conn.ID(), "overlay", id, "delta", delta, "error", err)
		return
	}
	h.metrics.Mutation(delta)
	slog.Debug("overlay updated", "clientId", conn.ID(), "overlay", id, "delta", delta, "count", count)

	update, err := json.Marshal(domain.UpdateMessage(id, count, h.counters.Snapshot()))
	if err != nil {
		slog.Warn("marshal error", "overlay", id, "error", err)
		return
	}
	h.broadcaster.Broadcast(update)
}

// sendSnapshot must be called with mu held.
func (h *Handler) sendSnapshot(conn domain.Connection) {
	snapshot, err := json.Marshal(domain.SnapshotMessage(h.counters.Snapshot()))
	if err != nil {
		slog.Warn("marshal error", "clientId", conn.ID(), "error", err)
		return
	}
	if err := h.broadcaster.Send(conn, snapshot); err != nil {
		slog.Debug("snapshot not delivered", "clientId", conn.ID(), "error", err)
	}
}
