package domain

import (
	"encoding/json"
	"errors"
	"unicode/utf8"
)

const ActionSync = "sync"

// ErrConnClosed is returned by Connection.Send once the peer is closed.
// It marks a peer to skip, not a delivery failure.
var ErrConnClosed = errors.New("connection closed")

// OverlayCount is one entry of a snapshot.
type OverlayCount struct {
	ID    string `json:"id"`
	Count int64  `json:"count"`
}

// Inbound is the raw client message. Exactly one of the mutate fields
// (ID+Delta) or Action is expected.
type Inbound struct {
	ID     *string `json:"id"`
	Delta  *int64  `json:"delta"`
	Action string  `json:"action"`
}

// IsSync reports whether the message requests a full snapshot.
func (m Inbound) IsSync() bool {
	return m.Action == ActionSync
}

// IsMutate reports whether the message carries a usable id and delta.
func (m Inbound) IsMutate() bool {
	return m.ID != nil && ValidID(*m.ID) && m.Delta != nil
}

// ValidID reports whether id can name a counter. Ids must be non-empty
// UTF-8 so they survive the JSON round trip unchanged.
func ValidID(id string) bool {
	return id != "" && utf8.ValidString(id)
}

// ParseInbound decodes data best-effort. ok is false for anything that is
// neither a sync request nor a mutation; callers drop such payloads.
// Field names must match exactly: "ID" or "Delta" are not recognised.
func ParseInbound(data []byte) (msg Inbound, ok bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Inbound{}, false
	}
	if raw, found := fields["id"]; found {
		if err := json.Unmarshal(raw, &msg.ID); err != nil {
			return Inbound{}, false
		}
	}
	if raw, found := fields["delta"]; found {
		if err := json.Unmarshal(raw, &msg.Delta); err != nil {
			return Inbound{}, false
		}
	}
	if raw, found := fields["action"]; found {
		if err := json.Unmarshal(raw, &msg.Action); err != nil {
			return Inbound{}, false
		}
	}
	if msg.IsSync() || msg.IsMutate() {
		return msg, true
	}
	return Inbound{}, false
}

// Outbound is what peers receive. Snapshot-only messages leave ID and Count
// unset; mutation broadcasts carry all three.
type Outbound struct {
	ID       string         `json:"id,omitempty"`
	Count    *int64         `json:"count,omitempty"`
	Overlays []OverlayCount `json:"overlays"`
}

func SnapshotMessage(overlays []OverlayCount) Outbound {
	if overlays == nil {
		overlays = []OverlayCount{}
	}
	return Outbound{Overlays: overlays}
}

func UpdateMessage(id string, count int64, overlays []OverlayCount) Outbound {
	out := SnapshotMessage(overlays)
	out.ID = id
	out.Count = &count
	return out
}

type Connection interface {
	ID() string
	Send(data []byte) error
	Close() error
}

type Broadcaster interface {
	Register(conn Connection)
	Unregister(conn Connection)
	Send(conn Connection, data []byte) error
	Broadcast(data []byte)
	Stats() (clients int)
}

type MessageHandler interface {
	Handle(conn Connection, data []byte)
}

// Lifecycle is implemented by handlers that need to observe peers joining
// and leaving.
type Lifecycle interface {
	Connect(conn Connection)
	Disconnect(conn Connection)
}

// CounterStore is the registry as seen by the protocol handler.
type CounterStore interface {
	ApplyDelta(id string, delta int64) (int64, error)
	Snapshot() []OverlayCount
}

// PeerHandler is what a transport adapter drives for each peer.
type PeerHandler interface {
	MessageHandler
	Lifecycle
}
