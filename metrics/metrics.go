package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the server collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Peers     prometheus.Gauge
	Dropped   prometheus.Counter
	Mutations *prometheus.CounterVec
	Syncs     prometheus.Counter
	Ignored   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Peers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "overlay_peers_connected",
			Help: "Currently connected websocket peers.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlay_peers_dropped_total",
			Help: "Peers removed after a failed send.",
		}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "overlay_mutations_total",
			Help: "Applied counter mutations by direction.",
		}, []string{"direction"}),
		Syncs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlay_sync_requests_total",
			Help: "Snapshot requests served.",
		}),
		Ignored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "overlay_ignored_messages_total",
			Help: "Inbound payloads discarded as unrecognised.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Peers, m.Dropped, m.Mutations, m.Syncs, m.Ignored)
	}
	return m
}

func (m *Metrics) PeerConnected() {
	if m == nil {
		return
	}
	m.Peers.Inc()
}

func (m *Metrics) PeerDisconnected() {
	if m == nil {
		return
	}
	m.Peers.Dec()
}

func (m *Metrics) PeerDropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) Mutation(delta int64) {
	if m == nil {
		return
	}
	direction := "increment"
	switch {
	case delta < 0:
		direction = "decrement"
	case delta == 0:
		direction = "noop"
	}
	m.Mutations.WithLabelValues(direction).Inc()
}

func (m *Metrics) Sync() {
	if m == nil {
		return
	}
	m.Syncs.Inc()
}

func (m *Metrics) IgnoredMessage() {
	if m == nil {
		return
	}
	m.Ignored.Inc()
}
