package registry

import (
	"errors"
	"math"
	"sync"

	"github.com/quiradon/RPGLive/domain"
)

// ErrOverflow is returned when a delta would push a counter outside the
// int64 range. The counter is left unchanged.
var ErrOverflow = errors.New("registry: counter overflow")

// Registry holds the overlay counters. Enumeration follows insertion order.
type Registry struct {
	counts map[string]int64
	order  []string
	mu     sync.RWMutex
}

func New() *Registry {
	return &Registry{
		counts: make(map[string]int64),
	}
}

// GetOrCreate returns the value for id, creating it at 0 if absent.
func (r *Registry) GetOrCreate(id string) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ensure(id)
}

// ApplyDelta adds delta to id, creating it at 0 first, and returns the new
// value. Negative results are kept as is.
func (r *Registry) ApplyDelta(id string, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.ensure(id)
	if (delta > 0 && current > math.MaxInt64-delta) || (delta < 0 && current < math.MinInt64-delta) {
		return current, ErrOverflow
	}
	r.counts[id] = current + delta
	return r.counts[id], nil
}

func (r *Registry) Get(id string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count, ok := r.counts[id]
	return count, ok
}

func (r *Registry) Snapshot() []domain.OverlayCount {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.OverlayCount, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, domain.OverlayCount{ID: id, Count: r.counts[id]})
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ensure must be called with mu held for writing.
func (r *Registry) ensure(id string) int64 {
	count, ok := r.counts[id]
	if !ok {
		r.counts[id] = 0
		r.order = append(r.order, id)
	}
	return count
}
