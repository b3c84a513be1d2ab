// Package store holds the in-memory alert, plugin and metric-history state of a session.
package store

import (
	"sort"
	"sync"

	"alert-monitor/internal/model"
)

// DefaultHistoryCapacity is the number of samples retained per entity.
const DefaultHistoryCapacity = 50

// History keeps a bounded time series per entity.
// Each entity owns a fixed-capacity ring; appends are O(1) and evict the
// oldest sample once the ring is full. Rings are created on first append
// and live as long as the History.
type History struct {
	mu       sync.RWMutex
	capacity int
	rings    map[string]*ring
}

// ring is a fixed-capacity FIFO over a preallocated slice.
type ring struct {
	points []model.HistoryPoint
	head   int // index of the oldest entry
	size   int
	total  int64 // samples ever appended
}

// NewHistory creates a History with the given per-entity capacity.
// A non-positive capacity falls back to DefaultHistoryCapacity.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		capacity: capacity,
		rings:    make(map[string]*ring),
	}
}

// Capacity returns the per-entity capacity.
func (h *History) Capacity() int {
	return h.capacity
}

// Append adds a point to the entity's series, evicting the oldest point when full.
func (h *History) Append(entityID string, point model.HistoryPoint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rings[entityID]
	if !ok {
		r = &ring{points: make([]model.HistoryPoint, h.capacity)}
		h.rings[entityID] = r
	}
	r.push(point)
}

func (r *ring) push(point model.HistoryPoint) {
	capacity := len(r.points)
	if r.size < capacity {
		r.points[(r.head+r.size)%capacity] = point
		r.size++
	} else {
		r.points[r.head] = point
		r.head = (r.head + 1) % capacity
	}
	r.total++
}

// Series returns the entity's points, oldest first. Unknown entities yield nil.
func (h *History) Series(entityID string) []model.HistoryPoint {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rings[entityID]
	if !ok || r.size == 0 {
		return nil
	}
	out := make([]model.HistoryPoint, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.points[(r.head+i)%len(r.points)]
	}
	return out
}

// Latest returns the most recent point for the entity.
func (h *History) Latest(entityID string) (model.HistoryPoint, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rings[entityID]
	if !ok || r.size == 0 {
		return model.HistoryPoint{}, false
	}
	return r.points[(r.head+r.size-1)%len(r.points)], true
}

// Len returns the number of points currently held for the entity.
func (h *History) Len(entityID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if r, ok := h.rings[entityID]; ok {
		return r.size
	}
	return 0
}

// Evicted returns how many points have been dropped for the entity so far.
func (h *History) Evicted(entityID string) int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if r, ok := h.rings[entityID]; ok {
		return r.total - int64(r.size)
	}
	return 0
}

// Entities returns the ids of all entities with a series, sorted.
func (h *History) Entities() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.rings))
	for id := range h.rings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns a copy of every series keyed by entity id.
func (h *History) All() map[string][]model.HistoryPoint {
	ids := h.Entities()
	out := make(map[string][]model.HistoryPoint, len(ids))
	for _, id := range ids {
		out[id] = h.Series(id)
	}
	return out
}
