// Package store holds the in-memory alert, plugin and metric-history state of a session.
package store

import (
	"sort"
	"sync"
	"time"

	"alert-monitor/internal/model"
)

// PluginStore keeps the latest known state of every monitored entity and
// feeds each observed metric sample into the History.
type PluginStore struct {
	mu      sync.RWMutex
	plugins map[string]*model.PluginState
	history *History
	now     func() time.Time
}

// NewPluginStore creates an empty PluginStore writing samples to history.
// A nil history gets a default-capacity History of its own.
func NewPluginStore(history *History, opts ...Option) *PluginStore {
	o := applyOptions(opts)
	if history == nil {
		history = NewHistory(DefaultHistoryCapacity)
	}
	return &PluginStore{
		plugins: make(map[string]*model.PluginState),
		history: history,
		now:     o.now,
	}
}

// History returns the history buffer this store appends to.
func (s *PluginStore) History() *History {
	return s.history
}

// ReplaceMetrics replaces the metric collection with a full snapshot.
// Only the latest samples change: entities known from the plugin listing keep
// their name and status, and lose their sample if the snapshot omits them.
// Ids not seen before are inserted. Every entry appends one history point.
func (s *PluginStore) ReplaceMetrics(data map[string]model.PluginMetricSample) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, state := range s.plugins {
		if _, ok := data[id]; !ok {
			state.Latest = nil
		}
	}
	for id, sample := range data {
		if id == "" {
			continue
		}
		s.applySample(id, sample)
		s.history.Append(id, model.NewHistoryPoint(sample, now))
	}
}

// UpsertMetrics merges one entity's sample into the collection and appends
// a history point. Unknown ids are inserted.
func (s *PluginStore) UpsertMetrics(id string, sample model.PluginMetricSample) {
	if id == "" {
		return
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.applySample(id, sample)
	s.history.Append(id, model.NewHistoryPoint(sample, now))
}

// applySample sets the latest sample of an entity. The sample status is only
// taken for entities the listing has not described yet. Callers hold s.mu.
func (s *PluginStore) applySample(id string, sample model.PluginMetricSample) {
	state, ok := s.plugins[id]
	if !ok {
		state = &model.PluginState{ID: id, Name: id}
		s.plugins[id] = state
	}
	latest := sample
	state.Latest = &latest
	if state.Status == "" {
		state.Status = sample.Status
	}
}

// ReplacePlugins replaces the entity listing from a REST reload.
// Latest samples of entities that remain are kept.
func (s *PluginStore) ReplacePlugins(infos []model.PluginInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]*model.PluginState, len(infos))
	for _, info := range infos {
		if info.ID == "" {
			continue
		}
		state := &model.PluginState{ID: info.ID, Name: info.Name, Status: info.Status}
		if state.Name == "" {
			state.Name = info.ID
		}
		if prev, ok := s.plugins[info.ID]; ok && prev.Latest != nil {
			latest := *prev.Latest
			state.Latest = &latest
		}
		next[info.ID] = state
	}
	s.plugins = next
}

// Get returns a copy of the entity state.
func (s *PluginStore) Get(id string) (model.PluginState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.plugins[id]
	if !ok {
		return model.PluginState{}, false
	}
	return copyState(state), true
}

// List returns a copy of all entity states sorted by id.
func (s *PluginStore) List() []model.PluginState {
	s.mu.RLock()
	out := make([]model.PluginState, 0, len(s.plugins))
	for _, state := range s.plugins {
		out = append(out, copyState(state))
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Summary aggregates the current entity states.
func (s *PluginStore) Summary() model.PluginSummary {
	return model.NewPluginSummary(s.List())
}

func copyState(state *model.PluginState) model.PluginState {
	c := *state
	if state.Latest != nil {
		latest := *state.Latest
		c.Latest = &latest
	}
	return c
}
