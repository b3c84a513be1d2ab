// Package store holds the in-memory alert, plugin and metric-history state of a session.
package store

import (
	"sort"
	"sync"
	"time"

	"alert-monitor/internal/model"
)

// AlertStore is the single source of truth for the alert collection of a session.
// Every write carries a full record, so concurrent writers resolve to
// last-applied-wins. Records are copied on the way in and out.
type AlertStore struct {
	mu     sync.RWMutex
	alerts map[string]model.Alert
	now    func() time.Time
}

// Option is a functional option shared by the stores.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the clock used for normalization and statistics.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewAlertStore creates an empty AlertStore.
func NewAlertStore(opts ...Option) *AlertStore {
	o := applyOptions(opts)
	return &AlertStore{
		alerts: make(map[string]model.Alert),
		now:    o.now,
	}
}

// Upsert inserts or replaces the alert with the same id. Fields are never merged.
// It returns true if the id was not known before. Alerts without an id are ignored.
func (s *AlertStore) Upsert(alert model.Alert) bool {
	if alert.ID == "" {
		return false
	}
	a := alert.Clone()
	a.Normalize(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	_, existed := s.alerts[a.ID]
	s.alerts[a.ID] = a
	return !existed
}

// ReplaceAll swaps the whole collection for the given snapshot.
// Ids absent from the snapshot are dropped.
func (s *AlertStore) ReplaceAll(alerts []model.Alert) {
	now := s.now()
	next := make(map[string]model.Alert, len(alerts))
	for _, alert := range alerts {
		if alert.ID == "" {
			continue
		}
		a := alert.Clone()
		a.Normalize(now)
		next[a.ID] = a
	}

	s.mu.Lock()
	s.alerts = next
	s.mu.Unlock()
}

// MarkResolved resolves the alert at the given time.
// Unknown or already resolved ids are a silent no-op; the return value
// reports whether anything changed.
func (s *AlertStore) MarkResolved(id string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok {
		return false
	}
	if !a.Resolve(at) {
		return false
	}
	s.alerts[id] = a
	return true
}

// Get returns a copy of the alert with the given id.
func (s *AlertStore) Get(id string) (model.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[id]
	if !ok {
		return model.Alert{}, false
	}
	return a.Clone(), true
}

// IsActive returns true if the id is known and unresolved.
func (s *AlertStore) IsActive(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[id]
	return ok && !a.Resolved
}

// List returns a copy of all alerts, most severe and newest first.
func (s *AlertStore) List() []model.Alert {
	alerts := s.snapshot()
	model.SortAlerts(alerts)
	return alerts
}

// ActiveIDs returns the ids of all unresolved alerts, sorted.
func (s *AlertStore) ActiveIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, a := range s.alerts {
		if !a.Resolved {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of alerts held.
func (s *AlertStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// Statistics recomputes the derived statistics from the current collection.
func (s *AlertStore) Statistics() model.AlertStatistics {
	return model.ComputeStatistics(s.snapshot(), s.now())
}

func (s *AlertStore) snapshot() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, a.Clone())
	}
	return out
}
