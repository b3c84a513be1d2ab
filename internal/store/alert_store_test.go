package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alert-monitor/internal/model"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore() *AlertStore {
	return NewAlertStore(WithClock(func() time.Time { return fixedNow }))
}

func testAlert(id string, severity model.Severity) model.Alert {
	return model.Alert{
		ID:        id,
		Type:      "cpu_high",
		Severity:  severity,
		Title:     "CPU high on " + id,
		Timestamp: fixedNow.Add(-time.Minute),
	}
}

// =============================================================================
// Upsert Tests
// =============================================================================

func TestAlertStore_Upsert_InsertThenReplace(t *testing.T) {
	s := newTestStore()

	assert.True(t, s.Upsert(testAlert("A", model.SeverityWarning)), "first upsert inserts")
	assert.False(t, s.Upsert(testAlert("A", model.SeverityCritical)), "second upsert replaces")

	got, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, model.SeverityCritical, got.Severity)
	assert.Equal(t, 1, s.Len())
}

func TestAlertStore_Upsert_LastWriteWins(t *testing.T) {
	s := newTestStore()

	var last model.Alert
	for i := 0; i < 20; i++ {
		a := testAlert("A", model.SeverityInfo)
		a.Message = fmt.Sprintf("payload %d", i)
		a.Metadata = map[string]any{"seq": i}
		s.Upsert(a)
		last = a
	}

	got, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, last.Message, got.Message)
	assert.Equal(t, 19, got.Metadata["seq"])
}

func TestAlertStore_Upsert_NoPartialMerge(t *testing.T) {
	s := newTestStore()

	first := testAlert("A", model.SeverityWarning)
	first.SourceID = "p1"
	first.Metadata = map[string]any{"k": "v"}
	s.Upsert(first)

	second := testAlert("A", model.SeverityWarning)
	s.Upsert(second)

	got, _ := s.Get("A")
	assert.Empty(t, got.SourceID)
	assert.Nil(t, got.Metadata)
}

func TestAlertStore_Upsert_IgnoresEmptyID(t *testing.T) {
	s := newTestStore()

	assert.False(t, s.Upsert(model.Alert{Title: "no id"}))
	assert.Equal(t, 0, s.Len())
}

func TestAlertStore_Upsert_CopiesInput(t *testing.T) {
	s := newTestStore()
	a := testAlert("A", model.SeverityWarning)
	a.Metadata = map[string]any{"k": "v"}
	s.Upsert(a)

	a.Metadata["k"] = "mutated"

	got, _ := s.Get("A")
	assert.Equal(t, "v", got.Metadata["k"])
}

// =============================================================================
// ReplaceAll Tests
// =============================================================================

func TestAlertStore_ReplaceAll_DropsAbsentIDs(t *testing.T) {
	s := newTestStore()
	s.Upsert(testAlert("OLD", model.SeverityCritical))

	s.ReplaceAll([]model.Alert{testAlert("A", model.SeverityInfo), testAlert("B", model.SeverityInfo)})

	_, ok := s.Get("OLD")
	assert.False(t, ok)
	assert.Equal(t, 2, s.Len())
}

func TestAlertStore_ReplaceAll_NoResurrection(t *testing.T) {
	s := newTestStore()
	s.Upsert(testAlert("X", model.SeverityCritical))
	s.ReplaceAll([]model.Alert{testAlert("A", model.SeverityInfo)})

	for i := 0; i < 5; i++ {
		s.Upsert(testAlert("A", model.SeverityWarning))
		s.MarkResolved("X", fixedNow)
	}

	_, ok := s.Get("X")
	assert.False(t, ok, "X must stay absent until an explicit upsert reintroduces it")

	s.Upsert(testAlert("X", model.SeverityInfo))
	_, ok = s.Get("X")
	assert.True(t, ok)
}

// =============================================================================
// MarkResolved Tests
// =============================================================================

func TestAlertStore_MarkResolved_Idempotent(t *testing.T) {
	s := newTestStore()
	s.Upsert(testAlert("A", model.SeverityWarning))

	assert.True(t, s.MarkResolved("A", fixedNow))
	once, _ := s.Get("A")
	statsOnce := s.Statistics()

	assert.False(t, s.MarkResolved("A", fixedNow.Add(time.Hour)))
	twice, _ := s.Get("A")

	assert.Equal(t, once, twice)
	assert.Equal(t, statsOnce, s.Statistics())
	require.NotNil(t, twice.ResolvedAt)
	assert.Equal(t, fixedNow, *twice.ResolvedAt)
}

func TestAlertStore_MarkResolved_UnknownIsNoop(t *testing.T) {
	s := newTestStore()

	assert.False(t, s.MarkResolved("missing", fixedNow))
	assert.Equal(t, 0, s.Len())
}

// =============================================================================
// Read Model Tests
// =============================================================================

func TestAlertStore_SnapshotThenPushScenario(t *testing.T) {
	s := newTestStore()

	s.ReplaceAll([]model.Alert{
		testAlert("A", model.SeverityWarning),
		testAlert("B", model.SeverityError),
		testAlert("C", model.SeverityCritical),
	})
	assert.Equal(t, 3, s.Statistics().Active)

	resolvedAt := fixedNow.Add(-10 * time.Second)
	b := testAlert("B", model.SeverityError)
	b.Resolved = true
	b.ResolvedAt = &resolvedAt
	s.Upsert(b)

	stats := s.Statistics()
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.Resolved)
}

func TestAlertStore_Statistics_IndependentOfHistory(t *testing.T) {
	s1 := newTestStore()
	s1.Upsert(testAlert("A", model.SeverityInfo))
	s1.Upsert(testAlert("B", model.SeverityCritical))
	s1.MarkResolved("B", fixedNow)

	resolved := testAlert("B", model.SeverityCritical)
	resolved.Resolve(fixedNow)
	s2 := newTestStore()
	s2.ReplaceAll([]model.Alert{resolved, testAlert("Z", model.SeverityWarning)})
	s2.Upsert(testAlert("A", model.SeverityInfo))
	s2.ReplaceAll([]model.Alert{testAlert("A", model.SeverityInfo), resolved})

	assert.Equal(t, s1.Statistics(), s2.Statistics())
}

func TestAlertStore_ListAndActiveIDs(t *testing.T) {
	s := newTestStore()
	s.Upsert(testAlert("low", model.SeverityInfo))
	s.Upsert(testAlert("high", model.SeverityCritical))
	s.Upsert(testAlert("mid", model.SeverityWarning))
	s.MarkResolved("mid", fixedNow)

	list := s.List()
	require.Len(t, list, 3)
	assert.Equal(t, "high", list[0].ID)
	assert.Equal(t, "low", list[2].ID)

	assert.Equal(t, []string{"high", "low"}, s.ActiveIDs())
	assert.True(t, s.IsActive("high"))
	assert.False(t, s.IsActive("mid"))
}
