package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bounteer/intentdash/internal/domain"
)

func TestPendingLifecycle(t *testing.T) {
	tracker := NewPendingTracker()

	tracker.MarkPending(1, domain.ColumnSignal, domain.ColumnActioned)

	update, ok := tracker.Get(1)
	require.True(t, ok)
	assert.Equal(t, PendingInFlight, update.State)
	assert.Equal(t, domain.ColumnSignal, update.From)
	assert.Equal(t, domain.ColumnActioned, update.To)

	tracker.MarkSuccess(1)
	update, ok = tracker.Get(1)
	require.True(t, ok)
	assert.Equal(t, PendingSuccess, update.State)
}

func TestPendingResolveWithoutMarkerIsNoop(t *testing.T) {
	tracker := NewPendingTracker()

	tracker.MarkSuccess(42)
	tracker.MarkError(42)

	_, ok := tracker.Get(42)
	assert.False(t, ok)
}

func TestPendingMarkersPruneAfterTTL(t *testing.T) {
	tracker := NewPendingTrackerWithTTL(10*time.Millisecond, 10*time.Millisecond)

	tracker.MarkPending(1, domain.ColumnSignal, domain.ColumnActioned)
	tracker.MarkSuccess(1)
	tracker.MarkPending(2, domain.ColumnSignal, domain.ColumnHidden)
	tracker.MarkError(2)

	assert.Eventually(t, func() bool {
		_, ok1 := tracker.Get(1)
		_, ok2 := tracker.Get(2)
		return !ok1 && !ok2
	}, time.Second, 5*time.Millisecond)
}

func TestPendingNewerMoveSurvivesStalePrune(t *testing.T) {
	tracker := NewPendingTrackerWithTTL(10*time.Millisecond, 10*time.Millisecond)

	tracker.MarkPending(1, domain.ColumnSignal, domain.ColumnActioned)
	tracker.MarkSuccess(1)

	// A new move for the same intent starts before the old marker is pruned.
	tracker.MarkPending(1, domain.ColumnActioned, domain.ColumnCompleted)

	time.Sleep(50 * time.Millisecond)

	update, ok := tracker.Get(1)
	require.True(t, ok, "the in-flight marker must not be pruned by the stale timer")
	assert.Equal(t, PendingInFlight, update.State)
	assert.Equal(t, domain.ColumnCompleted, update.To)
}

func TestPendingAllReturnsCopy(t *testing.T) {
	tracker := NewPendingTracker()
	tracker.MarkPending(1, domain.ColumnSignal, domain.ColumnActioned)

	all := tracker.All()
	require.Len(t, all, 1)
	delete(all, 1)

	_, ok := tracker.Get(1)
	assert.True(t, ok)
}
