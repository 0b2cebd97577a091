package store

import (
	"sync"
	"time"

	"github.com/bounteer/intentdash/internal/domain"
)

// PendingState is the lifecycle of one in-flight optimistic move.
type PendingState string

const (
	PendingInFlight PendingState = "pending"
	PendingSuccess  PendingState = "success"
	PendingError    PendingState = "error"
)

// Default marker lifetimes after the remote call resolves.
const (
	DefaultSuccessTTL = 1 * time.Second
	DefaultErrorTTL   = 3 * time.Second
)

// PendingUpdate is the transient per-intent marker surfaced to the UI while
// a move resolves.
type PendingUpdate struct {
	IntentID int
	From     domain.Column
	To       domain.Column
	At       time.Time
	State    PendingState
}

// PendingTracker records one marker per intent and prunes resolved markers
// after a short delay so the UI can flash success/error feedback.
type PendingTracker struct {
	mu         sync.Mutex
	updates    map[int]PendingUpdate
	successTTL time.Duration
	errorTTL   time.Duration
}

// NewPendingTracker creates a tracker with the default marker lifetimes.
func NewPendingTracker() *PendingTracker {
	return NewPendingTrackerWithTTL(DefaultSuccessTTL, DefaultErrorTTL)
}

// NewPendingTrackerWithTTL creates a tracker with explicit lifetimes.
// Tests use short TTLs here.
func NewPendingTrackerWithTTL(successTTL, errorTTL time.Duration) *PendingTracker {
	return &PendingTracker{
		updates:    make(map[int]PendingUpdate),
		successTTL: successTTL,
		errorTTL:   errorTTL,
	}
}

// MarkPending records the start of a move.
func (t *PendingTracker) MarkPending(intentID int, from, to domain.Column) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.updates[intentID] = PendingUpdate{
		IntentID: intentID,
		From:     from,
		To:       to,
		At:       time.Now(),
		State:    PendingInFlight,
	}
}

// MarkSuccess transitions the marker and schedules its removal.
func (t *PendingTracker) MarkSuccess(intentID int) {
	t.resolve(intentID, PendingSuccess, t.successTTL)
}

// MarkError transitions the marker and schedules its removal.
func (t *PendingTracker) MarkError(intentID int) {
	t.resolve(intentID, PendingError, t.errorTTL)
}

func (t *PendingTracker) resolve(intentID int, state PendingState, ttl time.Duration) {
	t.mu.Lock()
	update, ok := t.updates[intentID]
	if !ok {
		t.mu.Unlock()
		return
	}
	update.State = state
	resolvedAt := time.Now()
	update.At = resolvedAt
	t.updates[intentID] = update
	t.mu.Unlock()

	time.AfterFunc(ttl, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		// Only prune if no newer move replaced the marker meanwhile.
		if current, ok := t.updates[intentID]; ok && current.State == state && current.At.Equal(resolvedAt) {
			delete(t.updates, intentID)
		}
	})
}

// Get returns the marker for an intent, if any.
func (t *PendingTracker) Get(intentID int) (PendingUpdate, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	update, ok := t.updates[intentID]
	return update, ok
}

// All returns a copy of the current markers.
func (t *PendingTracker) All() map[int]PendingUpdate {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int]PendingUpdate, len(t.updates))
	for id, update := range t.updates {
		out[id] = update
	}
	return out
}
