// Package store provides the in-memory state management layer for the
// dashboard. It holds the five column snapshots, performs optimistic moves
// with rollback, and serializes moves per intent - simple interface hiding
// the snapshot/restore bookkeeping.
package store

import (
	"errors"
	"sync"

	"github.com/bounteer/intentdash/internal/domain"
)

var (
	// ErrItemNotFound indicates the intent is not present in the claimed
	// source column. Signals a stale UI to the caller.
	ErrItemNotFound = errors.New("intent not found in source column")
	// ErrMoveInFlight indicates another move for the same intent has not
	// resolved yet.
	ErrMoveInFlight = errors.New("move already in flight for intent")
	// ErrQuotaReached indicates the action column already holds its maximum.
	ErrQuotaReached = errors.New("action column quota reached")
	// ErrNoRollback indicates there is no snapshot to restore.
	ErrNoRollback = errors.New("no rollback snapshot for intent")
)

// Snapshot is a deep copy of all column contents, used for rollback.
type Snapshot map[domain.Column][]domain.Intent

// Board manages the in-memory column snapshots of the dashboard.
// All writes go through its methods; readers get copies.
type Board struct {
	mu      sync.Mutex
	columns map[domain.Column][]domain.Intent
	totals  map[domain.Column]int

	// Per-intent in-flight move guard and rollback snapshots.
	inFlight  map[int]struct{}
	rollbacks map[int]Snapshot

	actionQuota int
}

// New creates an empty board with the given action-column quota.
func New(actionQuota int) *Board {
	b := &Board{
		columns:     make(map[domain.Column][]domain.Intent),
		totals:      make(map[domain.Column]int),
		inFlight:    make(map[int]struct{}),
		rollbacks:   make(map[int]Snapshot),
		actionQuota: actionQuota,
	}
	for _, col := range domain.Columns {
		b.columns[col] = []domain.Intent{}
	}
	return b
}

// ActionQuota returns the configured action-column limit.
func (b *Board) ActionQuota() int {
	return b.actionQuota
}

// ReplaceColumn swaps in a freshly fetched column snapshot and its
// server-side total.
func (b *Board) ReplaceColumn(col domain.Column, items []domain.Intent, total int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.columns[col] = copyItems(items)
	b.totals[col] = total
}

// AppendToColumn appends preloaded items, skipping IDs already present.
func (b *Board) AppendToColumn(col domain.Column, items []domain.Intent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	existing := make(map[int]struct{}, len(b.columns[col]))
	for _, item := range b.columns[col] {
		existing[item.ID] = struct{}{}
	}
	for _, item := range items {
		if _, dup := existing[item.ID]; dup {
			continue
		}
		b.columns[col] = append(b.columns[col], item)
	}
}

// Column returns a copy of one column's items.
func (b *Board) Column(col domain.Column) []domain.Intent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copyItems(b.columns[col])
}

// ColumnLen returns the in-memory length of a column.
func (b *Board) ColumnLen(col domain.Column) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.columns[col])
}

// Total returns the server-reported total for a column.
func (b *Board) Total(col domain.Column) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totals[col]
}

// Columns returns a deep copy of all columns.
func (b *Board) Columns() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// BeginMove performs the optimistic half of a move: it acquires the
// per-intent guard, takes a rollback snapshot, and applies the move in
// memory. The caller must resolve it with CommitMove or RollbackMove.
//
// Fails with ErrMoveInFlight if a move for this intent is unresolved,
// ErrQuotaReached when the target is the actioned column at capacity, and
// ErrItemNotFound when the intent is not in the claimed source column.
// On failure nothing changes and the guard is not held.
func (b *Board) BeginMove(intentID int, from, to domain.Column) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, busy := b.inFlight[intentID]; busy {
		return ErrMoveInFlight
	}
	if to == domain.ColumnActioned && len(b.columns[to]) >= b.actionQuota {
		return ErrQuotaReached
	}

	idx := -1
	for i, item := range b.columns[from] {
		if item.ID == intentID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrItemNotFound
	}

	snapshot := b.snapshotLocked()

	item := b.columns[from][idx]
	b.columns[from] = append(b.columns[from][:idx:idx], b.columns[from][idx+1:]...)
	b.columns[to] = append(b.columns[to], item)

	b.inFlight[intentID] = struct{}{}
	b.rollbacks[intentID] = snapshot
	return nil
}

// CommitMove releases the guard and drops the rollback snapshot after the
// remote mutation succeeded.
func (b *Board) CommitMove(intentID int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.inFlight, intentID)
	delete(b.rollbacks, intentID)
}

// RollbackMove restores the pre-move snapshot after a failed remote
// mutation and releases the guard.
func (b *Board) RollbackMove(intentID int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot, ok := b.rollbacks[intentID]
	if !ok {
		return ErrNoRollback
	}
	b.columns = make(map[domain.Column][]domain.Intent, len(snapshot))
	for col, items := range snapshot {
		b.columns[col] = copyItems(items)
	}
	delete(b.inFlight, intentID)
	delete(b.rollbacks, intentID)
	return nil
}

// MoveInFlight reports whether a move for the intent is unresolved.
func (b *Board) MoveInFlight(intentID int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, busy := b.inFlight[intentID]
	return busy
}

// Clear resets all columns and move state, preserving the quota.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, col := range domain.Columns {
		b.columns[col] = []domain.Intent{}
		b.totals[col] = 0
	}
	b.inFlight = make(map[int]struct{})
	b.rollbacks = make(map[int]Snapshot)
}

// snapshotLocked deep-copies all columns. Caller holds b.mu.
func (b *Board) snapshotLocked() Snapshot {
	snapshot := make(Snapshot, len(b.columns))
	for col, items := range b.columns {
		snapshot[col] = copyItems(items)
	}
	return snapshot
}

func copyItems(items []domain.Intent) []domain.Intent {
	out := make([]domain.Intent, len(items))
	copy(out, items)
	return out
}
