// Package syncq implements the best-effort background sync queue. It records
// column-move intents alongside the primary mutation path, periodically
// re-confirms them against the CMS, and reports conflicts instead of
// resolving them.
package syncq

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bounteer/intentdash/internal/domain"
)

// Entry is one recorded column-move intent awaiting confirmation.
type Entry struct {
	ID         uuid.UUID
	IntentID   int
	From       domain.Column
	To         domain.Column
	Reason     string
	EnqueuedAt time.Time
}

// Status is the derived state exposed to the UI.
type Status struct {
	Online         bool
	SyncInProgress bool
	LastSyncTime   time.Time
	PendingItems   int
}

// Pinger probes CMS connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusFunc reports the column an intent currently occupies on the server.
type StatusFunc func(ctx context.Context, intentID int) (domain.Column, error)

// ConflictFunc is invoked when the remote column differs from an entry's
// recorded target. The queue never overwrites either side.
type ConflictFunc func(entry Entry, remote domain.Column)

// Queue is the append-only sync intent queue.
type Queue struct {
	mu       sync.Mutex
	entries  []Entry
	online   bool
	syncing  bool
	lastSync time.Time

	interval   time.Duration
	pinger     Pinger
	statusFn   StatusFunc
	conflictFn ConflictFunc
	logger     *zap.Logger
}

// New creates a sync queue. conflictFn may be nil.
func New(pinger Pinger, statusFn StatusFunc, conflictFn ConflictFunc, interval time.Duration, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		interval:   interval,
		pinger:     pinger,
		statusFn:   statusFn,
		conflictFn: conflictFn,
		logger:     logger,
	}
}

// Enqueue records a move intent and returns the created entry.
func (q *Queue) Enqueue(intentID int, from, to domain.Column, reason string) Entry {
	entry := Entry{
		ID:         uuid.New(),
		IntentID:   intentID,
		From:       from,
		To:         to,
		Reason:     reason,
		EnqueuedAt: time.Now(),
	}
	q.mu.Lock()
	q.entries = append(q.entries, entry)
	q.mu.Unlock()
	return entry
}

// Pending returns a copy of the unconfirmed entries.
func (q *Queue) Pending() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Status returns the derived queue state.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{
		Online:         q.online,
		SyncInProgress: q.syncing,
		LastSyncTime:   q.lastSync,
		PendingItems:   len(q.entries),
	}
}

// Run flushes the queue on a fixed interval until the context is cancelled.
// The ticker is stopped on exit so navigations do not leak timers.
func (q *Queue) Run(ctx context.Context) {
	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			q.Flush(ctx)
		}
	}
}

// Flush performs one reconciliation pass: probe connectivity, then confirm
// each entry's target column against the server. Confirmed and conflicting
// entries are removed (conflicts are reported first); entries that cannot be
// checked stay queued for the next pass. Ordering across retries is not
// guaranteed.
func (q *Queue) Flush(ctx context.Context) {
	q.mu.Lock()
	if q.syncing {
		q.mu.Unlock()
		return
	}
	q.syncing = true
	entries := make([]Entry, len(q.entries))
	copy(entries, q.entries)
	q.mu.Unlock()

	online := q.pinger.Ping(ctx) == nil

	var remaining []Entry
	if !online {
		remaining = entries
	} else {
		for _, entry := range entries {
			remote, err := q.statusFn(ctx, entry.IntentID)
			if err != nil {
				q.logger.Debug("sync check failed, keeping entry",
					zap.Int("intent", entry.IntentID), zap.Error(err))
				remaining = append(remaining, entry)
				continue
			}
			if remote == entry.To {
				continue
			}
			q.logger.Warn("sync conflict: remote state differs from recorded move",
				zap.Int("intent", entry.IntentID),
				zap.String("expected", string(entry.To)),
				zap.String("remote", string(remote)))
			if q.conflictFn != nil {
				q.conflictFn(entry, remote)
			}
		}
	}

	q.mu.Lock()
	q.online = online
	q.syncing = false
	if online {
		q.lastSync = time.Now()
	}
	// Keep unresolved entries plus anything enqueued during the flush.
	kept := remaining
	kept = append(kept, q.entries[len(entries):]...)
	q.entries = kept
	q.mu.Unlock()
}
