package syncq

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bounteer/intentdash/internal/domain"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func TestEnqueueRecordsEntry(t *testing.T) {
	q := New(&fakePinger{}, nil, nil, time.Minute, nil)

	entry := q.Enqueue(7, domain.ColumnSignal, domain.ColumnActioned, "")

	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.Equal(t, 7, entry.IntentID)
	assert.Equal(t, domain.ColumnSignal, entry.From)
	assert.Equal(t, domain.ColumnActioned, entry.To)
	assert.WithinDuration(t, time.Now(), entry.EnqueuedAt, time.Second)

	pending := q.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, entry.ID, pending[0].ID)
	assert.Equal(t, 1, q.Status().PendingItems)
}

func TestFlushDropsConfirmedEntries(t *testing.T) {
	statusFn := func(ctx context.Context, intentID int) (domain.Column, error) {
		return domain.ColumnActioned, nil
	}
	q := New(&fakePinger{}, statusFn, nil, time.Minute, nil)
	q.Enqueue(7, domain.ColumnSignal, domain.ColumnActioned, "")

	q.Flush(context.Background())

	assert.Empty(t, q.Pending())
	status := q.Status()
	assert.True(t, status.Online)
	assert.False(t, status.SyncInProgress)
	assert.False(t, status.LastSyncTime.IsZero())
}

func TestFlushReportsConflictAndDropsEntry(t *testing.T) {
	statusFn := func(ctx context.Context, intentID int) (domain.Column, error) {
		return domain.ColumnHidden, nil
	}
	var gotEntry Entry
	var gotRemote domain.Column
	conflictFn := func(entry Entry, remote domain.Column) {
		gotEntry = entry
		gotRemote = remote
	}
	q := New(&fakePinger{}, statusFn, conflictFn, time.Minute, nil)
	enqueued := q.Enqueue(7, domain.ColumnSignal, domain.ColumnActioned, "")

	q.Flush(context.Background())

	assert.Equal(t, enqueued.ID, gotEntry.ID)
	assert.Equal(t, domain.ColumnHidden, gotRemote)
	assert.Empty(t, q.Pending(), "conflicting entries are reported, not retried")
}

func TestFlushKeepsUncheckableEntries(t *testing.T) {
	statusFn := func(ctx context.Context, intentID int) (domain.Column, error) {
		return "", errors.New("timeout")
	}
	q := New(&fakePinger{}, statusFn, nil, time.Minute, nil)
	q.Enqueue(7, domain.ColumnSignal, domain.ColumnActioned, "")

	q.Flush(context.Background())

	assert.Len(t, q.Pending(), 1, "entries that cannot be checked stay queued")
}

func TestFlushOfflineKeepsEverything(t *testing.T) {
	statusCalls := 0
	statusFn := func(ctx context.Context, intentID int) (domain.Column, error) {
		statusCalls++
		return domain.ColumnActioned, nil
	}
	q := New(&fakePinger{err: errors.New("no route")}, statusFn, nil, time.Minute, nil)
	q.Enqueue(7, domain.ColumnSignal, domain.ColumnActioned, "")

	q.Flush(context.Background())

	assert.Equal(t, 0, statusCalls, "offline flush must not hit the items API")
	assert.Len(t, q.Pending(), 1)
	status := q.Status()
	assert.False(t, status.Online)
	assert.True(t, status.LastSyncTime.IsZero())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	q := New(&fakePinger{}, func(ctx context.Context, intentID int) (domain.Column, error) {
		return domain.ColumnActioned, nil
	}, nil, 5*time.Millisecond, nil)
	q.Enqueue(7, domain.ColumnSignal, domain.ColumnActioned, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return len(q.Pending()) == 0
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancellation")
	}
}
