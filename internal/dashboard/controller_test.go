package dashboard

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bounteer/intentdash/internal/directus"
	"github.com/bounteer/intentdash/internal/domain"
	"github.com/bounteer/intentdash/internal/preload"
	"github.com/bounteer/intentdash/internal/store"
)

// mockRemote implements Remote in memory and counts every network-shaped call.
type mockRemote struct {
	mu      sync.Mutex
	userID  string
	rows    []domain.StateRow
	intents map[int]domain.Intent

	findRow   *domain.StateRow
	createErr error
	updateErr error
	deleteErr error

	calls struct {
		listIntents int
		listActions int
		listRows    int
		find        int
		create      int
		update      int
		delete      int
		ping        int
	}
}

func newMockRemote() *mockRemote {
	return &mockRemote{
		userID: "user-1",
		intents: map[int]domain.Intent{
			1: {ID: 1, Title: "Backend Engineer", Company: "Acme", Category: "engineering"},
			2: {ID: 2, Title: "Account Executive", Company: "Globex", Category: "sales"},
			3: {ID: 3, Title: "Data Engineer", Company: "Initech", Category: "engineering"},
		},
	}
}

func (m *mockRemote) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.calls
	return c.listIntents + c.listActions + c.listRows + c.find + c.create + c.update + c.delete + c.ping
}

func (m *mockRemote) CurrentUserID(ctx context.Context) (string, error) {
	return m.userID, nil
}

func (m *mockRemote) ListStateRows(ctx context.Context, userID string, limit int) ([]domain.StateRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.listRows++
	return append([]domain.StateRow(nil), m.rows...), nil
}

// ListIntents interprets the id filters the fetcher encodes, so each column
// query returns its own members.
func (m *mockRemote) ListIntents(ctx context.Context, q directus.Query) ([]domain.Intent, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.listIntents++

	values := q.Values()
	parse := func(raw string) map[int]struct{} {
		out := make(map[int]struct{})
		for _, part := range strings.Split(raw, ",") {
			if id, err := strconv.Atoi(part); err == nil {
				out[id] = struct{}{}
			}
		}
		return out
	}

	var result []domain.Intent
	if raw := values.Get("filter[id][_in]"); raw != "" {
		include := parse(raw)
		for id := range include {
			if intent, ok := m.intents[id]; ok {
				result = append(result, intent)
			}
		}
	} else {
		exclude := parse(values.Get("filter[id][_nin]"))
		for id, intent := range m.intents {
			if _, skip := exclude[id]; !skip {
				result = append(result, intent)
			}
		}
	}
	return result, len(result), nil
}

func (m *mockRemote) ListActions(ctx context.Context, intentIDs []int) ([]domain.Action, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.listActions++
	return nil, nil
}

func (m *mockRemote) FindStateRow(ctx context.Context, userID string, intentID int) (*domain.StateRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.find++
	return m.findRow, nil
}

func (m *mockRemote) CreateStateRow(ctx context.Context, intentID int, status domain.Status, reason string) (domain.StateRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.create++
	if m.createErr != nil {
		return domain.StateRow{}, m.createErr
	}
	return domain.StateRow{ID: 100, IntentID: intentID, UserID: m.userID, Status: status, Reason: reason}, nil
}

func (m *mockRemote) UpdateStateRow(ctx context.Context, rowID int, status domain.Status, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.update++
	return m.updateErr
}

func (m *mockRemote) DeleteStateRow(ctx context.Context, rowID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.delete++
	return m.deleteErr
}

func (m *mockRemote) Ping(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.ping++
	return nil
}

func newTestController(remote *mockRemote, quota int) *Controller {
	return New(remote, Options{
		PageSize:     20,
		ActionQuota:  quota,
		SyncInterval: time.Minute,
	})
}

func TestRefreshPopulatesColumnsAndSkipsEmptySets(t *testing.T) {
	remote := newMockRemote()
	remote.rows = []domain.StateRow{
		{ID: 1, IntentID: 2, Status: domain.StatusActioned},
	}
	ctrl := newTestController(remote, 10)

	require.NoError(t, ctrl.Refresh(context.Background(), true))

	signal := ctrl.Board().Column(domain.ColumnSignal)
	assert.Len(t, signal, 2)
	for _, item := range signal {
		assert.NotEqual(t, 2, item.ID)
	}
	actioned := ctrl.Board().Column(domain.ColumnActioned)
	require.Len(t, actioned, 1)
	assert.Equal(t, 2, actioned[0].ID)

	// Hidden, completed, and aborted sets are empty: only two column queries.
	assert.Equal(t, 2, remote.calls.listIntents)
	for _, col := range []domain.Column{domain.ColumnHidden, domain.ColumnCompleted, domain.ColumnAborted} {
		assert.Equal(t, 0, ctrl.Board().ColumnLen(col))
	}
}

func TestRefreshReusesCacheUnlessForced(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)

	require.NoError(t, ctrl.Refresh(context.Background(), true))
	after := remote.totalCalls()

	require.NoError(t, ctrl.Refresh(context.Background(), false))
	assert.Equal(t, after, remote.totalCalls(), "unforced refresh serves from the space cache")

	require.NoError(t, ctrl.Refresh(context.Background(), true))
	assert.Greater(t, remote.totalCalls(), after)
}

func TestBeginMoveIsOptimistic(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)
	require.NoError(t, ctrl.Refresh(context.Background(), true))
	before := remote.totalCalls()

	require.NoError(t, ctrl.BeginMove(1, domain.ColumnSignal, domain.ColumnActioned, ""))

	// In-memory move applied before any network activity.
	assert.Equal(t, before, remote.totalCalls(), "the optimistic half must not touch the network")
	actioned := ctrl.Board().Column(domain.ColumnActioned)
	require.Len(t, actioned, 1)
	assert.Equal(t, 1, actioned[0].ID)

	update, ok := ctrl.Pending().Get(1)
	require.True(t, ok)
	assert.Equal(t, store.PendingInFlight, update.State)

	pending := ctrl.SyncQueue().Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, 1, pending[0].IntentID)
	assert.Equal(t, domain.ColumnActioned, pending[0].To)
}

func TestCompleteMoveCreatesStateRow(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)
	require.NoError(t, ctrl.Refresh(context.Background(), true))

	require.NoError(t, ctrl.BeginMove(1, domain.ColumnSignal, domain.ColumnActioned, ""))
	require.NoError(t, ctrl.CompleteMove(context.Background(), 1, domain.ColumnSignal, domain.ColumnActioned, ""))

	assert.Equal(t, 1, remote.calls.create)
	assert.Equal(t, 0, remote.calls.update)
	assert.False(t, ctrl.Board().MoveInFlight(1))

	update, ok := ctrl.Pending().Get(1)
	require.True(t, ok)
	assert.Equal(t, store.PendingSuccess, update.State)
}

func TestCompleteMovePatchesExistingRow(t *testing.T) {
	remote := newMockRemote()
	remote.rows = []domain.StateRow{{ID: 50, IntentID: 2, Status: domain.StatusActioned}}
	remote.findRow = &domain.StateRow{ID: 50, IntentID: 2, Status: domain.StatusActioned}
	ctrl := newTestController(remote, 10)
	require.NoError(t, ctrl.Refresh(context.Background(), true))

	require.NoError(t, ctrl.Move(context.Background(), 2, domain.ColumnActioned, domain.ColumnCompleted, ""))

	assert.Equal(t, 1, remote.calls.update)
	assert.Equal(t, 0, remote.calls.create)
}

func TestCompleteMoveToSignalDeletesRow(t *testing.T) {
	remote := newMockRemote()
	remote.rows = []domain.StateRow{{ID: 50, IntentID: 2, Status: domain.StatusHidden}}
	remote.findRow = &domain.StateRow{ID: 50, IntentID: 2, Status: domain.StatusHidden}
	ctrl := newTestController(remote, 10)
	require.NoError(t, ctrl.Refresh(context.Background(), true))

	require.NoError(t, ctrl.Move(context.Background(), 2, domain.ColumnHidden, domain.ColumnSignal, ""))

	assert.Equal(t, 1, remote.calls.delete)
	assert.Equal(t, 0, remote.calls.create)
	assert.Equal(t, 0, remote.calls.update)
}

func TestCompleteMoveFailureRollsBackExactly(t *testing.T) {
	remote := newMockRemote()
	remote.createErr = errors.New("422 validation failed")
	ctrl := newTestController(remote, 10)
	require.NoError(t, ctrl.Refresh(context.Background(), true))
	before := ctrl.Board().Columns()

	require.NoError(t, ctrl.BeginMove(1, domain.ColumnSignal, domain.ColumnActioned, ""))
	err := ctrl.CompleteMove(context.Background(), 1, domain.ColumnSignal, domain.ColumnActioned, "")
	require.Error(t, err)

	assert.Equal(t, before, ctrl.Board().Columns(), "rollback restores the pre-move snapshot exactly")
	assert.False(t, ctrl.Board().MoveInFlight(1))

	update, ok := ctrl.Pending().Get(1)
	require.True(t, ok)
	assert.Equal(t, store.PendingError, update.State)
}

func TestBeginMoveQuotaRejectedWithoutNetwork(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 1)
	require.NoError(t, ctrl.Refresh(context.Background(), true))

	require.NoError(t, ctrl.Move(context.Background(), 1, domain.ColumnSignal, domain.ColumnActioned, ""))
	before := remote.totalCalls()

	err := ctrl.BeginMove(2, domain.ColumnSignal, domain.ColumnActioned, "")
	assert.ErrorIs(t, err, store.ErrQuotaReached)
	assert.Equal(t, before, remote.totalCalls(), "a quota rejection must not reach the network")
	assert.Len(t, ctrl.SyncQueue().Pending(), 1, "rejected moves are not enqueued")
	_, ok := ctrl.Pending().Get(2)
	assert.False(t, ok)
}

func TestBeginMoveInvalidTarget(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)
	require.NoError(t, ctrl.Refresh(context.Background(), true))
	before := remote.totalCalls()

	err := ctrl.BeginMove(1, domain.ColumnSignal, domain.Column("archive"), "")
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.Equal(t, before, remote.totalCalls())
	assert.Empty(t, ctrl.SyncQueue().Pending())
	assert.Len(t, ctrl.Board().Column(domain.ColumnSignal), 3)
}

func TestBeginMoveSecondMoveForSameIntentRejected(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)
	require.NoError(t, ctrl.Refresh(context.Background(), true))

	require.NoError(t, ctrl.BeginMove(1, domain.ColumnSignal, domain.ColumnActioned, ""))
	err := ctrl.BeginMove(1, domain.ColumnActioned, domain.ColumnCompleted, "")
	assert.ErrorIs(t, err, store.ErrMoveInFlight)
}

func TestCategoryFilterAppliesAtRenderTime(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)
	ctrl.SetCategoryFilter("Engineering")

	require.NoError(t, ctrl.Refresh(context.Background(), true))

	// The stored snapshot keeps every fetched intent; only the rendered
	// window is filtered.
	assert.Equal(t, 3, ctrl.Board().ColumnLen(domain.ColumnSignal))
	visible := ctrl.VisibleItems(domain.ColumnSignal)
	require.Len(t, visible, 2)
	for _, item := range visible {
		assert.Equal(t, "engineering", item.Category)
	}

	// Clearing the filter reveals the full snapshot without a refetch.
	before := remote.totalCalls()
	ctrl.SetCategoryFilter("")
	assert.Len(t, ctrl.VisibleItems(domain.ColumnSignal), 3)
	assert.Equal(t, before, remote.totalCalls())
}

func TestPreloadWithFilterKeepsWindowConsistent(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)
	ctrl.SetCategoryFilter("engineering")
	require.NoError(t, ctrl.Refresh(context.Background(), true))

	remote.mu.Lock()
	remote.intents[4] = domain.Intent{ID: 4, Title: "Sales Lead", Category: "sales"}
	remote.mu.Unlock()

	err := ctrl.ProcessPreload(context.Background(), preload.Request{Column: domain.ColumnSignal, Offset: 20})
	require.NoError(t, err)

	// The preload buffer grew by exactly what was appended to the board, so
	// the visible window stays in step with the snapshot even though the
	// filter hides the new item.
	assert.Equal(t, 4, ctrl.Board().ColumnLen(domain.ColumnSignal))
	visible := ctrl.VisibleItems(domain.ColumnSignal)
	assert.Len(t, visible, 2)
	for _, item := range visible {
		assert.Equal(t, "engineering", item.Category)
	}
}

func TestProcessPreloadAppendsNextPage(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)
	require.NoError(t, ctrl.Refresh(context.Background(), true))
	baseLen := ctrl.Board().ColumnLen(domain.ColumnSignal)

	remote.mu.Lock()
	remote.intents[4] = domain.Intent{ID: 4, Title: "Platform Engineer", Category: "engineering"}
	remote.mu.Unlock()

	err := ctrl.ProcessPreload(context.Background(), preload.Request{Column: domain.ColumnSignal, Offset: 20})
	require.NoError(t, err)

	assert.Equal(t, baseLen+1, ctrl.Board().ColumnLen(domain.ColumnSignal), "new items append, duplicates are skipped")
}

func TestRemoteColumnMapsStatuses(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)

	col, err := ctrl.remoteColumn(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.ColumnSignal, col, "no state row means signal")

	remote.findRow = &domain.StateRow{ID: 1, IntentID: 7, Status: domain.StatusAborted}
	col, err = ctrl.remoteColumn(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, domain.ColumnAborted, col)

	remote.findRow = &domain.StateRow{ID: 1, IntentID: 7, Status: "archived"}
	_, err = ctrl.remoteColumn(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrUnknownColumn)
}

func TestSetSpacePartitionsCache(t *testing.T) {
	remote := newMockRemote()
	ctrl := newTestController(remote, 10)

	require.NoError(t, ctrl.Refresh(context.Background(), true))
	ctrl.SetSpace(2)
	assert.Equal(t, 2, ctrl.Space())

	// The new space has no cache entry yet, so an unforced refresh fetches.
	before := remote.totalCalls()
	require.NoError(t, ctrl.Refresh(context.Background(), false))
	assert.Greater(t, remote.totalCalls(), before)
}
