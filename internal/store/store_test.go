package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bounteer/intentdash/internal/domain"
)

// Test fixtures
func createTestIntents() map[domain.Column][]domain.Intent {
	return map[domain.Column][]domain.Intent{
		domain.ColumnSignal: {
			{ID: 1, Title: "Backend Engineer", Company: "Acme", Skills: []string{"go", "postgres"}},
			{ID: 2, Title: "Data Engineer", Company: "Globex"},
			{ID: 3, Title: "SRE", Company: "Initech"},
		},
		domain.ColumnActioned: {
			{ID: 10, Title: "Frontend Engineer", Company: "Umbrella"},
		},
		domain.ColumnCompleted: {
			{ID: 20, Title: "Platform Engineer", Company: "Hooli"},
		},
	}
}

func createTestBoard(quota int) *Board {
	b := New(quota)
	for col, items := range createTestIntents() {
		b.ReplaceColumn(col, items, len(items))
	}
	return b
}

func TestBeginMoveAppliesInMemory(t *testing.T) {
	b := createTestBoard(10)

	err := b.BeginMove(2, domain.ColumnSignal, domain.ColumnActioned)
	require.NoError(t, err)

	signal := b.Column(domain.ColumnSignal)
	actioned := b.Column(domain.ColumnActioned)

	assert.Len(t, signal, 2)
	for _, item := range signal {
		assert.NotEqual(t, 2, item.ID)
	}
	require.Len(t, actioned, 2)
	assert.Equal(t, 2, actioned[1].ID, "moved intent appends at the end")
	assert.True(t, b.MoveInFlight(2))
}

func TestBeginMoveStaleItem(t *testing.T) {
	b := createTestBoard(10)

	err := b.BeginMove(999, domain.ColumnSignal, domain.ColumnActioned)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.False(t, b.MoveInFlight(999))

	// Wrong source column counts as stale too.
	err = b.BeginMove(1, domain.ColumnCompleted, domain.ColumnActioned)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestBeginMoveInFlightGuard(t *testing.T) {
	b := createTestBoard(10)

	require.NoError(t, b.BeginMove(1, domain.ColumnSignal, domain.ColumnActioned))

	err := b.BeginMove(1, domain.ColumnActioned, domain.ColumnCompleted)
	assert.ErrorIs(t, err, ErrMoveInFlight)

	// Commit releases the guard; a new move is allowed.
	b.CommitMove(1)
	assert.False(t, b.MoveInFlight(1))
	assert.NoError(t, b.BeginMove(1, domain.ColumnActioned, domain.ColumnCompleted))
}

func TestBeginMoveQuota(t *testing.T) {
	b := New(2)
	b.ReplaceColumn(domain.ColumnSignal, []domain.Intent{{ID: 1}, {ID: 2}, {ID: 3}}, 3)

	require.NoError(t, b.BeginMove(1, domain.ColumnSignal, domain.ColumnActioned))
	b.CommitMove(1)
	require.NoError(t, b.BeginMove(2, domain.ColumnSignal, domain.ColumnActioned))
	b.CommitMove(2)

	err := b.BeginMove(3, domain.ColumnSignal, domain.ColumnActioned)
	assert.ErrorIs(t, err, ErrQuotaReached)

	// Rejected move left everything untouched.
	assert.Len(t, b.Column(domain.ColumnSignal), 1)
	assert.Len(t, b.Column(domain.ColumnActioned), 2)
	assert.False(t, b.MoveInFlight(3))

	// Quota only guards the actioned column.
	assert.NoError(t, b.BeginMove(3, domain.ColumnSignal, domain.ColumnHidden))
}

func TestRollbackRestoresExactSnapshot(t *testing.T) {
	b := createTestBoard(10)
	before := b.Columns()

	require.NoError(t, b.BeginMove(1, domain.ColumnSignal, domain.ColumnCompleted))
	require.NotEqual(t, before[domain.ColumnSignal], b.Column(domain.ColumnSignal))

	require.NoError(t, b.RollbackMove(1))

	after := b.Columns()
	assert.Equal(t, before, after, "rollback restores the pre-move snapshot exactly")
	assert.False(t, b.MoveInFlight(1))
}

func TestRollbackWithoutSnapshot(t *testing.T) {
	b := createTestBoard(10)
	assert.ErrorIs(t, b.RollbackMove(1), ErrNoRollback)
}

func TestAppendToColumnSkipsDuplicates(t *testing.T) {
	b := createTestBoard(10)

	b.AppendToColumn(domain.ColumnSignal, []domain.Intent{
		{ID: 3, Title: "SRE"}, // already present
		{ID: 4, Title: "ML Engineer"},
	})

	signal := b.Column(domain.ColumnSignal)
	require.Len(t, signal, 4)
	assert.Equal(t, 4, signal[3].ID)
}

func TestReplaceColumnKeepsTotal(t *testing.T) {
	b := New(10)
	b.ReplaceColumn(domain.ColumnSignal, []domain.Intent{{ID: 1}}, 57)

	assert.Equal(t, 1, b.ColumnLen(domain.ColumnSignal))
	assert.Equal(t, 57, b.Total(domain.ColumnSignal))
}

func TestColumnReturnsCopy(t *testing.T) {
	b := createTestBoard(10)

	items := b.Column(domain.ColumnSignal)
	items[0].Title = "mutated"

	assert.Equal(t, "Backend Engineer", b.Column(domain.ColumnSignal)[0].Title)
}

func TestClear(t *testing.T) {
	b := createTestBoard(10)
	require.NoError(t, b.BeginMove(1, domain.ColumnSignal, domain.ColumnHidden))

	b.Clear()

	for _, col := range domain.Columns {
		assert.Equal(t, 0, b.ColumnLen(col))
		assert.Equal(t, 0, b.Total(col))
	}
	assert.False(t, b.MoveInFlight(1))
	assert.Equal(t, 10, b.ActionQuota())
}
