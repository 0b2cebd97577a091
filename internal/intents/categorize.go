// Package intents implements the data access layer of the dashboard: the
// per-user categorization cache and the per-column page fetcher.
package intents

import (
	"context"
	"sort"

	"github.com/bounteer/intentdash/internal/domain"
)

// stateRowFetchLimit bounds the bulk categorization fetch.
const stateRowFetchLimit = 1000

// CategorizedIDs partitions the current user's intent IDs by stored status.
// An intent absent from All is in the implicit signal column.
type CategorizedIDs struct {
	Actioned  map[int]struct{}
	Hidden    map[int]struct{}
	Completed map[int]struct{}
	Aborted   map[int]struct{}
	All       map[int]struct{}
}

// NewCategorizedIDs returns an empty categorization.
func NewCategorizedIDs() CategorizedIDs {
	return CategorizedIDs{
		Actioned:  make(map[int]struct{}),
		Hidden:    make(map[int]struct{}),
		Completed: make(map[int]struct{}),
		Aborted:   make(map[int]struct{}),
		All:       make(map[int]struct{}),
	}
}

// Categorize builds the ID sets from a bulk list of state rows.
// Each intent takes the status of its first row encountered; a well-formed
// dataset has at most one row per intent, so the sets stay pairwise disjoint.
func Categorize(rows []domain.StateRow) CategorizedIDs {
	ids := NewCategorizedIDs()
	for _, row := range rows {
		if _, seen := ids.All[row.IntentID]; seen {
			continue
		}
		switch row.Status {
		case domain.StatusActioned:
			ids.Actioned[row.IntentID] = struct{}{}
		case domain.StatusHidden:
			ids.Hidden[row.IntentID] = struct{}{}
		case domain.StatusCompleted:
			ids.Completed[row.IntentID] = struct{}{}
		case domain.StatusAborted:
			ids.Aborted[row.IntentID] = struct{}{}
		default:
			// Unknown status values are skipped rather than guessed at.
			continue
		}
		ids.All[row.IntentID] = struct{}{}
	}
	return ids
}

// SetForColumn returns the ID set backing a stored-status column.
// The signal column has no set (ok=false): its membership is defined by
// exclusion from All.
func (c CategorizedIDs) SetForColumn(col domain.Column) (map[int]struct{}, bool) {
	switch col {
	case domain.ColumnActioned:
		return c.Actioned, true
	case domain.ColumnHidden:
		return c.Hidden, true
	case domain.ColumnCompleted:
		return c.Completed, true
	case domain.ColumnAborted:
		return c.Aborted, true
	default:
		return nil, false
	}
}

// AllIDs returns the union set as a sorted slice for stable query encoding.
func (c CategorizedIDs) AllIDs() []int {
	return sortedIDs(c.All)
}

func sortedIDs(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// StateRowLister is the remote surface needed to build the categorization.
type StateRowLister interface {
	CurrentUserID(ctx context.Context) (string, error)
	ListStateRows(ctx context.Context, userID string, limit int) ([]domain.StateRow, error)
}

// FetchCategorized fetches the current user's state rows and partitions the
// intent IDs. No retries are performed here; the caller decides.
func FetchCategorized(ctx context.Context, remote StateRowLister) (CategorizedIDs, error) {
	userID, err := remote.CurrentUserID(ctx)
	if err != nil {
		return CategorizedIDs{}, err
	}
	rows, err := remote.ListStateRows(ctx, userID, stateRowFetchLimit)
	if err != nil {
		return CategorizedIDs{}, err
	}
	return Categorize(rows), nil
}
