package intents

import (
	"context"

	"go.uber.org/zap"

	"github.com/bounteer/intentdash/internal/directus"
	"github.com/bounteer/intentdash/internal/domain"
)

// intentFields is the projection requested for column pages.
var intentFields = []string{
	"id", "title", "company", "category", "location", "skills",
	"predicted_start", "space", "url", "date_created",
}

// ColumnPage is one fetched page of a column plus the server-side total.
type ColumnPage struct {
	Items      []domain.Intent
	TotalCount int
}

// Remote is the CMS surface the fetcher needs.
type Remote interface {
	ListIntents(ctx context.Context, q directus.Query) ([]domain.Intent, int, error)
	ListActions(ctx context.Context, intentIDs []int) ([]domain.Action, error)
}

// Fetcher loads pages of intents for one column at a time.
type Fetcher struct {
	remote Remote
	logger *zap.Logger
}

// NewFetcher creates a column fetcher over the given remote.
func NewFetcher(remote Remote, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{remote: remote, logger: logger}
}

// FetchColumn fetches one page of intents for the named column.
//
// Signal membership is exclusion from every categorized set, so the signal
// query filters with _nin over the union. Stored-status columns filter with
// _in over their own set and short-circuit to an empty page without any
// network call when that set is empty. The space filter applies when
// space > 0.
//
// After the primary fetch, one batched query loads the action sub-records
// for the returned intents. A failure there degrades to empty action lists
// instead of failing the page.
func (f *Fetcher) FetchColumn(ctx context.Context, col domain.Column, space int, limit, offset int, ids CategorizedIDs) (ColumnPage, error) {
	q := directus.Query{}.
		Fields(intentFields...).
		Sort("-date_created").
		Page(limit, offset).
		WithFilterCount()

	if space > 0 {
		q = q.EqInt("space", space)
	}

	if col == domain.ColumnSignal {
		if len(ids.All) > 0 {
			q = q.NotIn("id", ids.AllIDs())
		}
	} else {
		set, ok := ids.SetForColumn(col)
		if !ok {
			return ColumnPage{}, domain.ErrUnknownColumn
		}
		if len(set) == 0 {
			return ColumnPage{Items: []domain.Intent{}, TotalCount: 0}, nil
		}
		q = q.In("id", sortedIDs(set))
	}

	items, total, err := f.remote.ListIntents(ctx, q)
	if err != nil {
		return ColumnPage{}, err
	}

	f.mergeActions(ctx, items)
	return ColumnPage{Items: items, TotalCount: total}, nil
}

// mergeActions attaches action sub-records to the fetched intents by ID.
func (f *Fetcher) mergeActions(ctx context.Context, items []domain.Intent) {
	if len(items) == 0 {
		return
	}
	intentIDs := make([]int, len(items))
	for i, item := range items {
		intentIDs[i] = item.ID
	}

	actions, err := f.remote.ListActions(ctx, intentIDs)
	if err != nil {
		f.logger.Warn("action fetch failed, returning intents without actions", zap.Error(err))
		return
	}

	byIntent := make(map[int][]domain.Action, len(items))
	for _, action := range actions {
		byIntent[action.IntentID] = append(byIntent[action.IntentID], action)
	}
	for i := range items {
		items[i].Actions = byIntent[items[i].ID]
	}
}
