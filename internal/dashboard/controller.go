// Package dashboard orchestrates the optimistic-sync dashboard core: it
// builds the categorization cache, fetches the five columns, runs optimistic
// moves with rollback, and feeds the background sync queue and preloader.
package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bounteer/intentdash/internal/domain"
	"github.com/bounteer/intentdash/internal/intents"
	"github.com/bounteer/intentdash/internal/preload"
	"github.com/bounteer/intentdash/internal/store"
	"github.com/bounteer/intentdash/internal/syncq"
)

// ErrInvalidTarget indicates a move names a column with no remote status
// mapping. Checked before any state change or network call.
var ErrInvalidTarget = errors.New("invalid move target column")

// Remote is the full CMS surface the controller needs. *directus.Client
// satisfies it; tests substitute mocks.
type Remote interface {
	intents.StateRowLister
	intents.Remote
	FindStateRow(ctx context.Context, userID string, intentID int) (*domain.StateRow, error)
	CreateStateRow(ctx context.Context, intentID int, status domain.Status, reason string) (domain.StateRow, error)
	UpdateStateRow(ctx context.Context, rowID int, status domain.Status, reason string) error
	DeleteStateRow(ctx context.Context, rowID int) error
	Ping(ctx context.Context) error
}

// Options configures a Controller.
type Options struct {
	PageSize     int
	ActionQuota  int
	SyncInterval time.Duration
	OnConflict   syncq.ConflictFunc
	Logger       *zap.Logger
}

// Controller owns the dashboard state for one user session.
type Controller struct {
	remote    Remote
	fetcher   *intents.Fetcher
	board     *store.Board
	pending   *store.PendingTracker
	queue     *syncq.Queue
	preloader *preload.Preloader
	cache     *spaceCache
	logger    *zap.Logger
	pageSize  int

	mu             sync.Mutex
	userID         string
	space          int
	categoryFilter string
	ids            intents.CategorizedIDs
	cancelRefresh  context.CancelFunc
}

// New creates a controller over the given remote.
func New(remote Remote, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = preload.DefaultVisibleCount
	}
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = 30 * time.Second
	}

	c := &Controller{
		remote:    remote,
		fetcher:   intents.NewFetcher(remote, logger),
		board:     store.New(opts.ActionQuota),
		pending:   store.NewPendingTracker(),
		preloader: preload.New(opts.PageSize),
		cache:     newSpaceCache(),
		logger:    logger,
		pageSize:  opts.PageSize,
		ids:       intents.NewCategorizedIDs(),
	}
	c.queue = syncq.New(remote, c.remoteColumn, opts.OnConflict, opts.SyncInterval, logger)
	return c
}

// Board exposes the column snapshots for rendering.
func (c *Controller) Board() *store.Board { return c.board }

// Pending exposes the transient move markers for rendering.
func (c *Controller) Pending() *store.PendingTracker { return c.pending }

// SyncStatus returns the background queue's derived status.
func (c *Controller) SyncStatus() syncq.Status { return c.queue.Status() }

// SyncQueue exposes the queue for inspection.
func (c *Controller) SyncQueue() *syncq.Queue { return c.queue }

// PreloadRequests is the channel the preloader emits on; the UI loop drains
// it and calls ProcessPreload.
func (c *Controller) PreloadRequests() <-chan preload.Request {
	return c.preloader.Requests()
}

// HandleScroll forwards a column's scroll position to the preloader.
func (c *Controller) HandleScroll(col domain.Column, metrics preload.ScrollMetrics) {
	c.preloader.HandleScroll(col, metrics)
}

// VisibleItems returns the visible window of a column's snapshot. The window
// slices the unfiltered snapshot, so its size tracks the preload buffer
// exactly; the category filter then drops non-matching items for display.
func (c *Controller) VisibleItems(col domain.Column) []domain.Intent {
	c.mu.Lock()
	filter := c.categoryFilter
	c.mu.Unlock()
	window := c.preloader.VisibleItems(col, c.board.Column(col), c.pageSize)
	return c.filterByCategory(window, filter)
}

// RunSync starts the background sync loop; it stops when ctx is cancelled.
func (c *Controller) RunSync(ctx context.Context) {
	c.queue.Run(ctx)
}

// Space returns the active space filter (0 means all spaces).
func (c *Controller) Space() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.space
}

// SetCategoryFilter updates the client-side category filter. It takes effect
// on the next VisibleItems read; snapshots are never stored filtered.
func (c *Controller) SetCategoryFilter(filter string) {
	c.mu.Lock()
	c.categoryFilter = strings.ToLower(strings.TrimSpace(filter))
	c.mu.Unlock()
}

// SetSpace switches the active space, cancelling any refresh in flight and
// resetting all preload buffers.
func (c *Controller) SetSpace(space int) {
	c.mu.Lock()
	if c.cancelRefresh != nil {
		c.cancelRefresh()
		c.cancelRefresh = nil
	}
	c.space = space
	c.mu.Unlock()
	c.preloader.Reset()
}

// Refresh rebuilds the categorization cache and replaces all five column
// snapshots. Cached responses for the space are reused unless force is set.
// Runs the five column fetches in parallel; the first error wins and renders
// as a blocking panel upstream.
func (c *Controller) Refresh(ctx context.Context, force bool) error {
	c.mu.Lock()
	if c.cancelRefresh != nil {
		c.cancelRefresh()
	}
	ctx, cancel := context.WithCancel(ctx)
	c.cancelRefresh = cancel
	space := c.space
	c.mu.Unlock()

	if !force {
		if entry, err := c.cache.get(space); err == nil {
			c.apply(space, entry)
			return nil
		}
	}

	ids, err := intents.FetchCategorized(ctx, c.remote)
	if err != nil {
		return err
	}

	pages := make(map[domain.Column]intents.ColumnPage, len(domain.Columns))
	var (
		wg       sync.WaitGroup
		pagesMu  sync.Mutex
		firstErr error
	)
	for _, col := range domain.Columns {
		wg.Add(1)
		go func(col domain.Column) {
			defer wg.Done()
			page, err := c.fetcher.FetchColumn(ctx, col, space, c.pageSize, 0, ids)
			pagesMu.Lock()
			defer pagesMu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			pages[col] = page
		}(col)
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	entry := cachedSpace{ids: ids, pages: pages}
	c.cache.set(space, entry)
	c.apply(space, entry)
	return nil
}

// apply installs a fetch result into the board. Snapshots are stored
// unfiltered; the category filter applies in VisibleItems.
func (c *Controller) apply(space int, entry cachedSpace) {
	c.mu.Lock()
	c.ids = entry.ids
	current := c.space
	c.mu.Unlock()
	if current != space {
		return
	}
	for col, page := range entry.pages {
		c.board.ReplaceColumn(col, page.Items, page.TotalCount)
	}
}

func (c *Controller) filterByCategory(items []domain.Intent, filter string) []domain.Intent {
	if filter == "" {
		return items
	}
	filtered := make([]domain.Intent, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Category), filter) ||
			strings.Contains(strings.ToLower(item.Title), filter) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Move runs the full optimistic move: BeginMove synchronously, then the
// remote half. The TUI calls the two halves separately so the in-memory move
// renders before any network activity.
func (c *Controller) Move(ctx context.Context, intentID int, from, to domain.Column, reason string) error {
	if err := c.BeginMove(intentID, from, to, reason); err != nil {
		return err
	}
	return c.CompleteMove(ctx, intentID, from, to, reason)
}

// BeginMove performs the optimistic half of a move, strictly before any
// network activity: validate the target, apply the in-memory move under the
// per-intent guard, record the pending marker, and record the sync intent.
func (c *Controller) BeginMove(intentID int, from, to domain.Column, reason string) error {
	if !validColumn(to) || !validColumn(from) {
		return ErrInvalidTarget
	}
	if err := c.board.BeginMove(intentID, from, to); err != nil {
		return err
	}
	c.pending.MarkPending(intentID, from, to)
	c.queue.Enqueue(intentID, from, to, reason)
	return nil
}

// CompleteMove performs the remote half: upsert (or delete) the state row.
// On success the pending marker flashes green and the space cache is
// invalidated; on failure the board rolls back to the pre-move snapshot.
func (c *Controller) CompleteMove(ctx context.Context, intentID int, from, to domain.Column, reason string) error {
	err := c.upsertStateRow(ctx, intentID, to, reason)
	if err != nil {
		c.pending.MarkError(intentID)
		if rbErr := c.board.RollbackMove(intentID); rbErr != nil {
			c.logger.Error("rollback failed", zap.Int("intent", intentID), zap.Error(rbErr))
		}
		c.logger.Warn("move failed, rolled back",
			zap.Int("intent", intentID),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
			zap.Error(err))
		return err
	}

	c.pending.MarkSuccess(intentID)
	c.board.CommitMove(intentID)
	c.cache.invalidate(c.Space())
	return nil
}

// upsertStateRow looks up the existing row for (user, intent) and decides
// between PATCH, POST, and DELETE (move back to signal).
func (c *Controller) upsertStateRow(ctx context.Context, intentID int, to domain.Column, reason string) error {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return err
	}

	row, err := c.remote.FindStateRow(ctx, userID, intentID)
	if err != nil {
		return err
	}

	if to == domain.ColumnSignal {
		if row == nil {
			return nil
		}
		return c.remote.DeleteStateRow(ctx, row.ID)
	}

	status, ok := domain.StatusForColumn(to)
	if !ok {
		return ErrInvalidTarget
	}
	if row != nil {
		return c.remote.UpdateStateRow(ctx, row.ID, status, reason)
	}
	_, err = c.remote.CreateStateRow(ctx, intentID, status, reason)
	return err
}

// ProcessPreload serves one preload request: fetch the next page for the
// column and append it to the board unfiltered, keeping the preload buffer
// and the stored snapshot the same length. Concurrent requests for the same
// column collapse to a single fetch.
func (c *Controller) ProcessPreload(ctx context.Context, req preload.Request) error {
	c.mu.Lock()
	space := c.space
	ids := c.ids
	c.mu.Unlock()

	loaded, items, err := c.preloader.LoadMore(req.Column, func(col domain.Column, offset, limit int) ([]domain.Intent, error) {
		page, err := c.fetcher.FetchColumn(ctx, col, space, limit, offset, ids)
		if err != nil {
			return nil, err
		}
		return page.Items, nil
	})
	if err != nil {
		return err
	}
	if loaded && len(items) > 0 {
		c.board.AppendToColumn(req.Column, items)
	}
	return nil
}

// currentUser resolves and caches the authenticated user's ID.
func (c *Controller) currentUser(ctx context.Context) (string, error) {
	c.mu.Lock()
	cached := c.userID
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	userID, err := c.remote.CurrentUserID(ctx)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
	return userID, nil
}

// remoteColumn reports which column an intent occupies on the server now.
// Used by the sync queue's reconciliation pass.
func (c *Controller) remoteColumn(ctx context.Context, intentID int) (domain.Column, error) {
	userID, err := c.currentUser(ctx)
	if err != nil {
		return "", err
	}
	row, err := c.remote.FindStateRow(ctx, userID, intentID)
	if err != nil {
		return "", err
	}
	if row == nil {
		return domain.ColumnSignal, nil
	}
	col, ok := domain.ColumnForStatus(row.Status)
	if !ok {
		return "", domain.ErrUnknownColumn
	}
	return col, nil
}

func validColumn(col domain.Column) bool {
	for _, known := range domain.Columns {
		if col == known {
			return true
		}
	}
	return false
}
