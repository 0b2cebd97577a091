// Package preload implements per-column infinite-scroll buffering. Scroll
// positions past a threshold emit preload requests on a channel owned by the
// dashboard controller; actual fetching stays out of this package.
package preload

import (
	"sync"

	"github.com/bounteer/intentdash/internal/domain"
)

const (
	// BufferSize is the fixed page size each preload advances by.
	BufferSize = 10
	// DefaultVisibleCount is the base number of items shown per column.
	DefaultVisibleCount = 20
	// ScrollThreshold is the scroll ratio at which a preload is requested.
	ScrollThreshold = 0.8
)

// Request asks the controller to load the next page of one column.
type Request struct {
	Column domain.Column
	Offset int
}

// ScrollMetrics describes a column viewport's scroll position.
type ScrollMetrics struct {
	ScrollTop    int
	ScrollHeight int
	ClientHeight int
}

// Ratio returns scrollTop / (scrollHeight - clientHeight), clamped to [0,1].
// A viewport that cannot scroll reports 0: there is no scroll position to
// approach the end of, so short columns never trigger threshold preloads.
func (s ScrollMetrics) Ratio() float64 {
	span := s.ScrollHeight - s.ClientHeight
	if span <= 0 {
		return 0
	}
	ratio := float64(s.ScrollTop) / float64(span)
	if ratio < 0 {
		return 0
	}
	if ratio > 1 {
		return 1
	}
	return ratio
}

type columnState struct {
	offset    int  // next page offset to fetch
	buffer    int  // items fetched beyond the base visible count
	inFlight  bool // a LoadMore call is running
	requested bool // a request was emitted and not yet consumed
	exhausted bool // last preload returned no items
}

// Preloader tracks per-column buffers and emits preload requests.
type Preloader struct {
	mu       sync.Mutex
	columns  map[domain.Column]*columnState
	requests chan Request
	pageSize int
}

// New creates a preloader whose column offsets start at the initial visible
// page size.
func New(initialPageSize int) *Preloader {
	p := &Preloader{
		columns:  make(map[domain.Column]*columnState),
		requests: make(chan Request, len(domain.Columns)*2),
		pageSize: initialPageSize,
	}
	p.resetLocked()
	return p
}

// Requests is the channel preload requests are emitted on. The dashboard
// controller drains it; nothing here fetches.
func (p *Preloader) Requests() <-chan Request {
	return p.requests
}

// HandleScroll emits at most one preload request when the column's scroll
// ratio passes the threshold and no preload is in flight or pending for it.
// Columns marked exhausted stay quiet until the next Reset.
func (p *Preloader) HandleScroll(col domain.Column, metrics ScrollMetrics) {
	if metrics.Ratio() < ScrollThreshold {
		return
	}

	p.mu.Lock()
	state := p.state(col)
	if state.inFlight || state.requested || state.exhausted {
		p.mu.Unlock()
		return
	}
	state.requested = true
	offset := state.offset
	p.mu.Unlock()

	select {
	case p.requests <- Request{Column: col, Offset: offset}:
	default:
		// Channel full: a request for this column is already waiting.
	}
}

// LoadFunc fetches one page for a column at the given offset.
type LoadFunc func(col domain.Column, offset, limit int) ([]domain.Intent, error)

// LoadMore runs one preload for a column. Re-entrant calls for the same
// column while one is running are ignored (returns false). On success the
// buffer grows by the number of items returned and the offset advances by
// the fixed page size; an empty result marks the column exhausted.
func (p *Preloader) LoadMore(col domain.Column, load LoadFunc) (loaded bool, items []domain.Intent, err error) {
	p.mu.Lock()
	state := p.state(col)
	if state.inFlight {
		p.mu.Unlock()
		return false, nil, nil
	}
	state.inFlight = true
	offset := state.offset
	p.mu.Unlock()

	items, err = load(col, offset, BufferSize)

	p.mu.Lock()
	defer p.mu.Unlock()
	state.inFlight = false
	state.requested = false
	if err != nil {
		return false, nil, err
	}
	if len(items) == 0 {
		state.buffer = 0
		state.exhausted = true
		return true, nil, nil
	}
	state.buffer += len(items)
	state.offset += BufferSize
	return true, items, nil
}

// VisibleCount returns how many of a column's items should be rendered:
// the base count plus the column's fetched buffer.
func (p *Preloader) VisibleCount(col domain.Column, baseVisible int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return baseVisible + p.state(col).buffer
}

// VisibleItems slices the column's items to the visible window. Pure view
// logic; no side effects.
func (p *Preloader) VisibleItems(col domain.Column, all []domain.Intent, baseVisible int) []domain.Intent {
	count := p.VisibleCount(col, baseVisible)
	if count > len(all) {
		count = len(all)
	}
	return all[:count]
}

// Reset restores every column's offset and buffer to initial values. Called
// when the active space changes.
func (p *Preloader) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()

	// Drop stale queued requests from the previous space.
	for {
		select {
		case <-p.requests:
		default:
			return
		}
	}
}

func (p *Preloader) resetLocked() {
	for _, col := range domain.Columns {
		p.columns[col] = &columnState{offset: p.pageSize}
	}
}

func (p *Preloader) state(col domain.Column) *columnState {
	state, ok := p.columns[col]
	if !ok {
		state = &columnState{offset: p.pageSize}
		p.columns[col] = state
	}
	return state
}
