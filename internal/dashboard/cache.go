package dashboard

import (
	"errors"
	"sync"

	"github.com/bounteer/intentdash/internal/domain"
	"github.com/bounteer/intentdash/internal/intents"
)

// ErrCacheMiss is returned when no response is cached for a space.
var ErrCacheMiss = errors.New("cache miss")

// cachedSpace holds one space's last full fetch result.
type cachedSpace struct {
	ids   intents.CategorizedIDs
	pages map[domain.Column]intents.ColumnPage
}

// spaceCache is the in-process response cache keyed by space. Successful
// moves invalidate the affected space so the next refresh refetches.
type spaceCache struct {
	mu      sync.Mutex
	entries map[int]cachedSpace
}

func newSpaceCache() *spaceCache {
	return &spaceCache{entries: make(map[int]cachedSpace)}
}

func (c *spaceCache) get(space int) (cachedSpace, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[space]
	if !ok {
		return cachedSpace{}, ErrCacheMiss
	}
	return entry, nil
}

func (c *spaceCache) set(space int, entry cachedSpace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[space] = entry
}

// invalidate drops the cached response for one space.
func (c *spaceCache) invalidate(space int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, space)
}
