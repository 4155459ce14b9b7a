package tcgdex

import (
	"context"
	"fmt"
	"sync"
)

// SetCache holds the series' set list, fetched lazily and at most once
// successfully. The list is static for the lifetime of a season, so
// re-downloading it per render is wasteful. Three states: uninitialized,
// populated, failed-empty. A failed population is remembered and surfaced
// as "no data available"; the process does not retry on its own.
type SetCache struct {
	Client *Client

	mu        sync.Mutex
	populated bool
	failed    bool
	sets      []SetInfo
}

// ErrUnavailable is returned once a population attempt has failed; callers
// treat it as no data rather than retrying.
var ErrUnavailable = fmt.Errorf("set reference data unavailable")

// Get returns the cached set list, populating it on first call. After a
// successful population the returned slice is a stable snapshot.
func (c *SetCache) Get(ctx context.Context) ([]SetInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.populated {
		return c.sets, nil
	}
	if c.failed {
		return nil, ErrUnavailable
	}

	sets, err := c.Client.Sets(ctx)
	if err != nil {
		c.failed = true
		return nil, ErrUnavailable
	}
	c.sets = sets
	c.populated = true
	return c.sets, nil
}

// Lookup resolves a set by id from the cached list. The boolean is false
// when the cache is unavailable or the id is unknown.
func (c *SetCache) Lookup(ctx context.Context, id string) (SetInfo, bool) {
	sets, err := c.Get(ctx)
	if err != nil {
		return SetInfo{}, false
	}
	for _, s := range sets {
		if s.ID == id {
			return s, true
		}
	}
	return SetInfo{}, false
}
