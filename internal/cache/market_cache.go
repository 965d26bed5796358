// Package cache holds the process-lifetime market cache. The cache is a
// single whole-value entry: a refresh pass replaces it atomically, readers
// of the previous entry are never blocked, and no entry is ever updated
// field by field.
package cache

import (
	"sync"
	"time"

	"github.com/oddslane/sportsbook/internal/domain"
)

// Entry is one cached aggregation result. Markets always come from a single
// network per entry; the aggregator never merges across networks.
type Entry struct {
	FetchedAt time.Time
	NetworkID uint64
	Markets   []domain.Market
}

// MarketCache stores the most recent Entry. Freshness is a pure function of
// wall-clock time minus FetchedAt; there is no invalidation on external
// events. Construct with New and inject it where needed rather than sharing
// ambient package state.
type MarketCache struct {
	mu    sync.RWMutex
	entry Entry
	set   bool
	now   func() time.Time
}

// New creates an empty MarketCache. now supplies the clock; pass nil to use
// time.Now.
func New(now func() time.Time) *MarketCache {
	if now == nil {
		now = time.Now
	}
	return &MarketCache{now: now}
}

// IsFresh reports whether the cached entry exists and is younger than maxAge.
func (c *MarketCache) IsFresh(maxAge time.Duration) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.set {
		return false
	}
	return c.now().Sub(c.entry.FetchedAt) < maxAge
}

// Read returns the current entry. ok is false when nothing has been written
// yet.
func (c *MarketCache) Read() (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry, c.set
}

// Write replaces the cached entry wholesale.
func (c *MarketCache) Write(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = entry
	c.set = true
}

// Now returns the cache's current clock reading. The aggregator stamps new
// entries with the same clock the cache judges freshness by.
func (c *MarketCache) Now() time.Time {
	return c.now()
}
