package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/samvad-hq/samvad-news-aggregator/internal/domain"
	"github.com/samvad-hq/samvad-news-aggregator/internal/metrics"
)

// DefaultTTL is how long an aggregated feed is served without refetching.
const DefaultTTL = 5 * time.Minute

// Entry is one cached aggregation. It is replaced as a whole on refill and
// never mutated in place.
type Entry struct {
	Key       string
	Feed      domain.Feed
	FetchedAt time.Time
}

// FillFunc produces a fresh value for a key on a miss.
type FillFunc func(ctx context.Context) domain.Feed

// Options configures a Cache.
type Options struct {
	TTL time.Duration
	// SingleFlight collapses concurrent refills of the same key into one call.
	SingleFlight bool
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Cache memoizes feeds per key for a fixed TTL. Refresh is pull-driven: a
// stale or missing entry is refilled synchronously by the reader that finds it.
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	mu      sync.RWMutex
	entries map[string]Entry

	singleFlight bool
	group        singleflight.Group
}

// New creates an empty cache.
func New(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Cache{
		ttl:          opts.TTL,
		now:          opts.Now,
		entries:      make(map[string]Entry),
		singleFlight: opts.SingleFlight,
	}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Outcome says how Get produced its entry.
type Outcome int

const (
	// Hit means the entry was fresh and fill was not called.
	Hit Outcome = iota
	// Filled means this call ran fill and stored the result.
	Filled
	// Joined means another caller's refill produced the entry.
	Joined
)

// Get returns the entry for key if it is younger than the TTL. Otherwise it
// calls fill, stores the result stamped with the current time and returns it.
// Exactly one of the callers racing on a stale key sees Filled per refill.
func (c *Cache) Get(ctx context.Context, key string, fill FillFunc) (Entry, Outcome) {
	if e, ok := c.fresh(key); ok {
		metrics.CacheLookups.WithLabelValues(metrics.CacheHit).Inc()
		return e, Hit
	}
	metrics.CacheLookups.WithLabelValues(metrics.CacheMiss).Inc()

	if !c.singleFlight {
		return c.refill(ctx, key, fill), Filled
	}

	filled := false
	v, _, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have refilled while we waited to enter.
		if e, ok := c.fresh(key); ok {
			return e, nil
		}
		filled = true
		return c.refill(ctx, key, fill), nil
	})
	if filled {
		return v.(Entry), Filled
	}
	return v.(Entry), Joined
}

// Peek returns the stored entry for key regardless of age.
func (c *Cache) Peek(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// Len reports the number of stored entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) fresh(key string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || c.now().Sub(e.FetchedAt) >= c.ttl {
		return Entry{}, false
	}
	return e, true
}

func (c *Cache) refill(ctx context.Context, key string, fill FillFunc) Entry {
	feed := fill(ctx)
	e := Entry{Key: key, Feed: feed, FetchedAt: c.now()}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	return e
}
