package source

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/okian/profilemeta/internal/domain/model"
	"github.com/okian/profilemeta/pkg/metrics"
)

// DefaultTTL is how long a loaded table stays cached.
const DefaultTTL = 5 * time.Minute

// CachedOption configures a CachedSource.
type CachedOption func(*CachedSource)

// WithTTL sets the cache lifetime of a table.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *CachedSource) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// CachedSource is a read-through cache in front of another Loader. Tables are
// immutable, so cached values are shared between callers. Errors are not
// cached.
type CachedSource struct {
	next   Loader
	ttl    time.Duration
	cache  *cache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats is a snapshot of cache activity.
type CacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Items  int   `json:"items"`
}

// NewCachedSource wraps next.
func NewCachedSource(next Loader, opts ...CachedOption) *CachedSource {
	c := &CachedSource{next: next, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = cache.New(c.ttl, 2*c.ttl)
	return c
}

// Load implements Loader.
func (c *CachedSource) Load(ctx context.Context, site string, year int) (*model.Table, error) {
	key := fmt.Sprintf("%s:%d", site, year)
	if v, ok := c.cache.Get(key); ok {
		c.hits.Add(1)
		metrics.RecordCacheHit()
		return v.(*model.Table), nil
	}
	c.misses.Add(1)
	metrics.RecordCacheMiss()

	t, err := c.next.Load(ctx, site, year)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, t, cache.DefaultExpiration)
	return t, nil
}

// Invalidate drops a cached site-year, e.g. after an import.
func (c *CachedSource) Invalidate(site string, year int) {
	c.cache.Delete(fmt.Sprintf("%s:%d", site, year))
}

// Stats returns hit, miss and item counts.
func (c *CachedSource) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Items:  c.cache.ItemCount(),
	}
}

// Close closes the wrapped loader.
func (c *CachedSource) Close() error {
	return Close(c.next)
}
