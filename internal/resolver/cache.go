package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/mail-cci/phishguard/internal/metrics"
)

// Cache stores lookup outcomes keyed by (check kind, domain). The local
// tier is a write-once-per-key map guarded by a mutex and lives for the
// life of the process; the optional redis tier is shared between
// processes and expires with a TTL. Authentication records change rarely,
// so bounded staleness is acceptable.
type Cache struct {
	mu     sync.RWMutex
	local  map[string]Outcome
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCache builds a cache. rdb may be nil, leaving only the local tier.
func NewCache(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 4 * time.Hour
	}
	if prefix == "" {
		prefix = "phishguard"
	}
	return &Cache{
		local:  make(map[string]Outcome),
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *Cache) key(kind, domain string) string {
	return fmt.Sprintf("%s:%s:%s", c.prefix, kind, domain)
}

// Get returns the cached outcome for a key, checking the local tier
// before redis. A redis hit is promoted into the local map.
func (c *Cache) Get(ctx context.Context, kind, domain string) (Outcome, bool) {
	k := c.key(kind, domain)

	c.mu.RLock()
	out, ok := c.local[k]
	c.mu.RUnlock()
	if ok {
		metrics.DNSCacheHits.WithLabelValues("local").Inc()
		return out, true
	}

	if c.rdb != nil {
		val, err := c.rdb.Get(ctx, k).Result()
		if err == nil {
			out := Outcome(val)
			c.mu.Lock()
			if _, exists := c.local[k]; !exists {
				c.local[k] = out
			}
			c.mu.Unlock()
			metrics.DNSCacheHits.WithLabelValues("redis").Inc()
			return out, true
		}
	}

	return "", false
}

// Set stores an outcome in both tiers. The local tier is write-once: the
// first value for a key wins, so concurrent duplicate lookups converge on
// one answer.
func (c *Cache) Set(ctx context.Context, kind, domain string, out Outcome) {
	k := c.key(kind, domain)

	c.mu.Lock()
	if _, exists := c.local[k]; !exists {
		c.local[k] = out
	}
	c.mu.Unlock()

	if c.rdb != nil {
		_ = c.rdb.Set(ctx, k, string(out), c.ttl).Err()
	}
}

// Len reports the number of locally cached keys.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.local)
}
