package resolver

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheLocalTier(t *testing.T) {
	c := NewCache(nil, "test", time.Hour)
	ctx := context.Background()

	_, ok := c.Get(ctx, "spf", "example.com")
	assert.False(t, ok)

	c.Set(ctx, "spf", "example.com", Found)

	out, ok := c.Get(ctx, "spf", "example.com")
	assert.True(t, ok)
	assert.Equal(t, Found, out)

	// Kinds are separate keyspaces.
	_, ok = c.Get(ctx, "dmarc", "example.com")
	assert.False(t, ok)
}

func TestCacheWriteOnce(t *testing.T) {
	c := NewCache(nil, "test", time.Hour)
	ctx := context.Background()

	c.Set(ctx, "spf", "example.com", Absent)
	c.Set(ctx, "spf", "example.com", Found)

	out, ok := c.Get(ctx, "spf", "example.com")
	assert.True(t, ok)
	assert.Equal(t, Absent, out, "first write must win")
}

func TestCacheConcurrentSet(t *testing.T) {
	c := NewCache(nil, "test", time.Hour)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := Found
			if i%2 == 0 {
				out = Absent
			}
			c.Set(ctx, "spf", "example.com", out)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, c.Len())
	_, ok := c.Get(ctx, "spf", "example.com")
	assert.True(t, ok)
}

func TestCacheRedisTier(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	first := NewCache(rdb, "test", time.Hour)
	first.Set(ctx, "dmarc", "example.com", Found)

	// A fresh cache with an empty local tier must find the entry in redis.
	second := NewCache(rdb, "test", time.Hour)
	out, ok := second.Get(ctx, "dmarc", "example.com")
	require.True(t, ok)
	assert.Equal(t, Found, out)

	// The redis hit is promoted into the local map.
	assert.Equal(t, 1, second.Len())
}

func TestCacheRedisExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	c := NewCache(rdb, "test", time.Minute)
	c.Set(ctx, "spf", "example.com", Found)

	mr.FastForward(2 * time.Minute)

	fresh := NewCache(rdb, "test", time.Minute)
	_, ok := fresh.Get(ctx, "spf", "example.com")
	assert.False(t, ok, "expired redis entries must not be served")
}
