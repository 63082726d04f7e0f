package cache

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

type ttlCacheEntry[T any] struct {
	data  T
	valid bool
	claim uint64
}

type ttlCache[T any] struct {
	cache *ttlcache.Cache[string, ttlCacheEntry[T]]
	// lock makes claim checks and writes atomic
	lock      sync.Mutex
	lastClaim uint64
}

func (c *ttlCache[T]) getOrClaim(key string) hitResult[T] {
	c.lock.Lock()
	defer c.lock.Unlock()

	pending := ttlCacheEntry[T]{valid: false, claim: c.lastClaim + 1}
	item, existed := c.cache.GetOrSet(key, pending)
	if existed {
		return hitResult[T]{
			data:    item.Value().data,
			valid:   item.Value().valid,
			claimed: false,
		}
	}

	c.lastClaim++
	return hitResult[T]{
		valid:   false,
		claimed: true,
		claim:   c.lastClaim,
	}
}

func (c *ttlCache[T]) currentClaim(key string) (uint64, bool) {
	item := c.cache.Get(key)
	if item == nil || item.Value().valid {
		return 0, false
	}
	return item.Value().claim, true
}

func (c *ttlCache[T]) set(key string, data T, claim uint64) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if current, ok := c.currentClaim(key); !ok || current != claim {
		return false
	}

	c.cache.Set(key, ttlCacheEntry[T]{data: data, valid: true}, ttlcache.DefaultTTL)
	return true
}

func (c *ttlCache[T]) release(key string, claim uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if current, ok := c.currentClaim(key); ok && current == claim {
		c.cache.Delete(key)
	}
}

func (c *ttlCache[T]) delete(key string) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.cache.Delete(key)
}

func (c *ttlCache[T]) wait() {
	time.Sleep(10 * time.Millisecond)
}

func NewTTLCache[T any](ttl time.Duration) Cache[T] {
	cache := ttlcache.New[string, ttlCacheEntry[T]](
		ttlcache.WithTTL[string, ttlCacheEntry[T]](ttl),
		ttlcache.WithDisableTouchOnHit[string, ttlCacheEntry[T]](),
	)
	go cache.Start()
	return &ttlCache[T]{cache: cache}
}
