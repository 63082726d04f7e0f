package cache

import (
	"runtime"
	"sync"
)

type basicCacheEntry[T any] struct {
	data  T
	valid bool
	claim uint64
}

// basicCache never expires entries
type basicCache[T any] struct {
	cache     map[string]basicCacheEntry[T]
	cacheLock sync.Mutex
	lastClaim uint64
}

func (c *basicCache[T]) getOrClaim(key string) hitResult[T] {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	oldValue, ok := c.cache[key]
	if ok {
		return hitResult[T]{
			data:    oldValue.data,
			valid:   oldValue.valid,
			claimed: false,
		}
	}

	c.lastClaim++
	c.cache[key] = basicCacheEntry[T]{valid: false, claim: c.lastClaim}
	return hitResult[T]{
		valid:   false,
		claimed: true,
		claim:   c.lastClaim,
	}
}

func (c *basicCache[T]) set(key string, data T, claim uint64) bool {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	current, ok := c.cache[key]
	if !ok || current.valid || current.claim != claim {
		return false
	}

	c.cache[key] = basicCacheEntry[T]{data: data, valid: true}
	return true
}

func (c *basicCache[T]) release(key string, claim uint64) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	if current, ok := c.cache[key]; ok && !current.valid && current.claim == claim {
		delete(c.cache, key)
	}
}

func (c *basicCache[T]) delete(key string) {
	c.cacheLock.Lock()
	defer c.cacheLock.Unlock()

	delete(c.cache, key)
}

func (c *basicCache[T]) wait() {
	runtime.Gosched()
}

func NewBasicCache[T any]() Cache[T] {
	return &basicCache[T]{
		cache: make(map[string]basicCacheEntry[T]),
	}
}
