package cache

type hitResult[T any] struct {
	data    T
	valid   bool
	claimed bool
	// claim identifies the caller's claim when claimed is true
	claim uint64
}

// Cache stores values by key. A missing key can be claimed by exactly one caller, which
// must then either set or release it. Other callers wait for the claim to resolve.
//
// set only stores the value while the claim is still the current entry for the key.
// An entry deleted in the meantime stays deleted.
type Cache[T any] interface {
	getOrClaim(key string) hitResult[T]
	set(key string, data T, claim uint64) bool
	release(key string, claim uint64)
	delete(key string)
	wait()
}

// Invalidate drops the entry for key so the next GetOrCreate recomputes it.
// A value being computed for a claim made before the invalidation is not stored.
func Invalidate[T any](cache Cache[T], key string) {
	cache.delete(key)
}
