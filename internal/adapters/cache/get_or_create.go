package cache

import (
	"context"
	"fmt"

	"github.com/Amund211/milestones/internal/logging"
)

// GetOrCreate returns the cached value for key, or calls create once across all
// concurrent callers and caches its result. Returns data, created, error.
func GetOrCreate[T any](ctx context.Context, cache Cache[T], key string, create func() (T, error)) (T, bool, error) {
	logger := logging.FromContext(ctx).With("cacheKey", key)

	for {
		if err := ctx.Err(); err != nil {
			var empty T
			return empty, false, err
		}

		result := cache.getOrClaim(key)

		if result.claimed {
			logger.InfoContext(ctx, "Getting cached value", "cache", "miss")

			data, err := create()
			if err != nil {
				// Release the claim so another caller can try again
				cache.release(key, result.claim)
				var empty T
				return empty, false, fmt.Errorf("failed to create cache entry: %w", err)
			}

			if !cache.set(key, data, result.claim) {
				logger.InfoContext(ctx, "Cache entry invalidated during create, not storing")
			}

			return data, true, nil
		}

		if result.valid {
			logger.InfoContext(ctx, "Getting cached value", "cache", "hit")
			return result.data, false, nil
		}

		logger.DebugContext(ctx, "Waiting for cache")
		cache.wait()
	}
}
