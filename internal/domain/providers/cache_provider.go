package providers

import (
	"context"
	"time"
)

// CacheProvider defines the key/value operations the debounce cache needs.
// Values are opaque strings (event ids). Entries expire after their TTL; an
// expired entry behaves exactly like a missing one.
type CacheProvider interface {
	// Get retrieves a value. The second result is false on a miss.
	Get(ctx context.Context, key string) (string, bool, error)

	// GetOrSet atomically stores value under key if the key is absent.
	// It returns the value that ended up associated with the key and true
	// when this call performed the set. This is the check-and-set that
	// serializes concurrent writers on the same key.
	GetOrSet(ctx context.Context, key, value string, ttl time.Duration) (string, bool, error)

	// Set unconditionally stores a value with the given TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Expire re-arms the TTL of an existing key.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Delete removes a single key.
	Delete(ctx context.Context, key string) error

	// DeletePattern removes every key matching a glob pattern.
	DeletePattern(ctx context.Context, pattern string) error
}
