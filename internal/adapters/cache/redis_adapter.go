package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/searchpulse/internal/domain/providers"
	redisclient "github.com/zatekoja/searchpulse/internal/infrastructure/clients/redis"
	apperrors "github.com/zatekoja/searchpulse/pkg/errors"
)

// RedisAdapter implements the CacheProvider interface using Redis.
type RedisAdapter struct {
	client *redisclient.Client
}

// NewRedisAdapter creates a new Redis cache adapter.
func NewRedisAdapter(client *redisclient.Client) providers.CacheProvider {
	return &RedisAdapter{client: client}
}

// Get retrieves a value. Redis handles expiry, so a lapsed entry is a miss.
func (a *RedisAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := a.client.Client().Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, apperrors.NewUnavailableError("failed to get from cache", err)
	}
	return value, true, nil
}

// GetOrSet performs an atomic SET NX GET: one round trip that either claims
// the key or reports who holds it.
func (a *RedisAdapter) GetOrSet(ctx context.Context, key, value string, ttl time.Duration) (string, bool, error) {
	existing, err := a.client.Client().SetArgs(ctx, key, value, redis.SetArgs{
		Mode: "NX",
		Get:  true,
		TTL:  ttl,
	}).Result()
	if err == redis.Nil {
		// Key was absent, the set went through.
		return value, true, nil
	}
	if err != nil {
		return "", false, apperrors.NewUnavailableError("failed to get-or-set in cache", err)
	}
	return existing, false, nil
}

// Set unconditionally stores a value with expiration.
func (a *RedisAdapter) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := a.client.Client().Set(ctx, key, value, ttl).Err(); err != nil {
		return apperrors.NewUnavailableError("failed to set in cache", err)
	}
	return nil
}

// Expire re-arms the TTL of an existing key.
func (a *RedisAdapter) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := a.client.Client().Expire(ctx, key, ttl).Err(); err != nil {
		return apperrors.NewUnavailableError("failed to expire cache key", err)
	}
	return nil
}

// Delete removes a single key.
func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Client().Del(ctx, key).Err(); err != nil {
		return apperrors.NewUnavailableError("failed to delete from cache", err)
	}
	return nil
}

// DeletePattern removes every key matching the glob pattern, scanning in
// batches so large key spaces do not block the server.
func (a *RedisAdapter) DeletePattern(ctx context.Context, pattern string) error {
	client := a.client.Client()
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= 100 {
			if err := client.Del(ctx, keys...).Err(); err != nil {
				return apperrors.NewUnavailableError("failed to delete cache keys", err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return apperrors.NewUnavailableError("failed to scan cache keys", err)
	}
	if len(keys) > 0 {
		if err := client.Del(ctx, keys...).Err(); err != nil {
			return apperrors.NewUnavailableError("failed to delete cache keys", err)
		}
	}
	return nil
}
