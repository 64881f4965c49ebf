package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/dyluth/altar/pkg/pattern"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an abandoned run's key set survives in Redis.
const DefaultTTL = 24 * time.Hour

// RegistryKey returns the Redis key of a run's key set.
// Pattern: altar:{namespace}:registry:{run_id}
func RegistryKey(namespace, runID string) string {
	return fmt.Sprintf("altar:%s:registry:%s", namespace, runID)
}

// Redis is a Registry backed by a Redis SET. SADD makes Insert atomic, so
// a duplicate is detected by Redis itself rather than by a racy
// check-then-insert.
type Redis struct {
	rdb     *redis.Client
	key     string
	ttl     time.Duration
	expires bool
}

// NewRedis creates a registry stored under altar:{namespace}:registry:{runID}.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - namespace: instance namespace (must not be empty)
//   - runID: identifier of the current run (must not be empty)
func NewRedis(redisOpts *redis.Options, namespace, runID string) (*Redis, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}
	if runID == "" {
		return nil, fmt.Errorf("run ID cannot be empty")
	}

	return &Redis{
		rdb: redis.NewClient(redisOpts),
		key: RegistryKey(namespace, runID),
		ttl: DefaultTTL,
	}, nil
}

// Key returns the Redis key holding the set.
func (r *Redis) Key() string {
	return r.key
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Contains implements Registry.
func (r *Redis) Contains(ctx context.Context, key pattern.Key) (bool, error) {
	ok, err := r.rdb.SIsMember(ctx, r.key, string(key)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check key in Redis: %w", err)
	}
	return ok, nil
}

// Insert implements Registry.
func (r *Redis) Insert(ctx context.Context, key pattern.Key) error {
	added, err := r.rdb.SAdd(ctx, r.key, string(key)).Result()
	if err != nil {
		return fmt.Errorf("failed to add key to Redis: %w", err)
	}
	if added == 0 {
		return &DuplicateKeyError{Key: key}
	}

	if !r.expires {
		if err := r.rdb.Expire(ctx, r.key, r.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set registry expiry: %w", err)
		}
		r.expires = true
	}

	return nil
}

// Len implements Registry.
func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.rdb.SCard(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count keys in Redis: %w", err)
	}
	return int(n), nil
}

// Discard deletes the run's key set.
func (r *Redis) Discard(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to delete registry: %w", err)
	}
	return nil
}

// Close closes the Redis connection. Implements io.Closer.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
