package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dyluth/altar/pkg/pattern"
	"github.com/redis/go-redis/v9"
)

// Redis publishes assignments under a namespace. Each tier is a hash of
// item name to canonical key plus a list keeping item order, so a published
// assignment round-trips exactly.
type Redis struct {
	rdb       *redis.Client
	namespace string
}

// SaveEvent is published on AssignmentEventsChannel after every Save.
type SaveEvent struct {
	RunID     string `json:"run_id"`
	Tiers     int    `json:"tiers"`
	Items     int    `json:"items"`
	Timestamp int64  `json:"timestamp_ms"`
}

// NewRedis creates a store for the given namespace.
//
// Parameters:
//   - redisOpts: Redis connection options (address, password, DB, etc.)
//   - namespace: instance namespace (must not be empty)
func NewRedis(redisOpts *redis.Options, namespace string) (*Redis, error) {
	if namespace == "" {
		return nil, fmt.Errorf("namespace cannot be empty")
	}

	return &Redis{
		rdb:       redis.NewClient(redisOpts),
		namespace: namespace,
	}, nil
}

// Close closes the Redis connection. Implements io.Closer.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Save replaces the published assignment with a in one transaction and
// announces it on the namespace's event channel.
func (r *Redis) Save(ctx context.Context, a *pattern.Assignment, runID string) error {
	previous, err := r.rdb.LRange(ctx, TiersKey(r.namespace), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read published tiers: %w", err)
	}

	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, TiersKey(r.namespace))
	for _, tierName := range previous {
		pipe.Del(ctx, TierKey(r.namespace, tierName), TierOrderKey(r.namespace, tierName))
	}

	for _, tierName := range a.Tiers() {
		pipe.RPush(ctx, TiersKey(r.namespace), tierName)

		entries := a.Entries(tierName)
		if len(entries) == 0 {
			continue
		}

		fields := make(map[string]interface{}, len(entries))
		order := make([]interface{}, 0, len(entries))
		for _, entry := range entries {
			fields[entry.Item] = string(pattern.Canonicalize(entry.Pattern))
			order = append(order, entry.Item)
		}
		pipe.HSet(ctx, TierKey(r.namespace, tierName), fields)
		pipe.RPush(ctx, TierOrderKey(r.namespace, tierName), order...)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish assignment: %w", err)
	}

	event, err := json.Marshal(SaveEvent{
		RunID:     runID,
		Tiers:     len(a.Tiers()),
		Items:     a.Len(),
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal save event: %w", err)
	}
	if err := r.rdb.Publish(ctx, AssignmentEventsChannel(r.namespace), event).Err(); err != nil {
		return fmt.Errorf("failed to publish save event: %w", err)
	}

	return nil
}

// Load reads the published assignment. A namespace with nothing published
// yields an empty assignment.
func (r *Redis) Load(ctx context.Context) (*pattern.Assignment, error) {
	tiers, err := r.rdb.LRange(ctx, TiersKey(r.namespace), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read published tiers: %w", err)
	}

	a := pattern.NewAssignment()
	for _, tierName := range tiers {
		a.EnsureTier(tierName)

		order, err := r.rdb.LRange(ctx, TierOrderKey(r.namespace, tierName), 0, -1).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read item order of %s: %w", tierName, err)
		}
		keys, err := r.rdb.HGetAll(ctx, TierKey(r.namespace, tierName)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read tier %s: %w", tierName, err)
		}
		if len(keys) != len(order) {
			return nil, fmt.Errorf("tier %s is inconsistent: %d patterns for %d items", tierName, len(keys), len(order))
		}

		for _, item := range order {
			raw, ok := keys[item]
			if !ok {
				return nil, fmt.Errorf("%s:%s has no published pattern", tierName, item)
			}
			p, err := pattern.Key(raw).Pattern()
			if err != nil {
				return nil, fmt.Errorf("%s:%s: %w", tierName, item, err)
			}
			a.Set(tierName, item, p)
		}
	}

	return a, nil
}
