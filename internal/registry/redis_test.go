package registry

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/altar/pkg/pattern"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRegistry creates a Redis registry connected to a miniredis instance
func setupTestRegistry(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	r, err := NewRedis(&redis.Options{Addr: mr.Addr()}, "test-instance", "run-1")
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	return r, mr
}

func TestNewRedis(t *testing.T) {
	t.Run("creates registry successfully", func(t *testing.T) {
		r, _ := setupTestRegistry(t)
		assert.Equal(t, "altar:test-instance:registry:run-1", r.Key())
		assert.NoError(t, r.Ping(context.Background()))
	})

	t.Run("rejects empty namespace", func(t *testing.T) {
		_, err := NewRedis(&redis.Options{Addr: "localhost:6379"}, "", "run-1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "namespace cannot be empty")
	})

	t.Run("rejects empty run ID", func(t *testing.T) {
		_, err := NewRedis(&redis.Options{Addr: "localhost:6379"}, "default", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "run ID cannot be empty")
	})
}

func TestRedisRegistry(t *testing.T) {
	r, _ := setupTestRegistry(t)
	exerciseRegistry(t, r)
}

func TestRedisRegistryExpiresAndDiscards(t *testing.T) {
	r, mr := setupTestRegistry(t)
	ctx := context.Background()

	key := pattern.Canonicalize(pattern.Pattern{pattern.North: "p", pattern.East: "q", pattern.South: "p"})
	require.NoError(t, r.Insert(ctx, key))

	assert.True(t, mr.Exists(r.Key()))
	assert.Equal(t, DefaultTTL, mr.TTL(r.Key()))

	members, err := mr.Members(r.Key())
	require.NoError(t, err)
	assert.Equal(t, []string{string(key)}, members)

	mr.FastForward(DefaultTTL + time.Second)
	assert.False(t, mr.Exists(r.Key()))

	require.NoError(t, r.Insert(ctx, key))
	require.NoError(t, r.Discard(ctx))
	assert.False(t, mr.Exists(r.Key()))
}

func TestRedisRegistrySeed(t *testing.T) {
	r, _ := setupTestRegistry(t)
	ctx := context.Background()

	shared := pattern.Pattern{pattern.North: "p", pattern.East: "p", pattern.South: "p"}
	a := pattern.NewAssignment()
	a.Set("RARE", "A1", shared)
	a.Set("RARE", "A2", shared.Clone())

	err := Seed(ctx, r, a)
	require.Error(t, err)
	assert.True(t, IsDuplicateKey(err))
	assert.Contains(t, err.Error(), "RARE:A2")
}

func TestRedisRegistryConnectionError(t *testing.T) {
	mr := miniredis.NewMiniRedis()
	require.NoError(t, mr.Start())

	r, err := NewRedis(&redis.Options{Addr: mr.Addr(), MaxRetries: -1}, "test-instance", "run-1")
	require.NoError(t, err)
	defer r.Close()

	mr.Close()

	_, err = r.Contains(context.Background(), pattern.Key("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check key in Redis")
}
