package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/altar/pkg/pattern"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestStore creates a store connected to a miniredis instance
func setupTestStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s, err := NewRedis(&redis.Options{Addr: mr.Addr()}, "test-catalog")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, mr
}

func TestNewRedis(t *testing.T) {
	t.Run("creates store successfully", func(t *testing.T) {
		s, _ := setupTestStore(t)
		assert.Equal(t, "test-catalog", s.namespace)
		assert.NoError(t, s.Ping(context.Background()))
	})

	t.Run("rejects empty namespace", func(t *testing.T) {
		_, err := NewRedis(&redis.Options{Addr: "localhost:6379"}, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "namespace cannot be empty")
	})
}

func TestRedisSaveAndLoad(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()
	a := sampleAssignment()

	require.NoError(t, s.Save(ctx, a, "run-1"))

	tiers, err := mr.List(TiersKey("test-catalog"))
	require.NoError(t, err)
	assert.Equal(t, []string{"RARE", "LEGENDARIES", "MYTHICALS"}, tiers)
	assert.Equal(t, "poke_ball|great_ball|empty|net_ball|empty|empty|empty|empty",
		mr.HGet(TierKey("test-catalog", "RARE"), "Dratini"))

	back, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.Tiers(), back.Tiers())
	for _, tierName := range a.Tiers() {
		assert.Equal(t, a.Entries(tierName), back.Entries(tierName))
	}
}

func TestRedisSaveTierNamesWithColons(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()

	a := pattern.NewAssignment()
	a.Set("X", "one", pattern.Pattern{pattern.North: "poke_ball", pattern.East: "net_ball", pattern.South: "dusk_ball"})
	a.Set("X:order", "two", pattern.Pattern{pattern.North: "moon_ball", pattern.East: "net_ball", pattern.South: "dusk_ball"})

	require.NoError(t, s.Save(ctx, a, "run-1"))

	assert.NotEqual(t, TierKey("test-catalog", "X:order"), TierOrderKey("test-catalog", "X"))
	assert.Equal(t, "moon_ball|net_ball|dusk_ball|empty|empty|empty|empty|empty",
		mr.HGet(TierKey("test-catalog", "X:order"), "two"))

	back, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "X:order"}, back.Tiers())
	for _, tierName := range a.Tiers() {
		assert.Equal(t, a.Entries(tierName), back.Entries(tierName))
	}

	// A second save over the same tiers still replaces cleanly.
	require.NoError(t, s.Save(ctx, a, "run-2"))
	back, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, back.Len())
}

func TestRedisSaveReplacesPrevious(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleAssignment(), "run-1"))

	next := pattern.NewAssignment()
	next.Set("UNCOMMON", "Eevee", pattern.Pattern{pattern.North: "p", pattern.East: "q", pattern.South: "p"})
	require.NoError(t, s.Save(ctx, next, "run-2"))

	assert.False(t, mr.Exists(TierKey("test-catalog", "RARE")))
	assert.False(t, mr.Exists(TierOrderKey("test-catalog", "LEGENDARIES")))

	back, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"UNCOMMON"}, back.Tiers())
	assert.Equal(t, 1, back.Len())
}

func TestRedisLoadEmptyNamespace(t *testing.T) {
	s, _ := setupTestStore(t)

	a, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, a.Len())
	assert.Empty(t, a.Tiers())
}

func TestRedisLoadInconsistent(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()

	mr.RPush(TiersKey("test-catalog"), "RARE")
	mr.RPush(TierOrderKey("test-catalog", "RARE"), "Dratini")
	mr.HSet(TierKey("test-catalog", "RARE"), "Dratini", "not-a-key")

	_, err := s.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed key")

	mr.RPush(TierOrderKey("test-catalog", "RARE"), "Bagon")
	_, err = s.Load(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inconsistent")
}

func TestRedisSavePublishesEvent(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()

	sub := redis.NewClient(&redis.Options{Addr: mr.Addr()}).Subscribe(ctx, AssignmentEventsChannel("test-catalog"))
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Save(ctx, sampleAssignment(), "run-7"))

	select {
	case msg := <-sub.Channel():
		var event SaveEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, "run-7", event.RunID)
		assert.Equal(t, 3, event.Tiers)
		assert.Equal(t, 3, event.Items)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for save event")
	}
}

func TestRedisConnectionError(t *testing.T) {
	s, err := NewRedis(&redis.Options{Addr: "localhost:1", MaxRetries: -1}, "test-catalog")
	require.NoError(t, err)
	defer s.Close()

	assert.Error(t, s.Save(context.Background(), sampleAssignment(), "run-1"))
	_, err = s.Load(context.Background())
	assert.Error(t, err)
}
