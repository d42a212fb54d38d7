package redis_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/appcore/integration/database/redis"
)

func TestConnect_Validation(t *testing.T) {
	t.Parallel()

	t.Run("empty url", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{})
		assert.ErrorIs(t, err, redis.ErrEmptyConnectionURL)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{ConnectionURL: "http://localhost:6379"})
		assert.ErrorIs(t, err, redis.ErrFailedToParseRedisConnString)
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		_, err := redis.Connect(context.Background(), redis.Config{
			ConnectionURL:  "redis://127.0.0.1:1/0",
			RetryAttempts:  2,
			RetryInterval:  time.Millisecond,
			ConnectTimeout: time.Second,
		})
		assert.ErrorIs(t, err, redis.ErrRedisNotReady)
	})
}

// newStore connects to the server named by REDIS_URL and returns a store
// confined to a fresh key prefix.
func newStore(t *testing.T) *redis.Store {
	t.Helper()

	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	ctx := context.Background()
	client, err := redis.Connect(ctx, redis.Config{
		ConnectionURL:  url,
		RetryAttempts:  1,
		ConnectTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, redis.Healthcheck(client)(ctx))

	prefix := "appcore-test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		keys, _ := client.Keys(context.Background(), prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(context.Background(), keys...)
		}
	})
	return redis.NewStore(client, redis.WithKeyPrefix(prefix), redis.WithScanBatchSize(10))
}

func TestStore(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	prev, err := store.Set(ctx, "a", []byte("1"))
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = store.Set(ctx, "a", []byte("2"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), prev)

	ok, err := store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	prev, err = store.Delete(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), prev)

	ok, err = store.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_ListKeys(t *testing.T) {
	t.Parallel()

	store := newStore(t)
	ctx := context.Background()
	for _, k := range []string{"user:1", "user:2", "user:3", "order:1"} {
		_, err := store.Set(ctx, k, []byte(k))
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	var cursor uint64
	for {
		keys, next, err := store.ListKeys(ctx, "user:", cursor)
		require.NoError(t, err)
		for _, k := range keys {
			seen[k] = true
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	assert.Equal(t, map[string]bool{"user:1": true, "user:2": true, "user:3": true}, seen)
}
