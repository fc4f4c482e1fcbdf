package lockpkg

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	locker := NewMemoryLocker()
	locker.now = func() time.Time { return now }

	lock, err := locker.Acquire(ctx, "recurring:2024-03-15", time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "recurring:2024-03-15", time.Minute)
	require.ErrorIs(t, err, ErrNotAcquired)

	other, err := locker.Acquire(ctx, "recurring:2024-03-16", time.Minute)
	require.NoError(t, err)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lock.Release(ctx))

	again, err := locker.Acquire(ctx, "recurring:2024-03-15", time.Minute)
	require.NoError(t, err)

	// A stale owner must not free a lock that changed hands after expiry.
	now = now.Add(2 * time.Minute)

	taken, err := locker.Acquire(ctx, "recurring:2024-03-15", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again.Release(ctx))

	_, err = locker.Acquire(ctx, "recurring:2024-03-15", time.Minute)
	require.ErrorIs(t, err, ErrNotAcquired)
	require.NoError(t, taken.Release(ctx))
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR is not set")
	}

	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	locker := NewRedisLocker(client, "test:")
	key := "lock-" + time.Now().Format(time.RFC3339Nano)

	lock, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, key, time.Minute)
	require.ErrorIs(t, err, ErrNotAcquired)

	require.NoError(t, lock.Release(ctx))

	lock, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.NoError(t, lock.Release(ctx))
}
