package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ttl), server
}

func TestRedisStoreReserveCompleteReplay(t *testing.T) {
	ctx := context.Background()
	store, server := newTestRedisStore(t, time.Hour)

	require.NoError(t, store.Ping(ctx))

	record, reserved, err := store.Reserve(ctx, "u1:key", "fp")
	require.NoError(t, err)
	require.True(t, reserved)
	require.Equal(t, Record{Fingerprint: "fp"}, record)
	require.True(t, server.Exists(keyPrefix+"u1:key"))

	require.NoError(t, store.Complete(ctx, "u1:key", Record{Fingerprint: "fp", BookingID: "booking-1"}))

	existing, reserved, err := store.Reserve(ctx, "u1:key", "fp")
	require.NoError(t, err)
	require.False(t, reserved)
	require.Equal(t, "booking-1", existing.BookingID)
	require.Greater(t, server.TTL(keyPrefix+"u1:key"), time.Duration(0))
}

func TestRedisStoreExpiryAndRelease(t *testing.T) {
	ctx := context.Background()
	store, server := newTestRedisStore(t, time.Minute)

	_, reserved, err := store.Reserve(ctx, "key", "fp")
	require.NoError(t, err)
	require.True(t, reserved)

	server.FastForward(2 * time.Minute)
	require.ErrorIs(t, store.Complete(ctx, "key", Record{Fingerprint: "fp", BookingID: "b"}), ErrNotReserved)

	_, reserved, err = store.Reserve(ctx, "key", "fp")
	require.NoError(t, err)
	require.True(t, reserved)

	require.NoError(t, store.Release(ctx, "key"))
	require.False(t, server.Exists(keyPrefix+"key"))
}

func TestRedisStoreReportsConnectionErrors(t *testing.T) {
	ctx := context.Background()
	store, server := newTestRedisStore(t, time.Minute)
	server.Close()

	_, _, err := store.Reserve(ctx, "key", "fp")
	require.Error(t, err)
}
