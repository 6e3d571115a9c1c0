package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	store, _ := setupTestRedis(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewRedisStore_BadURL(t *testing.T) {
	_, err := NewRedisStore("not-a-url://")
	assert.Error(t, err)
}

func TestSaveAndLookupRefreshSession(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	err := store.SaveRefreshSession(ctx, "hash-1", "user-123", "cliente", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, s.Exists("refresh:hash-1"))

	data, err := store.LookupRefreshSession(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, "user-123", data.UserID)
	assert.Equal(t, "cliente", data.Role)
}

func TestLookupExpiredSession(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRefreshSession(ctx, "short", "user-456", "admin", time.Now().Add(time.Second)))
	s.FastForward(2 * time.Second)

	_, err := store.LookupRefreshSession(ctx, "short")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestConsumeRefreshSession_OnlyOnce(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRefreshSession(ctx, "once", "user-1", "cliente", time.Now().Add(time.Hour)))

	data, err := store.ConsumeRefreshSession(ctx, "once")
	require.NoError(t, err)
	assert.Equal(t, "user-1", data.UserID)

	_, err = store.ConsumeRefreshSession(ctx, "once")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRevokeRefreshSession(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRefreshSession(ctx, "rev", "user-9", "cliente", time.Now().Add(time.Hour)))
	require.NoError(t, store.RevokeRefreshSession(ctx, "rev"))

	_, err := store.LookupRefreshSession(ctx, "rev")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSaveRefreshSession_PastExpiryUsesDefaultTTL(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRefreshSession(ctx, "past", "user-2", "cliente", time.Now().Add(-time.Minute)))
	assert.Equal(t, defaultSessionTTL, s.TTL("refresh:past"))
}
