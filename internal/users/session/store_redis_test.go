// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/sentinel/internal/platform/sec"
	"github.com/taibuivan/sentinel/internal/users/session"
)

func newRedisStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	mr.SetTime(t0)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewRedisStore(client), mr
}

func seedRedis(t *testing.T, store *session.RedisStore, hash, accountID string, ttl time.Duration) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &session.Session{
		TokenHash: hash,
		AccountID: accountID,
		ExpiresAt: t0.Add(ttl),
		CreatedAt: t0,
	}))
}

/*
TestRedisStore_CreateAndFind verifies the hash layout and its absolute deadline.
*/
func TestRedisStore_CreateAndFind(t *testing.T) {
	store, mr := newRedisStore(t)
	seedRedis(t, store, "h1", "acc-1", 3*time.Hour)

	found, err := store.FindByTokenHash(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", found.AccountID)
	assert.Equal(t, t0.Add(3*time.Hour), found.ExpiresAt)
	assert.Equal(t, t0, found.CreatedAt)

	assert.Equal(t, 3*time.Hour, mr.TTL("auth:session:h1"))
	members, err := mr.Members("auth:account_sessions:acc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"h1"}, members)

	_, err = store.FindByTokenHash(context.Background(), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

/*
TestRedisStore_Extend verifies the scripted max() renewal and its guard.
*/
func TestRedisStore_Extend(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	seedRedis(t, store, "h1", "acc-1", 3*time.Hour)

	now := t0.Add(time.Hour)
	mr.SetTime(now)

	stored, err := store.Extend(ctx, "h1", now.Add(3*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(4*time.Hour), stored)
	assert.Equal(t, 3*time.Hour, mr.TTL("auth:session:h1"))

	// A shorter target leaves the stored expiry untouched.
	stored, err = store.Extend(ctx, "h1", now.Add(time.Minute), now)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(4*time.Hour), stored)

	// Expired at now: rejected even though the key still exists.
	late := t0.Add(4 * time.Hour)
	_, err = store.Extend(ctx, "h1", late.Add(3*time.Hour), late)
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = store.Extend(ctx, "missing", now, now)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

/*
TestRedisStore_Delete verifies the key and its index entry are removed.
*/
func TestRedisStore_Delete(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	seedRedis(t, store, "h1", "acc-1", 3*time.Hour)
	seedRedis(t, store, "h2", "acc-1", 3*time.Hour)

	require.NoError(t, store.Delete(ctx, "h1"))
	require.NoError(t, store.Delete(ctx, "h1"))

	assert.False(t, mr.Exists("auth:session:h1"))
	members, err := mr.Members("auth:account_sessions:acc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"h2"}, members)
}

/*
TestRedisStore_DeleteByAccount verifies only the account's sessions are removed.
*/
func TestRedisStore_DeleteByAccount(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	seedRedis(t, store, "h1", "acc-1", 3*time.Hour)
	seedRedis(t, store, "h2", "acc-1", 3*time.Hour)
	seedRedis(t, store, "h3", "acc-2", 3*time.Hour)

	removed, err := store.DeleteByAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)
	assert.False(t, mr.Exists("auth:account_sessions:acc-1"))
	assert.True(t, mr.Exists("auth:session:h3"))

	removed, err = store.DeleteByAccount(ctx, "acc-unknown")
	require.NoError(t, err)
	assert.Zero(t, removed)
}

/*
TestRedisStore_DeleteExpired verifies evicted keys are pruned from the index.
*/
func TestRedisStore_DeleteExpired(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()
	seedRedis(t, store, "short", "acc-1", time.Hour)
	seedRedis(t, store, "long", "acc-1", 3*time.Hour)

	mr.FastForward(time.Hour)
	now := t0.Add(time.Hour)
	mr.SetTime(now)

	removed, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	members, err := mr.Members("auth:account_sessions:acc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"long"}, members)
}

/*
TestManager_OnRedis runs the sliding renewal through the Redis store.
*/
func TestManager_OnRedis(t *testing.T) {
	store, mr := newRedisStore(t)
	clock := &fakeClock{now: t0}
	manager := session.NewManager(store, 0, clock.Now)
	ctx := context.Background()

	issued, err := manager.Create(ctx, "acc-1", 0)
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	mr.SetTime(clock.Now())

	renewed, err := manager.VerifyAndRenew(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(5*time.Hour), renewed.ExpiresAt)

	_, err = manager.VerifyReadOnly(ctx, issued.Token)
	require.NoError(t, err)

	require.NoError(t, manager.InvalidateToken(ctx, issued.Token))
	assert.False(t, mr.Exists("auth:session:"+sec.HashToken(issued.Token)))

	_, err = manager.VerifyAndRenew(ctx, issued.Token)
	assert.ErrorIs(t, err, session.ErrInvalid)
}
