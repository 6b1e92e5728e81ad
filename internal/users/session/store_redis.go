// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/sentinel/internal/platform/constants"
)

// Hash fields of a session key. Instants are stored as unix milliseconds.
const (
	fieldAccountID = "accountid"
	fieldExpiresAt = "expiresat"
	fieldCreatedAt = "createdat"
)

// sweepScanCount is the SCAN page size used while pruning account indexes.
const sweepScanCount = 100

// extendScript slides the expiry in one atomic step.
//
// KEYS[1] session key; ARGV[1] target expiry (ms); ARGV[2] now (ms).
// Returns the stored expiry, or -1 when the session is gone or expired.
var extendScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'expiresat')
if not current then
	return -1
end
current = tonumber(current)
if current <= tonumber(ARGV[2]) then
	return -1
end
local target = tonumber(ARGV[1])
if target > current then
	redis.call('HSET', KEYS[1], 'expiresat', ARGV[1])
	redis.call('PEXPIREAT', KEYS[1], ARGV[1])
	current = target
end
return current
`)

// RedisStore implements [Store] on Redis hashes.
//
// # Layout
//
//   - auth:session:<tokenhash>         hash {accountid, expiresat, createdat}, PEXPIREAT expiresat
//   - auth:account_sessions:<account>  set of token hashes, pruned by DeleteExpired
//
// Expired session keys disappear on their own; the account index may keep
// stale members until the next sweep, which every reader tolerates.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a new Redis implementation of [Store].
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

/*
Create writes the session hash, its absolute deadline and the index entry.

Description: The three commands run in one MULTI/EXEC block.
*/
func (store *RedisStore) Create(context context.Context, session *Session) error {
	key := sessionKey(session.TokenHash)

	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.HSet(context, key,
			fieldAccountID, session.AccountID,
			fieldExpiresAt, session.ExpiresAt.UnixMilli(),
			fieldCreatedAt, session.CreatedAt.UnixMilli(),
		)
		pipe.PExpireAt(context, key, session.ExpiresAt)
		pipe.SAdd(context, accountKey(session.AccountID), session.TokenHash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_session_create_failed: %w", err)
	}
	return nil
}

// FindByTokenHash reads a session hash.
func (store *RedisStore) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	values, err := store.client.HGetAll(context, sessionKey(tokenHash)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis_session_find_failed: %w", err)
	}
	if len(values) == 0 {
		return nil, ErrNotFound
	}

	expiresAt, err := parseMillis(values[fieldExpiresAt])
	if err != nil {
		return nil, fmt.Errorf("redis_session_find_failed: %w", err)
	}
	createdAt, err := parseMillis(values[fieldCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("redis_session_find_failed: %w", err)
	}

	return &Session{
		TokenHash: tokenHash,
		AccountID: values[fieldAccountID],
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}, nil
}

// Extend runs [extendScript] against the session key.
func (store *RedisStore) Extend(context context.Context, tokenHash string, expiresAt, now time.Time) (time.Time, error) {
	stored, err := extendScript.Run(context, store.client,
		[]string{sessionKey(tokenHash)},
		expiresAt.UnixMilli(), now.UnixMilli(),
	).Int64()
	if err != nil {
		return time.Time{}, fmt.Errorf("redis_session_extend_failed: %w", err)
	}
	if stored < 0 {
		return time.Time{}, ErrNotFound
	}
	return time.UnixMilli(stored).UTC(), nil
}

// Delete removes a session key and its index entry.
func (store *RedisStore) Delete(context context.Context, tokenHash string) error {
	key := sessionKey(tokenHash)

	accountID, err := store.client.HGet(context, key, fieldAccountID).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	_, err = store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Del(context, key)
		if accountID != "" {
			pipe.SRem(context, accountKey(accountID), tokenHash)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}

// DeleteByAccount removes every session listed in the account index.
func (store *RedisStore) DeleteByAccount(context context.Context, accountID string) (int64, error) {
	index := accountKey(accountID)

	hashes, err := store.client.SMembers(context, index).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_session_delete_by_account_failed: %w", err)
	}

	keys := make([]string, 0, len(hashes))
	for _, tokenHash := range hashes {
		keys = append(keys, sessionKey(tokenHash))
	}

	var deleted *redis.IntCmd
	_, err = store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		if len(keys) > 0 {
			deleted = pipe.Del(context, keys...)
		}
		pipe.Del(context, index)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis_session_delete_by_account_failed: %w", err)
	}

	if deleted == nil {
		return 0, nil
	}
	return deleted.Val(), nil
}

/*
DeleteExpired prunes index members whose session key is gone.

Description: Redis already expired the session keys themselves, so the count
reflects stale index entries removed, not sessions. Keys whose stored expiry
has passed but which have not been evicted yet are deleted as well.
*/
func (store *RedisStore) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	var pruned int64

	iter := store.client.Scan(context, 0, constants.RedisPrefixAccountSessions+"*", sweepScanCount).Iterator()
	for iter.Next(context) {
		index := iter.Val()

		hashes, err := store.client.SMembers(context, index).Result()
		if err != nil {
			return pruned, fmt.Errorf("redis_session_sweep_failed: %w", err)
		}

		for _, tokenHash := range hashes {
			live, err := store.isLive(context, tokenHash, now)
			if err != nil {
				return pruned, err
			}
			if live {
				continue
			}

			if _, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
				pipe.Del(context, sessionKey(tokenHash))
				pipe.SRem(context, index, tokenHash)
				return nil
			}); err != nil {
				return pruned, fmt.Errorf("redis_session_sweep_failed: %w", err)
			}
			pruned++
		}
	}
	if err := iter.Err(); err != nil {
		return pruned, fmt.Errorf("redis_session_sweep_failed: %w", err)
	}

	return pruned, nil
}

// isLive reports whether a session key exists and is still valid at now.
func (store *RedisStore) isLive(context context.Context, tokenHash string, now time.Time) (bool, error) {
	raw, err := store.client.HGet(context, sessionKey(tokenHash), fieldExpiresAt).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis_session_sweep_failed: %w", err)
	}

	expiresAt, err := parseMillis(raw)
	if err != nil {
		return false, fmt.Errorf("redis_session_sweep_failed: %w", err)
	}
	return expiresAt.After(now), nil
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

func accountKey(accountID string) string {
	return constants.RedisPrefixAccountSessions + accountID
}

func parseMillis(raw string) (time.Time, error) {
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	return time.UnixMilli(millis).UTC(), nil
}
