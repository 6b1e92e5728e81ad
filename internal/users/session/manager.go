// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/sentinel/internal/platform/constants"
	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/sec"
)

// Manager issues, verifies and invalidates sessions.
//
// # Concurrency
//
// Manager holds no mutable state; every read-modify-write is delegated to a
// single atomic [Store] call. It is safe for concurrent use.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

// NewManager constructs a [Manager].
//
// A non-positive ttl falls back to [constants.SessionTTL]; a nil clock uses [time.Now].
func NewManager(store Store, ttl time.Duration, clock func() time.Time) *Manager {
	if ttl <= 0 {
		ttl = constants.SessionTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Manager{store: store, ttl: ttl, now: clock}
}

// TTL returns the sliding window length.
func (manager *Manager) TTL() time.Duration {
	return manager.ttl
}

/*
Create issues a new session for an account.

Parameters:
  - context: context.Context (a carried transaction is joined by SQL stores)
  - accountID: string
  - ttl: time.Duration (non-positive means the manager's TTL)

Returns:
  - *Issued: The raw token and its expiry
  - error: Token generation or storage failure
*/
func (manager *Manager) Create(context context.Context, accountID string, ttl time.Duration) (*Issued, error) {
	if ttl <= 0 {
		ttl = manager.ttl
	}

	token, err := sec.GenerateSecureToken(constants.SessionTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("session_manager_token_failed: %w", err)
	}

	now := manager.now().UTC()
	session := &Session{
		TokenHash: sec.HashToken(token),
		AccountID: accountID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	if err := manager.store.Create(context, session); err != nil {
		return nil, fmt.Errorf("session_manager_create_failed: %w", err)
	}

	return &Issued{Token: token, AccountID: accountID, ExpiresAt: session.ExpiresAt}, nil
}

/*
VerifyAndRenew validates a token and slides its expiry.

Description: The new expiry is max(stored, now + TTL), so a renewal never
shortens a session. Expired rows are deleted on sight.

Returns:
  - *Session: The session with its renewed expiry
  - error: ErrInvalid for absent or expired tokens, or a wrapped store failure
*/
func (manager *Manager) VerifyAndRenew(context context.Context, token string) (*Session, error) {
	session, now, err := manager.lookup(context, token)
	if err != nil {
		return nil, err
	}

	if !session.ValidAt(now) {
		if err := manager.store.Delete(context, session.TokenHash); err != nil {
			return nil, fmt.Errorf("session_manager_delete_stale_failed: %w", err)
		}
		return nil, ErrInvalid
	}

	expiresAt, err := manager.store.Extend(context, session.TokenHash, now.Add(manager.ttl), now)
	if errors.Is(err, ErrNotFound) {
		// Expired or invalidated between the read and the update.
		if err := manager.store.Delete(context, session.TokenHash); err != nil {
			return nil, fmt.Errorf("session_manager_delete_stale_failed: %w", err)
		}
		return nil, ErrInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("session_manager_extend_failed: %w", err)
	}

	session.ExpiresAt = expiresAt
	ctxutil.GetLogger(context).DebugContext(context, "session_renewed",
		slog.String("account_id", session.AccountID),
		slog.Time("expires_at", expiresAt),
	)
	return session, nil
}

/*
VerifyReadOnly validates a token without touching the store.

Returns:
  - *Session: The stored session, unchanged
  - error: ErrInvalid for absent or expired tokens, or a wrapped store failure
*/
func (manager *Manager) VerifyReadOnly(context context.Context, token string) (*Session, error) {
	session, now, err := manager.lookup(context, token)
	if err != nil {
		return nil, err
	}
	if !session.ValidAt(now) {
		return nil, ErrInvalid
	}
	return session, nil
}

// InvalidateToken deletes the session identified by token. Unknown tokens are ignored.
func (manager *Manager) InvalidateToken(context context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := manager.store.Delete(context, sec.HashToken(token)); err != nil {
		return fmt.Errorf("session_manager_invalidate_failed: %w", err)
	}
	return nil
}

// InvalidateAccount deletes every session of an account and returns how many were removed.
func (manager *Manager) InvalidateAccount(context context.Context, accountID string) (int64, error) {
	removed, err := manager.store.DeleteByAccount(context, accountID)
	if err != nil {
		return 0, fmt.Errorf("session_manager_invalidate_account_failed: %w", err)
	}
	return removed, nil
}

// SweepExpired removes sessions that are no longer valid.
func (manager *Manager) SweepExpired(context context.Context) (int64, error) {
	removed, err := manager.store.DeleteExpired(context, manager.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("session_manager_sweep_failed: %w", err)
	}
	return removed, nil
}

// lookup resolves a raw token to its stored row and the verification instant.
func (manager *Manager) lookup(context context.Context, token string) (*Session, time.Time, error) {
	if token == "" {
		return nil, time.Time{}, ErrInvalid
	}

	now := manager.now().UTC()
	session, err := manager.store.FindByTokenHash(context, sec.HashToken(token))
	if errors.Is(err, ErrNotFound) {
		return nil, now, ErrInvalid
	}
	if err != nil {
		return nil, now, fmt.Errorf("session_manager_find_failed: %w", err)
	}
	return session, now, nil
}
