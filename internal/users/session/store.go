// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"time"
)

// Store defines the persistence contract for sessions.
//
// Implementations must make Extend a single atomic step so that concurrent
// renewals of the same token can never shorten its expiry.
type Store interface {

	/*
		Create persists a new session row.
	*/
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the row for a token digest, expired or not.

		Returns:
		  - *Session: Stored row
		  - error: ErrNotFound or storage failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Extend sets the expiry to max(current, expiresAt) if the row is still
		valid at now.

		Returns:
		  - time.Time: The stored expiry after the update
		  - error: ErrNotFound if the row is gone or expired at now
	*/
	Extend(context context.Context, tokenHash string, expiresAt, now time.Time) (time.Time, error)

	/*
		Delete removes one row. Deleting a missing row is not an error.
	*/
	Delete(context context.Context, tokenHash string) error

	/*
		DeleteByAccount removes every row of an account.

		Returns:
		  - int64: Number of removed rows
	*/
	DeleteByAccount(context context.Context, accountID string) (int64, error)

	/*
		DeleteExpired removes rows that expired at or before now.

		Returns:
		  - int64: Number of removed rows (or stale index entries for Redis)
	*/
	DeleteExpired(context context.Context, now time.Time) (int64, error)
}
