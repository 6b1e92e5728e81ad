// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"time"
)

// # Repository Contracts

// Repository defines the persistence contract for the credential store.
//
// Every mutating method is a single guarded statement, so concurrent callers
// never lose an increment and never unlock a row they did not observe.
type Repository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *Account: Hydrated entity
		  - error: ErrNotFound or database failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account whose stored email equals email exactly.

		Returns:
		  - *Account: Hydrated entity
		  - error: ErrNotFound or database failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: ErrEmailTaken on a duplicate email, or persistence failures
	*/
	Create(context context.Context, account *Account) error

	/*
		RecordFailure increments the failure counter and locks the row when the
		new count reaches threshold.

		Parameters:
		  - id: Account ID
		  - threshold: Count at which the row becomes locked

		Returns:
		  - *Account: Row state after the update
		  - error: ErrLocked if the row was already locked, ErrNotFound, or database failures
	*/
	RecordFailure(context context.Context, id string, threshold int) (*Account, error)

	/*
		RecordSuccess resets the failure counter and sets the last login instant.

		Returns:
		  - *Account: Row state after the update
		  - error: ErrLocked if the row became locked concurrently, ErrNotFound, or database failures
	*/
	RecordSuccess(context context.Context, id string, at time.Time) (*Account, error)

	/*
		Unlock clears the lock flag and the failure counter. Idempotent.

		Returns:
		  - error: ErrNotFound or database failures
	*/
	Unlock(context context.Context, id string) error

	/*
		ListLocked returns every locked account ordered by email.
	*/
	ListLocked(context context.Context) ([]*Account, error)
}
