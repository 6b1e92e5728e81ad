// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import "context"

// Repository defines the persistence contract for the login history.
type Repository interface {

	/*
		Append writes one entry. ID and CreatedAt are assigned when empty.

		Returns:
		  - error: Persistence failures
	*/
	Append(context context.Context, entry *Entry) error

	/*
		ListByAccount returns at most limit entries for the account, newest first.

		Returns:
		  - []*Entry: Possibly empty, never nil
		  - error: Database retrieval failures
	*/
	ListByAccount(context context.Context, accountID string, limit int) ([]*Entry, error)
}
