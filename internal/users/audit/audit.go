// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package audit is the append-only login history.

One entry is written for every authentication attempt against a known
account, including attempts rejected because the account is locked. Entries
are never updated or deleted by the application.
*/
package audit

import "time"

// Entry is one recorded authentication attempt.
type Entry struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Success   bool      `json:"success"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	CreatedAt time.Time `json:"createdAt"`
}
