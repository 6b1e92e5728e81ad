// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements server-side sessions with sliding expiration.

A session is identified by an opaque random token held only by the client.
Stores keep the SHA-256 digest of the token, never the token itself.

Architecture:

  - Manager: Issue, verify-and-renew, verify read-only, invalidate.
  - Store: PostgreSQL (default) or Redis, chosen at startup.
  - Transport: Cookie helpers and the verification middleware (http.go).

Absent and expired tokens are indistinguishable to callers: both yield [ErrInvalid].
*/
package session

import (
	"time"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
)

// Session is a stored session row.
type Session struct {
	TokenHash string
	AccountID string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ValidAt reports whether the session is still valid at the given instant.
// A session expiring exactly at now is already invalid.
func (s *Session) ValidAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// Issued is a freshly created session as handed to the client.
type Issued struct {
	Token     string
	AccountID string
	ExpiresAt time.Time
}

var (
	// ErrNotFound is returned by stores when no live row matches.
	ErrNotFound = apperr.NotFound("Session")

	// ErrInvalid is returned by the manager for absent or expired tokens.
	ErrInvalid = apperr.Unauthorized("Session is invalid or expired")
)
