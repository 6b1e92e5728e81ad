// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account is the credential store: account rows, their failure counter,
lock flag and last successful login.

It exposes the atomic state transitions used by the login flow and the
administrative operations built on top of them (unlock, locked-account
listing, provisioning).

# Architecture

  - Entities: Account (full row), Profile and LockedSummary (sanitized views).
  - Repository: Guarded single-statement updates, safe under concurrent logins.
  - Security: Sanitized views never carry the password hash.
*/
package account

import (
	"time"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
	"github.com/taibuivan/sentinel/internal/platform/sec"
)

// # Domain Entities

// Account is one row of the credential store.
//
// # Invariants
//
//   - IsLocked implies FailedCount >= the lock threshold.
//   - Unlock always resets FailedCount to 0.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         sec.UserRole
	FailedCount  int
	IsLocked     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the sanitized account view returned to its owner.
type Profile struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Email       string       `json:"email"`
	Role        sec.UserRole `json:"role"`
	LastLoginAt *time.Time   `json:"lastLoginAt"`
}

// LockedSummary is the administrative view of a locked account.
type LockedSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	FailedCount int        `json:"failedCount"`
	LastLoginAt *time.Time `json:"lastLoginAt"`
}

// Profile returns the sanitized view of the account.
func (a *Account) Profile() Profile {
	return Profile{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Role:        a.Role,
		LastLoginAt: a.LastLoginAt,
	}
}

// LockedSummary returns the administrative view of the account.
func (a *Account) LockedSummary() LockedSummary {
	return LockedSummary{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		FailedCount: a.FailedCount,
		LastLoginAt: a.LastLoginAt,
	}
}

// # Errors

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = apperr.NotFound("Account")

	// ErrLocked is returned by guarded updates when the row is already locked.
	ErrLocked = apperr.Locked("ACCOUNT_LOCKED", "Account is locked.")

	// ErrEmailTaken is returned when provisioning an email that already exists.
	ErrEmailTaken = apperr.Conflict("Email is already registered")
)

// # Field Names

const (
	FieldID       = "id"
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)
