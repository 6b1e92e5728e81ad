// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the login state machine.

It verifies an email/password pair against the credential store, maintains the
failure counter and lock flag, records every attempt against a known account in
the login history, and asks the session manager for a session on success.

Architecture:

  - Service: Authenticate, the only entry point that compares passwords.
  - Contracts: Consumer-side interfaces for the session issuer, transactor
    and password verifier, so tests run on in-memory doubles.
  - Handler: Login, logout and profile endpoints (http.go).

The package ensures that the account update, the audit entry and the session
row of one attempt commit together or not at all.
*/
package auth

import (
	stdctx "context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taibuivan/sentinel/internal/platform/constants"
	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/users/account"
	"github.com/taibuivan/sentinel/internal/users/audit"
	"github.com/taibuivan/sentinel/internal/users/session"
)

// # Contracts & Types

// SessionIssuer creates sessions. [*session.Manager] satisfies it.
type SessionIssuer interface {
	Create(context stdctx.Context, accountID string, ttl time.Duration) (*session.Issued, error)
}

// Transactor runs a unit of work atomically. [*postgres.Transactor] satisfies it.
type Transactor interface {
	WithinTransaction(context stdctx.Context, fn func(context stdctx.Context) error) error
}

// PasswordVerifier compares a plain-text password with a stored hash in constant time.
// Hash is used once to build the decoy hash compared on unknown emails.
// [*sec.Hasher] satisfies it.
type PasswordVerifier interface {
	Hash(plainTextPassword string) (string, error)
	Compare(existingHash, plainTextPassword string) bool
}

// Outcome is the result category of an authentication attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota + 1
	OutcomeInvalidCredentials
	OutcomeAccountLocked
	OutcomeAccountJustLocked
)

// String returns the snake_case name used in logs.
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeInvalidCredentials:
		return "invalid_credentials"
	case OutcomeAccountLocked:
		return "account_locked"
	case OutcomeAccountJustLocked:
		return "account_just_locked"
	default:
		return "unknown"
	}
}

// LoginInput is a validated credential pair plus request origin metadata.
type LoginInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

// LoginResult describes a completed attempt.
//
// Profile and Session are set only when Outcome is [OutcomeSuccess].
type LoginResult struct {
	Outcome Outcome
	Profile *account.Profile
	Session *session.Issued
}

// Service implements the login use case.
//
// # Review Process
//
// This service is critical for security. Any changes to the lock transitions
// or to the audit rules must be reviewed together with their tests.
type Service struct {
	accounts  account.Repository
	auditLog  audit.Repository
	sessions  SessionIssuer
	tx        Transactor
	passwords PasswordVerifier
	now       func() time.Time

	decoyOnce sync.Once
	decoyHash string
}

// NewService constructs a new auth [Service]. A nil clock uses [time.Now].
func NewService(
	accounts account.Repository,
	auditLog audit.Repository,
	sessions SessionIssuer,
	tx Transactor,
	passwords PasswordVerifier,
	clock func() time.Time,
) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		accounts:  accounts,
		auditLog:  auditLog,
		sessions:  sessions,
		tx:        tx,
		passwords: passwords,
		now:       clock,
	}
}

// # Authentication Flow

/*
Authenticate runs one login attempt.

Description:
 1. Unknown email: InvalidCredentials, nothing is written. A decoy hash is
    still compared so the response time does not reveal registered emails.
 2. Locked account: one failed audit entry, AccountLocked. The password is not compared.
 3. Wrong password: failure counter and audit entry in one transaction.
 4. Right password: counter reset, audit entry and session in one transaction.

Parameters:
  - context: context.Context
  - input: LoginInput (already validated by the handler)

Returns:
  - *LoginResult: The outcome; every outcome is a nil-error result
  - error: Store failure. Nothing from the failed transaction is persisted.
*/
func (service *Service) Authenticate(context stdctx.Context, input LoginInput) (*LoginResult, error) {
	logger := ctxutil.GetLogger(context)

	found, err := service.accounts.FindByEmail(context, input.Email)
	if errors.Is(err, account.ErrNotFound) {
		// No audit row: the history is keyed by account and must not reveal probing.
		service.compareDecoy(input.Password)
		logger.InfoContext(context, "login_unknown_email")
		return &LoginResult{Outcome: OutcomeInvalidCredentials}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_find_account_failed: %w", err)
	}

	if found.IsLocked {
		if err := service.appendEntry(context, found.ID, false, input); err != nil {
			return nil, err
		}
		logger.WarnContext(context, "login_account_locked", slog.String("account_id", found.ID))
		return &LoginResult{Outcome: OutcomeAccountLocked}, nil
	}

	if !service.passwords.Compare(found.PasswordHash, input.Password) {
		return service.recordFailure(context, found, input)
	}
	return service.recordSuccess(context, found, input)
}

// compareDecoy spends one bcrypt comparison at the configured cost.
func (service *Service) compareDecoy(password string) {
	service.decoyOnce.Do(func() {
		hash, err := service.passwords.Hash("sentinel-unknown-account")
		if err == nil {
			service.decoyHash = hash
		}
	})
	if service.decoyHash == "" {
		return
	}
	service.passwords.Compare(service.decoyHash, password)
}

// recordFailure increments the counter and writes the failed entry atomically.
func (service *Service) recordFailure(context stdctx.Context, found *account.Account, input LoginInput) (*LoginResult, error) {
	var outcome Outcome

	err := service.tx.WithinTransaction(context, func(txContext stdctx.Context) error {
		updated, err := service.accounts.RecordFailure(txContext, found.ID, LockThreshold)
		switch {
		case errors.Is(err, account.ErrLocked):
			// A concurrent attempt locked the row after we read it.
			outcome = OutcomeAccountLocked
		case err != nil:
			return fmt.Errorf("auth_service_record_failure_failed: %w", err)
		case updated.IsLocked:
			outcome = OutcomeAccountJustLocked
		default:
			outcome = OutcomeInvalidCredentials
		}

		return service.appendEntry(txContext, found.ID, false, input)
	})
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).WarnContext(context, "login_failed",
		slog.String("account_id", found.ID),
		slog.String("outcome", outcome.String()),
	)
	return &LoginResult{Outcome: outcome}, nil
}

// recordSuccess resets the counter, writes the entry and issues a session atomically.
func (service *Service) recordSuccess(context stdctx.Context, found *account.Account, input LoginInput) (*LoginResult, error) {
	result := &LoginResult{}

	err := service.tx.WithinTransaction(context, func(txContext stdctx.Context) error {
		updated, err := service.accounts.RecordSuccess(txContext, found.ID, service.now().UTC())
		if errors.Is(err, account.ErrLocked) {
			// Locked between the read and the update: reject like any locked attempt.
			result.Outcome = OutcomeAccountLocked
			return service.appendEntry(txContext, found.ID, false, input)
		}
		if err != nil {
			return fmt.Errorf("auth_service_record_success_failed: %w", err)
		}

		if err := service.appendEntry(txContext, found.ID, true, input); err != nil {
			return err
		}

		issued, err := service.sessions.Create(txContext, found.ID, constants.SessionTTL)
		if err != nil {
			return fmt.Errorf("auth_service_create_session_failed: %w", err)
		}

		profile := updated.Profile()
		result.Outcome = OutcomeSuccess
		result.Profile = &profile
		result.Session = issued
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "login_completed",
		slog.String("account_id", found.ID),
		slog.String("outcome", result.Outcome.String()),
	)
	return result, nil
}

// appendEntry writes one audit row for an attempt.
func (service *Service) appendEntry(context stdctx.Context, accountID string, success bool, input LoginInput) error {
	entry := &audit.Entry{
		AccountID: accountID,
		Success:   success,
		IPAddress: input.IPAddress,
		UserAgent: input.UserAgent,
		CreatedAt: service.now().UTC(),
	}
	if err := service.auditLog.Append(context, entry); err != nil {
		return fmt.Errorf("auth_service_append_audit_failed: %w", err)
	}
	return nil
}
