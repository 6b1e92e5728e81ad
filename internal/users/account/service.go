// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/sentinel/internal/platform/apperr"
	"github.com/taibuivan/sentinel/internal/platform/ctxutil"
	"github.com/taibuivan/sentinel/internal/platform/middleware"
	"github.com/taibuivan/sentinel/internal/platform/sec"
	"github.com/taibuivan/sentinel/internal/platform/validate"
	"github.com/taibuivan/sentinel/pkg/uuid"
)

// PasswordHasher hashes new passwords for provisioning.
type PasswordHasher interface {
	Hash(plainTextPassword string) (string, error)
}

// Service implements the administrative and read-side account use cases.
//
// The login state transitions live in the auth package; this service only
// owns the operations that do not involve a password check.
type Service struct {
	repository Repository
	hasher     PasswordHasher
}

// NewService constructs a new account [Service].
func NewService(repository Repository, hasher PasswordHasher) *Service {
	return &Service{repository: repository, hasher: hasher}
}

/*
Unlock lifts the lock on an account and resets its failure counter.

Description: Idempotent. Existing sessions are left untouched and no audit
entry is written.

Parameters:
  - context: context.Context
  - id: string (Account UUID)

Returns:
  - error: ErrNotFound, or a wrapped store failure
*/
func (service *Service) Unlock(context context.Context, id string) error {
	if err := service.repository.Unlock(context, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("account_service_unlock_failed: %w", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "account_unlocked", slog.String("account_id", id))
	return nil
}

/*
ListLocked returns the administrative summaries of all locked accounts.

Returns:
  - []LockedSummary: Possibly empty, never nil
  - error: Wrapped store failure
*/
func (service *Service) ListLocked(context context.Context) ([]LockedSummary, error) {
	accounts, err := service.repository.ListLocked(context)
	if err != nil {
		return nil, fmt.Errorf("account_service_list_locked_failed: %w", err)
	}

	summaries := make([]LockedSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, account.LockedSummary())
	}
	return summaries, nil
}

/*
GetProfile returns the sanitized profile of an account.

Returns:
  - *Profile: Sanitized view
  - error: ErrNotFound or wrapped store failure
*/
func (service *Service) GetProfile(context context.Context, id string) (*Profile, error) {
	account, err := service.repository.FindByID(context, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}

	profile := account.Profile()
	return &profile, nil
}

// ResolveRole implements [middleware.RoleResolver].
func (service *Service) ResolveRole(context context.Context, accountID string) (sec.UserRole, error) {
	account, err := service.repository.FindByID(context, accountID)
	if errors.Is(err, ErrNotFound) {
		return "", middleware.ErrRoleSubjectMissing
	}
	if err != nil {
		return "", fmt.Errorf("account_service_resolve_role_failed: %w", err)
	}
	return account.Role, nil
}

// # Provisioning

// ProvisionInput describes an account created outside the login flow.
type ProvisionInput struct {
	Name     string
	Email    string
	Password string
	Role     sec.UserRole
}

/*
Provision validates, hashes and persists a new account.

Description: Used by the seed tool. The password is hashed with the injected
hasher; an empty role defaults to USER.

Returns:
  - *Account: Created entity
  - error: Validation error, ErrEmailTaken, or wrapped store failure
*/
func (service *Service) Provision(context context.Context, input ProvisionInput) (*Account, error) {
	if input.Role == "" {
		input.Role = sec.RoleUser
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).MaxLen(FieldName, input.Name, 100)
	validator.Email(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password).MinLen(FieldPassword, input.Password, 8).MaxBytes(FieldPassword, input.Password, 72)
	validator.OneOf(FieldRole, string(input.Role), string(sec.RoleUser), string(sec.RoleAdmin))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	hash, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperr.ValidationError("Password cannot be used", apperr.FieldError{
			Field:   FieldPassword,
			Message: err.Error(),
		})
	}

	account := &Account{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}

	if err := service.repository.Create(context, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("account_service_provision_failed: %w", err)
	}

	return account, nil
}
