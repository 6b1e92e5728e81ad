// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/sentinel/internal/platform/database/schema"
	"github.com/taibuivan/sentinel/internal/platform/dberr"
	"github.com/taibuivan/sentinel/internal/platform/postgres"
	"github.com/taibuivan/sentinel/internal/platform/sec"
)

var (
	columns = schema.UserAccount.SelectList()

	queryFindByID = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns, schema.UserAccount.Table, schema.UserAccount.ID)

	queryFindByEmail = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns, schema.UserAccount.Table, schema.UserAccount.Email)

	queryInsert = fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, 0, FALSE, $6, $6)`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Name, schema.UserAccount.Email,
		schema.UserAccount.PasswordHash, schema.UserAccount.Role, schema.UserAccount.FailedCount,
		schema.UserAccount.IsLocked, schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt)

	// The increment and the lock decision read the same pre-update value, so
	// the row is locked exactly when the new count reaches the threshold.
	queryRecordFailure = fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = %[2]s + 1, %[3]s = (%[2]s + 1 >= $2), %[4]s = NOW()
		WHERE %[5]s = $1 AND %[3]s = FALSE
		RETURNING %[6]s`,
		schema.UserAccount.Table, schema.UserAccount.FailedCount, schema.UserAccount.IsLocked,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID, columns)

	queryRecordSuccess = fmt.Sprintf(`
		UPDATE %[1]s
		SET %[2]s = 0, %[3]s = $2, %[4]s = NOW()
		WHERE %[5]s = $1 AND %[6]s = FALSE
		RETURNING %[7]s`,
		schema.UserAccount.Table, schema.UserAccount.FailedCount, schema.UserAccount.LastLoginAt,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID, schema.UserAccount.IsLocked, columns)

	queryUnlock = fmt.Sprintf(`
		UPDATE %s SET %s = FALSE, %s = 0, %s = NOW() WHERE %s = $1`,
		schema.UserAccount.Table, schema.UserAccount.IsLocked, schema.UserAccount.FailedCount,
		schema.UserAccount.UpdatedAt, schema.UserAccount.ID)

	queryExists = fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)`,
		schema.UserAccount.Table, schema.UserAccount.ID)

	queryListLocked = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = TRUE ORDER BY %s ASC`,
		columns, schema.UserAccount.Table, schema.UserAccount.IsLocked, schema.UserAccount.Email)
)

// PostgresRepository implements [Repository] using pgx.
//
// Statements run on the transaction carried by the context when there is one,
// otherwise on the pool.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
FindByID retrieves an account by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Account: Hydrated entity
  - error: ErrNotFound or database errors
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Account, error) {
	row := postgres.Conn(context, repository.db).QueryRow(context, queryFindByID, id)

	account, err := scanAccount(row)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_find_by_id_failed", ErrNotFound, nil)
	}
	return account, nil
}

/*
FindByEmail retrieves an account by its unique email address.

The comparison is exact: emails are matched as stored.
*/
func (repository *PostgresRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	row := postgres.Conn(context, repository.db).QueryRow(context, queryFindByEmail, email)

	account, err := scanAccount(row)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_account_find_by_email_failed", ErrNotFound, nil)
	}
	return account, nil
}

/*
Create persists a new account with a zero failure counter.

Parameters:
  - context: context.Context
  - account: *Account (ID, Name, Email, PasswordHash and Role must be set)

Returns:
  - error: ErrEmailTaken or database errors
*/
func (repository *PostgresRepository) Create(context context.Context, account *Account) error {
	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = account.CreatedAt

	_, err := postgres.Conn(context, repository.db).Exec(context, queryInsert,
		account.ID,
		account.Name,
		account.Email,
		account.PasswordHash,
		string(account.Role),
		account.CreatedAt,
	)
	if err != nil {
		return dberr.Wrap(err, "postgres_account_create_failed", nil, ErrEmailTaken)
	}

	account.FailedCount = 0
	account.IsLocked = false
	return nil
}

/*
RecordFailure atomically increments the failure counter and applies the lock.

Returns:
  - *Account: The updated row
  - error: ErrLocked when the row was locked before this statement ran
*/
func (repository *PostgresRepository) RecordFailure(context context.Context, id string, threshold int) (*Account, error) {
	row := postgres.Conn(context, repository.db).QueryRow(context, queryRecordFailure, id, threshold)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.guardMiss(context, id)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_account_record_failure_failed: %w", err)
	}
	return account, nil
}

/*
RecordSuccess atomically resets the failure counter and stamps the login time.

Returns:
  - *Account: The updated row
  - error: ErrLocked when a concurrent attempt locked the row first
*/
func (repository *PostgresRepository) RecordSuccess(context context.Context, id string, at time.Time) (*Account, error) {
	row := postgres.Conn(context, repository.db).QueryRow(context, queryRecordSuccess, id, at)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.guardMiss(context, id)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres_account_record_success_failed: %w", err)
	}
	return account, nil
}

/*
Unlock clears the lock flag and resets the failure counter.

Unlocking an already-unlocked account succeeds without error.
*/
func (repository *PostgresRepository) Unlock(context context.Context, id string) error {
	tag, err := postgres.Conn(context, repository.db).Exec(context, queryUnlock, id)
	if err != nil {
		return fmt.Errorf("postgres_account_unlock_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLocked returns every locked account ordered by email.
func (repository *PostgresRepository) ListLocked(context context.Context) ([]*Account, error) {
	rows, err := postgres.Conn(context, repository.db).Query(context, queryListLocked)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_list_locked_failed: %w", err)
	}
	defer rows.Close()

	accounts := make([]*Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres_account_list_locked_scan_failed: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_account_list_locked_failed: %w", err)
	}

	return accounts, nil
}

// guardMiss tells a locked row apart from a missing one after a guarded update matched nothing.
func (repository *PostgresRepository) guardMiss(context context.Context, id string) error {
	var exists bool
	if err := postgres.Conn(context, repository.db).QueryRow(context, queryExists, id).Scan(&exists); err != nil {
		return fmt.Errorf("postgres_account_exists_failed: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrLocked
}

// scanAccount reads one row in [schema.UserAccountTable.Columns] order.
func scanAccount(row pgx.Row) (*Account, error) {
	var (
		account Account
		role    string
	)

	err := row.Scan(
		&account.ID,
		&account.Name,
		&account.Email,
		&account.PasswordHash,
		&role,
		&account.FailedCount,
		&account.IsLocked,
		&account.LastLoginAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.Role = sec.UserRole(role)
	return &account, nil
}
