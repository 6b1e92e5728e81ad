// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/sentinel/internal/platform/database/schema"
	"github.com/taibuivan/sentinel/internal/platform/dberr"
	"github.com/taibuivan/sentinel/internal/platform/postgres"
)

var (
	queryCreate = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4)`,
		schema.UserSession.Table, schema.UserSession.SelectList())

	queryFind = fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.UserSession.SelectList(), schema.UserSession.Table, schema.UserSession.TokenHash)

	queryExtend = fmt.Sprintf(`
		UPDATE %[1]s SET %[2]s = GREATEST(%[2]s, $2)
		WHERE %[3]s = $1 AND %[2]s > $3
		RETURNING %[2]s`,
		schema.UserSession.Table, schema.UserSession.ExpiresAt, schema.UserSession.TokenHash)

	queryDelete = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.UserSession.Table, schema.UserSession.TokenHash)

	queryDeleteByAccount = fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`,
		schema.UserSession.Table, schema.UserSession.AccountID)

	queryDeleteExpired = fmt.Sprintf(`DELETE FROM %s WHERE %s <= $1`,
		schema.UserSession.Table, schema.UserSession.ExpiresAt)
)

// PostgresStore implements [Store] on the users.session table.
type PostgresStore struct {
	db postgres.Querier
}

// NewPostgresStore creates a new PostgreSQL implementation of [Store].
func NewPostgresStore(db postgres.Querier) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a session row, joining the caller's transaction if any.
func (store *PostgresStore) Create(context context.Context, session *Session) error {
	_, err := postgres.Conn(context, store.db).Exec(context, queryCreate,
		session.TokenHash,
		session.AccountID,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_session_create_failed: %w", err)
	}
	return nil
}

// FindByTokenHash returns the stored row for a token digest.
func (store *PostgresStore) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	session := &Session{}
	err := postgres.Conn(context, store.db).QueryRow(context, queryFind, tokenHash).Scan(
		&session.TokenHash,
		&session.AccountID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "postgres_session_find_failed", ErrNotFound, nil)
	}
	return session, nil
}

/*
Extend slides the expiry forward in one guarded statement.

GREATEST keeps a concurrent, later renewal from being undone by an earlier one.
*/
func (store *PostgresStore) Extend(context context.Context, tokenHash string, expiresAt, now time.Time) (time.Time, error) {
	var stored time.Time
	err := postgres.Conn(context, store.db).QueryRow(context, queryExtend, tokenHash, expiresAt, now).Scan(&stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("postgres_session_extend_failed: %w", err)
	}
	return stored, nil
}

// Delete removes one session row.
func (store *PostgresStore) Delete(context context.Context, tokenHash string) error {
	if _, err := postgres.Conn(context, store.db).Exec(context, queryDelete, tokenHash); err != nil {
		return fmt.Errorf("postgres_session_delete_failed: %w", err)
	}
	return nil
}

// DeleteByAccount removes every session of an account.
func (store *PostgresStore) DeleteByAccount(context context.Context, accountID string) (int64, error) {
	tag, err := postgres.Conn(context, store.db).Exec(context, queryDeleteByAccount, accountID)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_delete_by_account_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteExpired removes rows that are no longer valid at now.
func (store *PostgresStore) DeleteExpired(context context.Context, now time.Time) (int64, error) {
	tag, err := postgres.Conn(context, store.db).Exec(context, queryDeleteExpired, now)
	if err != nil {
		return 0, fmt.Errorf("postgres_session_delete_expired_failed: %w", err)
	}
	return tag.RowsAffected(), nil
}
