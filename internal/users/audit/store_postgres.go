// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/sentinel/internal/platform/database/schema"
	"github.com/taibuivan/sentinel/internal/platform/postgres"
	"github.com/taibuivan/sentinel/pkg/uuid"
)

var (
	queryAppend = fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6)`,
		schema.UserLoginHistory.Table, schema.UserLoginHistory.SelectList())

	// UUIDv7 ids break ties between entries sharing a timestamp.
	queryListByAccount = fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC
		LIMIT $2`,
		schema.UserLoginHistory.SelectList(), schema.UserLoginHistory.Table,
		schema.UserLoginHistory.AccountID,
		schema.UserLoginHistory.CreatedAt, schema.UserLoginHistory.ID)
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

/*
Append inserts one login-history row.

Description: Joins the caller's transaction when the context carries one, so
the entry commits or rolls back together with the account update.
*/
func (repository *PostgresRepository) Append(context context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := postgres.Conn(context, repository.db).Exec(context, queryAppend,
		entry.ID,
		entry.AccountID,
		entry.Success,
		entry.IPAddress,
		entry.UserAgent,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres_audit_append_failed: %w", err)
	}
	return nil
}

// ListByAccount returns the newest entries for an account.
func (repository *PostgresRepository) ListByAccount(context context.Context, accountID string, limit int) ([]*Entry, error) {
	rows, err := postgres.Conn(context, repository.db).Query(context, queryListByAccount, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres_audit_list_failed: %w", err)
	}
	defer rows.Close()

	entries := make([]*Entry, 0)
	for rows.Next() {
		entry := &Entry{}
		if err := rows.Scan(
			&entry.ID,
			&entry.AccountID,
			&entry.Success,
			&entry.IPAddress,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_audit_list_scan_failed: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_audit_list_failed: %w", err)
	}

	return entries, nil
}
