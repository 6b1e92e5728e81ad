// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Wrap classifies a database error for the repository layer.
//
//   - [pgx.ErrNoRows] becomes notFound, so callers can match it with [errors.Is].
//   - A unique violation becomes conflict when one is given.
//   - Anything else is wrapped with the action name and left to the service
//     to turn into an internal failure.
func Wrap(err error, action string, notFound, conflict error) error {
	if err == nil {
		return nil
	}

	if notFound != nil && errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}

	if conflict != nil && IsUniqueViolation(err) {
		return conflict
	}

	return fmt.Errorf("%s: %w", action, err)
}

// IsUniqueViolation reports whether err is a Postgres unique_violation (23505).
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation
}
