// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package userstest provides in-memory doubles of the identity stores for tests.

A single [DB] backs the account, audit and session doubles so that
[DB.WithinTransaction] can snapshot and restore all three together, the way
one PostgreSQL transaction covers the three tables.
*/
package userstest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/taibuivan/sentinel/internal/users/account"
	"github.com/taibuivan/sentinel/internal/users/audit"
	"github.com/taibuivan/sentinel/internal/users/session"
	"github.com/taibuivan/sentinel/pkg/uuid"
)

// Operation names accepted by [DB.FailOn].
const (
	OpAccountFind    = "account.find"
	OpAccountFailure = "account.record_failure"
	OpAccountSuccess = "account.record_success"
	OpAuditAppend    = "audit.append"
	OpAuditList      = "audit.list"
	OpSessionCreate  = "session.create"
	OpSessionFind    = "session.find"
	OpSessionExtend  = "session.extend"
)

// DB is an in-memory stand-in for the users schema.
type DB struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	accounts map[string]*account.Account
	entries  []*audit.Entry
	sessions map[string]*session.Session
	failures map[string]error
	commits  int
	aborts   int
}

// NewDB returns an empty [DB].
func NewDB() *DB {
	return &DB{
		accounts: make(map[string]*account.Account),
		sessions: make(map[string]*session.Session),
		failures: make(map[string]error),
	}
}

// FailOn makes every subsequent call of op return err. A nil err clears it.
func (db *DB) FailOn(op string, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if err == nil {
		delete(db.failures, op)
		return
	}
	db.failures[op] = err
}

// Accounts returns the [account.Repository] double.
func (db *DB) Accounts() *Accounts { return &Accounts{db: db} }

// Audit returns the [audit.Repository] double.
func (db *DB) Audit() *Audit { return &Audit{db: db} }

// Sessions returns the [session.Store] double.
func (db *DB) Sessions() *Sessions { return &Sessions{db: db} }

// # Transactions

// WithinTransaction serializes units of work and restores every table when fn fails.
func (db *DB) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()

	snapshot := db.snapshot()
	if err := fn(ctx); err != nil {
		db.restore(snapshot)
		return err
	}
	if err := ctx.Err(); err != nil {
		db.restore(snapshot)
		return err
	}

	db.mu.Lock()
	db.commits++
	db.mu.Unlock()
	return nil
}

// Commits returns the number of committed transactions.
func (db *DB) Commits() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.commits
}

// Aborts returns the number of rolled-back transactions.
func (db *DB) Aborts() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.aborts
}

type snapshot struct {
	accounts map[string]account.Account
	entries  []*audit.Entry
	sessions map[string]session.Session
}

func (db *DB) snapshot() snapshot {
	db.mu.Lock()
	defer db.mu.Unlock()

	state := snapshot{
		accounts: make(map[string]account.Account, len(db.accounts)),
		entries:  append([]*audit.Entry(nil), db.entries...),
		sessions: make(map[string]session.Session, len(db.sessions)),
	}
	for id, row := range db.accounts {
		state.accounts[id] = *row
	}
	for hash, row := range db.sessions {
		state.sessions[hash] = *row
	}
	return state
}

func (db *DB) restore(state snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.accounts = make(map[string]*account.Account, len(state.accounts))
	for id, row := range state.accounts {
		copied := row
		db.accounts[id] = &copied
	}
	db.entries = state.entries
	db.sessions = make(map[string]*session.Session, len(state.sessions))
	for hash, row := range state.sessions {
		copied := row
		db.sessions[hash] = &copied
	}
	db.aborts++
}

// fail returns the injected error for op, if any. Caller holds db.mu.
func (db *DB) fail(op string) error {
	return db.failures[op]
}

// # Seeding & Inspection

// PutAccount stores a copy of a, assigning an ID when empty, and returns the ID.
func (db *DB) PutAccount(a account.Account) string {
	db.mu.Lock()
	defer db.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.New()
	}
	db.accounts[a.ID] = &a
	return a.ID
}

// Account returns a copy of the stored account, or nil.
func (db *DB) Account(id string) *account.Account {
	db.mu.Lock()
	defer db.mu.Unlock()

	row, ok := db.accounts[id]
	if !ok {
		return nil
	}
	copied := *row
	return &copied
}

// Entries returns copies of the audit entries of an account in insertion order.
func (db *DB) Entries(accountID string) []audit.Entry {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []audit.Entry
	for _, entry := range db.entries {
		if entry.AccountID == accountID {
			result = append(result, *entry)
		}
	}
	return result
}

// SessionCount returns the number of stored sessions of an account.
func (db *DB) SessionCount(accountID string) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	count := 0
	for _, row := range db.sessions {
		if row.AccountID == accountID {
			count++
		}
	}
	return count
}

// Session returns a copy of a stored session, or nil.
func (db *DB) Session(tokenHash string) *session.Session {
	db.mu.Lock()
	defer db.mu.Unlock()

	row, ok := db.sessions[tokenHash]
	if !ok {
		return nil
	}
	copied := *row
	return &copied
}

// # Accounts

// Accounts implements [account.Repository] on a [DB].
type Accounts struct{ db *DB }

var _ account.Repository = (*Accounts)(nil)

func (repository *Accounts) FindByID(_ context.Context, id string) (*account.Account, error) {
	repository.db.mu.Lock()
	defer repository.db.mu.Unlock()

	if err := repository.db.fail(OpAccountFind); err != nil {
		return nil, err
	}
	row, ok := repository.db.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (repository *Accounts) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	repository.db.mu.Lock()
	defer repository.db.mu.Unlock()

	if err := repository.db.fail(OpAccountFind); err != nil {
		return nil, err
	}
	for _, row := range repository.db.accounts {
		if row.Email == email {
			copied := *row
			return &copied, nil
		}
	}
	return nil, account.ErrNotFound
}

func (repository *Accounts) Create(_ context.Context, a *account.Account) error {
	repository.db.mu.Lock()
	defer repository.db.mu.Unlock()

	for _, row := range repository.db.accounts {
		if row.Email == a.Email {
			return account.ErrEmailTaken
		}
	}
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	a.FailedCount, a.IsLocked = 0, false

	copied := *a
	repository.db.accounts[a.ID] = &copied
	return nil
}

func (repository *Accounts) RecordFailure(_ context.Context, id string, threshold int) (*account.Account, error) {
	repository.db.mu.Lock()
	defer repository.db.mu.Unlock()

	if err := repository.db.fail(OpAccountFailure); err != nil {
		return nil, err
	}
	row, ok := repository.db.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	if row.IsLocked {
		return nil, account.ErrLocked
	}

	row.FailedCount++
	row.IsLocked = row.FailedCount >= threshold
	row.UpdatedAt = time.Now().UTC()

	copied := *row
	return &copied, nil
}

func (repository *Accounts) RecordSuccess(_ context.Context, id string, at time.Time) (*account.Account, error) {
	repository.db.mu.Lock()
	defer repository.db.mu.Unlock()

	if err := repository.db.fail(OpAccountSuccess); err != nil {
		return nil, err
	}
	row, ok := repository.db.accounts[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	if row.IsLocked {
		return nil, account.ErrLocked
	}

	row.FailedCount = 0
	loginAt := at
	row.LastLoginAt = &loginAt
	row.UpdatedAt = time.Now().UTC()

	copied := *row
	return &copied, nil
}

func (repository *Accounts) Unlock(_ context.Context, id string) error {
	repository.db.mu.Lock()
	defer repository.db.mu.Unlock()

	row, ok := repository.db.accounts[id]
	if !ok {
		return account.ErrNotFound
	}
	row.IsLocked = false
	row.FailedCount = 0
	return nil
}

func (repository *Accounts) ListLocked(_ context.Context) ([]*account.Account, error) {
	repository.db.mu.Lock()
	defer repository.db.mu.Unlock()

	result := make([]*account.Account, 0)
	for _, row := range repository.db.accounts {
		if row.IsLocked {
			copied := *row
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Email < result[j].Email })
	return result, nil
}

// # Audit

// Audit implements [audit.Repository] on a [DB].
type Audit struct{ db *DB }

var _ audit.Repository = (*Audit)(nil)

func (repository *Audit) Append(_ context.Context, entry *audit.Entry) error {
	repository.db.mu.Lock()
	defer repository.db.mu.Unlock()

	if err := repository.db.fail(OpAuditAppend); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	copied := *entry
	repository.db.entries = append(repository.db.entries, &copied)
	return nil
}

func (repository *Audit) ListByAccount(_ context.Context, accountID string, limit int) ([]*audit.Entry, error) {
	repository.db.mu.Lock()
	defer repository.db.mu.Unlock()

	if err := repository.db.fail(OpAuditList); err != nil {
		return nil, err
	}

	result := make([]*audit.Entry, 0)
	for i := len(repository.db.entries) - 1; i >= 0 && len(result) < limit; i-- {
		entry := repository.db.entries[i]
		if entry.AccountID == accountID {
			copied := *entry
			result = append(result, &copied)
		}
	}
	// Insertion order stands in for the UUIDv7 tie-break; only timestamps may reorder.
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

// # Sessions

// Sessions implements [session.Store] on a [DB].
type Sessions struct{ db *DB }

var _ session.Store = (*Sessions)(nil)

func (store *Sessions) Create(_ context.Context, s *session.Session) error {
	store.db.mu.Lock()
	defer store.db.mu.Unlock()

	if err := store.db.fail(OpSessionCreate); err != nil {
		return err
	}
	copied := *s
	store.db.sessions[s.TokenHash] = &copied
	return nil
}

func (store *Sessions) FindByTokenHash(_ context.Context, tokenHash string) (*session.Session, error) {
	store.db.mu.Lock()
	defer store.db.mu.Unlock()

	if err := store.db.fail(OpSessionFind); err != nil {
		return nil, err
	}
	row, ok := store.db.sessions[tokenHash]
	if !ok {
		return nil, session.ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (store *Sessions) Extend(_ context.Context, tokenHash string, expiresAt, now time.Time) (time.Time, error) {
	store.db.mu.Lock()
	defer store.db.mu.Unlock()

	if err := store.db.fail(OpSessionExtend); err != nil {
		return time.Time{}, err
	}
	row, ok := store.db.sessions[tokenHash]
	if !ok || !row.ExpiresAt.After(now) {
		return time.Time{}, session.ErrNotFound
	}
	if expiresAt.After(row.ExpiresAt) {
		row.ExpiresAt = expiresAt
	}
	return row.ExpiresAt, nil
}

func (store *Sessions) Delete(_ context.Context, tokenHash string) error {
	store.db.mu.Lock()
	defer store.db.mu.Unlock()

	delete(store.db.sessions, tokenHash)
	return nil
}

func (store *Sessions) DeleteByAccount(_ context.Context, accountID string) (int64, error) {
	store.db.mu.Lock()
	defer store.db.mu.Unlock()

	var removed int64
	for hash, row := range store.db.sessions {
		if row.AccountID == accountID {
			delete(store.db.sessions, hash)
			removed++
		}
	}
	return removed, nil
}

func (store *Sessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	store.db.mu.Lock()
	defer store.db.mu.Unlock()

	var removed int64
	for hash, row := range store.db.sessions {
		if !row.ExpiresAt.After(now) {
			delete(store.db.sessions, hash)
			removed++
		}
	}
	return removed, nil
}
