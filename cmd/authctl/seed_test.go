// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/sentinel/internal/platform/sec"
	"github.com/taibuivan/sentinel/internal/users/account"
	"github.com/taibuivan/sentinel/internal/users/userstest"
)

const seedYAML = `
accounts:
  - name: Admin
    email: admin@example.com
    password: adminpass123
    role: ADMIN
  - name: Test User
    email: test@example.com
    password: password1111
`

/*
TestParseSeed decodes the documented layout and rejects unknown keys.
*/
func TestParseSeed(t *testing.T) {
	seed, err := ParseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.Accounts, 2)
	assert.Equal(t, "ADMIN", seed.Accounts[0].Role)
	assert.Empty(t, seed.Accounts[1].Role)

	_, err = ParseSeed(strings.NewReader("accounts:\n  - name: x\n    admin: true\n"))
	assert.Error(t, err)

	_, err = ParseSeed(strings.NewReader("accounts: []\n"))
	assert.Error(t, err)
}

/*
TestProvision_SkipsExisting verifies a second run is a no-op.
*/
func TestProvision_SkipsExisting(t *testing.T) {
	db := userstest.NewDB()
	hasher := sec.NewHasher(bcrypt.MinCost)
	service := account.NewService(db.Accounts(), hasher)

	seed, err := ParseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	report, err := Provision(context.Background(), service, seed)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Created: 2}, report)

	report, err = Provision(context.Background(), service, seed)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Skipped: 2}, report)

	admin, err := db.Accounts().FindByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleAdmin, admin.Role)
	assert.True(t, hasher.Compare(admin.PasswordHash, "adminpass123"))

	user, err := db.Accounts().FindByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, sec.RoleUser, user.Role)
}

/*
TestProvision_StopsOnInvalidEntry surfaces validation failures.
*/
func TestProvision_StopsOnInvalidEntry(t *testing.T) {
	db := userstest.NewDB()
	service := account.NewService(db.Accounts(), sec.NewHasher(bcrypt.MinCost))

	seed := &SeedFile{Accounts: []SeedAccount{{Name: "Bad", Email: "not-an-email", Password: "password1111"}}}

	report, err := Provision(context.Background(), service, seed)
	assert.Error(t, err)
	assert.Zero(t, report.Created)
}
