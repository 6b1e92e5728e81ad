// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/sentinel/internal/platform/sec"
)

/*
TestHasher_RoundTrip verifies that a hashed password verifies and a wrong one does not.
*/
func TestHasher_RoundTrip(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("password1111")
	require.NoError(t, err)
	assert.NotEqual(t, "password1111", hash)

	assert.True(t, hasher.Compare(hash, "password1111"))
	assert.False(t, hasher.Compare(hash, "password2222"))
	assert.False(t, hasher.Compare(hash, ""))
}

/*
TestHasher_PrecisPreparation verifies the OpaqueString mappings applied before hashing.
*/
func TestHasher_PrecisPreparation(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost)

	t.Run("NonASCIISpace", func(t *testing.T) {
		hash, err := hasher.Hash("pass word1")
		require.NoError(t, err)

		assert.True(t, hasher.Compare(hash, "pass\u00a0word1"))
	})

	t.Run("DecomposedAccent", func(t *testing.T) {
		hash, err := hasher.Hash("caf\u00e9 1234")
		require.NoError(t, err)

		assert.True(t, hasher.Compare(hash, "cafe\u0301 1234"))
	})

	t.Run("WidthIsNotFolded", func(t *testing.T) {
		hash, err := hasher.Hash("pass1234")
		require.NoError(t, err)

		assert.False(t, hasher.Compare(hash, "pass\uff11\uff12\uff13\uff14"))
	})
}

/*
TestHasher_Rejections covers inputs that must never produce a hash.
*/
func TestHasher_Rejections(t *testing.T) {
	hasher := sec.NewHasher(bcrypt.MinCost)

	_, err := hasher.Hash("")
	assert.Error(t, err)

	_, err = hasher.Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, sec.ErrPasswordTooLong)
}

/*
TestToken_GenerateAndHash checks token shape and digest stability.
*/
func TestToken_GenerateAndHash(t *testing.T) {
	token, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	assert.Equal(t, sec.HashToken(token), sec.HashToken(token))
	assert.NotEqual(t, token, sec.HashToken(token))

	_, err = sec.GenerateSecureToken(8)
	assert.Error(t, err)
}

/*
TestUserRole_AtLeast checks the role hierarchy.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleUser))
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.RoleUser.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.UserRole("GUEST").Valid())
}
