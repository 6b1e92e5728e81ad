// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package sec provides cryptographic primitives shared by the identity packages.

It isolates security-sensitive code (password hashing, opaque session tokens,
role comparison) from domain logic. Domain services depend on small interfaces
and receive these implementations through their constructors.
*/
package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/secure/precis"
)

// maxPasswordBytes is the bcrypt input limit; longer inputs are rejected at hash time.
const maxPasswordBytes = 72

// ErrPasswordTooLong is returned when the prepared password exceeds the bcrypt input limit.
var ErrPasswordTooLong = errors.New("sec: password exceeds 72 bytes")

// Hasher hashes and verifies passwords with bcrypt.
//
// # Input Preparation
//
// Passwords are prepared with the PRECIS OpaqueString profile (RFC 8265) before
// hashing and comparing. Non-ASCII spaces (such as U+00A0) become U+0020 and the
// result is NFC normalized, so decomposed accents verify against the composed
// form. Width variants are not folded: full-width digits stay distinct.
type Hasher struct {
	cost int
}

// NewHasher creates a [Hasher] with the given bcrypt cost.
// Out-of-range costs fall back to [bcrypt.DefaultCost].
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt hash of a plain-text password.
func (hasher *Hasher) Hash(plainTextPassword string) (string, error) {
	prepared, err := preparePassword(plainTextPassword)
	if err != nil {
		return "", err
	}
	if len(prepared) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(prepared), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Compare reports whether the plain-text password matches the stored hash.
//
// bcrypt performs the comparison in constant time; any preparation or
// comparison failure is reported as a mismatch.
func (hasher *Hasher) Compare(existingHash, plainTextPassword string) bool {
	prepared, err := preparePassword(plainTextPassword)
	if err != nil {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(prepared)) == nil
}

// preparePassword enforces the PRECIS OpaqueString profile on a password.
func preparePassword(plainTextPassword string) (string, error) {
	prepared, err := precis.OpaqueString.String(plainTextPassword)
	if err != nil {
		return "", fmt.Errorf("sec: password rejected by precis profile: %w", err)
	}
	return prepared, nil
}
