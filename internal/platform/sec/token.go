// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// minTokenBytes guards against accidentally issuing guessable tokens.
const minTokenBytes = 16

// GenerateSecureToken returns n cryptographically random bytes, hex encoded.
func GenerateSecureToken(n int) (string, error) {
	if n < minTokenBytes {
		return "", fmt.Errorf("sec: token length %d below minimum %d", n, minTokenBytes)
	}

	buffer := make([]byte, n)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}

// HashToken returns the SHA-256 hex digest of an opaque token.
//
// Stores only ever see this digest, so a leaked session table cannot be
// replayed as cookies.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// # Principal

// Principal is the identity resolved from a verified session.
type Principal struct {
	AccountID        string
	SessionExpiresAt time.Time
}
