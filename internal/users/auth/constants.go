// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Authentication Constraints

const (
	// LockThreshold is the number of consecutive failures that locks an account.
	LockThreshold = 5

	// MaxPasswordBytes is the longest password bcrypt can verify.
	MaxPasswordBytes = 72
)

// # Client Messages

const (
	MessageLoginSuccess       = "Login successful."
	MessageInvalidCredentials = "Invalid email or password combination."
	MessageAccountLocked      = "Account is locked."
	MessageAccountJustLocked  = "Account locked after repeated failed password attempts."
	MessageLoginFailed        = "Login failed due to a server-side error."
	MessageLoggedOut          = "Logged out."
)

// # Error Codes

const (
	CodeAccountLocked     = "ACCOUNT_LOCKED"
	CodeAccountJustLocked = "ACCOUNT_JUST_LOCKED"
)

// # Field Names

const (
	FieldEmail    = "email"
	FieldPassword = "password"
)
