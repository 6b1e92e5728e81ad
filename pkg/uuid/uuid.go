// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps the google/uuid library to generate Version 7 values, which are
naturally ordered by creation time and keep PostgreSQL B-tree indexes compact.

Account and login-history primary keys, as well as request IDs, come from here.
*/
package uuid

import "github.com/google/uuid"

// canonicalLength is the length of the 8-4-4-4-12 textual form.
const canonicalLength = 36

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUIDv7: " + err.Error())
	}

	return id.String()
}

// # Validation

// Valid reports whether s is a UUID in canonical 8-4-4-4-12 form.
//
// google/uuid also accepts braced and urn-prefixed forms; those are rejected
// here because identifiers are stored and compared as canonical text.
func Valid(s string) bool {
	if len(s) != canonicalLength {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
