// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps github.com/google/uuid to generate Version 7 values, which keep
B-tree indexes in PostgreSQL append-mostly.

Every primary key in SecurePass (accounts and credentials) comes from [New].
*/
package uuid

import "github.com/google/uuid"

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

// # Parsing

// Normalize parses s as a UUID in any of the accepted textual forms and
// returns its canonical lowercase form. ok is false when s is not a UUID.
func Normalize(s string) (canonical string, ok bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
