// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// MinPasswordLength is the minimum account password length in characters.
	MinPasswordLength = 6

	// OAuthStateLength is the byte length of the random OAuth state value.
	OAuthStateLength = 32

	// OAuthStateTTL bounds the time between /google and /google/callback.
	OAuthStateTTL = 10 * time.Minute
)

// # Client Messages

const (
	msgRegisterMissing = "Please provide all required fields"
	msgPasswordShort   = "Password must be at least 6 characters"
	msgPasswordLong    = "Password must be at most 72 bytes"
	msgEmailInvalid    = "Please provide a valid email address"
	msgLoginMissing    = "Please provide email and password"
	msgLoggedOut       = "Logged out successfully"
)
