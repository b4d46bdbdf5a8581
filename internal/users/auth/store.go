// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Lookups return [ErrUserNotFound] when nothing matches. Create returns
// [ErrDuplicateAccount] when the email is taken.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByEmailOrProviderID returns the account linked to providerID, or
		failing that the account registered under email.

		Parameters:
		  - context: context.Context
		  - email: string
		  - providerID: string

		Returns:
		  - *User: Hydrated entity
		  - error: ErrUserNotFound or database failures
	*/
	FindByEmailOrProviderID(context context.Context, email, providerID string) (*User, error)

	/*
		Create persists a brand-new user account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: ErrDuplicateAccount or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		LinkProvider sets the Google id of an account that has none yet.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - providerID: string

		Returns:
		  - error: Persistence failures
	*/
	LinkProvider(context context.Context, userID, providerID string) error
}

// # Volatile Data Access

// LoginAttemptRepository counts failed logins per email inside a sliding lockout window.
type LoginAttemptRepository interface {

	/*
		Failures returns the current failure count and the time left in the window.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - int: Failures recorded in the window
		  - time.Duration: Remaining window, zero when no failures are recorded
		  - error: Retrieval failures
	*/
	Failures(context context.Context, email string) (int, time.Duration, error)

	/*
		RecordFailure increments the counter, opening the window on the first failure.

		Parameters:
		  - context: context.Context
		  - email: string
		  - window: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	RecordFailure(context context.Context, email string, window time.Duration) error

	/*
		Reset clears the counter after a successful login.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - error: Persistence failures
	*/
	Reset(context context.Context, email string) error
}
