// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"

	"github.com/taibuivan/securepass/internal/platform/apperr"
)

// # Domain Errors

var (
	// ErrInvalidCredentials covers unknown email, wrong password and
	// password login on a Google-only account. The three are indistinguishable.
	ErrInvalidCredentials = apperr.New("INVALID_CREDENTIALS", "Invalid credentials", http.StatusBadRequest)

	// ErrDuplicateAccount is returned when the email is already registered.
	ErrDuplicateAccount = apperr.New("DUPLICATE_ACCOUNT", "User already exists", http.StatusBadRequest)

	// ErrUserNotFound is returned by repositories when no account matches.
	ErrUserNotFound = apperr.NotFound("User")
)

// AuthProviderError wraps a failure of the Google sign-in flow.
func AuthProviderError(cause error) *apperr.AppError {
	return &apperr.AppError{
		Code:       "AUTH_PROVIDER_ERROR",
		Message:    "Authentication with the identity provider failed",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}
