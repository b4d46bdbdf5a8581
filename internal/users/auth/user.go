// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account identity for SecurePass.

It covers email/password registration and login, Google sign-in, browser
sessions and bearer-token issuance. Every path ends in the same
[sec.AuthenticatedUser] so the vault never needs to know how a caller signed in.
*/
package auth

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// # Domain Entities

// User represents a SecurePass account holder.
//
// PasswordHash is nil for accounts created through Google sign-in. GoogleID is
// nil until the account is linked to a Google identity.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash *string
	GoogleID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-safe projection of a [User].
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public returns the client-safe view of the user.
func (user *User) Public() PublicUser {
	return PublicUser{ID: user.ID, Name: user.Name, Email: user.Email}
}

// AuthResult is the body returned by register, login and token exchange.
type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// OAuthProfile is the identity an external provider vouches for.
type OAuthProfile struct {
	ProviderID  string
	DisplayName string
	Email       string
}

// # Normalization

// NormalizeEmail trims and case-folds an address so lookups match regardless of case.
//
// A [cases.Caser] carries state, so one is built per call.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}

// # Field Identifiers

const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
)
