// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// # Account Password Hashing

const (
	// PasswordCost is the bcrypt work factor for account passwords.
	PasswordCost = bcrypt.DefaultCost

	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// ErrPasswordTooLong is returned for passwords bcrypt would refuse.
var ErrPasswordTooLong = errors.New("sec: password exceeds 72 bytes")

// HashPassword salts and hashes an account password. Vault entries are never
// hashed; they go through [CredentialCipher] instead.
func HashPassword(plainTextPassword string) (string, error) {
	if len(plainTextPassword) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether plainTextPassword matches existingHash.
// Malformed hashes and over-long inputs never match.
func CheckPasswordHash(plainTextPassword, existingHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword)) == nil
}
