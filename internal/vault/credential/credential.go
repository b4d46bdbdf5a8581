// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package credential implements the password vault.

Each credential belongs to exactly one user and stores the site password as an
encrypted envelope. Plaintext only exists in memory while a single credential
is being created, updated or read back.

# Ownership

Every repository method is scoped by owner. A credential owned by someone else
is indistinguishable from one that does not exist.
*/
package credential

import "time"

// # Domain Entities

// Category groups credentials in the client UI.
type Category string

const (
	CategoryGeneral Category = "general"
	CategorySocial  Category = "social"
	CategoryBanking Category = "banking"
	CategoryEmail   Category = "email"
	CategoryWork    Category = "work"
	CategoryOther   Category = "other"
)

// Categories lists every accepted category, default first.
var Categories = []Category{
	CategoryGeneral, CategorySocial, CategoryBanking,
	CategoryEmail, CategoryWork, CategoryOther,
}

// Credential is a stored login. EncryptedPassword is the cipher envelope.
type Credential struct {
	ID                string
	UserID            string
	Site              string
	Username          string
	EncryptedPassword string
	Category          Category
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Summary is the client view of a credential without its password.
//
// The id is emitted as "_id" for compatibility with existing clients.
type Summary struct {
	ID        string    `json:"_id"`
	Site      string    `json:"site"`
	Username  string    `json:"username"`
	Category  Category  `json:"category"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Detail is a [Summary] carrying the decrypted password.
type Detail struct {
	ID        string    `json:"_id"`
	Site      string    `json:"site"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Category  Category  `json:"category"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Summary returns the password-free view.
func (credential *Credential) Summary() Summary {
	return Summary{
		ID:        credential.ID,
		Site:      credential.Site,
		Username:  credential.Username,
		Category:  credential.Category,
		Notes:     credential.Notes,
		CreatedAt: credential.CreatedAt,
		UpdatedAt: credential.UpdatedAt,
	}
}

// Detail returns the view with the given plaintext password.
func (credential *Credential) Detail(password string) Detail {
	return Detail{
		ID:        credential.ID,
		Site:      credential.Site,
		Username:  credential.Username,
		Password:  password,
		Category:  credential.Category,
		Notes:     credential.Notes,
		CreatedAt: credential.CreatedAt,
		UpdatedAt: credential.UpdatedAt,
	}
}

// # Field Identifiers

const (
	FieldSite     = "site"
	FieldUsername = "username"
	FieldPassword = "password"
	FieldCategory = "category"
	FieldNotes    = "notes"
)

// # Messages

const (
	msgRequired   = "Site, username, and password are required"
	msgCategory   = "Invalid category"
	msgFieldLong  = "Field is too long"
	msgDecryption = "Error decrypting password"
	msgDeleted    = "Credential deleted successfully"
)

// Length caps, in characters.
const (
	MaxSiteLength     = 255
	MaxUsernameLength = 255
	MaxPasswordLength = 1024
	MaxNotesLength    = 4096
)
