// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the SecurePass database.
//
// Repositories build their SQL from these definitions so a column rename is a
// one-line change here plus a migration.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Name         string
	Email        string
	PasswordHash string
	GoogleID     string
	CreatedAt    string
	UpdatedAt    string

	// Constraint names raised on unique violations.
	EmailKey    string
	GoogleIDKey string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Name:         "name",
	Email:        "email",
	PasswordHash: "passwordhash",
	GoogleID:     "googleid",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",

	EmailKey:    "account_email_key",
	GoogleIDKey: "account_googleid_key",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Name, t.Email, t.PasswordHash, t.GoogleID, t.CreatedAt, t.UpdatedAt,
	}
}
