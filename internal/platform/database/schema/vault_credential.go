// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// VaultCredentialTable represents the 'vault.credential' table
type VaultCredentialTable struct {
	Table             string
	ID                string
	UserID            string
	Site              string
	Username          string
	EncryptedPassword string
	Category          string
	Notes             string
	CreatedAt         string
	UpdatedAt         string
}

// VaultCredential is the schema definition for vault.credential
var VaultCredential = VaultCredentialTable{
	Table:             "vault.credential",
	ID:                "id",
	UserID:            "userid",
	Site:              "site",
	Username:          "username",
	EncryptedPassword: "encryptedpassword",
	Category:          "category",
	Notes:             "notes",
	CreatedAt:         "createdat",
	UpdatedAt:         "updatedat",
}

// Columns returns all standard column names
func (t VaultCredentialTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.Site, t.Username, t.EncryptedPassword,
		t.Category, t.Notes, t.CreatedAt, t.UpdatedAt,
	}
}

// SummaryColumns returns every column except the encrypted password.
func (t VaultCredentialTable) SummaryColumns() []string {
	return []string{
		t.ID, t.UserID, t.Site, t.Username,
		t.Category, t.Notes, t.CreatedAt, t.UpdatedAt,
	}
}
