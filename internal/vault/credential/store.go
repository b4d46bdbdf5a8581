// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import "context"

// Repository defines the data access contract for vault credentials.
//
// Every method takes the owner's id. Rows owned by another user are reported
// as [ErrCredentialNotFound].
type Repository interface {

	// List returns the owner's credentials, newest first. EncryptedPassword is
	// left empty.
	List(context context.Context, userID string) ([]*Credential, error)

	// FindByID returns one credential including its envelope.
	FindByID(context context.Context, userID, id string) (*Credential, error)

	// Create persists a new credential. CreatedAt and UpdatedAt are set from the store.
	Create(context context.Context, credential *Credential) error

	// Update overwrites the mutable fields and refreshes UpdatedAt.
	Update(context context.Context, credential *Credential) error

	// Delete removes the credential.
	Delete(context context.Context, userID, id string) error
}
