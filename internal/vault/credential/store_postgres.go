// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/securepass/internal/platform/database/schema"
	"github.com/taibuivan/securepass/internal/platform/dberr"
)

// # Credential Repository

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

var (
	credentialColumns = strings.Join(schema.VaultCredential.Columns(), ", ")
	summaryColumns    = strings.Join(schema.VaultCredential.SummaryColumns(), ", ")
)

// wrap maps storage errors, turning no-rows and invalid-uuid input into [ErrCredentialNotFound].
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrCredentialNotFound
	}
	return dberr.Wrap(err, "Credential")
}

/*
List returns the owner's credentials without envelopes, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []*Credential: Possibly empty, never nil
  - error: Database failures
*/
func (repository *PostgresRepository) List(context context.Context, userID string) ([]*Credential, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s DESC, %s DESC`,
		summaryColumns,
		schema.VaultCredential.Table,
		schema.VaultCredential.UserID,
		schema.VaultCredential.CreatedAt, schema.VaultCredential.ID,
	)

	rows, err := repository.pool.Query(context, query, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_credential_repo_list_failed: %w", wrap(err))
	}
	defer rows.Close()

	credentials := []*Credential{}
	for rows.Next() {
		credential := &Credential{}
		if err := rows.Scan(
			&credential.ID,
			&credential.UserID,
			&credential.Site,
			&credential.Username,
			&credential.Category,
			&credential.Notes,
			&credential.CreatedAt,
			&credential.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres_credential_repo_scan_failed: %w", wrap(err))
		}
		credentials = append(credentials, credential)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_credential_repo_list_failed: %w", wrap(err))
	}

	return credentials, nil
}

/*
FindByID returns one owned credential including its envelope.

Parameters:
  - context: context.Context
  - userID: string (Owner)
  - id: string

Returns:
  - *Credential: Hydrated entity
  - error: ErrCredentialNotFound or database failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, userID, id string) (*Credential, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND %s = $2`,
		credentialColumns,
		schema.VaultCredential.Table,
		schema.VaultCredential.ID, schema.VaultCredential.UserID,
	)

	credential := &Credential{}
	err := repository.pool.QueryRow(context, query, id, userID).Scan(
		&credential.ID,
		&credential.UserID,
		&credential.Site,
		&credential.Username,
		&credential.EncryptedPassword,
		&credential.Category,
		&credential.Notes,
		&credential.CreatedAt,
		&credential.UpdatedAt,
	)
	if err != nil {
		return nil, wrap(err)
	}

	return credential, nil
}

/*
Create persists a new credential into vault.credential.

Parameters:
  - context: context.Context
  - credential: *Credential (ID and UserID already set)

Returns:
  - error: Database failures
*/
func (repository *PostgresRepository) Create(context context.Context, credential *Credential) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		RETURNING %s, %s`,
		schema.VaultCredential.Table, credentialColumns,
		schema.VaultCredential.CreatedAt, schema.VaultCredential.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		credential.ID,
		credential.UserID,
		credential.Site,
		credential.Username,
		credential.EncryptedPassword,
		credential.Category,
		credential.Notes,
	).Scan(&credential.CreatedAt, &credential.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres_credential_repo_create_failed: %w", wrap(err))
	}

	return nil
}

/*
Update overwrites the mutable fields of an owned credential.

Parameters:
  - context: context.Context
  - credential: *Credential (ID and UserID identify the row)

Returns:
  - error: ErrCredentialNotFound or database failures
*/
func (repository *PostgresRepository) Update(context context.Context, credential *Credential) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = now()
		WHERE %s = $1 AND %s = $2
		RETURNING %s`,
		schema.VaultCredential.Table,
		schema.VaultCredential.Site,
		schema.VaultCredential.Username,
		schema.VaultCredential.EncryptedPassword,
		schema.VaultCredential.Category,
		schema.VaultCredential.Notes,
		schema.VaultCredential.UpdatedAt,
		schema.VaultCredential.ID, schema.VaultCredential.UserID,
		schema.VaultCredential.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		credential.ID,
		credential.UserID,
		credential.Site,
		credential.Username,
		credential.EncryptedPassword,
		credential.Category,
		credential.Notes,
	).Scan(&credential.UpdatedAt)
	if err != nil {
		return wrap(err)
	}

	return nil
}

/*
Delete removes an owned credential.

Parameters:
  - context: context.Context
  - userID: string (Owner)
  - id: string

Returns:
  - error: ErrCredentialNotFound or database failures
*/
func (repository *PostgresRepository) Delete(context context.Context, userID, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		schema.VaultCredential.Table,
		schema.VaultCredential.ID, schema.VaultCredential.UserID,
	)

	tag, err := repository.pool.Exec(context, query, id, userID)
	if err != nil {
		return fmt.Errorf("postgres_credential_repo_delete_failed: %w", wrap(err))
	}

	if tag.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}

	return nil
}
