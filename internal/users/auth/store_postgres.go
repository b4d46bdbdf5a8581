// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

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

// # User Repository

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var userColumns = strings.Join(schema.UserAccount.Columns(), ", ")

// scanUser hydrates a [User] in [schema.UserAccountTable.Columns] order.
func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.GoogleID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

/*
Create persists a new user record into the users.account table.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: ErrDuplicateAccount on the email constraint, or connectivity errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING %s, %s`,
		schema.UserAccount.Table, userColumns,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.GoogleID,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if dberr.IsUniqueViolation(err, schema.UserAccount.EmailKey) {
			return ErrDuplicateAccount
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", dberr.Wrap(err, "User"))
	}

	return nil
}

/*
FindByID retrieves a user by primary key.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *User: Hydrated identity entity
  - error: ErrUserNotFound or database execution failure
*/
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.UserAccount.Table, schema.UserAccount.ID,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_id_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmail retrieves a user by normalized email.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated identity entity
  - error: ErrUserNotFound or database execution failure
*/
func (repository *PostgresUserRepository) FindByEmail(context context.Context, email string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		userColumns, schema.UserAccount.Table, schema.UserAccount.Email,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_failed: %w", err)
	}

	return user, nil
}

/*
FindByEmailOrProviderID retrieves the account linked to a Google id, falling
back to the one registered under the email.

Description: When both match different rows the provider-linked row wins.

Parameters:
  - context: context.Context
  - email: string
  - providerID: string

Returns:
  - *User: Hydrated identity entity
  - error: ErrUserNotFound or database execution failure
*/
func (repository *PostgresUserRepository) FindByEmailOrProviderID(context context.Context, email, providerID string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE %s = $2 OR %s = $1
		ORDER BY (%s = $2) DESC NULLS LAST
		LIMIT 1`,
		userColumns, schema.UserAccount.Table,
		schema.UserAccount.GoogleID, schema.UserAccount.Email,
		schema.UserAccount.GoogleID,
	)

	user, err := scanUser(repository.pool.QueryRow(context, query, email, providerID))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("postgres_user_repo_find_by_email_or_provider_failed: %w", err)
	}

	return user, nil
}

/*
LinkProvider attaches a Google id to an account that has none.

Description: A single conditional UPDATE, so concurrent callbacks for the same
account cannot overwrite each other.

Parameters:
  - context: context.Context
  - userID: string
  - providerID: string

Returns:
  - error: Execution errors
*/
func (repository *PostgresUserRepository) LinkProvider(context context.Context, userID, providerID string) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = now()
		WHERE %s = $1 AND %s IS NULL`,
		schema.UserAccount.Table,
		schema.UserAccount.GoogleID, schema.UserAccount.UpdatedAt,
		schema.UserAccount.ID, schema.UserAccount.GoogleID,
	)

	if _, err := repository.pool.Exec(context, query, userID, providerID); err != nil {
		return fmt.Errorf("postgres_user_repo_link_provider_failed: %w", dberr.Wrap(err, "User"))
	}

	return nil
}
