// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package identity

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tranquangduy/midgard/internal/platform/database/schema"
	"github.com/tranquangduy/midgard/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed user store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// account is the schema definition shorthand used by this store.
var account = schema.UserAccount

/*
FindByID retrieves a single user record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`, account.ID, account.ExternalID, account.Name, account.Email, account.Contact,
		account.Age, account.CreatedAt, account.UpdatedAt, account.Table, account.ID)

	user := &User{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&user.ID, &user.ExternalID, &user.Name, &user.Email, &user.Contact,
		&user.Age, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_user_by_id")
	}
	return user, nil
}

/*
FindByExternalID retrieves a user record by the provider-scoped identity.

Parameters:
  - context: context.Context
  - externalID: string

Returns:
  - *User: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByExternalID(context context.Context, externalID string) (*User, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`, account.ID, account.ExternalID, account.Name, account.Email, account.Contact,
		account.Age, account.CreatedAt, account.UpdatedAt, account.Table, account.ExternalID)

	user := &User{}
	err := repository.db.QueryRow(context, query, externalID).Scan(
		&user.ID, &user.ExternalID, &user.Name, &user.Email, &user.Contact,
		&user.Age, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_user_by_external_id")
	}
	return user, nil
}

/*
Upsert inserts or refreshes a user record keyed by external id.

Description: ON CONFLICT keeps the original internal id stable while the
profile fields track the latest token claims. RETURNING hydrates the caller's
struct with the canonical row, so a lost insert race still resolves to the
winner's internal id.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Upsert(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = NOW()
		RETURNING %s, %s, %s
	`, account.Table,
		account.ID, account.ExternalID, account.Name, account.Email, account.Contact, account.Age, account.CreatedAt, account.UpdatedAt,
		account.ExternalID,
		account.Name, account.Name,
		account.Email, account.Email,
		account.Contact, account.Contact,
		account.Age, account.Age,
		account.UpdatedAt,
		account.ID, account.CreatedAt, account.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		user.ID, user.ExternalID, user.Name, user.Email, user.Contact, user.Age,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	return dberr.Wrap(err, "upsert_user")
}
