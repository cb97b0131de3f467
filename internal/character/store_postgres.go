// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package character

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

// NewPostgresRepository constructs a PostgreSQL backed character store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Schema definition shorthands used by this store.
var (
	characterTable = schema.RosterCharacter
	roleTable      = schema.RosterCharacterRole
)

// # Character Retrieval

/*
FindByID retrieves a character and its role set.

Description: Roles are aggregated in one round trip via ARRAY_AGG; an empty
set comes back as an empty slice, not NULL.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Character: Hydrated entity with roles
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Character, error) {
	query := fmt.Sprintf(`
		SELECT
			c.%s, c.%s, c.%s, c.%s, c.%s, c.%s, c.%s,
			COALESCE(ARRAY_AGG(r.%s ORDER BY r.%s) FILTER (WHERE r.%s IS NOT NULL), '{}') AS roles
		FROM %s c
		LEFT JOIN %s r ON r.%s = c.%s
		WHERE c.%s = $1
		GROUP BY c.%s
	`, characterTable.ID, characterTable.OwnerID, characterTable.TagID, characterTable.PartyID,
		characterTable.Name, characterTable.CreatedAt, characterTable.UpdatedAt,
		roleTable.Role, roleTable.Role, roleTable.Role,
		characterTable.Table, roleTable.Table, roleTable.CharacterID, characterTable.ID,
		characterTable.ID, characterTable.ID)

	character := &Character{}
	var roles []string
	err := repository.db.QueryRow(context, query, id).Scan(
		&character.ID, &character.OwnerID, &character.TagID, &character.PartyID,
		&character.Name, &character.CreatedAt, &character.UpdatedAt, &roles,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_character_by_id")
	}

	for _, role := range roles {
		character.Roles = append(character.Roles, Role(role))
	}
	return character, nil
}

/*
ListByOwner returns all characters owned by a user.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - []*Character: Characters ordered by name
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByOwner(context context.Context, ownerID string) ([]*Character, error) {
	return repository.queryCharacters(context, characterTable.OwnerID, ownerID)
}

/*
ListByTag returns all characters under a tag.

Parameters:
  - context: context.Context
  - tagID: string

Returns:
  - []*Character: Characters ordered by name
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByTag(context context.Context, tagID string) ([]*Character, error) {
	return repository.queryCharacters(context, characterTable.TagID, tagID)
}

// queryCharacters runs a character listing filtered on one column.
func (repository *PostgresRepository) queryCharacters(context context.Context, column, arg string) ([]*Character, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`, characterTable.ID, characterTable.OwnerID, characterTable.TagID, characterTable.PartyID,
		characterTable.Name, characterTable.CreatedAt, characterTable.UpdatedAt,
		characterTable.Table, column, characterTable.Name)

	rows, err := repository.db.Query(context, query, arg)
	if err != nil {
		return nil, dberr.Wrap(err, "list_characters")
	}
	defer rows.Close()

	var characters []*Character
	for rows.Next() {
		character := &Character{}
		err := rows.Scan(
			&character.ID, &character.OwnerID, &character.TagID, &character.PartyID,
			&character.Name, &character.CreatedAt, &character.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_character")
		}
		characters = append(characters, character)
	}

	return characters, nil
}

// # Character Mutation

/*
Create inserts a new character record.

Parameters:
  - context: context.Context
  - character: *Character

Returns:
  - error: Retryable Conflict on duplicate name
*/
func (repository *PostgresRepository) Create(context context.Context, character *Character) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s
	`, characterTable.Table, characterTable.ID, characterTable.OwnerID, characterTable.TagID,
		characterTable.Name, characterTable.CreatedAt, characterTable.UpdatedAt,
		characterTable.CreatedAt, characterTable.UpdatedAt)

	err := repository.db.QueryRow(context, query,
		character.ID, character.OwnerID, character.TagID, character.Name,
	).Scan(&character.CreatedAt, &character.UpdatedAt)

	return dberr.Wrap(err, "create_character")
}

/*
UpdateTag moves a character to another tag.

Parameters:
  - context: context.Context
  - id: string
  - tagID: string

Returns:
  - error: ErrNotFound if missing
*/
func (repository *PostgresRepository) UpdateTag(context context.Context, id, tagID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NOW()
		WHERE %s = $1
	`, characterTable.Table, characterTable.TagID, characterTable.UpdatedAt, characterTable.ID)

	result, err := repository.db.Exec(context, query, id, tagID)
	if err != nil {
		return dberr.Wrap(err, "reassign_character_tag")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Role Implementation

/*
AssignRole adds a role marker; re-adding a held role is a silent no-op.

Description: The conflict target is the composite primary key only. A
violation of the partial unique index on the exclusive pair must NOT be
swallowed — it means a concurrent grant won the race for WOE/WOE_TE, and the
caller gets a retryable conflict.

Parameters:
  - context: context.Context
  - characterID: string
  - role: Role

Returns:
  - error: Retryable Conflict when a concurrent exclusive grant won
*/
func (repository *PostgresRepository) AssignRole(context context.Context, characterID string, role Role) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s)
		VALUES ($1, $2, NOW())
		ON CONFLICT (%s, %s) DO NOTHING
	`, roleTable.Table, roleTable.CharacterID, roleTable.Role, roleTable.AssignedAt,
		roleTable.CharacterID, roleTable.Role)

	_, err := repository.db.Exec(context, query, characterID, role)
	return dberr.Wrap(err, "assign_character_role")
}

/*
ReplaceExclusiveRole atomically swaps one exclusive role for the other.

Description: Executes within an ACID transaction.
1. Removes the currently held exclusive role.
2. Inserts the replacement.
Roll back completely if any stage fails so the character never ends up with
both or neither of the exclusive pair. A concurrent grant that lands between
the delete and the insert trips the partial unique index on the exclusive
pair and surfaces as a retryable conflict.

Parameters:
  - context: context.Context
  - characterID: string
  - oldRole: Role
  - newRole: Role

Returns:
  - error: Transactional or database failures
*/
func (repository *PostgresRepository) ReplaceExclusiveRole(context context.Context, characterID string, oldRole, newRole Role) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_replace_role_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Remove Held Exclusive Role
	_, err = transaction.Exec(context,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
			roleTable.Table, roleTable.CharacterID, roleTable.Role),
		characterID, oldRole,
	)
	if err != nil {
		return dberr.Wrap(err, "remove_exclusive_role")
	}

	// Step 2: Insert Replacement
	_, err = transaction.Exec(context,
		fmt.Sprintf(`INSERT INTO %s (%s, %s, %s) VALUES ($1, $2, NOW())`,
			roleTable.Table, roleTable.CharacterID, roleTable.Role, roleTable.AssignedAt),
		characterID, newRole,
	)
	if err != nil {
		return dberr.Wrap(err, "insert_replacement_role")
	}

	return transaction.Commit(context)
}

/*
RemoveRole deletes a role marker from a character.

Parameters:
  - context: context.Context
  - characterID: string
  - role: Role

Returns:
  - error: ErrNotFound if the role is not held
*/
func (repository *PostgresRepository) RemoveRole(context context.Context, characterID string, role Role) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
		roleTable.Table, roleTable.CharacterID, roleTable.Role)

	result, err := repository.db.Exec(context, query, characterID, role)
	if err != nil {
		return dberr.Wrap(err, "remove_character_role")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
Delete removes a character and its role rows in one transaction.

Description: The role cascade is an explicit ordered statement rather than a
database-level cascade so the sequencing stays auditable. The party slot is a
column on the character row and disappears with it.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: ErrNotFound if missing
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_delete_character_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Cascade Role Rows
	_, err = transaction.Exec(context,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, roleTable.Table, roleTable.CharacterID), id,
	)
	if err != nil {
		return dberr.Wrap(err, "delete_character_roles")
	}

	// Step 2: Remove Character
	result, err := transaction.Exec(context,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, characterTable.Table, characterTable.ID), id,
	)
	if err != nil {
		return dberr.Wrap(err, "delete_character")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return transaction.Commit(context)
}
