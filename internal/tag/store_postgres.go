// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package tag

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/database/schema"
	"github.com/tranquangduy/midgard/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed tag store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Schema definition shorthands used by this store.
var (
	tagTable       = schema.RosterTag
	characterTable = schema.RosterCharacter
)

/*
FindByID retrieves a single tag record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Tag: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`, tagTable.ID, tagTable.GuildID, tagTable.Name, tagTable.IsReserve,
		tagTable.CreatedAt, tagTable.UpdatedAt, tagTable.Table, tagTable.ID)

	tag := &Tag{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&tag.ID, &tag.GuildID, &tag.Name, &tag.IsReserve, &tag.CreatedAt, &tag.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_tag_by_id")
	}
	return tag, nil
}

/*
ListByGuild returns all tags belonging to a guild.

Parameters:
  - context: context.Context
  - guildID: string

Returns:
  - []*Tag: Tags ordered by name
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByGuild(context context.Context, guildID string) ([]*Tag, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`, tagTable.ID, tagTable.GuildID, tagTable.Name, tagTable.IsReserve,
		tagTable.CreatedAt, tagTable.UpdatedAt, tagTable.Table, tagTable.GuildID, tagTable.Name)

	rows, err := repository.db.Query(context, query, guildID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_guild_tags")
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag := &Tag{}
		err := rows.Scan(&tag.ID, &tag.GuildID, &tag.Name, &tag.IsReserve, &tag.CreatedAt, &tag.UpdatedAt)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_tag")
		}
		tags = append(tags, tag)
	}

	return tags, nil
}

/*
Create inserts a new tag record.

Parameters:
  - context: context.Context
  - tag: *Tag

Returns:
  - error: Retryable Conflict on duplicate (guild, name)
*/
func (repository *PostgresRepository) Create(context context.Context, tag *Tag) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s
	`, tagTable.Table, tagTable.ID, tagTable.GuildID, tagTable.Name, tagTable.IsReserve,
		tagTable.CreatedAt, tagTable.UpdatedAt, tagTable.CreatedAt, tagTable.UpdatedAt)

	err := repository.db.QueryRow(context, query,
		tag.ID, tag.GuildID, tag.Name, tag.IsReserve,
	).Scan(&tag.CreatedAt, &tag.UpdatedAt)

	return dberr.Wrap(err, "create_tag")
}

/*
Rename updates a tag's name.

Parameters:
  - context: context.Context
  - id: string
  - name: string

Returns:
  - error: Retryable Conflict on duplicate, ErrNotFound if missing
*/
func (repository *PostgresRepository) Rename(context context.Context, id, name string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NOW()
		WHERE %s = $1
	`, tagTable.Table, tagTable.Name, tagTable.UpdatedAt, tagTable.ID)

	result, err := repository.db.Exec(context, query, id, name)
	if err != nil {
		return dberr.Wrap(err, "rename_tag")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
SetReserve updates a tag's reserve flag.

Parameters:
  - context: context.Context
  - id: string
  - isReserve: bool

Returns:
  - error: ErrNotFound if missing
*/
func (repository *PostgresRepository) SetReserve(context context.Context, id string, isReserve bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NOW()
		WHERE %s = $1
	`, tagTable.Table, tagTable.IsReserve, tagTable.UpdatedAt, tagTable.ID)

	result, err := repository.db.Exec(context, query, id, isReserve)
	if err != nil {
		return dberr.Wrap(err, "set_tag_reserve")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
DeleteIfUnused removes a tag unless characters still reference it.

Description: Executes within an ACID transaction.
1. Counts referencing characters inside the transaction.
2. Deletes the tag only when the count is zero.
A character created concurrently either blocks on the row or commits first
and flips the count, so the delete can never orphan a character's tag.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: InvalidState if characters reference the tag
*/
func (repository *PostgresRepository) DeleteIfUnused(context context.Context, id string) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_delete_tag_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Reference Count Re-check
	var referencing int
	err = transaction.QueryRow(context,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, characterTable.Table, characterTable.TagID), id,
	).Scan(&referencing)
	if err != nil {
		return dberr.Wrap(err, "count_tag_characters")
	}
	if referencing > 0 {
		return apperr.InvalidState("Tag is still referenced by characters")
	}

	// Step 2: Remove Tag
	result, err := transaction.Exec(context,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, tagTable.Table, tagTable.ID), id,
	)
	if err != nil {
		return dberr.Wrap(err, "delete_tag")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return transaction.Commit(context)
}
