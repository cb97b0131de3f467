// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package party

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

// NewPostgresRepository constructs a PostgreSQL backed party store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Schema definition shorthands used by this store. Slots live on the
// character table as its party column.
var (
	partyTable = schema.RosterParty
	slotTable  = schema.RosterCharacter
)

// # Party Retrieval

/*
FindByID retrieves a party by UUID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Party: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Party, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`, partyTable.ID, partyTable.GuildID, partyTable.LeaderID, partyTable.Name,
		partyTable.CreatedAt, partyTable.UpdatedAt, partyTable.Table, partyTable.ID)

	return repository.scanParty(repository.db.QueryRow(context, query, id), "get_party_by_id")
}

/*
FindByLeader retrieves the party a user currently leads.

Parameters:
  - context: context.Context
  - leaderID: string

Returns:
  - *Party: The led party
  - error: ErrNotFound when the user leads nothing
*/
func (repository *PostgresRepository) FindByLeader(context context.Context, leaderID string) (*Party, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`, partyTable.ID, partyTable.GuildID, partyTable.LeaderID, partyTable.Name,
		partyTable.CreatedAt, partyTable.UpdatedAt, partyTable.Table, partyTable.LeaderID)

	return repository.scanParty(repository.db.QueryRow(context, query, leaderID), "get_party_by_leader")
}

/*
ListByGuild returns all parties of a guild ordered by name.

Parameters:
  - context: context.Context
  - guildID: string

Returns:
  - []*Party: Parties ordered by name
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListByGuild(context context.Context, guildID string) ([]*Party, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`, partyTable.ID, partyTable.GuildID, partyTable.LeaderID, partyTable.Name,
		partyTable.CreatedAt, partyTable.UpdatedAt, partyTable.Table, partyTable.GuildID, partyTable.Name)

	rows, err := repository.db.Query(context, query, guildID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_parties")
	}
	defer rows.Close()

	var parties []*Party
	for rows.Next() {
		party := &Party{}
		err := rows.Scan(
			&party.ID, &party.GuildID, &party.LeaderID,
			&party.Name, &party.CreatedAt, &party.UpdatedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_party")
		}
		parties = append(parties, party)
	}

	return parties, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanParty hydrates a single party row.
func (repository *PostgresRepository) scanParty(row rowScanner, action string) (*Party, error) {
	party := &Party{}
	err := row.Scan(
		&party.ID, &party.GuildID, &party.LeaderID,
		&party.Name, &party.CreatedAt, &party.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return party, nil
}

// # Party Mutation

/*
Create inserts a new party record.

Description: The unique index on leaderid and the per-guild name index turn
concurrent duplicates into retryable conflicts.

Parameters:
  - context: context.Context
  - party: *Party

Returns:
  - error: Retryable Conflict on duplicate name or leadership
*/
func (repository *PostgresRepository) Create(context context.Context, party *Party) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING %s, %s
	`, partyTable.Table, partyTable.ID, partyTable.GuildID, partyTable.LeaderID, partyTable.Name,
		partyTable.CreatedAt, partyTable.UpdatedAt, partyTable.CreatedAt, partyTable.UpdatedAt)

	err := repository.db.QueryRow(context, query,
		party.ID, party.GuildID, party.LeaderID, party.Name,
	).Scan(&party.CreatedAt, &party.UpdatedAt)

	return dberr.Wrap(err, "create_party")
}

/*
TransferLeadership reassigns the party's leader.

Parameters:
  - context: context.Context
  - partyID: string
  - newLeaderID: string

Returns:
  - error: Retryable Conflict when the new leader already leads a party
*/
func (repository *PostgresRepository) TransferLeadership(context context.Context, partyID, newLeaderID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = NOW()
		WHERE %s = $1
	`, partyTable.Table, partyTable.LeaderID, partyTable.UpdatedAt, partyTable.ID)

	result, err := repository.db.Exec(context, query, partyID, newLeaderID)
	if err != nil {
		return dberr.Wrap(err, "transfer_party_leadership")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Slot Implementation

/*
AddCharacter seats a character in the party.

Description: The UPDATE is conditional on the slot being empty or already
this party. A zero row count after a successful existence check means a
concurrent writer seated the character elsewhere first.

Parameters:
  - context: context.Context
  - partyID: string
  - characterID: string

Returns:
  - error: InvalidState when the character sits in another party
*/
func (repository *PostgresRepository) AddCharacter(context context.Context, partyID, characterID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1, %s = NOW()
		WHERE %s = $2 AND (%s IS NULL OR %s = $1)
	`, slotTable.Table, slotTable.PartyID, slotTable.UpdatedAt,
		slotTable.ID, slotTable.PartyID, slotTable.PartyID)

	result, err := repository.db.Exec(context, query, partyID, characterID)
	if err != nil {
		return dberr.Wrap(err, "add_party_character")
	}
	if result.RowsAffected() == 0 {
		return apperr.InvalidState("Character already belongs to another party; remove it first")
	}
	return nil
}

/*
RemoveCharacter vacates a character's slot in the party.

Parameters:
  - context: context.Context
  - partyID: string
  - characterID: string

Returns:
  - error: ErrNotFound when the character is not in this party
*/
func (repository *PostgresRepository) RemoveCharacter(context context.Context, partyID, characterID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = NULL, %s = NOW()
		WHERE %s = $2 AND %s = $1
	`, slotTable.Table, slotTable.PartyID, slotTable.UpdatedAt, slotTable.ID, slotTable.PartyID)

	result, err := repository.db.Exec(context, query, partyID, characterID)
	if err != nil {
		return dberr.Wrap(err, "remove_party_character")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

/*
ListSlots returns the characters seated in a party ordered by name.

Parameters:
  - context: context.Context
  - partyID: string

Returns:
  - []*Slot: Occupied slots
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListSlots(context context.Context, partyID string) ([]*Slot, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`, slotTable.ID, slotTable.OwnerID, slotTable.TagID, slotTable.Name,
		slotTable.Table, slotTable.PartyID, slotTable.Name)

	rows, err := repository.db.Query(context, query, partyID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_party_slots")
	}
	defer rows.Close()

	var slots []*Slot
	for rows.Next() {
		slot := &Slot{}
		if err := rows.Scan(&slot.CharacterID, &slot.OwnerID, &slot.TagID, &slot.Name); err != nil {
			return nil, dberr.Wrap(err, "scan_party_slot")
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

/*
Disband clears all member slots and deletes the party in one transaction.

Description: Executes within an ACID transaction.
1. Vacates every character slot referencing the party.
2. Deletes the party row.
Roll back completely if any stage fails so no character points at a deleted
party.

Parameters:
  - context: context.Context
  - partyID: string

Returns:
  - error: ErrNotFound if missing
*/
func (repository *PostgresRepository) Disband(context context.Context, partyID string) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_disband_party_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Vacate Member Slots
	_, err = transaction.Exec(context,
		fmt.Sprintf(`UPDATE %s SET %s = NULL, %s = NOW() WHERE %s = $1`,
			slotTable.Table, slotTable.PartyID, slotTable.UpdatedAt, slotTable.PartyID),
		partyID,
	)
	if err != nil {
		return dberr.Wrap(err, "clear_party_slots")
	}

	// Step 2: Remove Party
	result, err := transaction.Exec(context,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, partyTable.Table, partyTable.ID), partyID,
	)
	if err != nil {
		return dberr.Wrap(err, "delete_party")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return transaction.Commit(context)
}
