// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package party

import (
	"context"

	"github.com/tranquangduy/midgard/internal/character"
	"github.com/tranquangduy/midgard/internal/guild"
)

// # Party Data Access

// Repository defines the data access contract for parties and their slots.
type Repository interface {

	/*
		FindByID retrieves a party by UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Party: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Party, error)

	/*
		FindByLeader retrieves the party a user currently leads, if any.

		Parameters:
		  - context: context.Context
		  - leaderID: string

		Returns:
		  - *Party: The led party
		  - error: ErrNotFound when the user leads nothing
	*/
	FindByLeader(context context.Context, leaderID string) (*Party, error)

	/*
		ListByGuild returns all parties of a guild.

		Parameters:
		  - context: context.Context
		  - guildID: string

		Returns:
		  - []*Party: Parties ordered by name
		  - error: Retrieval failures
	*/
	ListByGuild(context context.Context, guildID string) ([]*Party, error)

	/*
		Create persists a new party.

		Description: Two unique indexes backstop the service pre-checks — one
		on the leader column (a user leads at most one party system-wide) and
		one on the lowercased name per guild. A losing racer surfaces as a
		retryable conflict.

		Parameters:
		  - context: context.Context
		  - party: *Party

		Returns:
		  - error: Conflict on duplicate name or duplicate leadership
	*/
	Create(context context.Context, party *Party) error

	/*
		TransferLeadership reassigns the party's leader.

		Description: The unique leader index re-validates the one-party-per-
		leader invariant at commit, so a race between two transfers to the
		same user resolves to exactly one winner.

		Parameters:
		  - context: context.Context
		  - partyID: string
		  - newLeaderID: string

		Returns:
		  - error: Conflict when the new leader already leads a party
	*/
	TransferLeadership(context context.Context, partyID, newLeaderID string) error

	/*
		AddCharacter seats a character in the party.

		Description: The slot write is conditional — it only succeeds while
		the character's slot is empty (or already this party), so a concurrent
		add to another party cannot double-book the character.

		Parameters:
		  - context: context.Context
		  - partyID: string
		  - characterID: string

		Returns:
		  - error: InvalidState when the character sits in another party
	*/
	AddCharacter(context context.Context, partyID, characterID string) error

	/*
		RemoveCharacter vacates a character's slot in the party.

		Parameters:
		  - context: context.Context
		  - partyID: string
		  - characterID: string

		Returns:
		  - error: ErrNotFound when the character is not in this party
	*/
	RemoveCharacter(context context.Context, partyID, characterID string) error

	/*
		ListSlots returns the characters currently seated in the party.

		Parameters:
		  - context: context.Context
		  - partyID: string

		Returns:
		  - []*Slot: Occupied slots ordered by character name
		  - error: Retrieval failures
	*/
	ListSlots(context context.Context, partyID string) ([]*Slot, error)

	/*
		Disband clears all member slots and deletes the party in one
		transaction.

		Parameters:
		  - context: context.Context
		  - partyID: string

		Returns:
		  - error: ErrNotFound if missing
	*/
	Disband(context context.Context, partyID string) error
}

// GuildRoster is the slice of the guild package this service needs for
// authorization. [guild.PostgresRepository] satisfies it directly.
type GuildRoster interface {
	FindByID(context context.Context, id string) (*guild.Guild, error)
	FindMember(context context.Context, guildID, userID string) (*guild.Member, error)
}

// CharacterDirectory resolves characters for slot management.
// [character.PostgresRepository] satisfies it directly.
type CharacterDirectory interface {
	FindByID(context context.Context, id string) (*character.Character, error)
}
