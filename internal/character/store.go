// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package character

import (
	"context"

	"github.com/tranquangduy/midgard/internal/guild"
	"github.com/tranquangduy/midgard/internal/tag"
)

// # Character Data Access

// Repository defines the data access contract for characters and their roles.
type Repository interface {

	/*
		FindByID retrieves a character (roles included) by UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Character: Hydrated entity with its role set
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Character, error)

	/*
		ListByOwner returns all characters owned by a user.

		Parameters:
		  - context: context.Context
		  - ownerID: string

		Returns:
		  - []*Character: Characters ordered by name
		  - error: Retrieval failures
	*/
	ListByOwner(context context.Context, ownerID string) ([]*Character, error)

	/*
		ListByTag returns all characters under a tag.

		Parameters:
		  - context: context.Context
		  - tagID: string

		Returns:
		  - []*Character: Characters ordered by name
		  - error: Retrieval failures
	*/
	ListByTag(context context.Context, tagID string) ([]*Character, error)

	/*
		Create persists a new character.

		Description: The global unique index on the lowercased name turns a
		concurrent duplicate into a retryable conflict.

		Parameters:
		  - context: context.Context
		  - character: *Character

		Returns:
		  - error: Conflict on duplicate name
	*/
	Create(context context.Context, character *Character) error

	/*
		UpdateTag moves a character to another tag.

		Parameters:
		  - context: context.Context
		  - id: string
		  - tagID: string

		Returns:
		  - error: ErrNotFound if missing
	*/
	UpdateTag(context context.Context, id, tagID string) error

	/*
		AssignRole adds a role marker to a character.

		Description: Duplicate assignment of an already-held role is a no-op
		success (conflict suppressed on the composite key only). A partial
		unique index over the WOE/WOE_TE pair backstops the mutual exclusion:
		when two concurrent grants both read an empty role set, exactly one
		commits and the loser surfaces as a retryable conflict.

		Parameters:
		  - context: context.Context
		  - characterID: string
		  - role: Role

		Returns:
		  - error: Retryable Conflict when a concurrent exclusive grant won
	*/
	AssignRole(context context.Context, characterID string, role Role) error

	/*
		ReplaceExclusiveRole atomically swaps the held exclusive role for the
		other one.

		Description: Delete and insert run in one transaction; the character
		never holds both or neither of {WOE, WOE_TE} at commit.

		Parameters:
		  - context: context.Context
		  - characterID: string
		  - oldRole: Role
		  - newRole: Role

		Returns:
		  - error: Persistence failures
	*/
	ReplaceExclusiveRole(context context.Context, characterID string, oldRole, newRole Role) error

	/*
		RemoveRole deletes a role marker from a character.

		Parameters:
		  - context: context.Context
		  - characterID: string
		  - role: Role

		Returns:
		  - error: ErrNotFound if the role is not held
	*/
	RemoveRole(context context.Context, characterID string, role Role) error

	/*
		Delete removes a character, cascading its role rows. The party slot
		clears with the row itself.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: ErrNotFound if missing
	*/
	Delete(context context.Context, id string) error
}

// GuildRoster is the slice of the guild package this service needs for
// authorization. [guild.PostgresRepository] satisfies it directly.
type GuildRoster interface {
	FindByID(context context.Context, id string) (*guild.Guild, error)
	FindMember(context context.Context, guildID, userID string) (*guild.Member, error)
}

// TagDirectory resolves tags to their owning guild.
// [tag.PostgresRepository] satisfies it directly.
type TagDirectory interface {
	FindByID(context context.Context, id string) (*tag.Tag, error)
}
