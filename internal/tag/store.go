// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package tag

import (
	"context"

	"github.com/tranquangduy/midgard/internal/guild"
)

// # Tag Data Access

// Repository defines the data access contract for tags.
type Repository interface {

	/*
		FindByID retrieves a tag by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Tag: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Tag, error)

	/*
		ListByGuild returns all tags belonging to a guild.

		Parameters:
		  - context: context.Context
		  - guildID: string

		Returns:
		  - []*Tag: Tags ordered by name
		  - error: Retrieval failures
	*/
	ListByGuild(context context.Context, guildID string) ([]*Tag, error)

	/*
		Create persists a new tag.

		Description: The (guild, name) unique index turns a concurrent
		duplicate into a retryable conflict.

		Parameters:
		  - context: context.Context
		  - tag: *Tag

		Returns:
		  - error: Conflict on duplicate name within the guild
	*/
	Create(context context.Context, tag *Tag) error

	/*
		Rename updates a tag's name.

		Parameters:
		  - context: context.Context
		  - id: string
		  - name: string

		Returns:
		  - error: Conflict on duplicate name, ErrNotFound if missing
	*/
	Rename(context context.Context, id, name string) error

	/*
		SetReserve updates a tag's reserve flag.

		Parameters:
		  - context: context.Context
		  - id: string
		  - isReserve: bool

		Returns:
		  - error: ErrNotFound if missing
	*/
	SetReserve(context context.Context, id string, isReserve bool) error

	/*
		DeleteIfUnused removes a tag unless characters reference it.

		Description: The reference count is taken inside the deleting
		transaction, so a character created concurrently blocks the delete.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: InvalidState if characters reference the tag
	*/
	DeleteIfUnused(context context.Context, id string) error
}

// GuildRoster is the slice of the guild package this service needs for
// authorization. [guild.PostgresRepository] satisfies it directly.
type GuildRoster interface {
	FindByID(context context.Context, id string) (*guild.Guild, error)
	FindMember(context context.Context, guildID, userID string) (*guild.Member, error)
}
