// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package guild

import "context"

// # Guild Data Access

// Repository defines the data access contract for guilds and memberships.
//
// Compound mutations (CreateWithLeader, TransferLeadership, Delete,
// RemoveMember) are transactional: they revalidate their critical invariants
// inside the transaction so a check that passed at the service layer cannot
// be invalidated by a concurrent commit.
type Repository interface {

	/*
		List returns a filtered, paginated slice of guilds and the total count.

		Parameters:
		  - context: context.Context
		  - filter: Filter (Search query, leader)
		  - limit: int
		  - offset: int

		Returns:
		  - []*Guild: Slice of matching guilds
		  - int: Total record count
		  - error: Database retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Guild, int, error)

	/*
		FindByID retrieves a guild by its UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Guild: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*Guild, error)

	/*
		FindBySlug retrieves a guild by its human-readable identifier.

		Parameters:
		  - context: context.Context
		  - slug: string

		Returns:
		  - *Guild: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindBySlug(context context.Context, slug string) (*Guild, error)

	/*
		CreateWithLeader atomically persists a new guild and its founding
		membership (ACTIVE, OFFICER).

		Description: A duplicate name or slug surfaces as a retryable conflict
		from the unique indexes; the membership insert never commits without
		the guild row.

		Parameters:
		  - context: context.Context
		  - guild: *Guild
		  - leader: *Member

		Returns:
		  - error: Conflict on duplicate name, persistence failures
	*/
	CreateWithLeader(context context.Context, guild *Guild, leader *Member) error

	/*
		TransferLeadership atomically updates the guild's leader and promotes
		the new leader's membership to OFFICER.

		Description: The promotion is conditional on an ACTIVE membership; if
		the target left between validation and commit, the transaction fails
		with InvalidState instead of appointing an absent leader.

		Parameters:
		  - context: context.Context
		  - guildID: string
		  - newLeaderID: string

		Returns:
		  - error: InvalidState if the target holds no active membership
	*/
	TransferLeadership(context context.Context, guildID, newLeaderID string) error

	/*
		Delete removes a guild and cascades its dependents in explicit order:
		character roles, characters under the guild's tags, parties, tags,
		memberships, then the guild row.

		Description: Re-checks inside the transaction that no ACTIVE
		membership other than the leader's remains.

		Parameters:
		  - context: context.Context
		  - guildID: string

		Returns:
		  - error: InvalidState if the guild still has active members
	*/
	Delete(context context.Context, guildID string) error

	// # Membership Management

	/*
		FindMember retrieves the membership row for a (guild, user) pair.

		Parameters:
		  - context: context.Context
		  - guildID: string
		  - userID: string

		Returns:
		  - *Member: Hydrated membership in any status
		  - error: ErrNotFound if no relationship exists
	*/
	FindMember(context context.Context, guildID, userID string) (*Member, error)

	/*
		ListMembers returns all membership rows for a guild, pending invites
		included.

		Parameters:
		  - context: context.Context
		  - guildID: string

		Returns:
		  - []*Member: Membership rows ordered by invite time
		  - error: Retrieval failures
	*/
	ListMembers(context context.Context, guildID string) ([]*Member, error)

	/*
		CreateInvite inserts a PENDING membership row.

		Description: The (guild, user) primary key turns a duplicate-invite
		race into a retryable conflict.

		Parameters:
		  - context: context.Context
		  - member: *Member

		Returns:
		  - error: Conflict if a relationship already exists
	*/
	CreateInvite(context context.Context, member *Member) error

	/*
		ActivateMember transitions a PENDING membership to ACTIVE and stamps
		the join time.

		Description: The update is conditional on PENDING status, making a
		double-accept race fail typed instead of rewriting joinedat.

		Parameters:
		  - context: context.Context
		  - guildID: string
		  - userID: string

		Returns:
		  - error: InvalidState if the membership is not pending
	*/
	ActivateMember(context context.Context, guildID, userID string) error

	/*
		DeletePendingInvite removes a PENDING membership row (decline/revoke).

		Parameters:
		  - context: context.Context
		  - guildID: string
		  - userID: string

		Returns:
		  - error: InvalidState if no pending invite exists
	*/
	DeletePendingInvite(context context.Context, guildID, userID string) error

	/*
		UpdateMemberRole changes an ACTIVE member's authority level.

		Parameters:
		  - context: context.Context
		  - guildID: string
		  - userID: string
		  - role: Role

		Returns:
		  - error: InvalidState if the membership is not active
	*/
	UpdateMemberRole(context context.Context, guildID, userID string, role Role) error

	/*
		RemoveMember deletes an ACTIVE membership and detaches the user's
		characters under this guild's tags from their parties.

		Description: Re-checks leadership invariants inside the transaction:
		the current guild leader and any party leader within the guild cannot
		be removed.

		Parameters:
		  - context: context.Context
		  - guildID: string
		  - userID: string

		Returns:
		  - error: InvalidState on leadership violations or non-active row
	*/
	RemoveMember(context context.Context, guildID, userID string) error

	// # Invariant Lookups

	/*
		CountOtherActiveMembers counts ACTIVE memberships excluding one user.

		Parameters:
		  - context: context.Context
		  - guildID: string
		  - excludeUserID: string

		Returns:
		  - int: Number of other active members
		  - error: Retrieval failures
	*/
	CountOtherActiveMembers(context context.Context, guildID, excludeUserID string) (int, error)

	/*
		LeadsPartyInGuild reports whether a user leads any party in the guild.

		Parameters:
		  - context: context.Context
		  - guildID: string
		  - userID: string

		Returns:
		  - bool: True if the user is a party leader in this guild
		  - error: Retrieval failures
	*/
	LeadsPartyInGuild(context context.Context, guildID, userID string) (bool, error)
}
