// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package guild

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/database/schema"
	"github.com/tranquangduy/midgard/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed guild store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Schema definition shorthands used by this store. The multi-table cascade
// transactions keep their SQL inline where the cross-schema joins are easier
// to read as written.
var (
	guildTable  = schema.RosterGuild
	memberTable = schema.RosterMember
)

// # Guild Retrieval

/*
List returns a filtered and paginated list of guilds.

Description: Uses ILIKE for name search and COUNT(*) OVER() for total metadata.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Guild: Slice of matching guilds
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Guild, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(fmt.Sprintf(`
		SELECT
			%s, %s, %s, %s, %s, %s,
			COUNT(*) OVER() as total
		FROM %s
		WHERE TRUE
	`, guildTable.ID, guildTable.Name, guildTable.Slug, guildTable.LeaderID,
		guildTable.CreatedAt, guildTable.UpdatedAt, guildTable.Table))

	args := []any{}
	argID := 1

	if filter.Query != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s ILIKE $%d", guildTable.Name, argID))
		args = append(args, "%"+filter.Query+"%")
		argID++
	}

	if filter.LeaderID != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", guildTable.LeaderID, argID))
		args = append(args, filter.LeaderID)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s ASC LIMIT $%d OFFSET $%d", guildTable.Name, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_guilds")
	}
	defer rows.Close()

	var guilds []*Guild
	var total int
	for rows.Next() {
		guild := &Guild{}
		err := rows.Scan(
			&guild.ID, &guild.Name, &guild.Slug, &guild.LeaderID,
			&guild.CreatedAt, &guild.UpdatedAt, &total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_guild")
		}
		guilds = append(guilds, guild)
	}

	return guilds, total, nil
}

/*
FindByID retrieves a single guild record by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Guild: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Guild, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`, guildTable.ID, guildTable.Name, guildTable.Slug, guildTable.LeaderID,
		guildTable.CreatedAt, guildTable.UpdatedAt, guildTable.Table, guildTable.ID)

	guild := &Guild{}
	err := repository.db.QueryRow(context, query, id).Scan(
		&guild.ID, &guild.Name, &guild.Slug, &guild.LeaderID, &guild.CreatedAt, &guild.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_guild_by_id")
	}
	return guild, nil
}

/*
FindBySlug retrieves a guild by its unique URL slug.

Parameters:
  - context: context.Context
  - slug: string

Returns:
  - *Guild: Hydrated entity
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindBySlug(context context.Context, slug string) (*Guild, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
	`, guildTable.ID, guildTable.Name, guildTable.Slug, guildTable.LeaderID,
		guildTable.CreatedAt, guildTable.UpdatedAt, guildTable.Table, guildTable.Slug)

	guild := &Guild{}
	err := repository.db.QueryRow(context, query, slug).Scan(
		&guild.ID, &guild.Name, &guild.Slug, &guild.LeaderID, &guild.CreatedAt, &guild.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_guild_by_slug")
	}
	return guild, nil
}

// # Guild Mutation

/*
CreateWithLeader atomically inserts a guild and its founding membership.

Description: Executes within an ACID transaction.
1. Inserts the guild row (unique name/slug surface a lost race as Conflict).
2. Inserts the leader's membership as ACTIVE OFFICER.
Roll back completely if any stage fails so no guild exists without a leader row.

Parameters:
  - context: context.Context
  - guild: *Guild
  - leader: *Member

Returns:
  - error: Transactional or database failures
*/
func (repository *PostgresRepository) CreateWithLeader(context context.Context, guild *Guild, leader *Member) error {

	// Establish Transactional Boundary
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_create_guild_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Persist Guild
	guildQuery := `
		INSERT INTO roster.guild (id, name, slug, leaderid, createdat, updatedat)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING createdat, updatedat
	`
	err = transaction.QueryRow(context, guildQuery,
		guild.ID, guild.Name, guild.Slug, guild.LeaderID,
	).Scan(&guild.CreatedAt, &guild.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_guild")
	}

	// Step 2: Persist Founding Membership
	memberQuery := `
		INSERT INTO roster.guildmember (guildid, userid, role, status, invitedat, joinedat)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		RETURNING invitedat, joinedat
	`
	err = transaction.QueryRow(context, memberQuery,
		leader.GuildID, leader.UserID, leader.Role, leader.Status,
	).Scan(&leader.InvitedAt, &leader.JoinedAt)
	if err != nil {
		return dberr.Wrap(err, "insert_founder_membership")
	}

	return transaction.Commit(context)
}

/*
TransferLeadership atomically moves leadership and promotes the new leader.

Description: The membership promotion is conditional on ACTIVE status. If the
target's membership vanished or went PENDING between the service check and
this transaction, zero rows update and the whole transfer aborts.

Parameters:
  - context: context.Context
  - guildID: string
  - newLeaderID: string

Returns:
  - error: InvalidState if the target holds no active membership
*/
func (repository *PostgresRepository) TransferLeadership(context context.Context, guildID, newLeaderID string) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_transfer_leadership_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Conditional Promotion
	promoteQuery := `
		UPDATE roster.guildmember
		SET role = $3
		WHERE guildid = $1 AND userid = $2 AND status = 'ACTIVE'
	`
	result, err := transaction.Exec(context, promoteQuery, guildID, newLeaderID, RoleOfficer)
	if err != nil {
		return dberr.Wrap(err, "promote_new_leader")
	}
	if result.RowsAffected() == 0 {
		return apperr.InvalidState("New leader must hold an active membership in the guild")
	}

	// Step 2: Reassign Leadership
	leaderQuery := `
		UPDATE roster.guild
		SET leaderid = $2, updatedat = NOW()
		WHERE id = $1
	`
	result, err = transaction.Exec(context, leaderQuery, guildID, newLeaderID)
	if err != nil {
		return dberr.Wrap(err, "update_guild_leader")
	}
	if result.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}

	return transaction.Commit(context)
}

/*
Delete removes a guild and cascades its dependents in explicit order.

Description: Cascades are deliberate statements instead of database-level
ON DELETE CASCADE so ordering and partial-failure semantics stay visible:
1. Re-check that only the leader's ACTIVE membership remains.
2. Delete role rows of characters under the guild's tags.
3. Delete those characters (tag assignment is mandatory, so they cannot survive).
4. Delete parties, tags, memberships, then the guild row.

Parameters:
  - context: context.Context
  - guildID: string

Returns:
  - error: InvalidState if active members remain, database failures
*/
func (repository *PostgresRepository) Delete(context context.Context, guildID string) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_delete_guild_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Emptiness Re-check (inside the transaction)
	var leaderID string
	err = transaction.QueryRow(context,
		`SELECT leaderid FROM roster.guild WHERE id = $1`, guildID,
	).Scan(&leaderID)
	if err != nil {
		return dberr.Wrap(err, "lock_guild_for_delete")
	}

	var otherActive int
	err = transaction.QueryRow(context, `
		SELECT COUNT(*)
		FROM roster.guildmember
		WHERE guildid = $1 AND status = 'ACTIVE' AND userid <> $2
	`, guildID, leaderID).Scan(&otherActive)
	if err != nil {
		return dberr.Wrap(err, "count_remaining_members")
	}
	if otherActive > 0 {
		return apperr.InvalidState("Guild still has active members")
	}

	// Step 2: Ordered Cascade
	cascade := []struct {
		action string
		query  string
	}{
		{"delete_guild_character_roles", `
			DELETE FROM roster.characterrole
			WHERE characterid IN (
				SELECT c.id FROM roster.character c
				JOIN roster.tag t ON c.tagid = t.id
				WHERE t.guildid = $1
			)`},
		{"delete_guild_characters", `
			DELETE FROM roster.character
			WHERE tagid IN (SELECT id FROM roster.tag WHERE guildid = $1)`},
		{"delete_guild_parties", `DELETE FROM roster.party WHERE guildid = $1`},
		{"delete_guild_tags", `DELETE FROM roster.tag WHERE guildid = $1`},
		{"delete_guild_memberships", `DELETE FROM roster.guildmember WHERE guildid = $1`},
		{"delete_guild_row", `DELETE FROM roster.guild WHERE id = $1`},
	}

	for _, step := range cascade {
		if _, err := transaction.Exec(context, step.query, guildID); err != nil {
			return dberr.Wrap(err, step.action)
		}
	}

	return transaction.Commit(context)
}

// # Membership Implementation

/*
FindMember retrieves the membership row for a (guild, user) pair.

Parameters:
  - context: context.Context
  - guildID: string
  - userID: string

Returns:
  - *Member: Membership in any status
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) FindMember(context context.Context, guildID, userID string) (*Member, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1 AND %s = $2
	`, memberTable.GuildID, memberTable.UserID, memberTable.Role, memberTable.Status,
		memberTable.InvitedBy, memberTable.InvitedAt, memberTable.JoinedAt,
		memberTable.Table, memberTable.GuildID, memberTable.UserID)

	member := &Member{}
	err := repository.db.QueryRow(context, query, guildID, userID).Scan(
		&member.GuildID, &member.UserID, &member.Role, &member.Status,
		&member.InvitedBy, &member.InvitedAt, &member.JoinedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "get_membership")
	}
	return member, nil
}

/*
ListMembers retrieves all membership rows for a guild.

Parameters:
  - context: context.Context
  - guildID: string

Returns:
  - []*Member: Rows ordered by invite time, pending invites included
  - error: Retrieval failures
*/
func (repository *PostgresRepository) ListMembers(context context.Context, guildID string) ([]*Member, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1
		ORDER BY %s ASC
	`, memberTable.GuildID, memberTable.UserID, memberTable.Role, memberTable.Status,
		memberTable.InvitedBy, memberTable.InvitedAt, memberTable.JoinedAt,
		memberTable.Table, memberTable.GuildID, memberTable.InvitedAt)

	rows, err := repository.db.Query(context, query, guildID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_guild_members")
	}
	defer rows.Close()

	var members []*Member
	for rows.Next() {
		member := &Member{}
		err := rows.Scan(
			&member.GuildID, &member.UserID, &member.Role, &member.Status,
			&member.InvitedBy, &member.InvitedAt, &member.JoinedAt,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_membership")
		}
		members = append(members, member)
	}

	return members, nil
}

/*
CreateInvite inserts a PENDING membership row.

Parameters:
  - context: context.Context
  - member: *Member

Returns:
  - error: Retryable Conflict if a relationship already exists
*/
func (repository *PostgresRepository) CreateInvite(context context.Context, member *Member) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING %s
	`, memberTable.Table, memberTable.GuildID, memberTable.UserID, memberTable.Role,
		memberTable.Status, memberTable.InvitedBy, memberTable.InvitedAt, memberTable.InvitedAt)

	err := repository.db.QueryRow(context, query,
		member.GuildID, member.UserID, member.Role, member.Status, member.InvitedBy,
	).Scan(&member.InvitedAt)
	return dberr.Wrap(err, "create_invite")
}

/*
ActivateMember transitions a PENDING membership to ACTIVE.

Parameters:
  - context: context.Context
  - guildID: string
  - userID: string

Returns:
  - error: InvalidState if the membership is not pending
*/
func (repository *PostgresRepository) ActivateMember(context context.Context, guildID, userID string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = 'ACTIVE', %s = NOW()
		WHERE %s = $1 AND %s = $2 AND %s = 'PENDING'
	`, memberTable.Table, memberTable.Status, memberTable.JoinedAt,
		memberTable.GuildID, memberTable.UserID, memberTable.Status)

	result, err := repository.db.Exec(context, query, guildID, userID)
	if err != nil {
		return dberr.Wrap(err, "activate_membership")
	}
	if result.RowsAffected() == 0 {
		return apperr.InvalidState("No pending invite for this guild")
	}
	return nil
}

/*
DeletePendingInvite removes a PENDING membership row.

Parameters:
  - context: context.Context
  - guildID: string
  - userID: string

Returns:
  - error: InvalidState if no pending invite exists
*/
func (repository *PostgresRepository) DeletePendingInvite(context context.Context, guildID, userID string) error {
	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1 AND %s = $2 AND %s = 'PENDING'
	`, memberTable.Table, memberTable.GuildID, memberTable.UserID, memberTable.Status)

	result, err := repository.db.Exec(context, query, guildID, userID)
	if err != nil {
		return dberr.Wrap(err, "delete_pending_invite")
	}
	if result.RowsAffected() == 0 {
		return apperr.InvalidState("No pending invite for this guild")
	}
	return nil
}

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
func (repository *PostgresRepository) UpdateMemberRole(context context.Context, guildID, userID string, role Role) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3
		WHERE %s = $1 AND %s = $2 AND %s = 'ACTIVE'
	`, memberTable.Table, memberTable.Role,
		memberTable.GuildID, memberTable.UserID, memberTable.Status)

	result, err := repository.db.Exec(context, query, guildID, userID, role)
	if err != nil {
		return dberr.Wrap(err, "update_member_role")
	}
	if result.RowsAffected() == 0 {
		return apperr.InvalidState("Target must hold an active membership")
	}
	return nil
}

/*
RemoveMember deletes an ACTIVE membership with leadership re-checks and
character detachment.

Description: Executes within an ACID transaction.
1. Re-verify the user is not the guild leader.
2. Re-verify the user leads no party within this guild.
3. Detach the user's characters under this guild's tags from their parties
   (characters themselves persist as orphaned — never auto-deleted).
4. Delete the ACTIVE membership row.

Parameters:
  - context: context.Context
  - guildID: string
  - userID: string

Returns:
  - error: InvalidState on leadership violations or non-active row
*/
func (repository *PostgresRepository) RemoveMember(context context.Context, guildID, userID string) error {

	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_remove_member_tx")
	}
	defer transaction.Rollback(context)

	// Step 1: Guild Leadership Re-check
	var isLeader bool
	err = transaction.QueryRow(context,
		`SELECT leaderid = $2 FROM roster.guild WHERE id = $1`, guildID, userID,
	).Scan(&isLeader)
	if err != nil {
		return dberr.Wrap(err, "check_guild_leadership")
	}
	if isLeader {
		return apperr.InvalidState("Guild leader must transfer leadership before leaving")
	}

	// Step 2: Party Leadership Re-check
	var leadsParty bool
	err = transaction.QueryRow(context, `
		SELECT EXISTS (
			SELECT 1 FROM roster.party WHERE guildid = $1 AND leaderid = $2
		)
	`, guildID, userID).Scan(&leadsParty)
	if err != nil {
		return dberr.Wrap(err, "check_party_leadership")
	}
	if leadsParty {
		return apperr.InvalidState("Party leadership must be transferred or the party disbanded first")
	}

	// Step 3: Detach Characters From Parties
	_, err = transaction.Exec(context, `
		UPDATE roster.character
		SET partyid = NULL, updatedat = NOW()
		WHERE ownerid = $2
		  AND partyid IS NOT NULL
		  AND tagid IN (SELECT id FROM roster.tag WHERE guildid = $1)
	`, guildID, userID)
	if err != nil {
		return dberr.Wrap(err, "detach_member_characters")
	}

	// Step 4: Remove Membership
	result, err := transaction.Exec(context, `
		DELETE FROM roster.guildmember
		WHERE guildid = $1 AND userid = $2 AND status = 'ACTIVE'
	`, guildID, userID)
	if err != nil {
		return dberr.Wrap(err, "delete_membership")
	}
	if result.RowsAffected() == 0 {
		return apperr.InvalidState("Target must hold an active membership")
	}

	return transaction.Commit(context)
}

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
func (repository *PostgresRepository) CountOtherActiveMembers(context context.Context, guildID, excludeUserID string) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE %s = $1 AND %s = 'ACTIVE' AND %s <> $2
	`, memberTable.Table, memberTable.GuildID, memberTable.Status, memberTable.UserID)

	var count int
	err := repository.db.QueryRow(context, query, guildID, excludeUserID).Scan(&count)
	if err != nil {
		return 0, dberr.Wrap(err, "count_other_active_members")
	}
	return count, nil
}

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
func (repository *PostgresRepository) LeadsPartyInGuild(context context.Context, guildID, userID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM roster.party WHERE guildid = $1 AND leaderid = $2
		)
	`
	var leads bool
	err := repository.db.QueryRow(context, query, guildID, userID).Scan(&leads)
	if err != nil {
		return false, dberr.Wrap(err, "check_party_leadership")
	}
	return leads, nil
}
