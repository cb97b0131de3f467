// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package guild

import (
	"context"
	"log/slog"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/validate"
	"github.com/tranquangduy/midgard/pkg/slug"
	"github.com/tranquangduy/midgard/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for guilds and the membership workflow.
//
// Validation and authorization happen before any write; the repository
// re-checks race-sensitive invariants inside its transactions.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new guild [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Guild Registry

/*
ListGuilds retrieves a paginated and filtered list of guilds.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Guild: List of guilds
  - int: Total matching count
  - error: Retrieval errors
*/
func (service *Service) ListGuilds(context context.Context, filter Filter, limit, offset int) ([]*Guild, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

/*
GetGuild retrieves a guild by its UUID or Slug identifier.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *Guild: Hydrated guild entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetGuild(context context.Context, identifier string) (*Guild, error) {

	// Discriminator: ID vs Slug
	// UUIDs have a fixed length of 36 characters in standard hyphenated format.
	if len(identifier) == 36 {
		return service.repo.FindByID(context, identifier)
	}

	return service.repo.FindBySlug(context, identifier)
}

/*
CreateGuild registers a new guild with the creator as leader.

Description: The creator atomically receives an ACTIVE OFFICER membership —
a guild never exists without its leader on the roster.

Parameters:
  - context: context.Context
  - creatorID: string (Acting user, becomes leader)
  - name: string

Returns:
  - *Guild: Created guild
  - error: Conflict on duplicate name, validation failures
*/
func (service *Service) CreateGuild(context context.Context, creatorID, name string) (*Guild, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MinLen(FieldName, name, 2).MaxLen(FieldName, name, 100)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	guild := &Guild{
		ID:       uuid.New(),
		Name:     name,
		Slug:     slug.From(name),
		LeaderID: creatorID,
	}

	founder := &Member{
		GuildID: guild.ID,
		UserID:  creatorID,
		Role:    RoleOfficer,
		Status:  StatusActive,
	}

	if err := service.repo.CreateWithLeader(context, guild, founder); err != nil {
		return nil, err
	}

	service.logger.Info("guild_created",
		slog.String("guild_id", guild.ID),
		slog.String("leader_id", creatorID),
	)

	return guild, nil
}

/*
TransferLeadership reassigns guild leadership to an active member.

Description: The new leader is promoted to OFFICER in the same transaction;
the outgoing leader keeps an ordinary OFFICER membership.

Parameters:
  - context: context.Context
  - actorID: string (Must be the current leader)
  - guildID: string
  - newLeaderID: string (Must hold ACTIVE membership)

Returns:
  - error: Forbidden if actor is not leader, InvalidState if target inactive
*/
func (service *Service) TransferLeadership(context context.Context, actorID, guildID, newLeaderID string) error {
	guild, err := service.requireLeader(context, guildID, actorID)
	if err != nil {
		return err
	}

	if newLeaderID == guild.LeaderID {
		// Transferring to oneself is a no-op success.
		return nil
	}

	member, err := service.repo.FindMember(context, guildID, newLeaderID)
	if err != nil {
		return err
	}
	if !member.IsActive() {
		return apperr.InvalidState("New leader must hold an active membership in the guild")
	}

	if err := service.repo.TransferLeadership(context, guildID, newLeaderID); err != nil {
		return err
	}

	service.logger.Info("guild_leadership_transferred",
		slog.String("guild_id", guildID),
		slog.String("old_leader_id", actorID),
		slog.String("new_leader_id", newLeaderID),
	)

	return nil
}

/*
DeleteGuild removes an emptied guild and cascades its dependents.

Description: Deliberately refuses while other active members remain —
emptying the roster is an explicit caller responsibility, never an implicit
cascade. The leader's own tags, characters, and parties are cascaded.

Parameters:
  - context: context.Context
  - actorID: string (Must be the leader)
  - guildID: string

Returns:
  - error: Forbidden if not leader, InvalidState if members remain
*/
func (service *Service) DeleteGuild(context context.Context, actorID, guildID string) error {
	guild, err := service.requireLeader(context, guildID, actorID)
	if err != nil {
		return err
	}

	remaining, err := service.repo.CountOtherActiveMembers(context, guildID, guild.LeaderID)
	if err != nil {
		return err
	}
	if remaining > 0 {
		return apperr.InvalidState("Guild still has active members")
	}

	if err := service.repo.Delete(context, guildID); err != nil {
		return err
	}

	service.logger.Info("guild_deleted",
		slog.String("guild_id", guildID),
		slog.String("leader_id", actorID),
	)

	return nil
}

// # Membership Workflow

/*
Invite creates a PENDING membership for a target user.

Parameters:
  - context: context.Context
  - actorID: string (Must be ACTIVE OFFICER)
  - guildID: string
  - targetUserID: string

Returns:
  - *Member: Created pending membership
  - error: Forbidden, Conflict if any relationship already exists
*/
func (service *Service) Invite(context context.Context, actorID, guildID, targetUserID string) (*Member, error) {
	validator := &validate.Validator{}
	validator.Required(FieldUserID, targetUserID).UUID(FieldUserID, targetUserID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.requireOfficer(context, guildID, actorID); err != nil {
		return nil, err
	}

	// A user has exactly one relationship state per guild at any time.
	if _, err := service.repo.FindMember(context, guildID, targetUserID); err == nil {
		return nil, apperr.Conflict("User already has a relationship with this guild")
	} else if !apperr.IsCode(err, "NOT_FOUND") {
		return nil, err
	}

	member := &Member{
		GuildID:   guildID,
		UserID:    targetUserID,
		Role:      RoleMember,
		Status:    StatusPending,
		InvitedBy: &actorID,
	}

	// The composite primary key turns a concurrent duplicate invite into a
	// retryable conflict rather than a second row.
	if err := service.repo.CreateInvite(context, member); err != nil {
		return nil, err
	}

	service.logger.Info("member_invited",
		slog.String("guild_id", guildID),
		slog.String("target_user_id", targetUserID),
		slog.String("invited_by", actorID),
	)

	return member, nil
}

/*
AcceptInvite transitions the acting user's PENDING membership to ACTIVE.

Description: Only the first accept succeeds; re-accepting an ACTIVE
membership fails with InvalidState instead of silently rewriting joinedat.

Parameters:
  - context: context.Context
  - actorID: string (The invited user)
  - guildID: string

Returns:
  - error: NotFound if no relationship, InvalidState if not pending
*/
func (service *Service) AcceptInvite(context context.Context, actorID, guildID string) error {
	if err := service.repo.ActivateMember(context, guildID, actorID); err != nil {
		return err
	}

	service.logger.Info("invite_accepted",
		slog.String("guild_id", guildID),
		slog.String("user_id", actorID),
	)

	return nil
}

/*
DeclineInvite removes the acting user's own PENDING membership.

Parameters:
  - context: context.Context
  - actorID: string (The invited user)
  - guildID: string

Returns:
  - error: InvalidState if no pending invite exists
*/
func (service *Service) DeclineInvite(context context.Context, actorID, guildID string) error {
	if err := service.repo.DeletePendingInvite(context, guildID, actorID); err != nil {
		return err
	}

	service.logger.Info("invite_declined",
		slog.String("guild_id", guildID),
		slog.String("user_id", actorID),
	)

	return nil
}

/*
RevokeInvite removes a target user's PENDING membership on behalf of the guild.

Parameters:
  - context: context.Context
  - actorID: string (Must be ACTIVE OFFICER)
  - guildID: string
  - targetUserID: string

Returns:
  - error: Forbidden, InvalidState if no pending invite exists
*/
func (service *Service) RevokeInvite(context context.Context, actorID, guildID, targetUserID string) error {
	if _, err := service.requireOfficer(context, guildID, actorID); err != nil {
		return err
	}

	if err := service.repo.DeletePendingInvite(context, guildID, targetUserID); err != nil {
		return err
	}

	service.logger.Info("invite_revoked",
		slog.String("guild_id", guildID),
		slog.String("target_user_id", targetUserID),
		slog.String("revoked_by", actorID),
	)

	return nil
}

/*
SetMemberRole changes an active member's authority level.

Description: The guild leader is implicitly OFFICER-equivalent and can never
be demoted below OFFICER; leadership must be transferred first.

Parameters:
  - context: context.Context
  - actorID: string (Must be ACTIVE OFFICER)
  - guildID: string
  - targetUserID: string
  - role: Role

Returns:
  - error: Forbidden, InvalidState on leader demotion or inactive target
*/
func (service *Service) SetMemberRole(context context.Context, actorID, guildID, targetUserID string, role Role) error {
	validator := &validate.Validator{}
	validator.OneOf(FieldRole, string(role), string(RoleMember), string(RoleOfficer))
	if err := validator.Err(); err != nil {
		return err
	}

	guild, err := service.requireOfficer(context, guildID, actorID)
	if err != nil {
		return err
	}

	if targetUserID == guild.LeaderID && role != RoleOfficer {
		return apperr.InvalidState("Cannot demote the guild leader")
	}

	target, err := service.repo.FindMember(context, guildID, targetUserID)
	if err != nil {
		return err
	}
	if !target.IsActive() {
		return apperr.InvalidState("Target must hold an active membership")
	}

	if err := service.repo.UpdateMemberRole(context, guildID, targetUserID, role); err != nil {
		return err
	}

	service.logger.Info("member_role_changed",
		slog.String("guild_id", guildID),
		slog.String("target_user_id", targetUserID),
		slog.String("role", string(role)),
		slog.String("changed_by", actorID),
	)

	return nil
}

/*
Leave removes the acting user's own ACTIVE membership.

Description: Fails while the user is guild leader or leads a party in this
guild — both must be resolved explicitly first. The user's characters under
this guild's tags are detached from parties but persist as orphaned.

Parameters:
  - context: context.Context
  - actorID: string
  - guildID: string

Returns:
  - error: InvalidState on leadership or non-active membership
*/
func (service *Service) Leave(context context.Context, actorID, guildID string) error {
	if err := service.removeActiveMember(context, guildID, actorID); err != nil {
		return err
	}

	service.logger.Info("member_left",
		slog.String("guild_id", guildID),
		slog.String("user_id", actorID),
	)

	return nil
}

/*
Kick removes a target member's ACTIVE membership on behalf of the guild.

Parameters:
  - context: context.Context
  - actorID: string (Must be ACTIVE OFFICER)
  - guildID: string
  - targetUserID: string

Returns:
  - error: Forbidden, InvalidState on leadership or non-active membership
*/
func (service *Service) Kick(context context.Context, actorID, guildID, targetUserID string) error {
	if _, err := service.requireOfficer(context, guildID, actorID); err != nil {
		return err
	}

	if err := service.removeActiveMember(context, guildID, targetUserID); err != nil {
		return err
	}

	service.logger.Info("member_kicked",
		slog.String("guild_id", guildID),
		slog.String("target_user_id", targetUserID),
		slog.String("kicked_by", actorID),
	)

	return nil
}

/*
ListMembers returns the full membership roster, pending invites included.

Parameters:
  - context: context.Context
  - guildID: string

Returns:
  - []*Member: Membership rows
  - error: Retrieval failures
*/
func (service *Service) ListMembers(context context.Context, guildID string) ([]*Member, error) {
	if _, err := service.repo.FindByID(context, guildID); err != nil {
		return nil, err
	}
	return service.repo.ListMembers(context, guildID)
}

// # Authorization Helpers

// requireLeader loads the guild and verifies the actor is its leader.
func (service *Service) requireLeader(context context.Context, guildID, actorID string) (*Guild, error) {
	guild, err := service.repo.FindByID(context, guildID)
	if err != nil {
		return nil, err
	}
	if guild.LeaderID != actorID {
		return nil, apperr.Forbidden("Only the guild leader can perform this action")
	}
	return guild, nil
}

// requireOfficer loads the guild and verifies the actor holds an ACTIVE
// OFFICER membership. The leader always qualifies.
func (service *Service) requireOfficer(context context.Context, guildID, actorID string) (*Guild, error) {
	guild, err := service.repo.FindByID(context, guildID)
	if err != nil {
		return nil, err
	}
	if guild.LeaderID == actorID {
		return guild, nil
	}

	member, err := service.repo.FindMember(context, guildID, actorID)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return nil, apperr.Forbidden("Officer role required")
		}
		return nil, err
	}
	if !member.IsActive() || !member.IsOfficer() {
		return nil, apperr.Forbidden("Officer role required")
	}

	return guild, nil
}

// removeActiveMember applies the shared leave/kick validation and delegates
// the transactional removal to the repository.
func (service *Service) removeActiveMember(context context.Context, guildID, userID string) error {
	guild, err := service.repo.FindByID(context, guildID)
	if err != nil {
		return err
	}
	if guild.LeaderID == userID {
		return apperr.InvalidState("Guild leader must transfer leadership before leaving")
	}

	leadsParty, err := service.repo.LeadsPartyInGuild(context, guildID, userID)
	if err != nil {
		return err
	}
	if leadsParty {
		return apperr.InvalidState("Party leadership must be transferred or the party disbanded first")
	}

	return service.repo.RemoveMember(context, guildID, userID)
}
