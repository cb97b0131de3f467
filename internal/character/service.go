// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package character

import (
	"context"
	"log/slog"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/validate"
	"github.com/tranquangduy/midgard/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for the character roster.
//
// Authorization is membership-derived: commands are allowed for the owner or
// an active officer of the governing guild (the guild of the character's tag).
type Service struct {
	repo   Repository
	tags   TagDirectory
	roster GuildRoster
	logger *slog.Logger
}

// NewService constructs a new character [Service].
func NewService(repo Repository, tags TagDirectory, roster GuildRoster, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tags:   tags,
		roster: roster,
		logger: logger,
	}
}

// # Roster Queries

/*
GetCharacter retrieves a character with its role set.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *Character: Hydrated entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetCharacter(context context.Context, id string) (*Character, error) {
	return service.repo.FindByID(context, id)
}

/*
ListOwned returns all characters owned by a user.

Parameters:
  - context: context.Context
  - ownerID: string

Returns:
  - []*Character: Characters ordered by name
  - error: Retrieval failures
*/
func (service *Service) ListOwned(context context.Context, ownerID string) ([]*Character, error) {
	return service.repo.ListByOwner(context, ownerID)
}

/*
ListByTag returns all characters under a tag.

Parameters:
  - context: context.Context
  - tagID: string

Returns:
  - []*Character: Characters ordered by name
  - error: NotFound if the tag is missing
*/
func (service *Service) ListByTag(context context.Context, tagID string) ([]*Character, error) {
	if _, err := service.tags.FindByID(context, tagID); err != nil {
		return nil, err
	}
	return service.repo.ListByTag(context, tagID)
}

// # Roster Commands

/*
CreateCharacter registers a new character under a tag.

Description: The owner must hold an ACTIVE membership in the tag's guild —
the cross-entity constraint that cannot be a plain foreign key.

Parameters:
  - context: context.Context
  - actorID: string (Becomes owner)
  - name: string (Globally unique)
  - tagID: string

Returns:
  - *Character: Created character
  - error: Forbidden without membership, Conflict on duplicate name
*/
func (service *Service) CreateCharacter(context context.Context, actorID, name, tagID string) (*Character, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MinLen(FieldName, name, 2).MaxLen(FieldName, name, 50)
	validator.Required(FieldTagID, tagID).UUID(FieldTagID, tagID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	tagRecord, err := service.tags.FindByID(context, tagID)
	if err != nil {
		return nil, err
	}

	if err := service.requireActiveMembership(context, tagRecord.GuildID, actorID); err != nil {
		return nil, err
	}

	character := &Character{
		ID:      uuid.New(),
		OwnerID: actorID,
		TagID:   tagID,
		Name:    name,
	}

	// Global name uniqueness is backstopped by the unique index.
	if err := service.repo.Create(context, character); err != nil {
		return nil, err
	}

	service.logger.Info("character_created",
		slog.String("character_id", character.ID),
		slog.String("owner_id", actorID),
		slog.String("tag_id", tagID),
	)

	return character, nil
}

/*
ReassignTag moves a character to another tag.

Description: Refused while the character is orphaned (owner no longer an
active member of the current guild), and refused when the destination tag's
guild is not one where the owner holds ACTIVE membership.

Parameters:
  - context: context.Context
  - actorID: string (Owner or officer of the current guild)
  - characterID: string
  - newTagID: string

Returns:
  - *Character: Updated character
  - error: Forbidden, InvalidState on orphaned or cross-guild moves
*/
func (service *Service) ReassignTag(context context.Context, actorID, characterID, newTagID string) (*Character, error) {
	character, governingGuildID, err := service.loadGoverned(context, characterID, actorID)
	if err != nil {
		return nil, err
	}

	if character.TagID == newTagID {
		// Reassigning to the same tag is a no-op success.
		return character, nil
	}

	// Orphaned characters are frozen until membership is restored.
	if err := service.requireOwnerActive(context, governingGuildID, character.OwnerID); err != nil {
		return nil, err
	}

	newTag, err := service.tags.FindByID(context, newTagID)
	if err != nil {
		return nil, err
	}

	// The destination must be a guild where the OWNER is an active member,
	// regardless of who issues the command.
	if member, err := service.roster.FindMember(context, newTag.GuildID, character.OwnerID); err != nil || !member.IsActive() {
		if err != nil && !apperr.IsCode(err, "NOT_FOUND") {
			return nil, err
		}
		return nil, apperr.InvalidState("Owner must hold an active membership in the destination tag's guild")
	}

	if err := service.repo.UpdateTag(context, characterID, newTagID); err != nil {
		return nil, err
	}
	character.TagID = newTagID

	service.logger.Info("character_tag_reassigned",
		slog.String("character_id", characterID),
		slog.String("tag_id", newTagID),
		slog.String("reassigned_by", actorID),
	)

	return character, nil
}

/*
AssignRole grants a combat-context role to a character.

Description: WOE and WOE_TE are mutually exclusive. Granting one while the
other is held fails unless replace is set, in which case the held role is
atomically swapped — replacement is always an explicit caller decision.
Re-granting an already-held role is a no-op success. PVE never conflicts.

Parameters:
  - context: context.Context
  - actorID: string (Owner or governing officer)
  - characterID: string
  - role: Role
  - replace: bool (Explicit consent to swap the held exclusive role)

Returns:
  - *Character: Updated character
  - error: Forbidden, InvalidState on unconsented exclusive conflict
*/
func (service *Service) AssignRole(context context.Context, actorID, characterID string, role Role, replace bool) (*Character, error) {
	validator := &validate.Validator{}
	validator.OneOf(FieldRole, string(role), string(RoleWoe), string(RoleWoeTE), string(RolePVE))
	if err := validator.Err(); err != nil {
		return nil, err
	}

	character, governingGuildID, err := service.loadGoverned(context, characterID, actorID)
	if err != nil {
		return nil, err
	}

	// Duplicate grant of a held role is a no-op success, not an error.
	if character.HasRole(role) {
		return character, nil
	}

	// New role grants are frozen while the character is orphaned.
	if err := service.requireOwnerActive(context, governingGuildID, character.OwnerID); err != nil {
		return nil, err
	}

	if role.IsExclusive() && character.HasRole(role.counterpart()) {
		if !replace {
			return nil, apperr.InvalidState("Character already holds the conflicting exclusive role; set replace to swap it")
		}

		if err := service.repo.ReplaceExclusiveRole(context, characterID, role.counterpart(), role); err != nil {
			return nil, err
		}

		service.logger.Info("character_role_replaced",
			slog.String("character_id", characterID),
			slog.String("old_role", string(role.counterpart())),
			slog.String("new_role", string(role)),
			slog.String("assigned_by", actorID),
		)

		return service.repo.FindByID(context, characterID)
	}

	if err := service.repo.AssignRole(context, characterID, role); err != nil {
		return nil, err
	}

	service.logger.Info("character_role_assigned",
		slog.String("character_id", characterID),
		slog.String("role", string(role)),
		slog.String("assigned_by", actorID),
	)

	return service.repo.FindByID(context, characterID)
}

/*
RemoveRole revokes a role marker from a character.

Parameters:
  - context: context.Context
  - actorID: string (Owner or governing officer)
  - characterID: string
  - role: Role

Returns:
  - error: Forbidden, NotFound if the role is not held
*/
func (service *Service) RemoveRole(context context.Context, actorID, characterID string, role Role) error {
	if _, _, err := service.loadGoverned(context, characterID, actorID); err != nil {
		return err
	}

	if err := service.repo.RemoveRole(context, characterID, role); err != nil {
		return err
	}

	service.logger.Info("character_role_removed",
		slog.String("character_id", characterID),
		slog.String("role", string(role)),
		slog.String("removed_by", actorID),
	)

	return nil
}

/*
DeleteCharacter removes a character, cascading its roles and party slot.

Parameters:
  - context: context.Context
  - actorID: string (Owner or governing officer)
  - characterID: string

Returns:
  - error: Forbidden, ErrNotFound if missing
*/
func (service *Service) DeleteCharacter(context context.Context, actorID, characterID string) error {
	if _, _, err := service.loadGoverned(context, characterID, actorID); err != nil {
		return err
	}

	if err := service.repo.Delete(context, characterID); err != nil {
		return err
	}

	service.logger.Info("character_deleted",
		slog.String("character_id", characterID),
		slog.String("deleted_by", actorID),
	)

	return nil
}

// # Authorization Helpers

// loadGoverned loads the character, resolves its governing guild through the
// tag, and verifies the actor is the owner or an active officer there.
func (service *Service) loadGoverned(context context.Context, characterID, actorID string) (*Character, string, error) {
	character, err := service.repo.FindByID(context, characterID)
	if err != nil {
		return nil, "", err
	}

	tagRecord, err := service.tags.FindByID(context, character.TagID)
	if err != nil {
		return nil, "", err
	}

	if character.OwnerID != actorID {
		if err := service.requireOfficer(context, tagRecord.GuildID, actorID); err != nil {
			return nil, "", err
		}
	}

	return character, tagRecord.GuildID, nil
}

// requireActiveMembership verifies a user holds an ACTIVE membership.
func (service *Service) requireActiveMembership(context context.Context, guildID, userID string) error {
	member, err := service.roster.FindMember(context, guildID, userID)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return apperr.Forbidden("Active membership in the tag's guild required")
		}
		return err
	}
	if !member.IsActive() {
		return apperr.Forbidden("Active membership in the tag's guild required")
	}
	return nil
}

// requireOwnerActive refuses mutations on orphaned characters.
func (service *Service) requireOwnerActive(context context.Context, guildID, ownerID string) error {
	member, err := service.roster.FindMember(context, guildID, ownerID)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return apperr.InvalidState("Character is orphaned; the owner must rejoin the guild first")
		}
		return err
	}
	if !member.IsActive() {
		return apperr.InvalidState("Character is orphaned; the owner must rejoin the guild first")
	}
	return nil
}

// requireOfficer verifies the actor is an active officer (or the leader) of
// the guild.
func (service *Service) requireOfficer(context context.Context, guildID, actorID string) error {
	guildRecord, err := service.roster.FindByID(context, guildID)
	if err != nil {
		return err
	}
	if guildRecord.LeaderID == actorID {
		return nil
	}

	member, err := service.roster.FindMember(context, guildID, actorID)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return apperr.Forbidden("Officer role required")
		}
		return err
	}
	if !member.IsActive() || !member.IsOfficer() {
		return apperr.Forbidden("Officer role required")
	}

	return nil
}
