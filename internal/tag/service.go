// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package tag

import (
	"context"
	"log/slog"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/validate"
	"github.com/tranquangduy/midgard/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for sub-guild tags.
type Service struct {
	repo   Repository
	roster GuildRoster
	logger *slog.Logger
}

// NewService constructs a new tag [Service].
func NewService(repo Repository, roster GuildRoster, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		roster: roster,
		logger: logger,
	}
}

/*
ListTags returns all tags of a guild.

Parameters:
  - context: context.Context
  - guildID: string

Returns:
  - []*Tag: Tags ordered by name
  - error: NotFound if the guild is missing
*/
func (service *Service) ListTags(context context.Context, guildID string) ([]*Tag, error) {
	if _, err := service.roster.FindByID(context, guildID); err != nil {
		return nil, err
	}
	return service.repo.ListByGuild(context, guildID)
}

/*
GetTag retrieves a tag by UUID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Tag: Hydrated entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetTag(context context.Context, id string) (*Tag, error) {
	return service.repo.FindByID(context, id)
}

/*
CreateTag registers a new tag under a guild.

Parameters:
  - context: context.Context
  - actorID: string (Must be ACTIVE OFFICER of the guild)
  - guildID: string
  - name: string
  - isReserve: bool

Returns:
  - *Tag: Created tag
  - error: Forbidden, Conflict on duplicate name within the guild
*/
func (service *Service) CreateTag(context context.Context, actorID, guildID, name string, isReserve bool) (*Tag, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, 50)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.requireOfficer(context, guildID, actorID); err != nil {
		return nil, err
	}

	tag := &Tag{
		ID:        uuid.New(),
		GuildID:   guildID,
		Name:      name,
		IsReserve: isReserve,
	}

	// The (guild, name) unique index converts a duplicate into a typed conflict.
	if err := service.repo.Create(context, tag); err != nil {
		return nil, err
	}

	service.logger.Info("tag_created",
		slog.String("tag_id", tag.ID),
		slog.String("guild_id", guildID),
		slog.String("created_by", actorID),
	)

	return tag, nil
}

/*
RenameTag changes a tag's name within its guild.

Parameters:
  - context: context.Context
  - actorID: string (Must be ACTIVE OFFICER of the owning guild)
  - tagID: string
  - name: string

Returns:
  - *Tag: Updated tag
  - error: Forbidden, Conflict on name collision
*/
func (service *Service) RenameTag(context context.Context, actorID, tagID, name string) (*Tag, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, 50)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	tag, err := service.repo.FindByID(context, tagID)
	if err != nil {
		return nil, err
	}

	if err := service.requireOfficer(context, tag.GuildID, actorID); err != nil {
		return nil, err
	}

	if err := service.repo.Rename(context, tagID, name); err != nil {
		return nil, err
	}
	tag.Name = name

	service.logger.Info("tag_renamed",
		slog.String("tag_id", tagID),
		slog.String("guild_id", tag.GuildID),
		slog.String("renamed_by", actorID),
	)

	return tag, nil
}

/*
SetReserveFlag toggles a tag's reserve marker.

Parameters:
  - context: context.Context
  - actorID: string (Must be ACTIVE OFFICER of the owning guild)
  - tagID: string
  - isReserve: bool

Returns:
  - *Tag: Updated tag
  - error: Forbidden, ErrNotFound
*/
func (service *Service) SetReserveFlag(context context.Context, actorID, tagID string, isReserve bool) (*Tag, error) {
	tag, err := service.repo.FindByID(context, tagID)
	if err != nil {
		return nil, err
	}

	if err := service.requireOfficer(context, tag.GuildID, actorID); err != nil {
		return nil, err
	}

	if err := service.repo.SetReserve(context, tagID, isReserve); err != nil {
		return nil, err
	}
	tag.IsReserve = isReserve

	return tag, nil
}

/*
DeleteTag removes an unused tag.

Description: Refuses while any character references the tag — characters
must be reassigned or deleted first, never silently detached.

Parameters:
  - context: context.Context
  - actorID: string (Must be ACTIVE OFFICER of the owning guild)
  - tagID: string

Returns:
  - error: Forbidden, InvalidState if characters reference the tag
*/
func (service *Service) DeleteTag(context context.Context, actorID, tagID string) error {
	tag, err := service.repo.FindByID(context, tagID)
	if err != nil {
		return err
	}

	if err := service.requireOfficer(context, tag.GuildID, actorID); err != nil {
		return err
	}

	if err := service.repo.DeleteIfUnused(context, tagID); err != nil {
		return err
	}

	service.logger.Info("tag_deleted",
		slog.String("tag_id", tagID),
		slog.String("guild_id", tag.GuildID),
		slog.String("deleted_by", actorID),
	)

	return nil
}

// requireOfficer verifies the actor holds an ACTIVE OFFICER membership in
// the guild. The guild leader always qualifies.
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
