// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package party

import (
	"context"
	"log/slog"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/validate"
	"github.com/tranquangduy/midgard/pkg/uuid"
)

// # Service Layer

// Service orchestrates business rules for party coordination.
//
// Roster mutations are reserved for the party leader; creation is open to any
// active member of the guild who does not already lead a party elsewhere.
type Service struct {
	repo       Repository
	characters CharacterDirectory
	roster     GuildRoster
	logger     *slog.Logger
}

// NewService constructs a new party [Service].
func NewService(repo Repository, characters CharacterDirectory, roster GuildRoster, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		characters: characters,
		roster:     roster,
		logger:     logger,
	}
}

// # Party Queries

/*
GetParty retrieves a party by UUID.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Party: Hydrated entity
  - error: ErrNotFound if missing
*/
func (service *Service) GetParty(context context.Context, id string) (*Party, error) {
	return service.repo.FindByID(context, id)
}

/*
ListParties returns all parties of a guild.

Parameters:
  - context: context.Context
  - guildID: string

Returns:
  - []*Party: Parties ordered by name
  - error: NotFound if the guild is missing
*/
func (service *Service) ListParties(context context.Context, guildID string) ([]*Party, error) {
	if _, err := service.roster.FindByID(context, guildID); err != nil {
		return nil, err
	}
	return service.repo.ListByGuild(context, guildID)
}

/*
ListSlots returns the characters seated in a party.

Parameters:
  - context: context.Context
  - partyID: string

Returns:
  - []*Slot: Occupied slots ordered by character name
  - error: NotFound if the party is missing
*/
func (service *Service) ListSlots(context context.Context, partyID string) ([]*Slot, error) {
	if _, err := service.repo.FindByID(context, partyID); err != nil {
		return nil, err
	}
	return service.repo.ListSlots(context, partyID)
}

// # Party Commands

/*
CreateParty forms a new party in a guild with the creator as leader.

Description: The creator must hold an ACTIVE membership in the guild and must
not already lead a party anywhere in the system. The pre-check against the
leader index keeps the common case friendly; the unique index itself settles
races between concurrent creations.

Parameters:
  - context: context.Context
  - actorID: string (Becomes leader)
  - guildID: string
  - name: string (Unique within the guild)

Returns:
  - *Party: Created party
  - error: Forbidden, Conflict on duplicate name or leadership
*/
func (service *Service) CreateParty(context context.Context, actorID, guildID, name string) (*Party, error) {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MinLen(FieldName, name, 2).MaxLen(FieldName, name, 100)
	validator.Required(FieldGuildID, guildID).UUID(FieldGuildID, guildID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.roster.FindByID(context, guildID); err != nil {
		return nil, err
	}

	if err := service.requireActiveMembership(context, guildID, actorID); err != nil {
		return nil, err
	}

	// One party per leader system-wide. The unique index is the backstop.
	if _, err := service.repo.FindByLeader(context, actorID); err == nil {
		return nil, apperr.Conflict("User already leads a party")
	} else if !apperr.IsCode(err, "NOT_FOUND") {
		return nil, err
	}

	party := &Party{
		ID:       uuid.New(),
		GuildID:  guildID,
		LeaderID: actorID,
		Name:     name,
	}

	if err := service.repo.Create(context, party); err != nil {
		return nil, err
	}

	service.logger.Info("party_created",
		slog.String("party_id", party.ID),
		slog.String("guild_id", guildID),
		slog.String("leader_id", actorID),
	)

	return party, nil
}

/*
TransferLeadership hands the party to another user.

Description: The new leader must hold an ACTIVE membership in the party's
guild and must not already lead a party. Transferring to the current leader
is a no-op success.

Parameters:
  - context: context.Context
  - actorID: string (Must be current leader)
  - partyID: string
  - newLeaderID: string

Returns:
  - *Party: Updated party
  - error: Forbidden, InvalidState, Conflict on duplicate leadership
*/
func (service *Service) TransferLeadership(context context.Context, actorID, partyID, newLeaderID string) (*Party, error) {
	validator := &validate.Validator{}
	validator.Required(FieldNewLeaderID, newLeaderID).UUID(FieldNewLeaderID, newLeaderID)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	party, err := service.requireLeader(context, partyID, actorID)
	if err != nil {
		return nil, err
	}

	if party.LeaderID == newLeaderID {
		// Transferring to oneself is a no-op success.
		return party, nil
	}

	member, err := service.roster.FindMember(context, party.GuildID, newLeaderID)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return nil, apperr.InvalidState("New leader must hold an active membership in the party's guild")
		}
		return nil, err
	}
	if !member.IsActive() {
		return nil, apperr.InvalidState("New leader must hold an active membership in the party's guild")
	}

	// Revalidate one-party-per-leader for the incoming leader.
	if _, err := service.repo.FindByLeader(context, newLeaderID); err == nil {
		return nil, apperr.Conflict("User already leads a party")
	} else if !apperr.IsCode(err, "NOT_FOUND") {
		return nil, err
	}

	if err := service.repo.TransferLeadership(context, partyID, newLeaderID); err != nil {
		return nil, err
	}
	party.LeaderID = newLeaderID

	service.logger.Info("party_leadership_transferred",
		slog.String("party_id", partyID),
		slog.String("old_leader_id", actorID),
		slog.String("new_leader_id", newLeaderID),
	)

	return party, nil
}

/*
AddCharacter seats a character in the party.

Description: The character's owner must hold an ACTIVE membership in the
party's guild. A character already seated in a different party must be
removed there first; re-adding a seated member is a no-op success.

Parameters:
  - context: context.Context
  - actorID: string (Must be party leader)
  - partyID: string
  - characterID: string

Returns:
  - error: Forbidden, InvalidState when double-booked
*/
func (service *Service) AddCharacter(context context.Context, actorID, partyID, characterID string) error {
	validator := &validate.Validator{}
	validator.Required(FieldCharacterID, characterID).UUID(FieldCharacterID, characterID)
	if err := validator.Err(); err != nil {
		return err
	}

	party, err := service.requireLeader(context, partyID, actorID)
	if err != nil {
		return err
	}

	member, err := service.characters.FindByID(context, characterID)
	if err != nil {
		return err
	}

	if member.PartyID != nil {
		if *member.PartyID == partyID {
			// Already seated here: no-op success.
			return nil
		}
		return apperr.InvalidState("Character already belongs to another party; remove it first")
	}

	// The owner, not the acting leader, must be active in the party's guild.
	owner, err := service.roster.FindMember(context, party.GuildID, member.OwnerID)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return apperr.InvalidState("Character's owner must hold an active membership in the party's guild")
		}
		return err
	}
	if !owner.IsActive() {
		return apperr.InvalidState("Character's owner must hold an active membership in the party's guild")
	}

	// Conditional slot write; a concurrent add elsewhere loses here.
	if err := service.repo.AddCharacter(context, partyID, characterID); err != nil {
		return err
	}

	service.logger.Info("party_character_added",
		slog.String("party_id", partyID),
		slog.String("character_id", characterID),
		slog.String("added_by", actorID),
	)

	return nil
}

/*
RemoveCharacter vacates a character's slot in the party.

Parameters:
  - context: context.Context
  - actorID: string (Must be party leader)
  - partyID: string
  - characterID: string

Returns:
  - error: Forbidden, ErrNotFound when the character is not seated here
*/
func (service *Service) RemoveCharacter(context context.Context, actorID, partyID, characterID string) error {
	if _, err := service.requireLeader(context, partyID, actorID); err != nil {
		return err
	}

	if err := service.repo.RemoveCharacter(context, partyID, characterID); err != nil {
		return err
	}

	service.logger.Info("party_character_removed",
		slog.String("party_id", partyID),
		slog.String("character_id", characterID),
		slog.String("removed_by", actorID),
	)

	return nil
}

/*
DisbandParty dissolves a party, vacating every member slot.

Parameters:
  - context: context.Context
  - actorID: string (Must be party leader)
  - partyID: string

Returns:
  - error: Forbidden, ErrNotFound if missing
*/
func (service *Service) DisbandParty(context context.Context, actorID, partyID string) error {
	if _, err := service.requireLeader(context, partyID, actorID); err != nil {
		return err
	}

	if err := service.repo.Disband(context, partyID); err != nil {
		return err
	}

	service.logger.Info("party_disbanded",
		slog.String("party_id", partyID),
		slog.String("disbanded_by", actorID),
	)

	return nil
}

// # Authorization Helpers

// requireLeader loads the party and verifies the actor leads it.
func (service *Service) requireLeader(context context.Context, partyID, actorID string) (*Party, error) {
	party, err := service.repo.FindByID(context, partyID)
	if err != nil {
		return nil, err
	}
	if party.LeaderID != actorID {
		return nil, apperr.Forbidden("Only the party leader can perform this action")
	}
	return party, nil
}

// requireActiveMembership verifies a user holds an ACTIVE membership.
func (service *Service) requireActiveMembership(context context.Context, guildID, userID string) error {
	member, err := service.roster.FindMember(context, guildID, userID)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return apperr.Forbidden("Active membership in the party's guild required")
		}
		return err
	}
	if !member.IsActive() {
		return apperr.Forbidden("Active membership in the party's guild required")
	}
	return nil
}
