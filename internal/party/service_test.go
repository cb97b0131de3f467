// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package party

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranquangduy/midgard/internal/character"
	"github.com/tranquangduy/midgard/internal/guild"
	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/pkg/uuid"
)

// fakeRoster is an in-memory [GuildRoster].
type fakeRoster struct {
	guilds  map[string]*guild.Guild
	members map[string]map[string]*guild.Member
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{
		guilds:  map[string]*guild.Guild{},
		members: map[string]map[string]*guild.Member{},
	}
}

func (f *fakeRoster) addGuild(leaderID string) string {
	id := uuid.New()
	f.guilds[id] = &guild.Guild{ID: id, LeaderID: leaderID}
	f.members[id] = map[string]*guild.Member{
		leaderID: {GuildID: id, UserID: leaderID, Role: guild.RoleOfficer, Status: guild.StatusActive},
	}
	return id
}

func (f *fakeRoster) addMember(guildID, userID string, status guild.Status) {
	f.members[guildID][userID] = &guild.Member{GuildID: guildID, UserID: userID, Role: guild.RoleMember, Status: status}
}

func (f *fakeRoster) FindByID(_ context.Context, id string) (*guild.Guild, error) {
	if g, ok := f.guilds[id]; ok {
		return g, nil
	}
	return nil, apperr.NotFound("Guild")
}

func (f *fakeRoster) FindMember(_ context.Context, guildID, userID string) (*guild.Member, error) {
	if m, ok := f.members[guildID][userID]; ok {
		return m, nil
	}
	return nil, apperr.NotFound("Membership")
}

// fakeCharacters is an in-memory [CharacterDirectory] sharing its map with
// the party store so slot writes are visible through lookups.
type fakeCharacters struct {
	characters map[string]*character.Character
}

func (f *fakeCharacters) addCharacter(ownerID, tagID string) string {
	id := uuid.New()
	f.characters[id] = &character.Character{ID: id, OwnerID: ownerID, TagID: tagID, Name: "char-" + id[:8]}
	return id
}

func (f *fakeCharacters) FindByID(_ context.Context, id string) (*character.Character, error) {
	if c, ok := f.characters[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, apperr.NotFound("Character")
}

// fakeRepository is an in-memory party [Repository]. It enforces the same
// uniqueness the real store's indexes do: one party per leader system-wide
// and one name per guild.
type fakeRepository struct {
	parties    map[string]*Party
	characters map[string]*character.Character
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*Party, error) {
	if p, ok := f.parties[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, apperr.NotFound("Party")
}

func (f *fakeRepository) FindByLeader(_ context.Context, leaderID string) (*Party, error) {
	for _, p := range f.parties {
		if p.LeaderID == leaderID {
			clone := *p
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Party")
}

func (f *fakeRepository) ListByGuild(_ context.Context, guildID string) ([]*Party, error) {
	var out []*Party
	for _, p := range f.parties {
		if p.GuildID == guildID {
			clone := *p
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRepository) Create(_ context.Context, party *Party) error {
	for _, existing := range f.parties {
		if existing.LeaderID == party.LeaderID {
			return apperr.RetryableConflict("Resource already exists")
		}
		if existing.GuildID == party.GuildID && strings.EqualFold(existing.Name, party.Name) {
			return apperr.RetryableConflict("Resource already exists")
		}
	}
	clone := *party
	f.parties[party.ID] = &clone
	return nil
}

func (f *fakeRepository) TransferLeadership(_ context.Context, partyID, newLeaderID string) error {
	for id, existing := range f.parties {
		if id != partyID && existing.LeaderID == newLeaderID {
			return apperr.RetryableConflict("Resource already exists")
		}
	}
	p, ok := f.parties[partyID]
	if !ok {
		return apperr.NotFound("Party")
	}
	p.LeaderID = newLeaderID
	return nil
}

func (f *fakeRepository) AddCharacter(_ context.Context, partyID, characterID string) error {
	c, ok := f.characters[characterID]
	if !ok {
		return apperr.NotFound("Character")
	}
	if c.PartyID != nil && *c.PartyID != partyID {
		return apperr.InvalidState("Character already belongs to another party; remove it first")
	}
	c.PartyID = &partyID
	return nil
}

func (f *fakeRepository) RemoveCharacter(_ context.Context, partyID, characterID string) error {
	c, ok := f.characters[characterID]
	if !ok || c.PartyID == nil || *c.PartyID != partyID {
		return apperr.NotFound("Slot")
	}
	c.PartyID = nil
	return nil
}

func (f *fakeRepository) ListSlots(_ context.Context, partyID string) ([]*Slot, error) {
	var out []*Slot
	for _, c := range f.characters {
		if c.PartyID != nil && *c.PartyID == partyID {
			out = append(out, &Slot{CharacterID: c.ID, OwnerID: c.OwnerID, TagID: c.TagID, Name: c.Name})
		}
	}
	return out, nil
}

func (f *fakeRepository) Disband(_ context.Context, partyID string) error {
	if _, ok := f.parties[partyID]; !ok {
		return apperr.NotFound("Party")
	}
	for _, c := range f.characters {
		if c.PartyID != nil && *c.PartyID == partyID {
			c.PartyID = nil
		}
	}
	delete(f.parties, partyID)
	return nil
}

// testWorld bundles the fakes behind one service.
type testWorld struct {
	repo       *fakeRepository
	characters *fakeCharacters
	roster     *fakeRoster
	service    *Service
}

func newTestWorld() *testWorld {
	shared := map[string]*character.Character{}
	repo := &fakeRepository{parties: map[string]*Party{}, characters: shared}
	characters := &fakeCharacters{characters: shared}
	roster := newFakeRoster()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return &testWorld{
		repo:       repo,
		characters: characters,
		roster:     roster,
		service:    NewService(repo, characters, roster, logger),
	}
}

/*
TestCreateParty_OneLeadershipSystemWide verifies a user cannot lead two
parties even across different guilds.
*/
func TestCreateParty_OneLeadershipSystemWide(t *testing.T) {
	world := newTestWorld()
	userID := uuid.New()
	guildA := world.roster.addGuild(userID)
	guildB := world.roster.addGuild(uuid.New())
	world.roster.addMember(guildB, userID, guild.StatusActive)

	_, err := world.service.CreateParty(context.Background(), userID, guildA, "Vanguard")
	require.NoError(t, err)

	_, err = world.service.CreateParty(context.Background(), userID, guildB, "Rearguard")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

/*
TestCreateParty_RacingCreationsResolveToOneWinner verifies that when the
pre-check misses (both racers saw no led party) the store-level uniqueness
still rejects the loser with a retryable conflict.
*/
func TestCreateParty_RacingCreationsResolveToOneWinner(t *testing.T) {
	world := newTestWorld()
	userID := uuid.New()
	guildA := world.roster.addGuild(userID)

	_, err := world.service.CreateParty(context.Background(), userID, guildA, "Vanguard")
	require.NoError(t, err)

	// Simulate the second racer reaching the store after the first committed.
	loser := &Party{ID: uuid.New(), GuildID: guildA, LeaderID: userID, Name: "Rearguard"}
	err = world.repo.Create(context.Background(), loser)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	assert.True(t, apperr.As(err).Retryable)
}

/*
TestCreateParty_RequiresActiveMembership verifies a pending invitee or an
outsider cannot form a party.
*/
func TestCreateParty_RequiresActiveMembership(t *testing.T) {
	world := newTestWorld()
	leaderID, pendingID, outsiderID := uuid.New(), uuid.New(), uuid.New()
	guildID := world.roster.addGuild(leaderID)
	world.roster.addMember(guildID, pendingID, guild.StatusPending)

	_, err := world.service.CreateParty(context.Background(), outsiderID, guildID, "Vanguard")
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	_, err = world.service.CreateParty(context.Background(), pendingID, guildID, "Vanguard")
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))
}

/*
TestCreateParty_DuplicateNamePerGuild verifies name uniqueness is scoped to
the guild, not the whole system.
*/
func TestCreateParty_DuplicateNamePerGuild(t *testing.T) {
	world := newTestWorld()
	leaderA, leaderB, memberID := uuid.New(), uuid.New(), uuid.New()
	guildA := world.roster.addGuild(leaderA)
	guildB := world.roster.addGuild(leaderB)
	world.roster.addMember(guildA, memberID, guild.StatusActive)

	_, err := world.service.CreateParty(context.Background(), leaderA, guildA, "Vanguard")
	require.NoError(t, err)

	// Same name, same guild: conflict (case-insensitive).
	_, err = world.service.CreateParty(context.Background(), memberID, guildA, "vanguard")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	// Same name, different guild: fine.
	_, err = world.service.CreateParty(context.Background(), leaderB, guildB, "Vanguard")
	require.NoError(t, err)
}

/*
TestAddCharacter_SlotRules verifies leader-only management, the owner's
membership requirement, and the no-implicit-transfer rule.
*/
func TestAddCharacter_SlotRules(t *testing.T) {
	world := newTestWorld()
	leaderID, ownerID, otherLeaderID := uuid.New(), uuid.New(), uuid.New()
	guildID := world.roster.addGuild(uuid.New())
	world.roster.addMember(guildID, leaderID, guild.StatusActive)
	world.roster.addMember(guildID, ownerID, guild.StatusActive)
	world.roster.addMember(guildID, otherLeaderID, guild.StatusActive)

	party, err := world.service.CreateParty(context.Background(), leaderID, guildID, "Vanguard")
	require.NoError(t, err)
	other, err := world.service.CreateParty(context.Background(), otherLeaderID, guildID, "Rearguard")
	require.NoError(t, err)

	heroID := world.characters.addCharacter(ownerID, uuid.New())

	// Only the party leader seats characters.
	err = world.service.AddCharacter(context.Background(), ownerID, party.ID, heroID)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	require.NoError(t, world.service.AddCharacter(context.Background(), leaderID, party.ID, heroID))

	// Re-adding a seated member is a no-op success.
	require.NoError(t, world.service.AddCharacter(context.Background(), leaderID, party.ID, heroID))

	// No implicit transfer between parties.
	err = world.service.AddCharacter(context.Background(), otherLeaderID, other.ID, heroID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_STATE"))

	// After an explicit removal the other party may seat it.
	require.NoError(t, world.service.RemoveCharacter(context.Background(), leaderID, party.ID, heroID))
	require.NoError(t, world.service.AddCharacter(context.Background(), otherLeaderID, other.ID, heroID))
}

/*
TestAddCharacter_OwnerMustBeActiveInGuild verifies a character whose owner
lacks active membership in the party's guild cannot be seated.
*/
func TestAddCharacter_OwnerMustBeActiveInGuild(t *testing.T) {
	world := newTestWorld()
	leaderID, outsideOwnerID := uuid.New(), uuid.New()
	guildID := world.roster.addGuild(leaderID)

	party, err := world.service.CreateParty(context.Background(), leaderID, guildID, "Vanguard")
	require.NoError(t, err)

	strayID := world.characters.addCharacter(outsideOwnerID, uuid.New())

	err = world.service.AddCharacter(context.Background(), leaderID, party.ID, strayID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_STATE"))
}

/*
TestTransferLeadership verifies the guild-leadership transfer pattern applies
to parties, including revalidation of the one-party-per-leader invariant.
*/
func TestTransferLeadership(t *testing.T) {
	world := newTestWorld()
	leaderID, memberID, busyID, pendingID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	guildID := world.roster.addGuild(uuid.New())
	world.roster.addMember(guildID, leaderID, guild.StatusActive)
	world.roster.addMember(guildID, memberID, guild.StatusActive)
	world.roster.addMember(guildID, busyID, guild.StatusActive)
	world.roster.addMember(guildID, pendingID, guild.StatusPending)

	party, err := world.service.CreateParty(context.Background(), leaderID, guildID, "Vanguard")
	require.NoError(t, err)
	_, err = world.service.CreateParty(context.Background(), busyID, guildID, "Rearguard")
	require.NoError(t, err)

	// Only the current leader may transfer.
	_, err = world.service.TransferLeadership(context.Background(), memberID, party.ID, memberID)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	// A pending invitee cannot take leadership.
	_, err = world.service.TransferLeadership(context.Background(), leaderID, party.ID, pendingID)
	assert.True(t, apperr.IsCode(err, "INVALID_STATE"))

	// A user leading another party cannot take a second one.
	_, err = world.service.TransferLeadership(context.Background(), leaderID, party.ID, busyID)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	// Transferring to oneself is a no-op success.
	unchanged, err := world.service.TransferLeadership(context.Background(), leaderID, party.ID, leaderID)
	require.NoError(t, err)
	assert.Equal(t, leaderID, unchanged.LeaderID)

	updated, err := world.service.TransferLeadership(context.Background(), leaderID, party.ID, memberID)
	require.NoError(t, err)
	assert.Equal(t, memberID, updated.LeaderID)
}

/*
TestDisbandParty_ClearsSlots verifies disbanding vacates every member slot
before the party disappears.
*/
func TestDisbandParty_ClearsSlots(t *testing.T) {
	world := newTestWorld()
	leaderID, ownerID := uuid.New(), uuid.New()
	guildID := world.roster.addGuild(leaderID)
	world.roster.addMember(guildID, ownerID, guild.StatusActive)

	party, err := world.service.CreateParty(context.Background(), leaderID, guildID, "Vanguard")
	require.NoError(t, err)

	heroID := world.characters.addCharacter(ownerID, uuid.New())
	require.NoError(t, world.service.AddCharacter(context.Background(), leaderID, party.ID, heroID))

	// Only the leader may disband.
	err = world.service.DisbandParty(context.Background(), ownerID, party.ID)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	require.NoError(t, world.service.DisbandParty(context.Background(), leaderID, party.ID))

	_, err = world.service.GetParty(context.Background(), party.ID)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))

	seated, err := world.characters.FindByID(context.Background(), heroID)
	require.NoError(t, err)
	assert.Nil(t, seated.PartyID)
}
