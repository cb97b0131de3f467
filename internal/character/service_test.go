// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package character

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranquangduy/midgard/internal/guild"
	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/tag"
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

func (f *fakeRoster) addMember(guildID, userID string, role guild.Role, status guild.Status) {
	f.members[guildID][userID] = &guild.Member{GuildID: guildID, UserID: userID, Role: role, Status: status}
}

func (f *fakeRoster) removeMember(guildID, userID string) {
	delete(f.members[guildID], userID)
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

// fakeTags is an in-memory [TagDirectory].
type fakeTags struct {
	tags map[string]*tag.Tag
}

func newFakeTags() *fakeTags {
	return &fakeTags{tags: map[string]*tag.Tag{}}
}

func (f *fakeTags) addTag(guildID string) string {
	id := uuid.New()
	f.tags[id] = &tag.Tag{ID: id, GuildID: guildID, Name: "tag-" + id[:8]}
	return id
}

func (f *fakeTags) FindByID(_ context.Context, id string) (*tag.Tag, error) {
	if t, ok := f.tags[id]; ok {
		return t, nil
	}
	return nil, apperr.NotFound("Tag")
}

// fakeRepository is an in-memory character [Repository].
type fakeRepository struct {
	characters map[string]*Character
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{characters: map[string]*Character{}}
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*Character, error) {
	if c, ok := f.characters[id]; ok {
		clone := *c
		clone.Roles = append([]Role(nil), c.Roles...)
		return &clone, nil
	}
	return nil, apperr.NotFound("Character")
}

func (f *fakeRepository) ListByOwner(_ context.Context, ownerID string) ([]*Character, error) {
	var out []*Character
	for _, c := range f.characters {
		if c.OwnerID == ownerID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListByTag(_ context.Context, tagID string) ([]*Character, error) {
	var out []*Character
	for _, c := range f.characters {
		if c.TagID == tagID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (f *fakeRepository) Create(_ context.Context, character *Character) error {
	for _, existing := range f.characters {
		if strings.EqualFold(existing.Name, character.Name) {
			return apperr.RetryableConflict("Resource already exists")
		}
	}
	clone := *character
	f.characters[character.ID] = &clone
	return nil
}

func (f *fakeRepository) UpdateTag(_ context.Context, id, tagID string) error {
	c, ok := f.characters[id]
	if !ok {
		return apperr.NotFound("Character")
	}
	c.TagID = tagID
	return nil
}

func (f *fakeRepository) AssignRole(_ context.Context, characterID string, role Role) error {
	c, ok := f.characters[characterID]
	if !ok {
		return apperr.NotFound("Character")
	}
	if c.HasRole(role) {
		return nil
	}
	// Mirrors the partial unique index over the exclusive pair.
	if role.IsExclusive() && c.HasRole(role.counterpart()) {
		return apperr.RetryableConflict("Resource already exists")
	}
	c.Roles = append(c.Roles, role)
	return nil
}

func (f *fakeRepository) ReplaceExclusiveRole(_ context.Context, characterID string, oldRole, newRole Role) error {
	c, ok := f.characters[characterID]
	if !ok {
		return apperr.NotFound("Character")
	}
	kept := c.Roles[:0]
	for _, held := range c.Roles {
		if held != oldRole {
			kept = append(kept, held)
		}
	}
	c.Roles = append(kept, newRole)
	return nil
}

func (f *fakeRepository) RemoveRole(_ context.Context, characterID string, role Role) error {
	c, ok := f.characters[characterID]
	if !ok {
		return apperr.NotFound("Character")
	}
	for i, held := range c.Roles {
		if held == role {
			c.Roles = append(c.Roles[:i], c.Roles[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Role")
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.characters[id]; !ok {
		return apperr.NotFound("Character")
	}
	delete(f.characters, id)
	return nil
}

// testWorld bundles the three fakes behind one service.
type testWorld struct {
	repo    *fakeRepository
	tags    *fakeTags
	roster  *fakeRoster
	service *Service
}

func newTestWorld() *testWorld {
	repo := newFakeRepository()
	tags := newFakeTags()
	roster := newFakeRoster()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return &testWorld{
		repo:    repo,
		tags:    tags,
		roster:  roster,
		service: NewService(repo, tags, roster, logger),
	}
}

/*
TestCreateCharacter_RequiresActiveMembership verifies the cross-entity rule:
the owner must be an active member of the tag's guild.
*/
func TestCreateCharacter_RequiresActiveMembership(t *testing.T) {
	world := newTestWorld()
	leaderID, pendingID, outsiderID := uuid.New(), uuid.New(), uuid.New()
	guildID := world.roster.addGuild(leaderID)
	tagID := world.tags.addTag(guildID)
	world.roster.addMember(guildID, pendingID, guild.RoleMember, guild.StatusPending)

	// Outsider has no relationship at all.
	_, err := world.service.CreateCharacter(context.Background(), outsiderID, "Hero1", tagID)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	// A pending invitee is not an active member yet.
	_, err = world.service.CreateCharacter(context.Background(), pendingID, "Hero1", tagID)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	// The leader qualifies.
	created, err := world.service.CreateCharacter(context.Background(), leaderID, "Hero1", tagID)
	require.NoError(t, err)
	assert.Equal(t, leaderID, created.OwnerID)
	assert.Equal(t, tagID, created.TagID)
}

/*
TestCreateCharacter_GloballyUniqueName verifies name uniqueness spans guilds.
*/
func TestCreateCharacter_GloballyUniqueName(t *testing.T) {
	world := newTestWorld()
	leaderA, leaderB := uuid.New(), uuid.New()
	tagA := world.tags.addTag(world.roster.addGuild(leaderA))
	tagB := world.tags.addTag(world.roster.addGuild(leaderB))

	_, err := world.service.CreateCharacter(context.Background(), leaderA, "Hero1", tagA)
	require.NoError(t, err)

	_, err = world.service.CreateCharacter(context.Background(), leaderB, "hero1", tagB)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
}

/*
TestAssignRole_ExclusivePair covers the exclusive pair end to end: WOE held,
WOE_TE without replace fails, with replace swaps atomically, PVE coexists.
*/
func TestAssignRole_ExclusivePair(t *testing.T) {
	world := newTestWorld()
	leaderID := uuid.New()
	tagID := world.tags.addTag(world.roster.addGuild(leaderID))

	hero, err := world.service.CreateCharacter(context.Background(), leaderID, "Hero1", tagID)
	require.NoError(t, err)

	// Grant WOE.
	hero, err = world.service.AssignRole(context.Background(), leaderID, hero.ID, RoleWoe, false)
	require.NoError(t, err)
	assert.True(t, hero.HasRole(RoleWoe))

	// WOE_TE without replace conflicts.
	_, err = world.service.AssignRole(context.Background(), leaderID, hero.ID, RoleWoeTE, false)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_STATE"))

	// PVE is independent of the exclusive pair.
	hero, err = world.service.AssignRole(context.Background(), leaderID, hero.ID, RolePVE, false)
	require.NoError(t, err)
	assert.True(t, hero.HasRole(RolePVE))

	// With replace, the held exclusive role is swapped.
	hero, err = world.service.AssignRole(context.Background(), leaderID, hero.ID, RoleWoeTE, true)
	require.NoError(t, err)
	assert.True(t, hero.HasRole(RoleWoeTE))
	assert.False(t, hero.HasRole(RoleWoe))
	assert.True(t, hero.HasRole(RolePVE))
}

/*
TestAssignRole_RacingExclusiveGrantsResolveToOneWinner verifies the storage
backstop for the exclusive pair: when two concurrent grants both read an
empty role set, the second writer reaching the store after the first commit
loses with a retryable conflict instead of committing both roles.
*/
func TestAssignRole_RacingExclusiveGrantsResolveToOneWinner(t *testing.T) {
	world := newTestWorld()
	leaderID := uuid.New()
	tagID := world.tags.addTag(world.roster.addGuild(leaderID))

	hero, err := world.service.CreateCharacter(context.Background(), leaderID, "Hero1", tagID)
	require.NoError(t, err)

	_, err = world.service.AssignRole(context.Background(), leaderID, hero.ID, RoleWoe, false)
	require.NoError(t, err)

	// Simulate the second racer reaching the store after the first committed.
	err = world.repo.AssignRole(context.Background(), hero.ID, RoleWoeTE)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))
	assert.True(t, apperr.As(err).Retryable)

	held, err := world.service.GetCharacter(context.Background(), hero.ID)
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleWoe}, held.Roles)
}

/*
TestAssignRole_DuplicateIsNoOp verifies re-granting a held role succeeds
without any state change.
*/
func TestAssignRole_DuplicateIsNoOp(t *testing.T) {
	world := newTestWorld()
	leaderID := uuid.New()
	tagID := world.tags.addTag(world.roster.addGuild(leaderID))

	hero, err := world.service.CreateCharacter(context.Background(), leaderID, "Hero1", tagID)
	require.NoError(t, err)

	hero, err = world.service.AssignRole(context.Background(), leaderID, hero.ID, RoleWoe, false)
	require.NoError(t, err)

	hero, err = world.service.AssignRole(context.Background(), leaderID, hero.ID, RoleWoe, false)
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleWoe}, hero.Roles)
}

/*
TestAssignRole_GovernanceAuthorization verifies owner and governing officer
may grant roles while plain members may not.
*/
func TestAssignRole_GovernanceAuthorization(t *testing.T) {
	world := newTestWorld()
	leaderID, ownerID, officerID, memberID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	guildID := world.roster.addGuild(leaderID)
	tagID := world.tags.addTag(guildID)
	world.roster.addMember(guildID, ownerID, guild.RoleMember, guild.StatusActive)
	world.roster.addMember(guildID, officerID, guild.RoleOfficer, guild.StatusActive)
	world.roster.addMember(guildID, memberID, guild.RoleMember, guild.StatusActive)

	hero, err := world.service.CreateCharacter(context.Background(), ownerID, "Hero1", tagID)
	require.NoError(t, err)

	// A plain member who is not the owner is refused.
	_, err = world.service.AssignRole(context.Background(), memberID, hero.ID, RolePVE, false)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	// A governing officer may grant.
	_, err = world.service.AssignRole(context.Background(), officerID, hero.ID, RolePVE, false)
	require.NoError(t, err)
}

/*
TestReassignTag_CrossGuildDenied verifies the destination guild must be one
where the OWNER holds active membership.
*/
func TestReassignTag_CrossGuildDenied(t *testing.T) {
	world := newTestWorld()
	leaderA, leaderB, ownerID := uuid.New(), uuid.New(), uuid.New()
	guildA := world.roster.addGuild(leaderA)
	guildB := world.roster.addGuild(leaderB)
	tagA := world.tags.addTag(guildA)
	tagA2 := world.tags.addTag(guildA)
	tagB := world.tags.addTag(guildB)
	world.roster.addMember(guildA, ownerID, guild.RoleMember, guild.StatusActive)

	hero, err := world.service.CreateCharacter(context.Background(), ownerID, "Hero1", tagA)
	require.NoError(t, err)

	// Owner is not a member of guild B.
	_, err = world.service.ReassignTag(context.Background(), ownerID, hero.ID, tagB)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_STATE"))

	// Sibling tag within the same guild is fine.
	moved, err := world.service.ReassignTag(context.Background(), ownerID, hero.ID, tagA2)
	require.NoError(t, err)
	assert.Equal(t, tagA2, moved.TagID)

	// Once the owner joins guild B, the move is allowed.
	world.roster.addMember(guildB, ownerID, guild.RoleMember, guild.StatusActive)
	moved, err = world.service.ReassignTag(context.Background(), ownerID, hero.ID, tagB)
	require.NoError(t, err)
	assert.Equal(t, tagB, moved.TagID)
}

/*
TestOrphanedCharacter_Frozen verifies that after the owner loses membership
the character persists but reassignment and new role grants are refused,
while removal operations still work.
*/
func TestOrphanedCharacter_Frozen(t *testing.T) {
	world := newTestWorld()
	leaderID, ownerID := uuid.New(), uuid.New()
	guildID := world.roster.addGuild(leaderID)
	tagID := world.tags.addTag(guildID)
	tag2 := world.tags.addTag(guildID)
	world.roster.addMember(guildID, ownerID, guild.RoleMember, guild.StatusActive)

	hero, err := world.service.CreateCharacter(context.Background(), ownerID, "Hero1", tagID)
	require.NoError(t, err)
	_, err = world.service.AssignRole(context.Background(), ownerID, hero.ID, RoleWoe, false)
	require.NoError(t, err)

	// Owner leaves the guild; the character is now orphaned.
	world.roster.removeMember(guildID, ownerID)

	_, err = world.service.ReassignTag(context.Background(), ownerID, hero.ID, tag2)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_STATE"))

	_, err = world.service.AssignRole(context.Background(), ownerID, hero.ID, RolePVE, false)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_STATE"))

	// Removal paths stay open so orphans can be cleaned up.
	require.NoError(t, world.service.RemoveRole(context.Background(), ownerID, hero.ID, RoleWoe))
	require.NoError(t, world.service.DeleteCharacter(context.Background(), ownerID, hero.ID))
}

/*
TestDeleteCharacter_Cascades verifies deletion removes the record and its roles.
*/
func TestDeleteCharacter_Cascades(t *testing.T) {
	world := newTestWorld()
	leaderID := uuid.New()
	tagID := world.tags.addTag(world.roster.addGuild(leaderID))

	hero, err := world.service.CreateCharacter(context.Background(), leaderID, "Hero1", tagID)
	require.NoError(t, err)
	_, err = world.service.AssignRole(context.Background(), leaderID, hero.ID, RoleWoe, false)
	require.NoError(t, err)

	require.NoError(t, world.service.DeleteCharacter(context.Background(), leaderID, hero.ID))

	_, err = world.service.GetCharacter(context.Background(), hero.ID)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}
