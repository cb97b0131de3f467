// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package tag

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

// fakeRepository is an in-memory tag [Repository]. characterRefs counts
// characters per tag id to exercise the deletion guard.
type fakeRepository struct {
	tags          map[string]*Tag
	characterRefs map[string]int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{tags: map[string]*Tag{}, characterRefs: map[string]int{}}
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*Tag, error) {
	if tag, ok := f.tags[id]; ok {
		clone := *tag
		return &clone, nil
	}
	return nil, apperr.NotFound("Tag")
}

func (f *fakeRepository) ListByGuild(_ context.Context, guildID string) ([]*Tag, error) {
	var tags []*Tag
	for _, tag := range f.tags {
		if tag.GuildID == guildID {
			clone := *tag
			tags = append(tags, &clone)
		}
	}
	return tags, nil
}

func (f *fakeRepository) Create(_ context.Context, tag *Tag) error {
	for _, existing := range f.tags {
		if existing.GuildID == tag.GuildID && strings.EqualFold(existing.Name, tag.Name) {
			return apperr.RetryableConflict("Resource already exists")
		}
	}
	clone := *tag
	f.tags[tag.ID] = &clone
	return nil
}

func (f *fakeRepository) Rename(_ context.Context, id, name string) error {
	tag, ok := f.tags[id]
	if !ok {
		return apperr.NotFound("Tag")
	}
	for _, existing := range f.tags {
		if existing.ID != id && existing.GuildID == tag.GuildID && strings.EqualFold(existing.Name, name) {
			return apperr.RetryableConflict("Resource already exists")
		}
	}
	tag.Name = name
	return nil
}

func (f *fakeRepository) SetReserve(_ context.Context, id string, isReserve bool) error {
	tag, ok := f.tags[id]
	if !ok {
		return apperr.NotFound("Tag")
	}
	tag.IsReserve = isReserve
	return nil
}

func (f *fakeRepository) DeleteIfUnused(_ context.Context, id string) error {
	if _, ok := f.tags[id]; !ok {
		return apperr.NotFound("Tag")
	}
	if f.characterRefs[id] > 0 {
		return apperr.InvalidState("Tag is still referenced by characters")
	}
	delete(f.tags, id)
	return nil
}

func newTestService(repo Repository, roster GuildRoster) *Service {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewService(repo, roster, logger)
}

/*
TestCreateTag_OfficerAuthorization verifies only active officers (or the
leader) can create tags.
*/
func TestCreateTag_OfficerAuthorization(t *testing.T) {
	roster := newFakeRoster()
	service := newTestService(newFakeRepository(), roster)

	leaderID, officerID, memberID, pendingID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	guildID := roster.addGuild(leaderID)
	roster.addMember(guildID, officerID, guild.RoleOfficer, guild.StatusActive)
	roster.addMember(guildID, memberID, guild.RoleMember, guild.StatusActive)
	roster.addMember(guildID, pendingID, guild.RoleOfficer, guild.StatusPending)

	_, err := service.CreateTag(context.Background(), leaderID, guildID, "DPS", false)
	require.NoError(t, err)

	_, err = service.CreateTag(context.Background(), officerID, guildID, "Support", false)
	require.NoError(t, err)

	_, err = service.CreateTag(context.Background(), memberID, guildID, "Tanks", false)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))

	// Pending officers have not joined yet.
	_, err = service.CreateTag(context.Background(), pendingID, guildID, "Tanks", false)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))
}

/*
TestCreateTag_DuplicatePerGuild verifies name scoping: creating "DPS" twice
in the same guild conflicts, while another guild may reuse the name.
*/
func TestCreateTag_DuplicatePerGuild(t *testing.T) {
	roster := newFakeRoster()
	service := newTestService(newFakeRepository(), roster)

	leaderA, leaderB := uuid.New(), uuid.New()
	guildA := roster.addGuild(leaderA)
	guildB := roster.addGuild(leaderB)

	_, err := service.CreateTag(context.Background(), leaderA, guildA, "DPS", false)
	require.NoError(t, err)

	_, err = service.CreateTag(context.Background(), leaderA, guildA, "dps", false)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	// Uniqueness is per guild, not global.
	_, err = service.CreateTag(context.Background(), leaderB, guildB, "DPS", false)
	require.NoError(t, err)
}

/*
TestRenameTag_Collision verifies renaming onto an existing sibling conflicts.
*/
func TestRenameTag_Collision(t *testing.T) {
	roster := newFakeRoster()
	service := newTestService(newFakeRepository(), roster)

	leaderID := uuid.New()
	guildID := roster.addGuild(leaderID)

	dps, err := service.CreateTag(context.Background(), leaderID, guildID, "DPS", false)
	require.NoError(t, err)
	_, err = service.CreateTag(context.Background(), leaderID, guildID, "Support", false)
	require.NoError(t, err)

	_, err = service.RenameTag(context.Background(), leaderID, dps.ID, "Support")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "CONFLICT"))

	renamed, err := service.RenameTag(context.Background(), leaderID, dps.ID, "Strikers")
	require.NoError(t, err)
	assert.Equal(t, "Strikers", renamed.Name)
}

/*
TestDeleteTag_BlockedWhileReferenced verifies the in-use guard.
*/
func TestDeleteTag_BlockedWhileReferenced(t *testing.T) {
	roster := newFakeRoster()
	repo := newFakeRepository()
	service := newTestService(repo, roster)

	leaderID := uuid.New()
	guildID := roster.addGuild(leaderID)

	tag, err := service.CreateTag(context.Background(), leaderID, guildID, "DPS", false)
	require.NoError(t, err)

	repo.characterRefs[tag.ID] = 2
	err = service.DeleteTag(context.Background(), leaderID, tag.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "INVALID_STATE"))

	repo.characterRefs[tag.ID] = 0
	require.NoError(t, service.DeleteTag(context.Background(), leaderID, tag.ID))
	_, err = service.GetTag(context.Background(), tag.ID)
	assert.True(t, apperr.IsCode(err, "NOT_FOUND"))
}

/*
TestSetReserveFlag verifies the reserve toggle and its authorization.
*/
func TestSetReserveFlag(t *testing.T) {
	roster := newFakeRoster()
	service := newTestService(newFakeRepository(), roster)

	leaderID, memberID := uuid.New(), uuid.New()
	guildID := roster.addGuild(leaderID)
	roster.addMember(guildID, memberID, guild.RoleMember, guild.StatusActive)

	tag, err := service.CreateTag(context.Background(), leaderID, guildID, "Bench", false)
	require.NoError(t, err)

	updated, err := service.SetReserveFlag(context.Background(), leaderID, tag.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.IsReserve)

	_, err = service.SetReserveFlag(context.Background(), memberID, tag.ID, false)
	assert.True(t, apperr.IsCode(err, "FORBIDDEN"))
}
