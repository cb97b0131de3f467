// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package identity

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/sec"
)

// fakeRepository is an in-memory [Repository] keyed by external id.
type fakeRepository struct {
	byExternal map[string]*User
	upserts    int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{byExternal: map[string]*User{}}
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*User, error) {
	for _, user := range f.byExternal {
		if user.ID == id {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeRepository) FindByExternalID(_ context.Context, externalID string) (*User, error) {
	if user, ok := f.byExternal[externalID]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, apperr.NotFound("User")
}

func (f *fakeRepository) Upsert(_ context.Context, user *User) error {
	f.upserts++
	if existing, ok := f.byExternal[user.ExternalID]; ok {
		// Conflict path: the original internal id wins, profile refreshes.
		existing.Name = user.Name
		existing.Email = user.Email
		existing.Contact = user.Contact
		existing.Age = user.Age
		user.ID = existing.ID
		return nil
	}
	clone := *user
	f.byExternal[user.ExternalID] = &clone
	return nil
}

// fakeCache is an in-memory [Cache].
type fakeCache struct {
	entries map[string]string
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (f *fakeCache) GetUserID(_ context.Context, externalID string) (string, bool) {
	id, ok := f.entries[externalID]
	if ok {
		f.hits++
	}
	return id, ok
}

func (f *fakeCache) SetUserID(_ context.Context, externalID, userID string) {
	f.entries[externalID] = userID
}

func newTestService(repo Repository, cache Cache) *Service {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewService(repo, cache, logger)
}

func providerClaims(externalID string) *sec.AuthClaims {
	return &sec.AuthClaims{
		ExternalID: externalID,
		Name:       "Niflheim",
		Email:      "nif@midgard.gg",
		Contact:    "discord:nif#0001",
		Age:        24,
	}
}

/*
TestResolve_FirstRequestCreatesAccount verifies sync-on-login: the first
authenticated request materializes a local account and caches the mapping.
*/
func TestResolve_FirstRequestCreatesAccount(t *testing.T) {
	repo := newFakeRepository()
	cache := newFakeCache()
	service := newTestService(repo, cache)

	userID, err := service.Resolve(context.Background(), providerClaims("prov-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, userID)

	// Account synced from claims
	user, err := repo.FindByExternalID(context.Background(), "prov-1")
	require.NoError(t, err)
	assert.Equal(t, "Niflheim", user.Name)
	require.NotNil(t, user.Email)
	assert.Equal(t, "nif@midgard.gg", *user.Email)

	// Mapping cached for the next request
	cached, ok := cache.GetUserID(context.Background(), "prov-1")
	assert.True(t, ok)
	assert.Equal(t, userID, cached)
}

/*
TestResolve_CacheHitSkipsDatabase verifies the hot path touches neither the
validator nor the repository once the mapping is cached.
*/
func TestResolve_CacheHitSkipsDatabase(t *testing.T) {
	repo := newFakeRepository()
	cache := newFakeCache()
	service := newTestService(repo, cache)

	first, err := service.Resolve(context.Background(), providerClaims("prov-2"))
	require.NoError(t, err)

	second, err := service.Resolve(context.Background(), providerClaims("prov-2"))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.upserts, "second resolve must be served from cache")
}

/*
TestResolve_InternalIDStableAcrossLogins verifies that a repeat login with
changed profile fields refreshes the record but keeps the internal id.
*/
func TestResolve_InternalIDStableAcrossLogins(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, newFakeCache())

	first, err := service.Resolve(context.Background(), providerClaims("prov-3"))
	require.NoError(t, err)

	// Same identity, renamed profile, cold cache.
	changed := providerClaims("prov-3")
	changed.Name = "Niflheim Renamed"
	second, err := newTestService(repo, newFakeCache()).Resolve(context.Background(), changed)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	user, err := repo.FindByExternalID(context.Background(), "prov-3")
	require.NoError(t, err)
	assert.Equal(t, "Niflheim Renamed", user.Name)
}

/*
TestResolve_RejectsInvalidClaims verifies claim validation before persistence.
*/
func TestResolve_RejectsInvalidClaims(t *testing.T) {
	repo := newFakeRepository()
	service := newTestService(repo, newFakeCache())

	claims := providerClaims("prov-4")
	claims.Name = ""

	_, err := service.Resolve(context.Background(), claims)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
	assert.Zero(t, repo.upserts)

	// Out-of-range age is refused even with an otherwise valid profile.
	claims = providerClaims("prov-5")
	claims.Age = -1

	_, err = service.Resolve(context.Background(), claims)
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "VALIDATION_ERROR"))
	assert.Zero(t, repo.upserts)
}

/*
TestGetUser_RequiresActor verifies anonymous lookups are rejected.
*/
func TestGetUser_RequiresActor(t *testing.T) {
	service := newTestService(newFakeRepository(), newFakeCache())

	_, err := service.GetUser(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperr.IsCode(err, "UNAUTHORIZED"))
}
