// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package identity

import (
	"context"
	"log/slog"

	"github.com/tranquangduy/midgard/internal/platform/apperr"
	"github.com/tranquangduy/midgard/internal/platform/sec"
	"github.com/tranquangduy/midgard/internal/platform/validate"
	"github.com/tranquangduy/midgard/pkg/uuid"
)

// # Service Layer

// Service orchestrates identity resolution and local account sync.
//
// It satisfies [middleware.IdentityResolver]: the authentication middleware
// calls [Service.Resolve] on every token-bearing request.
type Service struct {
	repo   Repository
	cache  Cache
	logger *slog.Logger
}

// NewService constructs a new identity [Service].
func NewService(repo Repository, cache Cache, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

/*
Resolve maps verified provider claims to the internal user id, creating or
refreshing the local account record on the way (sync-on-login).

Description: The hot path is a single cache read. On a miss, the profile
embedded in the token is upserted keyed by external id, the canonical internal
id comes back from the database, and the mapping is cached for subsequent
requests.

Parameters:
  - context: context.Context
  - claims: *sec.AuthClaims (Verified identity-provider token payload)

Returns:
  - string: Internal user UUID
  - error: Validation or persistence failures
*/
func (service *Service) Resolve(context context.Context, claims *sec.AuthClaims) (string, error) {

	// Hot path: cached mapping, no database touch.
	if userID, ok := service.cache.GetUserID(context, claims.ExternalID); ok {
		return userID, nil
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, claims.Name).MaxLen(FieldName, claims.Name, 100)
	validator.Required(FieldContact, claims.Contact)
	validator.Range(FieldAge, claims.Age, 0, 150)
	if claims.Email != "" {
		validator.Email(FieldEmail, claims.Email)
	}
	if err := validator.Err(); err != nil {
		return "", err
	}

	user := &User{
		ID:         uuid.New(), // Discarded if the external id already exists.
		ExternalID: claims.ExternalID,
		Name:       claims.Name,
		Contact:    claims.Contact,
		Age:        claims.Age,
	}
	if claims.Email != "" {
		user.Email = &claims.Email
	}

	if err := service.repo.Upsert(context, user); err != nil {
		return "", err
	}

	service.cache.SetUserID(context, claims.ExternalID, user.ID)

	service.logger.Info("identity_resolved",
		slog.String("user_id", user.ID),
		slog.String("external_id", claims.ExternalID),
	)

	return user.ID, nil
}

/*
GetUser retrieves the local account record by internal id.

Parameters:
  - context: context.Context
  - id: string (UUID)

Returns:
  - *User: Hydrated account
  - error: ErrNotFound if missing
*/
func (service *Service) GetUser(context context.Context, id string) (*User, error) {
	if id == "" {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return service.repo.FindByID(context, id)
}
