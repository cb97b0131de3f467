// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package identity

import "context"

// # User Data Access

// Repository defines the data access contract for local user accounts.
type Repository interface {

	/*
		FindByID retrieves a user by internal UUID.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *User: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByExternalID retrieves a user by the provider-scoped identity.

		Parameters:
		  - context: context.Context
		  - externalID: string

		Returns:
		  - *User: Hydrated entity
		  - error: ErrNotFound if missing
	*/
	FindByExternalID(context context.Context, externalID string) (*User, error)

	/*
		Upsert inserts a user keyed by external id, or refreshes the profile
		fields if the row already exists.

		Description: Races between two first requests for the same identity are
		resolved by the unique index on externalid; both callers observe the
		same internal id afterwards.

		Parameters:
		  - context: context.Context
		  - user: *User (ID is populated on insert, overwritten on conflict)

		Returns:
		  - error: Persistence failures
	*/
	Upsert(context context.Context, user *User) error
}

// Cache defines the volatile external-id to internal-id mapping.
//
// A miss is not an error: callers fall through to the repository and
// repopulate. Failures degrade to the same path.
type Cache interface {
	GetUserID(context context.Context, externalID string) (string, bool)
	SetUserID(context context.Context, externalID, userID string)
}
