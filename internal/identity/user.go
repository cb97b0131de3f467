// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

/*
Package identity manages local user accounts synced from the external
identity provider.

The roster engine does not own login, registration, or sessions. Accounts are
created and refreshed lazily: the first authenticated request carrying a valid
provider token materializes a local [User] row, and subsequent requests keep
the profile fields in sync with the token claims.

# Core Responsibility

  - Anchor: Defines the [User] entity every roster relationship references.
  - Sync-on-login: Upserts the local record from verified provider claims.
  - Resolution: Maps external identities to internal UUIDs, cached in Redis.

Guild membership, character ownership, and party leadership all hang off the
internal user id produced by this package.
*/
package identity

import "time"

// User represents a local account mirroring an external provider identity.
//
// # Rules
//   - ExternalID is the provider-scoped unique identity; it never changes.
//   - Email is optional (the provider does not always share it) but unique when present.
//   - Contact is a provider-verified handle, unique across accounts.
//   - Accounts are never hard-deleted: roster history must stay resolvable.
type User struct {
	ID         string    `json:"id"` // UUIDv7
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Email      *string   `json:"email,omitempty"`
	Contact    string    `json:"contact"`
	Age        int       `json:"age"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldContact = "contact"
	FieldAge     = "age"
)
