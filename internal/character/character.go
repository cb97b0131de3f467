// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

/*
Package character manages player characters, their tag assignment, and their
combat-context roles.

A character is a user's in-game persona. It always belongs to exactly one tag
(and through it, one guild), may occupy one party slot, and carries a set of
role markers governing which combat contexts it participates in.

# Core Responsibility

  - Roster: Defines the [Character] entity with global name uniqueness.
  - Governance: Mutations require the owner or an officer of the governing guild.
  - Roles: Enforces the WOE/WOE_TE mutual exclusion as a guarded transition —
    replacement of the held exclusive role is an explicit caller decision,
    never implicit.

# Orphaned Characters

When an owner loses active membership in the governing guild, the character
persists ("orphaned") but tag reassignment and new role grants are refused
until membership is restored.
*/
package character

import "time"

// # Role Enums

// Role is a combat-context marker attachable to a character.
//
// WOE and WOE_TE are mutually exclusive per character; PVE coexists with either.
type Role string

const (
	RoleWoe   Role = "WOE"
	RoleWoeTE Role = "WOE_TE"
	RolePVE   Role = "PVE"
)

// IsExclusive reports whether the role participates in the WOE/WOE_TE
// mutual-exclusion pair.
func (r Role) IsExclusive() bool { return r == RoleWoe || r == RoleWoeTE }

// counterpart returns the other member of the exclusive pair.
func (r Role) counterpart() Role {
	if r == RoleWoe {
		return RoleWoeTE
	}
	return RoleWoe
}

// # Core Entities

// Character represents a player's in-game persona.
//
// # Rules
//   - Name is unique across the whole system (case-insensitive).
//   - TagID is mandatory: a character always belongs to exactly one tag.
//   - PartyID is nil unless the character occupies a party slot.
type Character struct {
	ID        string    `json:"id"` // UUIDv7
	OwnerID   string    `json:"owner_id"`
	TagID     string    `json:"tag_id"`
	PartyID   *string   `json:"party_id,omitempty"`
	Name      string    `json:"name"`
	Roles     []Role    `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasRole reports whether the character currently holds the given role.
func (c *Character) HasRole(role Role) bool {
	for _, held := range c.Roles {
		if held == role {
			return true
		}
	}
	return false
}

// # Field Identifiers

const (
	FieldName  = "name"
	FieldTagID = "tag_id"
	FieldRole  = "role"
)
