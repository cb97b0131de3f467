// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

/*
Package party coordinates party formation inside a guild.

A party is a small sub-group of characters led by one user. Two invariants
shape the whole package:

  - A user leads at most one party across the entire system, enforced by a
    unique index on the leader column so concurrent creations race safely.
  - A character occupies at most one party slot; moving between parties is an
    explicit remove-then-add, never an implicit transfer.

Party roster mutations are reserved for the party leader. Disbanding clears
every member character's slot before the party row disappears.
*/
package party

import "time"

// # Core Entities

// Party represents a character sub-group within a guild.
//
// # Rules
//   - Name is unique within the owning guild (case-insensitive).
//   - LeaderID leads at most one party system-wide.
type Party struct {
	ID        string    `json:"id"` // UUIDv7
	GuildID   string    `json:"guild_id"`
	LeaderID  string    `json:"leader_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Slot is a lightweight view of a character occupying a party slot.
type Slot struct {
	CharacterID string `json:"character_id"`
	OwnerID     string `json:"owner_id"`
	TagID       string `json:"tag_id"`
	Name        string `json:"name"`
}

// # Field Identifiers

const (
	FieldName        = "name"
	FieldGuildID     = "guild_id"
	FieldCharacterID = "character_id"
	FieldNewLeaderID = "new_leader_id"
)
