// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

/*
Package tag manages sub-guild categorization labels.

Tags partition a guild's character roster (by class, squad, or reserve
status). Every character carries exactly one tag, which makes tags the bridge
between guild membership and character governance.

# Core Responsibility

  - Categorization: Defines the [Tag] entity scoped to its owning guild.
  - Naming: Tag names are unique within their guild, not globally.
  - Protection: A tag referenced by characters cannot be deleted.

All mutating commands require an ACTIVE OFFICER membership in the owning guild.
*/
package tag

import "time"

// Tag represents a named sub-grouping within a guild.
//
// # Rules
//   - Name is unique among the guild's tags (case-insensitive).
//   - IsReserve marks bench/reserve groupings for roster planning.
//   - Deletion is blocked while any character references the tag.
type Tag struct {
	ID        string    `json:"id"` // UUIDv7
	GuildID   string    `json:"guild_id"`
	Name      string    `json:"name"`
	IsReserve bool      `json:"is_reserve"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Field Identifiers

const (
	FieldName = "name"
)
