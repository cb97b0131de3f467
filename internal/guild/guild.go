// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

/*
Package guild manages guild lifecycle, leadership, and the membership
invite workflow.

It is the root of the roster hierarchy: tags, characters, and parties all
reference a guild, and most mutating commands elsewhere in the engine derive
their authorization from the membership records owned here.

# Core Responsibility

  - Registry: Defines the [Guild] entity, its leadership, and its lifecycle.
  - Membership: Owns the [Member] state machine (absent → PENDING → ACTIVE → absent).
  - Authorization source: Active membership and officer role gate privileged
    commands across the whole engine.

# Consistency

Every compound command (create, leadership transfer, deletion, leave/kick)
runs as a single transaction. Invariants are validated before any write, and
uniqueness races between concurrent transactions surface as retryable
conflicts through the storage layer.
*/
package guild

import "time"

// # Membership Enums

// Role defines the authority level of a member within a guild.
type Role string

const (
	RoleMember  Role = "MEMBER"
	RoleOfficer Role = "OFFICER"
)

// Status defines the lifecycle state of a membership record.
//
// PENDING means invited but not yet accepted. Only ACTIVE members count
// toward headcount, permission checks, and character/party eligibility.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusActive  Status = "ACTIVE"
)

// # Core Entities

// Guild represents a top-level player organization.
//
// # Rules
//   - Name is unique across the system (case-insensitive).
//   - The leader always holds an ACTIVE membership with role OFFICER.
type Guild struct {
	ID        string    `json:"id"` // UUIDv7
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	LeaderID  string    `json:"leader_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member represents a user's relationship with a guild.
//
// # Rules
//   - At most one row exists per (guild, user) pair, regardless of status.
//   - InvitedBy records the officer who issued the invite; nil for founders.
//   - JoinedAt is set when the invite is accepted, never before.
type Member struct {
	GuildID   string     `json:"guild_id"`
	UserID    string     `json:"user_id"`
	Role      Role       `json:"role"`
	Status    Status     `json:"status"`
	InvitedBy *string    `json:"invited_by,omitempty"`
	InvitedAt time.Time  `json:"invited_at"`
	JoinedAt  *time.Time `json:"joined_at,omitempty"`
}

// IsActive reports whether the membership counts toward the roster.
func (m *Member) IsActive() bool { return m.Status == StatusActive }

// IsOfficer reports whether the member holds elevated authority.
func (m *Member) IsOfficer() bool { return m.Role == RoleOfficer }

// # Search & Filtering

// Filter holds parameters for searching and listing guilds.
type Filter struct {
	Query    string `json:"q"`
	LeaderID string `json:"leader_id"`
}

// # Field Identifiers

const (
	FieldName     = "name"
	FieldRole     = "role"
	FieldUserID   = "user_id"
	FieldLeaderID = "new_leader_id"
)
