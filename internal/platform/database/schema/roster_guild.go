// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package schema

// RosterGuildTable represents the 'roster.guild' table
type RosterGuildTable struct {
	Table     string
	ID        string
	Name      string
	Slug      string
	LeaderID  string
	CreatedAt string
	UpdatedAt string
}

// RosterGuild is the schema definition for roster.guild
var RosterGuild = RosterGuildTable{
	Table:     "roster.guild",
	ID:        "id",
	Name:      "name",
	Slug:      "slug",
	LeaderID:  "leaderid",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t RosterGuildTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.LeaderID, t.CreatedAt, t.UpdatedAt}
}

// RosterMemberTable represents the 'roster.guildmember' table
type RosterMemberTable struct {
	Table     string
	GuildID   string
	UserID    string
	Role      string
	Status    string
	InvitedBy string
	InvitedAt string
	JoinedAt  string
}

// RosterMember is the schema definition for roster.guildmember
var RosterMember = RosterMemberTable{
	Table:     "roster.guildmember",
	GuildID:   "guildid",
	UserID:    "userid",
	Role:      "role",
	Status:    "status",
	InvitedBy: "invitedby",
	InvitedAt: "invitedat",
	JoinedAt:  "joinedat",
}

func (t RosterMemberTable) Columns() []string {
	return []string{t.GuildID, t.UserID, t.Role, t.Status, t.InvitedBy, t.InvitedAt, t.JoinedAt}
}
