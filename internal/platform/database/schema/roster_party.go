// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package schema

// RosterPartyTable represents the 'roster.party' table
type RosterPartyTable struct {
	Table     string
	ID        string
	GuildID   string
	LeaderID  string
	Name      string
	CreatedAt string
	UpdatedAt string
}

// RosterParty is the schema definition for roster.party
var RosterParty = RosterPartyTable{
	Table:     "roster.party",
	ID:        "id",
	GuildID:   "guildid",
	LeaderID:  "leaderid",
	Name:      "name",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t RosterPartyTable) Columns() []string {
	return []string{t.ID, t.GuildID, t.LeaderID, t.Name, t.CreatedAt, t.UpdatedAt}
}
