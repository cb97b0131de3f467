// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package schema

// RosterTagTable represents the 'roster.tag' table
type RosterTagTable struct {
	Table     string
	ID        string
	GuildID   string
	Name      string
	IsReserve string
	CreatedAt string
	UpdatedAt string
}

// RosterTag is the schema definition for roster.tag
var RosterTag = RosterTagTable{
	Table:     "roster.tag",
	ID:        "id",
	GuildID:   "guildid",
	Name:      "name",
	IsReserve: "isreserve",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t RosterTagTable) Columns() []string {
	return []string{t.ID, t.GuildID, t.Name, t.IsReserve, t.CreatedAt, t.UpdatedAt}
}
