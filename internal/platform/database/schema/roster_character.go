// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

package schema

// RosterCharacterTable represents the 'roster.character' table
type RosterCharacterTable struct {
	Table     string
	ID        string
	OwnerID   string
	TagID     string
	PartyID   string
	Name      string
	CreatedAt string
	UpdatedAt string
}

// RosterCharacter is the schema definition for roster.character
var RosterCharacter = RosterCharacterTable{
	Table:     "roster.character",
	ID:        "id",
	OwnerID:   "ownerid",
	TagID:     "tagid",
	PartyID:   "partyid",
	Name:      "name",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t RosterCharacterTable) Columns() []string {
	return []string{t.ID, t.OwnerID, t.TagID, t.PartyID, t.Name, t.CreatedAt, t.UpdatedAt}
}

// RosterCharacterRoleTable represents the 'roster.characterrole' table
type RosterCharacterRoleTable struct {
	Table       string
	CharacterID string
	Role        string
	AssignedAt  string
}

// RosterCharacterRole is the schema definition for roster.characterrole
var RosterCharacterRole = RosterCharacterRoleTable{
	Table:       "roster.characterrole",
	CharacterID: "characterid",
	Role:        "role",
	AssignedAt:  "assignedat",
}

func (t RosterCharacterRoleTable) Columns() []string {
	return []string{t.CharacterID, t.Role, t.AssignedAt}
}
