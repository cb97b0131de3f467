// Copyright (c) 2026 Midgard. All rights reserved.
// Author: duy.tranquang.vn@gmail.com

// Package schema centralizes physical table and column names for the Midgard
// database. Stores reference these definitions instead of repeating string
// literals, so a rename touches exactly one file.
package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table      string
	ID         string
	ExternalID string
	Name       string
	Email      string
	Contact    string
	Age        string
	CreatedAt  string
	UpdatedAt  string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:      "users.account",
	ID:         "id",
	ExternalID: "externalid",
	Name:       "name",
	Email:      "email",
	Contact:    "contact",
	Age:        "age",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}

func (t UserAccountTable) Columns() []string {
	return []string{t.ID, t.ExternalID, t.Name, t.Email, t.Contact, t.Age, t.CreatedAt, t.UpdatedAt}
}
