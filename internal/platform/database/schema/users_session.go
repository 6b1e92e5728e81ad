package schema

import "strings"

// UserSessionTable represents the 'users.session' table
type UserSessionTable struct {
	Table     string
	TokenHash string
	AccountID string
	ExpiresAt string
	CreatedAt string
}

// UserSession is the schema definition for users.session
var UserSession = UserSessionTable{
	Table:     "users.session",
	TokenHash: "tokenhash",
	AccountID: "accountid",
	ExpiresAt: "expiresat",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t UserSessionTable) Columns() []string {
	return []string{t.TokenHash, t.AccountID, t.ExpiresAt, t.CreatedAt}
}

// SelectList returns the columns joined for a SELECT or RETURNING clause.
func (t UserSessionTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
