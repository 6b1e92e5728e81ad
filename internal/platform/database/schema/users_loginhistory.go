package schema

import "strings"

// UserLoginHistoryTable represents the 'users.loginhistory' table
type UserLoginHistoryTable struct {
	Table     string
	ID        string
	AccountID string
	Success   string
	IPAddress string
	UserAgent string
	CreatedAt string
}

// UserLoginHistory is the schema definition for users.loginhistory
var UserLoginHistory = UserLoginHistoryTable{
	Table:     "users.loginhistory",
	ID:        "id",
	AccountID: "accountid",
	Success:   "success",
	IPAddress: "ipaddress",
	UserAgent: "useragent",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t UserLoginHistoryTable) Columns() []string {
	return []string{t.ID, t.AccountID, t.Success, t.IPAddress, t.UserAgent, t.CreatedAt}
}

// SelectList returns the columns joined for a SELECT or RETURNING clause.
func (t UserLoginHistoryTable) SelectList() string {
	return strings.Join(t.Columns(), ", ")
}
