// Package auth implements the demo credential check for the dashboard.
// Accounts are fixed; there is no registration or persistence.
package auth

import "errors"

var ErrInvalidCredentials = errors.New("invalid username or password")

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleDemo  Role = "demo"
)

type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

type account struct {
	password string
	user     User
}

var accounts = map[string]account{
	"malackathon": {
		password: "malackathon",
		user:     User{Username: "malackathon", DisplayName: "Administrador", Role: RoleAdmin},
	},
	"diego": {
		password: "toledo",
		user:     User{Username: "diego", DisplayName: "Diego", Role: RoleUser},
	},
	"demo": {
		password: "demo",
		user:     User{Username: "demo", DisplayName: "Usuario Demo", Role: RoleDemo},
	},
}

// Login checks the credentials and returns the matching user.
func Login(username, password string) (*User, error) {
	acct, ok := accounts[username]
	if !ok || acct.password != password {
		return nil, ErrInvalidCredentials
	}
	user := acct.user
	return &user, nil
}

// CanExport reports whether the role may download query results.
func (u *User) CanExport() bool {
	return u.Role == RoleAdmin || u.Role == RoleUser
}
