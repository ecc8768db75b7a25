// Package models holds the server-side domain types.
package models

import "time"

// Role is the coarse authority level attached to a user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleDev     Role = "DEV"
	RoleUser    Role = "USER"
	RoleVisitor Role = "VISITOR"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDev, RoleUser, RoleVisitor:
		return true
	}
	return false
}

// User is the authenticated principal resolved from storage. PasswordHash
// is opaque verification material and must never be serialized into a
// token or an API response.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Summary is the redacted view of a User returned to API callers.
type Summary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role"`
}

// Summary strips verification material from the user.
func (u *User) Summary() Summary {
	return Summary{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
