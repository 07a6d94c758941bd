package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is an account's privilege level. Roles are unordered except that
// superadmin carries every admin privilege plus the ability to grant or
// revoke admin/superadmin and to act on other admins.
type Role string

// Role constants for account privilege levels.
const (
	RoleGeneral    Role = "general"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleGeneral, RoleAdmin, RoleSuperadmin}

// IsValidRole checks if the given role is valid.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == Role(role) {
			return true
		}
	}
	return false
}

// ParseRole validates a raw role string at the API boundary.
func ParseRole(raw string) (Role, bool) {
	if IsValidRole(raw) {
		return Role(raw), true
	}
	return "", false
}

// IsAdmin reports whether the role carries administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}

// Account is the credential record linked 1:1 to a Member. Active gates
// login: accounts are created inactive at registration and flip to active
// on approval. Rank mirrors Member.Rank and is kept in sync on every rank
// change.
type Account struct {
	ID           uuid.UUID `json:"id"`
	MemberID     uuid.UUID `json:"member_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Rank         Rank      `json:"rank"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
