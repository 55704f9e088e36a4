// Package models defines data structures used across the application.
// File: models/account.go
package models

import "time"

// ----------------------- roles -----------------------

// Role tags gate access to the dashboards. The middleware check is advisory;
// the document service's write rules remain the actual authority.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleCoach      = "coach"
	RoleScout      = "scout"
)

// ----------------------- admin account -----------------------

// AdminAccount is an identity + role record stored in admin_users, keyed by
// the principal's uid once the account holder has signed in at least once.
type AdminAccount struct {
	ID      string    `json:"id,omitempty"`
	Code    string    `json:"code"` // e.g. "ADM2026-003"
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
	Status  string    `json:"status"` // "Active" or "Inactive"
	Created time.Time `json:"created,omitempty"`
}

// ----------------------- session projection -----------------------

// User is the session record: the authenticated principal merged with its
// admin_users profile when one exists, otherwise the bare principal.
type User struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role,omitempty"`
	Code  string `json:"code,omitempty"`
}

// HasRole reports whether the session record carries one of the given roles.
func (u *User) HasRole(roles ...string) bool {
	if u == nil {
		return false
	}
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
