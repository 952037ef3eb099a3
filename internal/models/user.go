package models

import "time"

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
	RoleAdmin   UserRole = "admin"
)

// User is the identity attached to a request by the auth middleware.
// The hosted auth provider owns the account; only the fields the
// import surfaces need are carried here.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Role         UserRole `json:"role"`
	Organization string   `json:"organization,omitempty"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// CanImport reports whether the role may run bulk imports.
func (u *User) CanImport() bool {
	return u.Role == RoleFaculty || u.Role == RoleAdmin
}
