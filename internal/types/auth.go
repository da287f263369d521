package types

import (
	"github.com/google/uuid"
)

// Role is the access role carried by an authenticated principal
type Role string

// Role constants
const (
	RoleApplicant Role = "applicant"
	RoleAdmin     Role = "admin"
	RoleReviewer  Role = "reviewer"
)

// IsValid reports whether r is a recognised role
func (r Role) IsValid() bool {
	switch r {
	case RoleApplicant, RoleAdmin, RoleReviewer:
		return true
	default:
		return false
	}
}

// Principal is the authenticated caller of a service operation
type Principal struct {
	ID   uuid.UUID `json:"id"`
	Role Role      `json:"role"`
}

// IsAdmin returns true for administrators
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsStaff returns true for administrators and reviewers
func (p Principal) IsStaff() bool {
	return p.Role == RoleAdmin || p.Role == RoleReviewer
}
