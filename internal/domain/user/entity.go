package user

import "time"

type Role string

const (
	RoleGlobalAdmin Role = "global_admin" // Cross-organization operator
	RoleAdmin       Role = "admin"        // Organization admin - can resolve approvals
	RoleSubject     Role = "subject"      // Tracked worker - captures own attendance
)

type User struct {
	ID             string
	OrganizationID *string
	Email          string
	PasswordHash   *string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// DTO / Join
	SubjectID *string
}

// IsGlobalAdmin reports whether the user operates across organizations.
func (u *User) IsGlobalAdmin() bool {
	return u.Role == RoleGlobalAdmin
}

// IsAdmin reports whether the user is an admin of any scope.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleGlobalAdmin
}

// CanResolveApprovals reports whether the user may approve or reject queue items.
func (u *User) CanResolveApprovals() bool {
	return u.IsAdmin()
}
