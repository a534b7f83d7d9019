package user

import "context"

// Repository defines data access methods for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)

	// GetAdminsByOrganizationID returns admin users for an organization.
	// Used to fan notifications out to everyone who can act on them.
	GetAdminsByOrganizationID(ctx context.Context, organizationID string) ([]User, error)
}
