package subject

import "context"

// Repository defines data access methods for subjects.
// All methods include organizationID to prevent cross-tenant data access.
type Repository interface {
	GetByID(ctx context.Context, id string, organizationID string) (Subject, error)

	// GetActiveByOrganizationID returns all active subjects of an organization.
	// Used by the absence backfill job.
	GetActiveByOrganizationID(ctx context.Context, organizationID string) ([]Subject, error)

	// GetOrganizationIDs returns the distinct organization IDs that have at
	// least one active subject.
	GetOrganizationIDs(ctx context.Context) ([]string, error)
}
