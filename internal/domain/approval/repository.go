package approval

import "context"

// Repository defines data access methods for the approval queue.
type Repository interface {
	// Create inserts a new pending item.
	Create(ctx context.Context, item Item) (Item, error)

	// GetByID retrieves an item WITHOUT organization scoping. The service
	// layer uses the returned OrganizationID to distinguish Forbidden from
	// NotFound for org-scoped admins.
	GetByID(ctx context.Context, id string) (Item, error)

	// Resolve flips a pending item to approved/rejected with a compare-and-set
	// on status = 'pending'. Returns ErrItemNotPending when the item was
	// already resolved, ErrItemNotFound when it does not exist.
	Resolve(ctx context.Context, id string, organizationID *string, status Status, resolvedBy string, note *string) (Item, error)

	// List retrieves items ordered by created_at ascending (oldest first, so
	// admins work the queue in arrival order).
	List(ctx context.Context, filter Filter, organizationID string) ([]Item, int64, error)
}
