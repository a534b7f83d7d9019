package approval

import "context"

// Service defines business logic for the approval queue.
type Service interface {
	// Enqueue adds a pending item to the caller's organization queue.
	Enqueue(ctx context.Context, req EnqueueRequest) (ItemResponse, error)

	// Approve resolves a pending item positively. Single-shot.
	Approve(ctx context.Context, req ResolveRequest) (ItemResponse, error)

	// Reject resolves a pending item negatively. Single-shot.
	Reject(ctx context.Context, req ResolveRequest) (ItemResponse, error)

	// List retrieves queue items in arrival order.
	List(ctx context.Context, filter Filter) (ListItemsResponse, error)

	// Get retrieves a single item by ID.
	Get(ctx context.Context, id string) (ItemResponse, error)
}
