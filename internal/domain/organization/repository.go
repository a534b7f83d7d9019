package organization

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (Organization, error)
}
