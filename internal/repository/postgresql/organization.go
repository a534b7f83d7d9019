package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/worklane/workforce-backend-go/internal/domain/organization"
	"github.com/worklane/workforce-backend-go/internal/pkg/database"
)

type organizationRepository struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) organization.Repository {
	return &organizationRepository{db: db}
}

// GetByID implements organization.Repository.
func (r *organizationRepository) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, office_latitude, office_longitude, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`

	var org organization.Organization
	err := q.QueryRow(ctx, query, id).Scan(
		&org.ID, &org.Name, &org.OfficeLatitude, &org.OfficeLongitude,
		&org.CreatedAt, &org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		return organization.Organization{}, fmt.Errorf("failed to get organization by ID: %w", err)
	}

	return org, nil
}
