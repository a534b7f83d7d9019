package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/worklane/workforce-backend-go/internal/domain/subject"
	"github.com/worklane/workforce-backend-go/internal/pkg/database"
)

type subjectRepository struct {
	db *database.DB
}

func NewSubjectRepository(db *database.DB) subject.Repository {
	return &subjectRepository{db: db}
}

const subjectColumns = `
	s.id, s.organization_id, s.user_id, s.full_name, s.type,
	s.timezone_name, s.scheduled_start, s.active, s.created_at, s.updated_at`

// GetByID implements subject.Repository.
func (r *subjectRepository) GetByID(ctx context.Context, id string, organizationID string) (subject.Subject, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + subjectColumns + `
		FROM subjects s
		WHERE s.id = $1 AND s.organization_id = $2
	`

	var s subject.Subject
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&s.ID, &s.OrganizationID, &s.UserID, &s.FullName, &s.Type,
		&s.TimezoneName, &s.ScheduledStart, &s.Active, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return subject.Subject{}, subject.ErrSubjectNotFound
		}
		return subject.Subject{}, fmt.Errorf("failed to get subject by ID: %w", err)
	}

	return s, nil
}

// GetActiveByOrganizationID implements subject.Repository.
func (r *subjectRepository) GetActiveByOrganizationID(ctx context.Context, organizationID string) ([]subject.Subject, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + subjectColumns + `
		FROM subjects s
		WHERE s.organization_id = $1 AND s.active = TRUE
		ORDER BY s.full_name ASC
	`

	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query active subjects: %w", err)
	}
	defer rows.Close()

	var subjects []subject.Subject
	for rows.Next() {
		var s subject.Subject
		if err := rows.Scan(
			&s.ID, &s.OrganizationID, &s.UserID, &s.FullName, &s.Type,
			&s.TimezoneName, &s.ScheduledStart, &s.Active, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan subject: %w", err)
		}
		subjects = append(subjects, s)
	}

	return subjects, nil
}

// GetOrganizationIDs implements subject.Repository.
func (r *subjectRepository) GetOrganizationIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT DISTINCT organization_id FROM subjects WHERE active = TRUE`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query organization IDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan organization ID: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, nil
}
