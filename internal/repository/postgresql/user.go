package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/worklane/workforce-backend-go/internal/domain/user"
	"github.com/worklane/workforce-backend-go/internal/pkg/database"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.Repository {
	return &userRepository{db: db}
}

const userColumns = `
	u.id, u.organization_id, u.email, u.password_hash, u.role,
	u.created_at, u.updated_at,
	s.id AS subject_id`

// GetByID implements user.Repository.
func (r *userRepository) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN subjects s ON s.user_id = u.id
		WHERE u.id = $1
	`

	var u user.User
	err := q.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.OrganizationID, &u.Email, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &u.SubjectID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return u, nil
}

// GetByEmail implements user.Repository.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN subjects s ON s.user_id = u.id
		WHERE LOWER(u.email) = LOWER($1)
	`

	var u user.User
	err := q.QueryRow(ctx, query, email).Scan(
		&u.ID, &u.OrganizationID, &u.Email, &u.PasswordHash, &u.Role,
		&u.CreatedAt, &u.UpdatedAt, &u.SubjectID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// GetAdminsByOrganizationID implements user.Repository.
func (r *userRepository) GetAdminsByOrganizationID(ctx context.Context, organizationID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT u.id, u.organization_id, u.email, u.password_hash, u.role,
			u.created_at, u.updated_at
		FROM users u
		WHERE u.organization_id = $1 AND u.role = 'admin'
	`

	rows, err := q.Query(ctx, query, organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query organization admins: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(
			&u.ID, &u.OrganizationID, &u.Email, &u.PasswordHash, &u.Role,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	return users, nil
}
