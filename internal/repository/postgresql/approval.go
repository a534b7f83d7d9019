package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/worklane/workforce-backend-go/internal/domain/approval"
	"github.com/worklane/workforce-backend-go/internal/pkg/database"
)

type approvalRepository struct {
	db *database.DB
}

func NewApprovalRepository(db *database.DB) approval.Repository {
	return &approvalRepository{db: db}
}

const approvalColumns = `
	i.id, i.organization_id, i.subject_id, i.type, i.title, i.description,
	i.amount, i.days, i.status, i.created_by, i.resolved_by, i.resolved_at,
	i.resolution_note, i.created_at, i.updated_at`

func scanItem(row pgx.Row, withSubject bool) (approval.Item, error) {
	var item approval.Item
	dest := []interface{}{
		&item.ID, &item.OrganizationID, &item.SubjectID, &item.Type, &item.Title, &item.Description,
		&item.Amount, &item.Days, &item.Status, &item.CreatedBy, &item.ResolvedBy, &item.ResolvedAt,
		&item.ResolutionNote, &item.CreatedAt, &item.UpdatedAt,
	}
	if withSubject {
		dest = append(dest, &item.SubjectName)
	}
	if err := row.Scan(dest...); err != nil {
		return approval.Item{}, err
	}
	return item, nil
}

// Create implements approval.Repository.
func (a *approvalRepository) Create(ctx context.Context, item approval.Item) (approval.Item, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO approval_items (
			organization_id, subject_id, type, title, description,
			amount, days, status, created_by
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		item.OrganizationID,
		item.SubjectID,
		item.Type,
		item.Title,
		item.Description,
		item.Amount,
		item.Days,
		item.Status,
		item.CreatedBy,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)

	if err != nil {
		return approval.Item{}, fmt.Errorf("failed to create approval item: %w", err)
	}

	return item, nil
}

// GetByID implements approval.Repository. Deliberately unscoped: the service
// inspects OrganizationID on the returned item to tell Forbidden from
// NotFound.
func (a *approvalRepository) GetByID(ctx context.Context, id string) (approval.Item, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + approvalColumns + `,
			s.full_name AS subject_name
		FROM approval_items i
		LEFT JOIN subjects s ON s.id = i.subject_id
		WHERE i.id = $1
	`

	item, err := scanItem(q.QueryRow(ctx, query, id), true)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return approval.Item{}, approval.ErrItemNotFound
		}
		return approval.Item{}, fmt.Errorf("failed to get approval item by ID: %w", err)
	}

	return item, nil
}

// Resolve implements approval.Repository. The status = 'pending' predicate
// makes the resolution a single-shot compare-and-set; exactly one of two
// concurrent resolvers wins. organizationID is nil for global admins.
func (a *approvalRepository) Resolve(ctx context.Context, id string, organizationID *string, status approval.Status, resolvedBy string, note *string) (approval.Item, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE approval_items i SET
			status = $1,
			resolved_by = $2,
			resolved_at = NOW(),
			resolution_note = $3,
			updated_at = NOW()
		WHERE i.id = $4
		  AND ($5::uuid IS NULL OR i.organization_id = $5)
		  AND i.status = 'pending'
		RETURNING ` + approvalColumns

	item, err := scanItem(q.QueryRow(ctx, query, status, resolvedBy, note, id, organizationID), false)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return approval.Item{}, fmt.Errorf("failed to resolve approval item: %w", err)
	}

	// Zero rows: either the item is gone or it was already resolved.
	// Re-read to report the precise failure; the stored status is untouched
	// either way.
	existing, getErr := a.GetByID(ctx, id)
	if getErr != nil {
		return approval.Item{}, getErr
	}
	if organizationID != nil && existing.OrganizationID != *organizationID {
		return approval.Item{}, approval.ErrForbidden
	}
	return approval.Item{}, approval.ErrItemNotPending
}

// List implements approval.Repository. Arrival order: created_at ascending.
func (a *approvalRepository) List(ctx context.Context, filter approval.Filter, organizationID string) ([]approval.Item, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "i.organization_id = $1"
	args := []interface{}{organizationID}
	argIdx := 2

	if filter.Type != nil && *filter.Type != "" {
		baseWhere += fmt.Sprintf(" AND i.type = $%d", argIdx)
		args = append(args, strings.ToLower(*filter.Type))
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND i.status = $%d", argIdx)
		args = append(args, strings.ToLower(*filter.Status))
		argIdx++
	}

	if filter.SubjectID != nil && *filter.SubjectID != "" {
		baseWhere += fmt.Sprintf(" AND i.subject_id = $%d", argIdx)
		args = append(args, *filter.SubjectID)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM approval_items i WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count approval items: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT `+approvalColumns+`,
			s.full_name AS subject_name
		FROM approval_items i
		LEFT JOIN subjects s ON s.id = i.subject_id
		WHERE %s
		ORDER BY i.created_at ASC, i.id ASC
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query approval items: %w", err)
	}
	defer rows.Close()

	var items []approval.Item
	for rows.Next() {
		item, err := scanItem(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan approval item: %w", err)
		}
		items = append(items, item)
	}

	return items, total, nil
}
