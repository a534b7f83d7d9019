package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/worklane/workforce-backend-go/internal/domain/notification"
	"github.com/worklane/workforce-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// Create inserts a single notification.
func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	q := GetQuerier(ctx, r.db)

	if n.ID == "" {
		n.ID = uuid.New().String()
	}

	dataJSON, err := json.Marshal(n.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal notification data: %w", err)
	}

	query := `
		INSERT INTO notifications (id, organization_id, recipient_id, sender_id, type, title, message, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = q.Exec(ctx, query,
		n.ID,
		n.OrganizationID,
		n.RecipientID,
		n.SenderID,
		string(n.Type),
		n.Title,
		n.Message,
		dataJSON,
		n.IsRead,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	return nil
}

// CreateBatch inserts multiple notifications in one statement.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	valueStrings := make([]string, 0, len(notifications))
	valueArgs := make([]interface{}, 0, len(notifications)*10)

	for i, n := range notifications {
		if n.ID == "" {
			n.ID = uuid.New().String()
		}

		dataJSON, err := json.Marshal(n.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal notification data: %w", err)
		}

		base := i * 10
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10,
		))
		valueArgs = append(valueArgs,
			n.ID,
			n.OrganizationID,
			n.RecipientID,
			n.SenderID,
			string(n.Type),
			n.Title,
			n.Message,
			dataJSON,
			n.IsRead,
			n.CreatedAt,
		)
	}

	query := fmt.Sprintf(`
		INSERT INTO notifications (id, organization_id, recipient_id, sender_id, type, title, message, data, is_read, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create notifications: %w", err)
	}

	return nil
}

// GetByUserID retrieves paginated notifications for a recipient.
func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "recipient_id = $1"
	args := []interface{}{userID}
	if unreadOnly {
		baseWhere += " AND is_read = FALSE"
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM notifications WHERE " + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	offset := (page - 1) * pageSize
	selectQuery := `
		SELECT id, organization_id, recipient_id, sender_id, type, title, message, data, is_read, read_at, created_at
		FROM notifications
		WHERE ` + baseWhere + `
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	args = append(args, pageSize, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*notification.Notification
	for rows.Next() {
		var n notification.Notification
		var dataJSON []byte
		if err := rows.Scan(
			&n.ID, &n.OrganizationID, &n.RecipientID, &n.SenderID, &n.Type,
			&n.Title, &n.Message, &dataJSON, &n.IsRead, &n.ReadAt, &n.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		if len(dataJSON) > 0 {
			if err := json.Unmarshal(dataJSON, &n.Data); err != nil {
				return nil, 0, fmt.Errorf("failed to unmarshal notification data: %w", err)
			}
		}
		notifications = append(notifications, &n)
	}

	return notifications, total, nil
}

// GetUnreadCount returns the number of unread notifications for a recipient.
func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`
	if err := q.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return count, nil
}

// MarkAsRead marks the given notifications as read for a recipient.
func (r *notificationRepository) MarkAsRead(ctx context.Context, notificationIDs []string, userID string) error {
	if len(notificationIDs) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE id = ANY($1) AND recipient_id = $2 AND is_read = FALSE
	`
	if _, err := q.Exec(ctx, query, notificationIDs, userID); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}

	return nil
}

// MarkAllAsRead marks every notification of a recipient as read.
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE recipient_id = $1 AND is_read = FALSE
	`
	if _, err := q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	return nil
}

// Delete removes a notification owned by the recipient.
func (r *notificationRepository) Delete(ctx context.Context, notificationID string, userID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`
	commandTag, err := q.Exec(ctx, query, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}

	return nil
}
