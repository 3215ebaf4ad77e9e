package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO notifications (
			user_id, application_id, execution_id, title, body, severity, read, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		n.UserID,
		n.ApplicationID,
		n.ExecutionID,
		n.Title,
		n.Body,
		n.Severity,
		n.Read,
		n.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification", zap.String("user_id", n.UserID), zap.Error(err))
		return fmt.Errorf("failed to create notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	n.ID = id
	return nil
}

// Delete removes a notification
func (r *NotificationRepository) Delete(ctx context.Context, id int64) error {
	res, err := getExecutor(ctx, r.db).ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete notification", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return expectOneRow(res)
}

// ListByUser returns the newest notifications of a user
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, user_id, application_id, execution_id, title, body, severity, read, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, userID, limit)
	if err != nil {
		r.logger.Error("Failed to list notifications", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.ApplicationID,
			&n.ExecutionID,
			&n.Title,
			&n.Body,
			&n.Severity,
			&n.Read,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}

// Verify interface compliance
var _ port.NotificationRepository = (*NotificationRepository)(nil)
