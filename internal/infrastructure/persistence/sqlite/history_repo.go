package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
)

// StatusHistoryRepository implements port.StatusHistoryRepository
type StatusHistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStatusHistoryRepository creates a new history repository
func NewStatusHistoryRepository(db *sql.DB, logger *zap.Logger) *StatusHistoryRepository {
	return &StatusHistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new history record
func (r *StatusHistoryRepository) Create(ctx context.Context, history *entity.StatusHistory) error {
	query := `
		INSERT INTO application_status_history (
			application_id, execution_id, previous_status, new_status,
			intent, actor_id, actor_role, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		history.ApplicationID,
		history.ExecutionID,
		history.PreviousStatus,
		history.NewStatus,
		history.Intent,
		history.ActorID,
		history.ActorRole,
		history.Timestamp,
	)
	if err != nil {
		r.logger.Error("Failed to create history record", zap.Error(err))
		return fmt.Errorf("failed to create history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	history.ID = id
	return nil
}

// Delete removes a history record
func (r *StatusHistoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := getExecutor(ctx, r.db).ExecContext(ctx,
		"DELETE FROM application_status_history WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete history record", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete history: %w", err)
	}
	return expectOneRow(res)
}

// ListByApplication returns the history of an application, oldest first
func (r *StatusHistoryRepository) ListByApplication(ctx context.Context, applicationID string) ([]*entity.StatusHistory, error) {
	query := `
		SELECT id, application_id, execution_id, previous_status, new_status,
			intent, actor_id, actor_role, timestamp
		FROM application_status_history
		WHERE application_id = ?
		ORDER BY id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to list history", zap.String("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []*entity.StatusHistory
	for rows.Next() {
		var record entity.StatusHistory
		err := rows.Scan(
			&record.ID,
			&record.ApplicationID,
			&record.ExecutionID,
			&record.PreviousStatus,
			&record.NewStatus,
			&record.Intent,
			&record.ActorID,
			&record.ActorRole,
			&record.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &record)
	}

	return records, rows.Err()
}

// Verify interface compliance
var _ port.StatusHistoryRepository = (*StatusHistoryRepository)(nil)
