package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
)

// AuditLogRepository implements port.AuditLogRepository
type AuditLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sql.DB, logger *zap.Logger) *AuditLogRepository {
	return &AuditLogRepository{
		db:     db,
		logger: logger,
	}
}

// Append stores an audit entry
func (r *AuditLogRepository) Append(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_log (
			application_id, execution_id, intent, actor_id, actor_role,
			previous_status, new_status, details, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	details := e.Details
	if details == "" {
		details = "{}"
	}

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		e.ApplicationID,
		e.ExecutionID,
		e.Intent,
		e.ActorID,
		e.ActorRole,
		e.PreviousStatus,
		e.NewStatus,
		details,
		e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append audit entry",
			zap.String("application_id", e.ApplicationID),
			zap.String("execution_id", e.ExecutionID),
			zap.Error(err))
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	e.ID = id
	return nil
}

// ListByApplication returns the audit trail of an application in order
func (r *AuditLogRepository) ListByApplication(ctx context.Context, applicationID string) ([]*entity.AuditEntry, error) {
	query := `
		SELECT id, application_id, execution_id, intent, actor_id, actor_role,
			previous_status, new_status, details, created_at
		FROM audit_log
		WHERE application_id = ?
		ORDER BY id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to list audit entries", zap.String("application_id", applicationID), zap.Error(err))
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*entity.AuditEntry
	for rows.Next() {
		var e entity.AuditEntry
		if err := rows.Scan(
			&e.ID,
			&e.ApplicationID,
			&e.ExecutionID,
			&e.Intent,
			&e.ActorID,
			&e.ActorRole,
			&e.PreviousStatus,
			&e.NewStatus,
			&e.Details,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

// Verify interface compliance
var _ port.AuditLogRepository = (*AuditLogRepository)(nil)
