package port

import (
	"context"

	"github.com/garyjia/sip-workflow/internal/domain/entity"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// ApplicationRepository defines persistence operations for Application
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	GetByID(ctx context.Context, id string) (*entity.Application, error)

	// CompareAndSetStatus moves the application to next only if its current
	// status is expected. Returns ErrStatusConflict otherwise.
	CompareAndSetStatus(ctx context.Context, id string, expected, next workflow.Status) error
	Delete(ctx context.Context, id string) error
}

// StatusHistoryRepository defines persistence operations for StatusHistory
type StatusHistoryRepository interface {
	Create(ctx context.Context, history *entity.StatusHistory) error
	Delete(ctx context.Context, id int64) error
	ListByApplication(ctx context.Context, applicationID string) ([]*entity.StatusHistory, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	Delete(ctx context.Context, id int64) error
	ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error)
}

// AuditLogRepository defines persistence operations for AuditEntry. The log
// is append-only.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *entity.AuditEntry) error
	ListByApplication(ctx context.Context, applicationID string) ([]*entity.AuditEntry, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	// WithTransaction executes fn within a transaction carried by ctx
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
