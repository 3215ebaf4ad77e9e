package command

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// Output keys written by UpdateStatusCommand
const (
	OutHistoryID = "history_id"
	OutCreated   = "created"
)

// UpdateStatusCommand persists the new status together with a history row
type UpdateStatusCommand struct {
	apps      port.ApplicationRepository
	history   port.StatusHistoryRepository
	txManager port.TransactionManager
	logger    port.Logger
	now       func() time.Time
}

// NewUpdateStatusCommand creates the database.update_status command
func NewUpdateStatusCommand(
	apps port.ApplicationRepository,
	history port.StatusHistoryRepository,
	txManager port.TransactionManager,
	logger port.Logger,
) *UpdateStatusCommand {
	if logger == nil {
		logger = port.NopLogger{}
	}
	return &UpdateStatusCommand{
		apps:      apps,
		history:   history,
		txManager: txManager,
		logger:    logger,
		now:       time.Now,
	}
}

// Descriptor implements Command
func (c *UpdateStatusCommand) Descriptor() Descriptor {
	return Descriptor{
		ID:        IDDatabaseUpdateStatus,
		Name:      "Update application status",
		Priority:  100,
		Retryable: true,
	}
}

// Execute creates the application on submission, otherwise moves it from
// the previous to the next status. A concurrent change yields
// port.ErrStatusConflict.
func (c *UpdateStatusCommand) Execute(ctx context.Context, inv Invocation) (Output, error) {
	out := Output{}
	now := c.now()

	err := c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if inv.PreviousStatus == workflow.StatusNone {
			app := &entity.Application{
				ID:           inv.Context.ApplicationID,
				StudentID:    inv.Context.StudentID,
				InternshipID: inv.Context.InternshipID,
				EmployerID:   inv.Context.EmployerID,
				Status:       inv.NextStatus,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := c.apps.Create(txCtx, app); err != nil {
				return fmt.Errorf("failed to create application: %w", err)
			}
			out[OutCreated] = true
		} else if err := c.apps.CompareAndSetStatus(txCtx, inv.Context.ApplicationID, inv.PreviousStatus, inv.NextStatus); err != nil {
			return fmt.Errorf("failed to update application status: %w", err)
		}

		record := &entity.StatusHistory{
			ApplicationID:  inv.Context.ApplicationID,
			ExecutionID:    inv.ExecutionID,
			PreviousStatus: inv.PreviousStatus,
			NewStatus:      inv.NextStatus,
			Intent:         inv.Intent,
			ActorID:        inv.Context.UserID,
			ActorRole:      inv.Role,
			Timestamp:      now,
		}
		if err := c.history.Create(txCtx, record); err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		out[OutHistoryID] = record.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("Application status updated",
		"application_id", inv.Context.ApplicationID,
		"previous_status", inv.PreviousStatus,
		"new_status", inv.NextStatus,
	)
	return out, nil
}

// Rollback restores the previous status and removes the history row
func (c *UpdateStatusCommand) Rollback(ctx context.Context, inv Invocation, out Output) error {
	return c.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if id, ok := out.Int64(OutHistoryID); ok {
			if err := c.history.Delete(txCtx, id); err != nil {
				return fmt.Errorf("failed to delete status history: %w", err)
			}
		}
		if out.Bool(OutCreated) {
			if err := c.apps.Delete(txCtx, inv.Context.ApplicationID); err != nil {
				return fmt.Errorf("failed to delete application: %w", err)
			}
			return nil
		}
		if err := c.apps.CompareAndSetStatus(txCtx, inv.Context.ApplicationID, inv.NextStatus, inv.PreviousStatus); err != nil {
			return fmt.Errorf("failed to restore application status: %w", err)
		}
		return nil
	})
}
