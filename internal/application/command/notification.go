package command

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
)

// Output keys written by delivery commands
const (
	OutNotificationID = "notification_id"
	OutRecipient      = "recipient"
	OutSkipped        = "skipped"
)

// InAppNotificationCommand stores an in-app notification for the affected party
type InAppNotificationCommand struct {
	repo   port.NotificationRepository
	logger port.Logger
	now    func() time.Time
}

// NewInAppNotificationCommand creates the notification.in_app command
func NewInAppNotificationCommand(repo port.NotificationRepository, logger port.Logger) *InAppNotificationCommand {
	if logger == nil {
		logger = port.NopLogger{}
	}
	return &InAppNotificationCommand{repo: repo, logger: logger, now: time.Now}
}

// Descriptor implements Command
func (c *InAppNotificationCommand) Descriptor() Descriptor {
	return Descriptor{
		ID:        IDNotificationInApp,
		Name:      "Send in-app notification",
		Priority:  50,
		Retryable: true,
	}
}

// Execute implements Command. Without a recipient id nothing is stored.
func (c *InAppNotificationCommand) Execute(ctx context.Context, inv Invocation) (Output, error) {
	msg := messageFor(inv)
	userID := recipientID(inv, msg.audience)
	if userID == "" {
		c.logger.Info("No recipient for in-app notification, skipping",
			"application_id", inv.Context.ApplicationID,
			"audience", msg.audience,
		)
		return Output{OutSkipped: true}, nil
	}

	n := &entity.Notification{
		UserID:        userID,
		ApplicationID: inv.Context.ApplicationID,
		ExecutionID:   inv.ExecutionID,
		Title:         msg.title,
		Body:          msg.body,
		Severity:      string(msg.severity),
		CreatedAt:     c.now(),
	}
	if err := c.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return Output{OutNotificationID: n.ID, OutRecipient: userID}, nil
}

// Rollback deletes the stored notification
func (c *InAppNotificationCommand) Rollback(ctx context.Context, inv Invocation, out Output) error {
	id, ok := out.Int64(OutNotificationID)
	if !ok {
		return nil
	}
	return c.repo.Delete(ctx, id)
}
