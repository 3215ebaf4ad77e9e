package command

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/sip-workflow/internal/application/port"
)

// WebhookEvent is the event name posted by WebhookCommand
const WebhookEvent = "application.status_changed"

// WebhookCommand notifies external subscribers of the status change
type WebhookCommand struct {
	sender port.WebhookSender
	now    func() time.Time
}

// NewWebhookCommand creates the webhook.trigger command
func NewWebhookCommand(sender port.WebhookSender) *WebhookCommand {
	return &WebhookCommand{sender: sender, now: time.Now}
}

// Descriptor implements Command
func (c *WebhookCommand) Descriptor() Descriptor {
	return Descriptor{
		ID:           IDWebhookTrigger,
		Name:         "Trigger webhook",
		Priority:     30,
		Retryable:    true,
		Irreversible: true,
	}
}

// Execute implements Command
func (c *WebhookCommand) Execute(ctx context.Context, inv Invocation) (Output, error) {
	payload := port.WebhookPayload{
		Event:          WebhookEvent,
		ExecutionID:    inv.ExecutionID,
		ApplicationID:  inv.Context.ApplicationID,
		Intent:         inv.Intent.String(),
		PreviousStatus: inv.PreviousStatus.String(),
		NewStatus:      inv.NextStatus.String(),
		ActorID:        inv.Context.UserID,
		OccurredAt:     c.now().UTC(),
		Metadata:       inv.Context.Metadata,
	}
	if err := c.sender.Send(ctx, payload); err != nil {
		return nil, fmt.Errorf("failed to trigger webhook: %w", err)
	}
	return Output{"event": WebhookEvent}, nil
}
