package command

import (
	"context"
	"fmt"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/pkg/utils"
)

// EmailCommand emails the affected party. Sent mail cannot be recalled.
type EmailCommand struct {
	sender port.EmailSender
	logger port.Logger
}

// NewEmailCommand creates the email.send command
func NewEmailCommand(sender port.EmailSender, logger port.Logger) *EmailCommand {
	if logger == nil {
		logger = port.NopLogger{}
	}
	return &EmailCommand{sender: sender, logger: logger}
}

// Descriptor implements Command
func (c *EmailCommand) Descriptor() Descriptor {
	return Descriptor{
		ID:           IDEmailSend,
		Name:         "Send email",
		Priority:     40,
		Retryable:    true,
		Irreversible: true,
	}
}

// Execute implements Command. The address is read from the context
// metadata; without a valid one nothing is sent.
func (c *EmailCommand) Execute(ctx context.Context, inv Invocation) (Output, error) {
	msg := messageFor(inv)
	to := recipientEmail(inv, msg.audience)
	if to == "" {
		c.logger.Info("No email address for recipient, skipping",
			"application_id", inv.Context.ApplicationID,
			"audience", msg.audience,
		)
		return Output{OutSkipped: true}, nil
	}
	if err := utils.ValidateEmail(to); err != nil {
		c.logger.Info("Invalid email address for recipient, skipping",
			"application_id", inv.Context.ApplicationID,
			"audience", msg.audience,
			"error", err,
		)
		return Output{OutSkipped: true}, nil
	}

	if err := c.sender.SendEmail(ctx, to, emailSubject(msg, inv), emailBody(msg, inv)); err != nil {
		return nil, fmt.Errorf("failed to send email: %w", err)
	}
	return Output{OutRecipient: to}, nil
}
