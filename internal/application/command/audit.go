package command

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// OutAuditID is the Output key of the appended audit entry
const OutAuditID = "audit_id"

// AuditDetails is the JSON document stored in AuditEntry.Details
type AuditDetails struct {
	Warnings []string               `json:"warnings,omitempty"`
	Trace    []string               `json:"trace,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	// Compensates is the ID of the entry a rollback entry reverses
	Compensates int64 `json:"compensates,omitempty"`
}

// AuditLogCommand appends an audit entry for the workflow. The log is
// append-only: rolling back records a reversing entry instead of removing
// the original.
type AuditLogCommand struct {
	repo port.AuditLogRepository
	now  func() time.Time
}

// NewAuditLogCommand creates the audit.log command
func NewAuditLogCommand(repo port.AuditLogRepository) *AuditLogCommand {
	return &AuditLogCommand{repo: repo, now: time.Now}
}

// Descriptor implements Command
func (c *AuditLogCommand) Descriptor() Descriptor {
	return Descriptor{
		ID:        IDAuditLog,
		Name:      "Append audit entry",
		Priority:  90,
		Retryable: true,
	}
}

// Execute implements Command
func (c *AuditLogCommand) Execute(ctx context.Context, inv Invocation) (Output, error) {
	entry, err := c.append(ctx, inv, inv.PreviousStatus, inv.NextStatus, AuditDetails{
		Warnings: inv.Warnings,
		Trace:    inv.Trace,
		Metadata: inv.Context.Metadata,
	})
	if err != nil {
		return nil, err
	}
	return Output{OutAuditID: entry.ID}, nil
}

// Rollback appends an entry reversing the status change of the original
func (c *AuditLogCommand) Rollback(ctx context.Context, inv Invocation, out Output) error {
	id, ok := out.Int64(OutAuditID)
	if !ok {
		return nil
	}
	_, err := c.append(ctx, inv, inv.NextStatus, inv.PreviousStatus, AuditDetails{
		Trace:       []string{"rolled back"},
		Compensates: id,
	})
	return err
}

func (c *AuditLogCommand) append(ctx context.Context, inv Invocation, from, to workflow.Status, d AuditDetails) (*entity.AuditEntry, error) {
	details, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal audit details: %w", err)
	}

	entry := &entity.AuditEntry{
		ApplicationID:  inv.Context.ApplicationID,
		ExecutionID:    inv.ExecutionID,
		Intent:         inv.Intent,
		ActorID:        inv.Context.UserID,
		ActorRole:      inv.Role,
		PreviousStatus: from,
		NewStatus:      to,
		Details:        string(details),
		CreatedAt:      c.now(),
	}
	if err := c.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append audit entry: %w", err)
	}
	return entry, nil
}
