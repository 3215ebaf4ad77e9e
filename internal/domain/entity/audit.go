package entity

import (
	"time"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// AuditEntry is one persisted record of an executed workflow
type AuditEntry struct {
	ID             int64           `json:"id"`
	ApplicationID  string          `json:"application_id"`
	ExecutionID    string          `json:"execution_id"`
	Intent         workflow.Intent `json:"intent"`
	ActorID        string          `json:"actor_id"`
	ActorRole      workflow.Role   `json:"actor_role"`
	PreviousStatus workflow.Status `json:"previous_status"`
	NewStatus      workflow.Status `json:"new_status"`
	// Details is a JSON document with warnings and the decision trace summary
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
