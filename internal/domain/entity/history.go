package entity

import (
	"time"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// StatusHistory records one status change of an application
type StatusHistory struct {
	ID             int64           `json:"id"`
	ApplicationID  string          `json:"application_id"`
	ExecutionID    string          `json:"execution_id"`
	PreviousStatus workflow.Status `json:"previous_status"`
	NewStatus      workflow.Status `json:"new_status"`
	Intent         workflow.Intent `json:"intent"`
	ActorID        string          `json:"actor_id"`
	ActorRole      workflow.Role   `json:"actor_role"`
	Timestamp      time.Time       `json:"timestamp"`
}
