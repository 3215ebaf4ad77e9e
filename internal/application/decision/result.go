package decision

import "github.com/garyjia/sip-workflow/internal/domain/workflow"

// IntentContext describes the change a caller asks for
type IntentContext struct {
	Intent        workflow.Intent
	Role          workflow.Role
	CurrentStatus workflow.Status
	// TargetStatus is the explicit destination of an override
	TargetStatus *workflow.Status
	Trace        bool
	// Policies replaces the engine's policy set for this call when non-nil
	Policies PolicySet
}

// IntentResult is the engine's verdict
type IntentResult struct {
	Allowed    bool                   `json:"allowed"`
	Intent     workflow.Intent        `json:"intent"`
	NextStatus workflow.Status        `json:"next_status,omitempty"`
	ReasonCode workflow.ReasonCode    `json:"reason_code,omitempty"`
	Reason     string                 `json:"reason,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	Warnings   []Warning              `json:"warnings,omitempty"`
	Trace      []TraceStep            `json:"trace,omitempty"`
}

// HasWarnings reports whether an allowed result carries soft-deny warnings
func (r IntentResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AvailableIntent is an action the actor can take right now
type AvailableIntent struct {
	Intent               workflow.Intent   `json:"intent"`
	Label                string            `json:"label"`
	Icon                 string            `json:"icon"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	Severity             workflow.Severity `json:"severity"`
	Category             workflow.Category `json:"category"`
	NextStatus           workflow.Status   `json:"next_status"`
}
