package event

// Type identifies the type of domain event
type Type string

const (
	TypeStatusChanged      Type = "application.status_changed"
	TypeWorkflowCompleted  Type = "workflow.completed"
	TypeWorkflowFailed     Type = "workflow.failed"
	TypeWorkflowRolledBack Type = "workflow.rolled_back"
	TypeWorkflowDenied     Type = "workflow.denied"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeStatusChanged,
		TypeWorkflowCompleted,
		TypeWorkflowFailed,
		TypeWorkflowRolledBack,
		TypeWorkflowDenied:
		return true
	default:
		return false
	}
}
