package orchestrator

import (
	"time"

	"github.com/garyjia/sip-workflow/internal/application/command"
	"github.com/garyjia/sip-workflow/internal/application/decision"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// WorkflowContext is one request to validate and carry out an intent
type WorkflowContext struct {
	Intent      decision.IntentContext
	Application *workflow.ApplicationContext
	Command     command.CommandContext

	// CommandIDs replaces the registry bindings of the intent when set
	CommandIDs []string
	// Commands are ad hoc commands run instead of any registered ones
	Commands []command.Command

	// ExecutionID is generated when empty
	ExecutionID string
}

// CommandStatus is the outcome of one command
type CommandStatus string

const (
	CommandSucceeded CommandStatus = "succeeded"
	CommandFailed    CommandStatus = "failed"
	CommandSkipped   CommandStatus = "skipped"
)

// RollbackStatus is the outcome of undoing one command
type RollbackStatus string

const (
	RollbackNone         RollbackStatus = ""
	RolledBack           RollbackStatus = "rolled_back"
	RollbackFailed       RollbackStatus = "rollback_failed"
	RollbackNotSupported RollbackStatus = "rollback_not_supported"
)

// CommandRecord tracks one command of a workflow
type CommandRecord struct {
	CommandID      string         `json:"command_id"`
	Name           string         `json:"name"`
	Priority       int            `json:"priority"`
	Status         CommandStatus  `json:"status"`
	Error          string         `json:"error,omitempty"`
	Duration       time.Duration  `json:"duration"`
	Output         command.Output `json:"output,omitempty"`
	Retryable      bool           `json:"retryable"`
	Irreversible   bool           `json:"irreversible"`
	RollbackStatus RollbackStatus `json:"rollback_status,omitempty"`
	RollbackError  string         `json:"rollback_error,omitempty"`
}

// RollbackRecord is one compensation attempt, in the order attempted
type RollbackRecord struct {
	CommandID string         `json:"command_id"`
	Status    RollbackStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
}

// WorkflowResult is the outcome of a workflow
type WorkflowResult struct {
	ExecutionID   string                `json:"execution_id"`
	ApplicationID string                `json:"application_id"`
	Success       bool                  `json:"success"`
	Decision      decision.IntentResult `json:"decision"`
	Commands      []CommandRecord       `json:"commands"`

	// CommandsExecuted and CommandsFailed hold command ids
	CommandsExecuted    []string         `json:"commands_executed"`
	CommandsFailed      []string         `json:"commands_failed"`
	RollbackExecuted    bool             `json:"rollback_executed"`
	Rollbacks           []RollbackRecord `json:"rollbacks,omitempty"`
	IrreversibleEffects []string         `json:"irreversible_effects,omitempty"`

	// PlannedCommands is filled by ValidateWorkflow only
	PlannedCommands []command.Descriptor `json:"planned_commands,omitempty"`

	Attempts int           `json:"attempts"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Denied reports whether the engine refused the intent
func (r *WorkflowResult) Denied() bool {
	return !r.Decision.Allowed
}

// Retryable reports whether every failed command may succeed on retry
func (r *WorkflowResult) Retryable() bool {
	if r.Success || r.Denied() || len(r.CommandsFailed) == 0 {
		return false
	}
	for _, rec := range r.Commands {
		if rec.Status == CommandFailed && !rec.Retryable {
			return false
		}
	}
	return true
}
