package command

import (
	"context"
	"fmt"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// Descriptor is the static description of a command
type Descriptor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Priority int    `json:"priority"`

	// Retryable marks failures that may succeed on a later attempt
	Retryable bool `json:"retryable"`

	// Irreversible commands have external effects that cannot be undone
	Irreversible bool `json:"irreversible"`
}

// CommandContext identifies the records a workflow acts on
type CommandContext struct {
	ApplicationID string                 `json:"application_id"`
	UserID        string                 `json:"user_id"`
	StudentID     string                 `json:"student_id,omitempty"`
	EmployerID    string                 `json:"employer_id,omitempty"`
	InternshipID  string                 `json:"internship_id,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// MetadataString returns a string value from Metadata
func (c CommandContext) MetadataString(key string) string {
	if c.Metadata == nil {
		return ""
	}
	if v, ok := c.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// Invocation is everything a command learns about the approved decision
type Invocation struct {
	ExecutionID    string
	Intent         workflow.Intent
	Role           workflow.Role
	PreviousStatus workflow.Status
	NextStatus     workflow.Status
	Context        CommandContext
	Warnings       []string
	Trace          []string
}

// Output carries what a command produced. Rollback receives the Output of
// the matching Execute, so commands hold no per-call state.
type Output map[string]interface{}

// Int64 reads an integer value written by Execute
func (o Output) Int64(key string) (int64, bool) {
	switch v := o[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// Bool reads a boolean value written by Execute
func (o Output) Bool(key string) bool {
	v, _ := o[key].(bool)
	return v
}

// Command is one side effect of an approved workflow
type Command interface {
	Descriptor() Descriptor
	Execute(ctx context.Context, inv Invocation) (Output, error)
}

// Compensator is implemented by reversible commands
type Compensator interface {
	Rollback(ctx context.Context, inv Invocation, out Output) error
}

// IsReversible reports whether cmd can be rolled back
func IsReversible(cmd Command) bool {
	_, ok := cmd.(Compensator)
	return ok
}

// Rollback undoes cmd, returning ErrIrreversible when it cannot
func Rollback(ctx context.Context, cmd Command, inv Invocation, out Output) error {
	c, ok := cmd.(Compensator)
	if !ok {
		return fmt.Errorf("%s: %w", cmd.Descriptor().ID, ErrIrreversible)
	}
	return c.Rollback(ctx, inv, out)
}

// ExecuteFunc is the body of a function-based command
type ExecuteFunc func(ctx context.Context, inv Invocation) (Output, error)

// RollbackFunc is the compensator of a function-based command
type RollbackFunc func(ctx context.Context, inv Invocation, out Output) error

// New builds a command from functions. A nil rollback yields a command
// without a compensator, which must then be marked Irreversible.
func New(desc Descriptor, execute ExecuteFunc, rollback RollbackFunc) Command {
	base := &funcCommand{desc: desc, execute: execute}
	if rollback == nil {
		return base
	}
	return &reversibleFuncCommand{funcCommand: base, rollback: rollback}
}

type funcCommand struct {
	desc    Descriptor
	execute ExecuteFunc
}

func (c *funcCommand) Descriptor() Descriptor { return c.desc }

func (c *funcCommand) Execute(ctx context.Context, inv Invocation) (Output, error) {
	return c.execute(ctx, inv)
}

type reversibleFuncCommand struct {
	*funcCommand
	rollback RollbackFunc
}

func (c *reversibleFuncCommand) Rollback(ctx context.Context, inv Invocation, out Output) error {
	return c.rollback(ctx, inv, out)
}
