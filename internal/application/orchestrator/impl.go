package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/sip-workflow/internal/application/command"
	"github.com/garyjia/sip-workflow/internal/application/decision"
	"github.com/garyjia/sip-workflow/internal/application/dispatcher"
	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/event"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// DefaultRetryBackoff is the base delay between workflow attempts
const DefaultRetryBackoff = 500 * time.Millisecond

// orchestratorImpl is the concrete implementation of Orchestrator
type orchestratorImpl struct {
	engine     *decision.Engine
	registry   *command.Registry
	dispatcher dispatcher.Dispatcher
	logger     port.Logger

	backoff time.Duration
	newID   func() string
	now     func() time.Time
}

// Option configures the orchestrator
type Option func(*orchestratorImpl)

// WithDispatcher sets the event dispatcher for emitting workflow events
func WithDispatcher(d dispatcher.Dispatcher) Option {
	return func(o *orchestratorImpl) {
		o.dispatcher = d
	}
}

// WithLogger sets the logger
func WithLogger(logger port.Logger) Option {
	return func(o *orchestratorImpl) {
		o.logger = logger
	}
}

// WithRetryBackoff sets the base delay between attempts. Attempt n waits
// n times the base.
func WithRetryBackoff(base time.Duration) Option {
	return func(o *orchestratorImpl) {
		o.backoff = base
	}
}

// WithIDGenerator replaces the execution id generator
func WithIDGenerator(newID func() string) Option {
	return func(o *orchestratorImpl) {
		o.newID = newID
	}
}

// NewOrchestrator creates a new workflow orchestrator
func NewOrchestrator(engine *decision.Engine, registry *command.Registry, opts ...Option) Orchestrator {
	o := &orchestratorImpl{
		engine:   engine,
		registry: registry,
		logger:   port.NopLogger{},
		backoff:  DefaultRetryBackoff,
		newID:    uuid.NewString,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

func (o *orchestratorImpl) AvailableIntents(status workflow.Status, role workflow.Role, appCtx *workflow.ApplicationContext) []decision.AvailableIntent {
	return o.engine.AvailableIntents(status, role, appCtx)
}

func (o *orchestratorImpl) ExecuteWorkflow(ctx context.Context, wc WorkflowContext) *WorkflowResult {
	return o.run(ctx, wc, true)
}

func (o *orchestratorImpl) ValidateWorkflow(ctx context.Context, wc WorkflowContext) *WorkflowResult {
	return o.run(ctx, wc, false)
}

func (o *orchestratorImpl) ExecuteWorkflowWithRetry(ctx context.Context, wc WorkflowContext, maxRetries int) *WorkflowResult {
	if wc.ExecutionID == "" {
		wc.ExecutionID = o.newID()
	}
	// every attempt acts on the same application
	if wc.Command.ApplicationID == "" && wc.Intent.CurrentStatus == workflow.StatusNone {
		wc.Command.ApplicationID = o.newID()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}

	var result *WorkflowResult
	for attempt := 1; ; attempt++ {
		result = o.run(ctx, wc, true)
		result.Attempts = attempt

		if result.Success || !result.Retryable() || attempt > maxRetries {
			return result
		}

		wait := o.backoff * time.Duration(attempt)
		o.logger.Info("Retrying workflow",
			"execution_id", result.ExecutionID,
			"intent", wc.Intent.Intent,
			"attempt", attempt,
			"backoff", wait,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			result.Error = fmt.Sprintf("retry aborted: %v", ctx.Err())
			return result
		case <-timer.C:
		}
	}
}

// run evaluates the intent and, if execute is set, runs its commands
func (o *orchestratorImpl) run(ctx context.Context, wc WorkflowContext, execute bool) *WorkflowResult {
	start := o.now()
	result := &WorkflowResult{
		ExecutionID:      wc.ExecutionID,
		Commands:         []CommandRecord{},
		CommandsExecuted: []string{},
		CommandsFailed:   []string{},
		Attempts:         1,
	}
	if result.ExecutionID == "" {
		result.ExecutionID = o.newID()
	}
	defer func() {
		result.Duration = o.now().Sub(start)
	}()

	cc := wc.Command
	if cc.ApplicationID == "" && wc.Intent.CurrentStatus == workflow.StatusNone {
		cc.ApplicationID = o.newID()
	}
	result.ApplicationID = cc.ApplicationID

	o.logger.Info("Workflow started",
		"execution_id", result.ExecutionID,
		"application_id", cc.ApplicationID,
		"intent", wc.Intent.Intent,
		"role", wc.Intent.Role,
		"execute", execute,
	)

	// the audit trail always records the trace; the caller sees it on request
	ic := wc.Intent
	ic.Trace = true
	decided := o.engine.ExecuteIntent(ic, wc.Application)
	summary := decision.Summary(decided.Trace)
	if !wc.Intent.Trace {
		decided.Trace = nil
	}
	result.Decision = decided

	if !decided.Allowed {
		o.logger.Info("Workflow denied",
			"execution_id", result.ExecutionID,
			"intent", wc.Intent.Intent,
			"reason_code", decided.ReasonCode,
		)
		if execute {
			o.emit(ctx, event.TypeWorkflowDenied, result, map[string]interface{}{
				"intent":      wc.Intent.Intent.String(),
				"reason_code": decided.ReasonCode.String(),
			})
		}
		return result
	}

	cmds, err := o.resolveCommands(wc)
	if err != nil {
		result.Error = err.Error()
		o.logger.Error("Failed to resolve workflow commands",
			"execution_id", result.ExecutionID,
			"intent", wc.Intent.Intent,
			"error", err,
		)
		return result
	}

	if !execute {
		for _, cmd := range cmds {
			result.PlannedCommands = append(result.PlannedCommands, cmd.Descriptor())
		}
		result.Success = true
		return result
	}

	inv := command.Invocation{
		ExecutionID:    result.ExecutionID,
		Intent:         wc.Intent.Intent,
		Role:           wc.Intent.Role,
		PreviousStatus: wc.Intent.CurrentStatus,
		NextStatus:     decided.NextStatus,
		Context:        cc,
		Warnings:       warningMessages(decided.Warnings),
		Trace:          summary,
	}

	o.executeCommands(ctx, inv, cmds, result)
	o.publishOutcome(ctx, inv, result)
	return result
}

// resolveCommands picks the commands of the workflow in execution order
func (o *orchestratorImpl) resolveCommands(wc WorkflowContext) ([]command.Command, error) {
	if len(wc.Commands) > 0 {
		return command.SortByPriority(wc.Commands), nil
	}
	if o.registry == nil {
		return nil, errors.New("no command registry configured")
	}
	if len(wc.CommandIDs) > 0 {
		return o.registry.Resolve(wc.CommandIDs)
	}
	return o.registry.CommandsFor(wc.Intent.Intent), nil
}

// executeCommands runs cmds in order and rolls back on the first failure
func (o *orchestratorImpl) executeCommands(ctx context.Context, inv command.Invocation, cmds []command.Command, result *WorkflowResult) {
	executed := make([]int, 0, len(cmds))

	for i, cmd := range cmds {
		desc := cmd.Descriptor()
		rec := CommandRecord{
			CommandID:    desc.ID,
			Name:         desc.Name,
			Priority:     desc.Priority,
			Retryable:    desc.Retryable,
			Irreversible: desc.Irreversible,
		}

		if len(result.CommandsFailed) > 0 {
			rec.Status = CommandSkipped
			result.Commands = append(result.Commands, rec)
			continue
		}

		started := o.now()
		out, err := safeExecute(ctx, cmd, inv)
		rec.Duration = o.now().Sub(started)

		if err != nil {
			rec.Status = CommandFailed
			rec.Error = err.Error()
			result.CommandsFailed = append(result.CommandsFailed, desc.ID)
			result.Error = fmt.Sprintf("command %s failed: %v", desc.ID, err)
			o.logger.Error("Command failed",
				"execution_id", inv.ExecutionID,
				"command_id", desc.ID,
				"error", err,
			)
		} else {
			rec.Status = CommandSucceeded
			rec.Output = out
			result.CommandsExecuted = append(result.CommandsExecuted, desc.ID)
			executed = append(executed, i)
		}
		result.Commands = append(result.Commands, rec)
	}

	if len(result.CommandsFailed) == 0 {
		result.Success = true
		return
	}

	o.rollback(ctx, inv, cmds, executed, result)
}

// rollback undoes executed commands in reverse order. Every command is
// attempted even when an earlier rollback fails.
func (o *orchestratorImpl) rollback(ctx context.Context, inv command.Invocation, cmds []command.Command, executed []int, result *WorkflowResult) {
	if len(executed) == 0 {
		return
	}
	result.RollbackExecuted = true

	for j := len(executed) - 1; j >= 0; j-- {
		i := executed[j]
		cmd := cmds[i]
		rec := &result.Commands[i]

		entry := RollbackRecord{CommandID: rec.CommandID}

		if !command.IsReversible(cmd) {
			entry.Status = RollbackNotSupported
			result.IrreversibleEffects = append(result.IrreversibleEffects, rec.CommandID)
			o.logger.Info("Command cannot be rolled back",
				"execution_id", inv.ExecutionID,
				"command_id", rec.CommandID,
			)
		} else if err := safeRollback(ctx, cmd, inv, rec.Output); err != nil {
			entry.Status = RollbackFailed
			entry.Error = err.Error()
			o.logger.Error("Rollback failed",
				"execution_id", inv.ExecutionID,
				"command_id", rec.CommandID,
				"error", err,
			)
		} else {
			entry.Status = RolledBack
		}

		rec.RollbackStatus = entry.Status
		rec.RollbackError = entry.Error
		result.Rollbacks = append(result.Rollbacks, entry)
	}
}

// publishOutcome emits the workflow events of an executed workflow
func (o *orchestratorImpl) publishOutcome(ctx context.Context, inv command.Invocation, result *WorkflowResult) {
	payload := map[string]interface{}{
		"intent":          inv.Intent.String(),
		"role":            inv.Role.String(),
		"previous_status": inv.PreviousStatus.String(),
		"new_status":      inv.NextStatus.String(),
		"actor_id":        inv.Context.UserID,
	}

	if result.Success {
		o.logger.Info("Workflow completed",
			"execution_id", result.ExecutionID,
			"application_id", result.ApplicationID,
			"new_status", inv.NextStatus,
			"commands_executed", len(result.CommandsExecuted),
		)
		o.emit(ctx, event.TypeStatusChanged, result, payload)
		o.emit(ctx, event.TypeWorkflowCompleted, result, payload)
		return
	}

	payload["error"] = result.Error
	o.emit(ctx, event.TypeWorkflowFailed, result, payload)
	if result.RollbackExecuted {
		rolledBack := map[string]interface{}{}
		for k, v := range payload {
			rolledBack[k] = v
		}
		rolledBack["irreversible_effects"] = result.IrreversibleEffects
		o.emit(ctx, event.TypeWorkflowRolledBack, result, rolledBack)
	}
}

func (o *orchestratorImpl) emit(ctx context.Context, eventType event.Type, result *WorkflowResult, payload map[string]interface{}) {
	if o.dispatcher == nil {
		return
	}
	evt := event.NewEvent(eventType, result.ApplicationID, result.ExecutionID, payload)
	// fire async to avoid blocking
	o.dispatcher.PublishAsync(ctx, evt)
}

// safeExecute runs a command with panic recovery
func safeExecute(ctx context.Context, cmd command.Command, inv command.Invocation) (out command.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("command panic: %v", r)
		}
	}()

	out, err = cmd.Execute(ctx, inv)
	if err == nil && out == nil {
		out = command.Output{}
	}
	return out, err
}

// safeRollback runs a compensator with panic recovery
func safeRollback(ctx context.Context, cmd command.Command, inv command.Invocation, out command.Output) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rollback panic: %v", r)
		}
	}()

	return command.Rollback(ctx, cmd, inv, out)
}

func warningMessages(warnings []decision.Warning) []string {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]string, len(warnings))
	for i, w := range warnings {
		out[i] = w.Message
	}
	return out
}
