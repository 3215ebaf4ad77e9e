package orchestrator

import (
	"context"

	"github.com/garyjia/sip-workflow/internal/application/decision"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// Orchestrator validates intents and carries out their side effects
type Orchestrator interface {
	// ExecuteWorkflow validates the intent and, when allowed, runs its
	// commands. The first failing command triggers rollback of the ones
	// that already ran.
	ExecuteWorkflow(ctx context.Context, wc WorkflowContext) *WorkflowResult

	// ExecuteWorkflowWithRetry repeats a failed workflow up to maxRetries
	// times while every failure is retryable
	ExecuteWorkflowWithRetry(ctx context.Context, wc WorkflowContext, maxRetries int) *WorkflowResult

	// ValidateWorkflow reports the decision and the commands that would run
	ValidateWorkflow(ctx context.Context, wc WorkflowContext) *WorkflowResult

	// AvailableIntents lists what role can do with an application in status
	AvailableIntents(status workflow.Status, role workflow.Role, appCtx *workflow.ApplicationContext) []decision.AvailableIntent
}
