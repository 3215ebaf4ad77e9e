package decision

import (
	"time"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// Engine decides whether an intent may be applied to an application. It
// holds only immutable configuration and is safe for concurrent use.
type Engine struct {
	table     *workflow.TransitionTable
	policies  PolicySet
	validator *RuleValidator
	clock     func() time.Time
}

// Option configures the engine
type Option func(*Engine)

// WithTable replaces the transition table
func WithTable(table *workflow.TransitionTable) Option {
	return func(e *Engine) {
		e.table = table
	}
}

// WithPolicies replaces the default policy set
func WithPolicies(policies PolicySet) Option {
	return func(e *Engine) {
		e.policies = policies
	}
}

// WithRules replaces the business rules
func WithRules(rules []Rule) Option {
	return func(e *Engine) {
		e.validator = NewRuleValidator(rules, nil)
	}
}

// WithClock sets the fallback clock used when a context has no "now"
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// NewEngine creates a decision engine with the default table, rules and
// policies
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		table:    workflow.DefaultTable(),
		policies: DefaultPolicies(),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	rules := DefaultRules()
	if e.validator != nil {
		rules = e.validator.rules
	}
	e.validator = NewRuleValidator(rules, e.clock)
	return e
}

// Policies returns the engine's default policy set
func (e *Engine) Policies() PolicySet {
	out := make(PolicySet, len(e.policies))
	copy(out, e.policies)
	return out
}

// ExecuteIntent runs permission, business rule, policy, terminal status,
// target resolution and transition checks in that order, stopping at the
// first denial.
func (e *Engine) ExecuteIntent(ic IntentContext, appCtx *workflow.ApplicationContext) IntentResult {
	var trace []TraceStep
	deny := func(d *workflow.Denial) IntentResult {
		r := IntentResult{
			Allowed:    false,
			Intent:     ic.Intent,
			ReasonCode: d.Code,
			Reason:     d.Message,
			Metadata:   d.Metadata,
		}
		if ic.Trace {
			r.Trace = trace
		}
		return r
	}

	def, err := workflow.Define(ic.Intent)
	if err != nil {
		return deny(workflow.NewDenial(workflow.ReasonUnknownIntent).WithMetadata("intent", string(ic.Intent)))
	}
	if ic.CurrentStatus != workflow.StatusNone && !ic.CurrentStatus.IsValid() {
		return deny(workflow.NewDenial(workflow.ReasonInvalidStatus).WithMetadata("status", string(ic.CurrentStatus)))
	}
	if ic.TargetStatus != nil && !ic.TargetStatus.IsValid() {
		return deny(workflow.NewDenial(workflow.ReasonInvalidStatus).WithMetadata("status", string(*ic.TargetStatus)))
	}

	// single override decision shared by every later layer
	canOverride := ic.Role.CanOverrideTerminal()

	step, d := checkPermission(def, ic.Role)
	trace = append(trace, step)
	if d != nil {
		return deny(d)
	}

	steps, d := e.validator.Evaluate(ic.Intent, ic.Role, appCtx)
	trace = append(trace, steps...)
	if d != nil {
		return deny(d)
	}

	policies := e.policies
	if ic.Policies != nil {
		policies = ic.Policies
	}
	eval := policies.Evaluate(PolicyInput{
		Intent:        ic.Intent,
		Role:          ic.Role,
		CurrentStatus: ic.CurrentStatus,
		Context:       appCtx,
		CanOverride:   canOverride,
	})
	trace = append(trace, eval.Steps...)
	if !eval.Allowed() {
		return deny(eval.Denial)
	}

	step, d = checkTerminal(ic.CurrentStatus, canOverride)
	trace = append(trace, step)
	if d != nil {
		return deny(d)
	}

	override := ic.Intent == workflow.IntentAdminOverride || (canOverride && ic.CurrentStatus.IsTerminal())
	step, target, d := resolveTarget(def, ic, override)
	trace = append(trace, step)
	if d != nil {
		return deny(d)
	}

	step, d = e.checkTransition(ic.Intent, ic.Role, ic.CurrentStatus, target, canOverride)
	trace = append(trace, step)
	if d != nil {
		return deny(d)
	}

	result := IntentResult{
		Allowed:    true,
		Intent:     ic.Intent,
		NextStatus: target,
		Metadata: map[string]interface{}{
			"previous_status":       string(ic.CurrentStatus),
			"next_status":           string(target),
			"label":                 def.Metadata.Label,
			"requires_confirmation": def.Metadata.RequiresConfirmation,
			"override":              override,
		},
		Warnings: eval.Warnings,
	}
	if ic.Trace {
		result.Trace = trace
	}
	return result
}

// AvailableIntents lists the catalog intents, admin override excluded, that
// would currently be allowed for role on an application in status.
func (e *Engine) AvailableIntents(status workflow.Status, role workflow.Role, appCtx *workflow.ApplicationContext) []AvailableIntent {
	available := make([]AvailableIntent, 0)
	for _, intent := range workflow.AllIntents() {
		if intent == workflow.IntentAdminOverride {
			continue
		}
		r := e.ExecuteIntent(IntentContext{Intent: intent, Role: role, CurrentStatus: status}, appCtx)
		if !r.Allowed {
			continue
		}
		def, _ := workflow.Define(intent)
		available = append(available, AvailableIntent{
			Intent:               intent,
			Label:                def.Metadata.Label,
			Icon:                 def.Metadata.Icon,
			RequiresConfirmation: def.Metadata.RequiresConfirmation,
			Severity:             def.Metadata.Severity,
			Category:             def.Metadata.Category,
			NextStatus:           r.NextStatus,
		})
	}
	return available
}

func checkPermission(def workflow.Definition, role workflow.Role) (TraceStep, *workflow.Denial) {
	if !def.AllowsRole(role) {
		d := workflow.NewDenial(workflow.ReasonInsufficientPermissions).
			WithMetadata("role", string(role)).
			WithMetadata("allowed_roles", def.AllowedRoles)
		return denied(StagePermission, "role_allowed", d), d
	}
	return passed(StagePermission, "role_allowed"), nil
}

func checkTerminal(current workflow.Status, canOverride bool) (TraceStep, *workflow.Denial) {
	if !current.IsTerminal() {
		return passed(StageTerminalStatus, "not_terminal"), nil
	}
	if canOverride {
		step := passed(StageTerminalStatus, "terminal_override")
		step.Message = "terminal status overridden"
		return step, nil
	}
	d := workflow.NewDenial(workflow.ReasonTerminalStatus).WithMetadata("current_status", string(current))
	return denied(StageTerminalStatus, "not_terminal", d), d
}

func resolveTarget(def workflow.Definition, ic IntentContext, override bool) (TraceStep, workflow.Status, *workflow.Denial) {
	if override {
		if ic.TargetStatus == nil {
			d := workflow.NewDenial(workflow.ReasonTargetStatusRequired)
			return denied(StageTargetResolution, "explicit_target", d), workflow.StatusNone, d
		}
		step := passed(StageTargetResolution, "explicit_target")
		step.Metadata = map[string]interface{}{"target_status": string(*ic.TargetStatus)}
		return step, *ic.TargetStatus, nil
	}

	target, ok := def.Resolve(ic.CurrentStatus)
	if !ok {
		d := workflow.NewDenial(workflow.ReasonTargetStatusRequired)
		return denied(StageTargetResolution, "resolver", d), workflow.StatusNone, d
	}
	step := passed(StageTargetResolution, "resolver")
	step.Metadata = map[string]interface{}{"target_status": string(target)}
	return step, target, nil
}

func (e *Engine) checkTransition(intent workflow.Intent, role workflow.Role, current, target workflow.Status, canOverride bool) (TraceStep, *workflow.Denial) {
	// only an explicit override may rewrite a status onto itself
	if target == current && intent != workflow.IntentAdminOverride {
		d := workflow.NewDenial(workflow.ReasonInvalidTransition).
			WithMetadata("current_status", string(current)).
			WithMetadata("target_status", string(target)).
			WithMetadata("allowed_transitions", statusStrings(e.table.AllowedNextStates(current)))
		return denied(StageTransition, "status_changes", d), d
	}

	if canOverride {
		step := passed(StageTransition, "table_bypassed")
		step.Message = "override-capable actor"
		return step, nil
	}

	caps := role.Capabilities()
	if !caps.Allows(target) {
		d := workflow.NewDenial(workflow.ReasonInsufficientPermissions).
			WithMetadata("target_status", string(target))
		return denied(StageTransition, "role_target", d), d
	}

	// a new application may only start in a status the role can initiate
	if current == workflow.StatusNone {
		if !containsStatus(caps.CanInitiate, target) {
			d := workflow.NewDenial(workflow.ReasonInvalidTransition).
				WithMetadata("allowed_transitions", statusStrings(caps.CanInitiate))
			return denied(StageTransition, "initiate", d), d
		}
		return passed(StageTransition, "initiate"), nil
	}

	if !e.table.IsAllowed(current, target) {
		d := workflow.NewDenial(workflow.ReasonInvalidTransition).
			WithMetadata("current_status", string(current)).
			WithMetadata("target_status", string(target)).
			WithMetadata("allowed_transitions", statusStrings(e.table.AllowedNextStates(current)))
		return denied(StageTransition, "table", d), d
	}
	return passed(StageTransition, "table"), nil
}

func containsStatus(list []workflow.Status, s workflow.Status) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

func statusStrings(statuses []workflow.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
