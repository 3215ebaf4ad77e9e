package decision

import (
	"sort"
	"time"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// Verdict is the three-valued result of a policy
type Verdict string

const (
	VerdictAllow            Verdict = "allow"
	VerdictDeny             Verdict = "deny"
	VerdictAllowWithWarning Verdict = "allow_with_warning"
)

// Outcome is what a policy decided. Halt stops evaluation of lower
// priority policies after an allow.
type Outcome struct {
	Verdict  Verdict
	Code     workflow.ReasonCode
	Message  string
	Metadata map[string]interface{}
	Halt     bool
}

// Allow lets the intent through
func Allow() Outcome {
	return Outcome{Verdict: VerdictAllow}
}

// AllowAndHalt lets the intent through and skips every remaining policy
func AllowAndHalt(message string) Outcome {
	return Outcome{Verdict: VerdictAllow, Message: message, Halt: true}
}

// Deny blocks the intent with code. An empty message uses the canonical one.
func Deny(code workflow.ReasonCode, message string) Outcome {
	if message == "" && code != "" {
		message = code.Message()
	}
	return Outcome{Verdict: VerdictDeny, Code: code, Message: message}
}

// AllowWithWarning lets the intent through with advisory metadata
func AllowWithWarning(message string, metadata map[string]interface{}) Outcome {
	return Outcome{Verdict: VerdictAllowWithWarning, Message: message, Metadata: metadata}
}

// PolicyInput is everything a policy may inspect. CanOverride is the
// actor's single override capability, decided once by the engine.
type PolicyInput struct {
	Intent        workflow.Intent
	Role          workflow.Role
	CurrentStatus workflow.Status
	Context       *workflow.ApplicationContext
	CanOverride   bool
}

// Policy is a prioritized, switchable organizational constraint
type Policy struct {
	Name        string
	Description string
	Priority    int
	Enabled     bool
	// Intents and Roles restrict where the policy applies; empty means all
	Intents  []workflow.Intent
	Roles    []workflow.Role
	Evaluate func(in PolicyInput) Outcome
}

// Applies reports whether the policy filters match intent and role
func (p Policy) Applies(intent workflow.Intent, role workflow.Role) bool {
	if len(p.Intents) > 0 && !containsIntent(p.Intents, intent) {
		return false
	}
	if len(p.Roles) > 0 && !containsRole(p.Roles, role) {
		return false
	}
	return true
}

// Warning is a soft-deny surfaced on an allowed result
type Warning struct {
	Policy   string                 `json:"policy"`
	Message  string                 `json:"message"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// PolicyEvaluation is the aggregated outcome of a policy pass
type PolicyEvaluation struct {
	Denial   *workflow.Denial
	DeniedBy string
	Warnings []Warning
	Steps    []TraceStep
}

// Allowed reports whether no policy hard-denied
func (e PolicyEvaluation) Allowed() bool {
	return e.Denial == nil
}

// PolicySet is an ordered collection of policies
type PolicySet []Policy

// Sorted returns the policies by descending priority, ties broken by name
func (s PolicySet) Sorted() PolicySet {
	sorted := make(PolicySet, len(s))
	copy(sorted, s)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority != sorted[j].Priority {
			return sorted[i].Priority > sorted[j].Priority
		}
		return sorted[i].Name < sorted[j].Name
	})
	return sorted
}

// Enable returns a copy with the named policy enabled
func (s PolicySet) Enable(name string) PolicySet {
	return s.setEnabled(name, true)
}

// Disable returns a copy with the named policy disabled
func (s PolicySet) Disable(name string) PolicySet {
	return s.setEnabled(name, false)
}

// Get returns the named policy
func (s PolicySet) Get(name string) (Policy, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return Policy{}, false
}

func (s PolicySet) setEnabled(name string, enabled bool) PolicySet {
	out := make(PolicySet, len(s))
	copy(out, s)
	for i := range out {
		if out[i].Name == name {
			out[i].Enabled = enabled
		}
	}
	return out
}

// Evaluate runs the policies in priority order. It halts on the first deny
// or on an allow marked Halt; warnings never halt and never deny.
func (s PolicySet) Evaluate(in PolicyInput) PolicyEvaluation {
	var eval PolicyEvaluation
	sorted := s.Sorted()

	for i, p := range sorted {
		if !p.Enabled {
			eval.Steps = append(eval.Steps, skipped(StagePolicy, p.Name, "disabled"))
			continue
		}
		if !p.Applies(in.Intent, in.Role) || p.Evaluate == nil {
			eval.Steps = append(eval.Steps, skipped(StagePolicy, p.Name, "not applicable"))
			continue
		}

		out := p.Evaluate(in)
		switch out.Verdict {
		case VerdictDeny:
			code := out.Code
			if code == "" {
				code = workflow.ReasonPolicyViolation
			}
			message := out.Message
			if message == "" {
				message = code.Message()
			}
			denial := &workflow.Denial{Code: code, Message: message, Metadata: withPolicy(out.Metadata, p.Name)}
			eval.Denial = denial
			eval.DeniedBy = p.Name
			eval.Steps = append(eval.Steps, denied(StagePolicy, p.Name, denial))
			return eval
		case VerdictAllowWithWarning:
			eval.Warnings = append(eval.Warnings, Warning{Policy: p.Name, Message: out.Message, Metadata: out.Metadata})
			eval.Steps = append(eval.Steps, TraceStep{
				Stage:    StagePolicy,
				Name:     p.Name,
				Outcome:  OutcomeWarned,
				Message:  out.Message,
				Metadata: out.Metadata,
			})
		default:
			step := passed(StagePolicy, p.Name)
			step.Message = out.Message
			eval.Steps = append(eval.Steps, step)
			if out.Halt {
				for _, rest := range sorted[i+1:] {
					eval.Steps = append(eval.Steps, skipped(StagePolicy, rest.Name, "halted by "+p.Name))
				}
				return eval
			}
		}
	}
	return eval
}

func withPolicy(metadata map[string]interface{}, name string) map[string]interface{} {
	out := make(map[string]interface{}, len(metadata)+1)
	for k, v := range metadata {
		out[k] = v
	}
	out["policy"] = name
	return out
}

func containsIntent(list []workflow.Intent, i workflow.Intent) bool {
	for _, x := range list {
		if x == i {
			return true
		}
	}
	return false
}

func containsRole(list []workflow.Role, r workflow.Role) bool {
	for _, x := range list {
		if x == r {
			return true
		}
	}
	return false
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}
