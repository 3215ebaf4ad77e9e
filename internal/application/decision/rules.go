package decision

import (
	"time"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// RuleInput is everything a business rule may inspect
type RuleInput struct {
	Intent  workflow.Intent
	Role    workflow.Role
	Context *workflow.ApplicationContext
	Now     time.Time
}

// Rule is a fixed real-world precondition. Check returns nil when the rule
// passes or when the facts it needs are absent.
type Rule struct {
	Name  string
	Check func(in RuleInput) *workflow.Denial
}

// DefaultRules returns the business rules in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		{Name: "internship_open_for_submission", Check: checkInternshipOpen},
		{Name: "application_deadline", Check: checkDeadline},
		{Name: "internship_open_for_acceptance", Check: checkInternshipNotClosed},
		{Name: "internship_capacity", Check: checkCapacity},
		{Name: "application_not_withdrawn", Check: checkNotWithdrawn},
		{Name: "employer_kyc", Check: checkEmployerKYC},
		{Name: "ownership", Check: checkOwnership},
	}
}

// RuleValidator evaluates business rules against an application context
type RuleValidator struct {
	rules []Rule
	clock func() time.Time
}

// NewRuleValidator creates a validator over rules. A nil clock means wall clock.
func NewRuleValidator(rules []Rule, clock func() time.Time) *RuleValidator {
	if clock == nil {
		clock = time.Now
	}
	return &RuleValidator{rules: rules, clock: clock}
}

// Validate returns the first violated rule's denial, or nil. A nil context
// always validates.
func (v *RuleValidator) Validate(intent workflow.Intent, role workflow.Role, appCtx *workflow.ApplicationContext) *workflow.Denial {
	_, denial := v.Evaluate(intent, role, appCtx)
	return denial
}

// Evaluate is Validate with one trace step per rule checked
func (v *RuleValidator) Evaluate(intent workflow.Intent, role workflow.Role, appCtx *workflow.ApplicationContext) ([]TraceStep, *workflow.Denial) {
	if appCtx == nil {
		return []TraceStep{skipped(StageBusinessRule, "all", "no application context")}, nil
	}

	in := RuleInput{
		Intent:  intent,
		Role:    role,
		Context: appCtx,
		Now:     appCtx.NowOr(v.clock),
	}

	steps := make([]TraceStep, 0, len(v.rules))
	for _, rule := range v.rules {
		if d := rule.Check(in); d != nil {
			return append(steps, denied(StageBusinessRule, rule.Name, d)), d
		}
		steps = append(steps, passed(StageBusinessRule, rule.Name))
	}
	return steps, nil
}

func checkInternshipOpen(in RuleInput) *workflow.Denial {
	if in.Intent != workflow.IntentSubmitApplication || in.Context.InternshipStatus == nil {
		return nil
	}
	switch *in.Context.InternshipStatus {
	case workflow.InternshipDraft:
		return workflow.NewDenial(workflow.ReasonInternshipDraft)
	case workflow.InternshipClosed:
		return workflow.NewDenial(workflow.ReasonInternshipClosed)
	}
	return nil
}

func checkDeadline(in RuleInput) *workflow.Denial {
	if in.Intent != workflow.IntentSubmitApplication || in.Context.ApplicationDeadline == nil {
		return nil
	}
	if in.Now.After(*in.Context.ApplicationDeadline) {
		return workflow.NewDenial(workflow.ReasonDeadlineExpired).
			WithMetadata("deadline", in.Context.ApplicationDeadline.Format(time.RFC3339))
	}
	return nil
}

func checkInternshipNotClosed(in RuleInput) *workflow.Denial {
	if in.Intent != workflow.IntentAcceptCandidate || in.Context.InternshipStatus == nil {
		return nil
	}
	if *in.Context.InternshipStatus == workflow.InternshipClosed {
		return workflow.NewDenial(workflow.ReasonInternshipClosed)
	}
	return nil
}

func checkCapacity(in RuleInput) *workflow.Denial {
	c := in.Context
	if in.Intent != workflow.IntentAcceptCandidate || c.MaxApplicants == nil || c.AcceptedCount == nil {
		return nil
	}
	if *c.AcceptedCount >= *c.MaxApplicants {
		return workflow.NewDenial(workflow.ReasonMaxApplicantsReached).
			WithMetadata("max_applicants", *c.MaxApplicants).
			WithMetadata("accepted_count", *c.AcceptedCount)
	}
	return nil
}

func checkNotWithdrawn(in RuleInput) *workflow.Denial {
	if !in.Intent.MutatesStatus() || in.Intent == workflow.IntentAdminOverride {
		return nil
	}
	if in.Context.IsWithdrawn != nil && *in.Context.IsWithdrawn {
		return workflow.NewDenial(workflow.ReasonAlreadyWithdrawn)
	}
	return nil
}

func checkEmployerKYC(in RuleInput) *workflow.Denial {
	if in.Role != workflow.RoleEmployer || !in.Intent.IsEmployerFacing() || in.Context.KYCStatus == nil {
		return nil
	}
	switch *in.Context.KYCStatus {
	case workflow.KYCApproved:
		return nil
	case workflow.KYCPending:
		return workflow.NewDenial(workflow.ReasonKYCPending)
	case workflow.KYCRejected:
		return workflow.NewDenial(workflow.ReasonKYCRejected)
	}
	return workflow.NewDenial(workflow.ReasonKYCNotApproved)
}

func checkOwnership(in RuleInput) *workflow.Denial {
	c := in.Context
	switch {
	case in.Role == workflow.RoleEmployer && in.Intent.IsEmployerFacing():
		if c.ActorOwnsInternship != nil && !*c.ActorOwnsInternship {
			return workflow.NewDenial(workflow.ReasonNotOwner).WithMetadata("resource", "internship")
		}
	case in.Role == workflow.RoleStudent && in.Intent == workflow.IntentWithdraw:
		if c.ActorOwnsApplication != nil && !*c.ActorOwnsApplication {
			return workflow.NewDenial(workflow.ReasonNotOwner).WithMetadata("resource", "application")
		}
	}
	return nil
}
