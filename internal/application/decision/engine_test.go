package decision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(append([]Option{WithClock(fixedClock(monday10am))}, opts...)...)
}

func statusPtr(s workflow.Status) *workflow.Status {
	return &s
}

func TestEngine_SubmitWithOpenDeadline(t *testing.T) {
	e := newTestEngine()
	ctx := workflow.NewApplicationContext().
		WithNow(monday10am).
		WithInternshipStatus(workflow.InternshipPublished).
		WithDeadline(monday10am.Add(7 * 24 * time.Hour))

	r := e.ExecuteIntent(IntentContext{
		Intent: workflow.IntentSubmitApplication,
		Role:   workflow.RoleStudent,
	}, ctx.Ptr())

	assert.True(t, r.Allowed)
	assert.Equal(t, workflow.StatusSubmitted, r.NextStatus)
	assert.Empty(t, r.ReasonCode)
}

func TestEngine_SubmitAfterDeadline(t *testing.T) {
	e := newTestEngine()
	ctx := workflow.NewApplicationContext().
		WithNow(monday10am).
		WithInternshipStatus(workflow.InternshipPublished).
		WithDeadline(monday10am.Add(-24 * time.Hour))

	r := e.ExecuteIntent(IntentContext{
		Intent: workflow.IntentSubmitApplication,
		Role:   workflow.RoleStudent,
	}, ctx.Ptr())

	assert.False(t, r.Allowed)
	assert.Equal(t, workflow.ReasonDeadlineExpired, r.ReasonCode)
	assert.Equal(t, workflow.ReasonDeadlineExpired.Message(), r.Reason)
}

func TestEngine_AcceptAgainstCapacity(t *testing.T) {
	tests := []struct {
		name     string
		accepted int
		allowed  bool
		code     workflow.ReasonCode
	}{
		{"at capacity", 10, false, workflow.ReasonMaxApplicantsReached},
		{"below capacity", 9, true, ""},
	}

	e := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := workflow.NewApplicationContext().
				WithCapacity(10, tt.accepted).
				WithKYC(workflow.KYCApproved)

			r := e.ExecuteIntent(IntentContext{
				Intent:        workflow.IntentAcceptCandidate,
				Role:          workflow.RoleEmployer,
				CurrentStatus: workflow.StatusInterviewScheduled,
			}, ctx.Ptr())

			assert.Equal(t, tt.allowed, r.Allowed)
			assert.Equal(t, tt.code, r.ReasonCode)
			if tt.allowed {
				assert.Equal(t, workflow.StatusAccepted, r.NextStatus)
			}
		})
	}
}

func TestEngine_AdminOnTerminalRequiresExplicitTarget(t *testing.T) {
	e := newTestEngine()

	r := e.ExecuteIntent(IntentContext{
		Intent:        workflow.IntentRejectCandidate,
		Role:          workflow.RoleAdmin,
		CurrentStatus: workflow.StatusAccepted,
	}, nil)

	assert.False(t, r.Allowed)
	assert.Equal(t, workflow.ReasonTargetStatusRequired, r.ReasonCode)

	withTarget := e.ExecuteIntent(IntentContext{
		Intent:        workflow.IntentRejectCandidate,
		Role:          workflow.RoleAdmin,
		CurrentStatus: workflow.StatusAccepted,
		TargetStatus:  statusPtr(workflow.StatusRejected),
	}, nil)

	assert.True(t, withTarget.Allowed)
	assert.Equal(t, workflow.StatusRejected, withTarget.NextStatus)
	assert.Equal(t, true, withTarget.Metadata["override"])
}

func TestEngine_TerminalStatusesDenyNonOverrideRoles(t *testing.T) {
	e := newTestEngine()
	terminal := []workflow.Status{workflow.StatusAccepted, workflow.StatusRejected, workflow.StatusWithdrawn}

	for _, status := range terminal {
		for _, role := range workflow.AllRoles() {
			if role.CanOverrideTerminal() {
				continue
			}
			for _, intent := range workflow.AllIntents() {
				r := e.ExecuteIntent(IntentContext{Intent: intent, Role: role, CurrentStatus: status}, nil)
				assert.False(t, r.Allowed, "%s by %s on %s", intent, role, status)
			}
		}
	}
}

func TestEngine_AdminOverrideReachesAnyTarget(t *testing.T) {
	e := newTestEngine()
	ctx := workflow.NewApplicationContext().WithWithdrawn(true).WithNow(time.Date(2026, 3, 7, 2, 0, 0, 0, time.UTC))

	for _, current := range workflow.AllStatuses() {
		for _, target := range workflow.AllStatuses() {
			r := e.ExecuteIntent(IntentContext{
				Intent:        workflow.IntentAdminOverride,
				Role:          workflow.RoleAdmin,
				CurrentStatus: current,
				TargetStatus:  statusPtr(target),
			}, ctx.Ptr())
			require.True(t, r.Allowed, "override %s -> %s: %s", current, target, r.ReasonCode)
			assert.Equal(t, target, r.NextStatus)
		}
	}
}

func TestEngine_AdminCannotRepeatCurrentStatus(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name   string
		ic     IntentContext
		reason workflow.ReasonCode
	}{
		{
			name: "resolved target equals current",
			ic: IntentContext{
				Intent:        workflow.IntentStartReview,
				Role:          workflow.RoleAdmin,
				CurrentStatus: workflow.StatusUnderReview,
			},
			reason: workflow.ReasonInvalidTransition,
		},
		{
			name: "explicit target on terminal record equals current",
			ic: IntentContext{
				Intent:        workflow.IntentRejectCandidate,
				Role:          workflow.RoleAdmin,
				CurrentStatus: workflow.StatusRejected,
				TargetStatus:  statusPtr(workflow.StatusRejected),
			},
			reason: workflow.ReasonInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.ExecuteIntent(tt.ic, nil)
			assert.False(t, r.Allowed)
			assert.Equal(t, tt.reason, r.ReasonCode)
			assert.Contains(t, r.Metadata, "allowed_transitions")
		})
	}

	// the explicit override stays free to rewrite a status onto itself
	r := e.ExecuteIntent(IntentContext{
		Intent:        workflow.IntentAdminOverride,
		Role:          workflow.RoleAdmin,
		CurrentStatus: workflow.StatusUnderReview,
		TargetStatus:  statusPtr(workflow.StatusUnderReview),
	}, nil)
	assert.True(t, r.Allowed)
}

func TestEngine_AdminOverrideWithoutTarget(t *testing.T) {
	r := newTestEngine().ExecuteIntent(IntentContext{
		Intent:        workflow.IntentAdminOverride,
		Role:          workflow.RoleAdmin,
		CurrentStatus: workflow.StatusSubmitted,
	}, nil)

	assert.False(t, r.Allowed)
	assert.Equal(t, workflow.ReasonTargetStatusRequired, r.ReasonCode)
}

func TestEngine_DenialOrder(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name string
		ic   IntentContext
		ctx  *workflow.ApplicationContext
		want workflow.ReasonCode
	}{
		{
			name: "permission before rules",
			ic:   IntentContext{Intent: workflow.IntentAcceptCandidate, Role: workflow.RoleStudent, CurrentStatus: workflow.StatusShortlisted},
			ctx:  workflow.NewApplicationContext().WithCapacity(1, 1).Ptr(),
			want: workflow.ReasonInsufficientPermissions,
		},
		{
			name: "rules before policies",
			ic:   IntentContext{Intent: workflow.IntentAcceptCandidate, Role: workflow.RoleEmployer, CurrentStatus: workflow.StatusShortlisted},
			ctx:  workflow.NewApplicationContext().WithCapacity(1, 1).WithCompanyHiring(1, 1).Ptr(),
			want: workflow.ReasonMaxApplicantsReached,
		},
		{
			name: "policies before terminal check",
			ic:   IntentContext{Intent: workflow.IntentAcceptCandidate, Role: workflow.RoleEmployer, CurrentStatus: workflow.StatusRejected},
			ctx:  workflow.NewApplicationContext().WithCompanyHiring(1, 1).Ptr(),
			want: workflow.ReasonCompanyHiringLimit,
		},
		{
			name: "terminal check before transition",
			ic:   IntentContext{Intent: workflow.IntentWithdraw, Role: workflow.RoleStudent, CurrentStatus: workflow.StatusRejected},
			want: workflow.ReasonTerminalStatus,
		},
		{
			name: "invalid transition",
			ic:   IntentContext{Intent: workflow.IntentAcceptCandidate, Role: workflow.RoleEmployer, CurrentStatus: workflow.StatusSubmitted},
			want: workflow.ReasonInvalidTransition,
		},
		{
			name: "unknown intent",
			ic:   IntentContext{Intent: workflow.Intent("HIRE"), Role: workflow.RoleEmployer, CurrentStatus: workflow.StatusSubmitted},
			want: workflow.ReasonUnknownIntent,
		},
		{
			name: "unknown status",
			ic:   IntentContext{Intent: workflow.IntentStartReview, Role: workflow.RoleEmployer, CurrentStatus: workflow.Status("HIRED")},
			want: workflow.ReasonInvalidStatus,
		},
		{
			name: "employer cannot open an application",
			ic:   IntentContext{Intent: workflow.IntentStartReview, Role: workflow.RoleEmployer},
			want: workflow.ReasonInvalidTransition,
		},
		{
			name: "duplicate submission",
			ic:   IntentContext{Intent: workflow.IntentSubmitApplication, Role: workflow.RoleStudent, CurrentStatus: workflow.StatusSubmitted},
			want: workflow.ReasonInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := e.ExecuteIntent(tt.ic, tt.ctx)
			assert.False(t, r.Allowed)
			assert.Equal(t, tt.want, r.ReasonCode)
		})
	}
}

func TestEngine_InvalidTransitionListsAlternatives(t *testing.T) {
	r := newTestEngine().ExecuteIntent(IntentContext{
		Intent:        workflow.IntentAcceptCandidate,
		Role:          workflow.RoleEmployer,
		CurrentStatus: workflow.StatusSubmitted,
	}, nil)

	require.Equal(t, workflow.ReasonInvalidTransition, r.ReasonCode)
	assert.Equal(t, []string{"UNDER_REVIEW", "SHORTLISTED", "REJECTED", "WITHDRAWN"}, r.Metadata["allowed_transitions"])
}

func TestEngine_IsDeterministic(t *testing.T) {
	e := newTestEngine()
	ctx := workflow.NewApplicationContext().WithKYC(workflow.KYCApproved).WithMatchScore(40).WithNow(monday10am)

	for _, status := range workflow.AllStatuses() {
		for _, role := range workflow.AllRoles() {
			for _, intent := range workflow.AllIntents() {
				ic := IntentContext{Intent: intent, Role: role, CurrentStatus: status, Trace: true}
				first := e.ExecuteIntent(ic, ctx.Ptr())
				second := e.ExecuteIntent(ic, ctx.Ptr())
				assert.Equal(t, first, second)
			}
		}
	}
}

func TestEngine_WarningsDoNotBlock(t *testing.T) {
	ctx := workflow.NewApplicationContext().WithKYC(workflow.KYCApproved).WithMatchScore(30)

	r := newTestEngine().ExecuteIntent(IntentContext{
		Intent:        workflow.IntentAcceptCandidate,
		Role:          workflow.RoleEmployer,
		CurrentStatus: workflow.StatusShortlisted,
	}, ctx.Ptr())

	assert.True(t, r.Allowed)
	assert.True(t, r.HasWarnings())
	assert.Equal(t, PolicyHighRiskApplication, r.Warnings[0].Policy)
}

func TestEngine_Trace(t *testing.T) {
	e := newTestEngine()
	ic := IntentContext{
		Intent:        workflow.IntentShortlistCandidate,
		Role:          workflow.RoleEmployer,
		CurrentStatus: workflow.StatusUnderReview,
	}

	assert.Nil(t, e.ExecuteIntent(ic, nil).Trace, "trace is opt-in")

	ic.Trace = true
	r := e.ExecuteIntent(ic, nil)
	require.True(t, r.Allowed)

	stages := make([]Stage, 0)
	for _, step := range r.Trace {
		if len(stages) == 0 || stages[len(stages)-1] != step.Stage {
			stages = append(stages, step.Stage)
		}
	}
	assert.Equal(t, []Stage{
		StagePermission,
		StageBusinessRule,
		StagePolicy,
		StageTerminalStatus,
		StageTargetResolution,
		StageTransition,
	}, stages)

	denied := e.ExecuteIntent(IntentContext{
		Intent:        workflow.IntentShortlistCandidate,
		Role:          workflow.RoleStudent,
		CurrentStatus: workflow.StatusUnderReview,
		Trace:         true,
	}, nil)
	require.Len(t, denied.Trace, 1)
	assert.Equal(t, OutcomeDenied, denied.Trace[0].Outcome)
	assert.Equal(t, []string{"permission:role_allowed=denied"}, Summary(denied.Trace))
}

func TestEngine_CustomPoliciesPerCall(t *testing.T) {
	e := newTestEngine()
	blockAll := PolicySet{{
		Name: "freeze", Priority: 1, Enabled: true,
		Evaluate: func(PolicyInput) Outcome { return Deny(workflow.ReasonPolicyViolation, "hiring freeze") },
	}}

	ic := IntentContext{
		Intent:        workflow.IntentStartReview,
		Role:          workflow.RoleEmployer,
		CurrentStatus: workflow.StatusSubmitted,
	}
	assert.True(t, e.ExecuteIntent(ic, nil).Allowed)

	ic.Policies = blockAll
	r := e.ExecuteIntent(ic, nil)
	assert.False(t, r.Allowed)
	assert.Equal(t, "hiring freeze", r.Reason)
}

func TestEngine_AvailableIntents(t *testing.T) {
	e := newTestEngine()

	tests := []struct {
		name   string
		status workflow.Status
		role   workflow.Role
		want   []workflow.Intent
	}{
		{
			name:   "student before applying",
			status: workflow.StatusNone,
			role:   workflow.RoleStudent,
			want:   []workflow.Intent{workflow.IntentSubmitApplication},
		},
		{
			name:   "student on submitted application",
			status: workflow.StatusSubmitted,
			role:   workflow.RoleStudent,
			want:   []workflow.Intent{workflow.IntentWithdraw},
		},
		{
			name:   "employer on shortlisted application",
			status: workflow.StatusShortlisted,
			role:   workflow.RoleEmployer,
			want: []workflow.Intent{
				workflow.IntentScheduleInterview,
				workflow.IntentAcceptCandidate,
				workflow.IntentRejectCandidate,
			},
		},
		{
			name:   "admin on application under review",
			status: workflow.StatusUnderReview,
			role:   workflow.RoleAdmin,
			want: []workflow.Intent{
				workflow.IntentShortlistCandidate,
				workflow.IntentScheduleInterview,
				workflow.IntentAcceptCandidate,
				workflow.IntentRejectCandidate,
			},
		},
		{
			name:   "employer on terminal application",
			status: workflow.StatusAccepted,
			role:   workflow.RoleEmployer,
			want:   []workflow.Intent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make([]workflow.Intent, 0)
			for _, a := range e.AvailableIntents(tt.status, tt.role, nil) {
				got = append(got, a.Intent)
				assert.NotEmpty(t, a.Label)
				assert.NotEmpty(t, a.NextStatus)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEngine_AvailableIntentsMatchExecuteIntent(t *testing.T) {
	e := newTestEngine()
	ctx := workflow.NewApplicationContext().WithKYC(workflow.KYCApproved).WithNow(monday10am)

	for _, status := range workflow.AllStatuses() {
		for _, role := range workflow.AllRoles() {
			for _, a := range e.AvailableIntents(status, role, ctx.Ptr()) {
				assert.NotEqual(t, workflow.IntentAdminOverride, a.Intent)
				assert.NotEqual(t, status, a.NextStatus, "%s by %s offers a no-op", a.Intent, role)
				r := e.ExecuteIntent(IntentContext{Intent: a.Intent, Role: role, CurrentStatus: status}, ctx.Ptr())
				assert.True(t, r.Allowed)
				assert.Equal(t, r.NextStatus, a.NextStatus)
			}
		}
	}
}
