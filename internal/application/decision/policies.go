package decision

import (
	"time"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// Reference policy names
const (
	PolicyAdminOverride       = "admin_override"
	PolicyTimeRestriction     = "time_restriction"
	PolicyCompanyHiringLimit  = "company_hiring_limit"
	PolicyWeekendRestriction  = "weekend_restriction"
	PolicyHighRiskApplication = "high_risk_application"
)

const (
	businessHoursStart       = 6
	businessHoursEnd         = 23
	DefaultHighRiskThreshold = 60.0
)

// PolicyConfig tunes the reference policies
type PolicyConfig struct {
	// Location is the local time zone of business hours; nil keeps the
	// location of the supplied time
	Location          *time.Location
	WeekendRestricted bool
	HighRiskThreshold float64
}

// DefaultPolicies returns the reference policies with default settings
func DefaultPolicies() PolicySet {
	return NewPolicySet(PolicyConfig{HighRiskThreshold: DefaultHighRiskThreshold})
}

// NewPolicySet builds the reference policies from cfg
func NewPolicySet(cfg PolicyConfig) PolicySet {
	threshold := cfg.HighRiskThreshold
	if threshold <= 0 {
		threshold = DefaultHighRiskThreshold
	}
	return PolicySet{
		AdminOverridePolicy(),
		TimeRestrictionPolicy(cfg.Location),
		CompanyHiringLimitPolicy(),
		WeekendRestrictionPolicy(cfg.Location, cfg.WeekendRestricted),
		HighRiskApplicationPolicy(threshold),
	}
}

// AdminOverridePolicy lets override-capable actors through every policy
func AdminOverridePolicy() Policy {
	return Policy{
		Name:        PolicyAdminOverride,
		Description: "Override-capable actors bypass organizational policies",
		Priority:    1000,
		Enabled:     true,
		Evaluate: func(in PolicyInput) Outcome {
			if in.CanOverride {
				return AllowAndHalt("override-capable actor")
			}
			return Allow()
		},
	}
}

// TimeRestrictionPolicy denies employer actions outside 06:00-23:00
func TimeRestrictionPolicy(loc *time.Location) Policy {
	return Policy{
		Name:        PolicyTimeRestriction,
		Description: "Employer actions are limited to business hours",
		Priority:    100,
		Enabled:     true,
		Roles:       []workflow.Role{workflow.RoleEmployer},
		Evaluate: func(in PolicyInput) Outcome {
			if in.Intent == workflow.IntentAdminOverride || in.Context == nil || in.Context.Now == nil {
				return Allow()
			}
			now := localTime(*in.Context.Now, loc)
			if now.Hour() < businessHoursStart || now.Hour() >= businessHoursEnd {
				out := Deny(workflow.ReasonOutsideBusinessHours, "")
				out.Metadata = map[string]interface{}{"hour": now.Hour()}
				return out
			}
			return Allow()
		},
	}
}

// CompanyHiringLimitPolicy caps accepted candidates company-wide
func CompanyHiringLimitPolicy() Policy {
	return Policy{
		Name:        PolicyCompanyHiringLimit,
		Description: "Acceptances stop once the company hiring cap is reached",
		Priority:    90,
		Enabled:     true,
		Intents:     []workflow.Intent{workflow.IntentAcceptCandidate},
		Evaluate: func(in PolicyInput) Outcome {
			c := in.Context
			if c == nil || c.CompanyHiringLimit == nil || c.CompanyAcceptedCount == nil {
				return Allow()
			}
			if *c.CompanyAcceptedCount >= *c.CompanyHiringLimit {
				out := Deny(workflow.ReasonCompanyHiringLimit, "")
				out.Metadata = map[string]interface{}{
					"company_hiring_limit":   *c.CompanyHiringLimit,
					"company_accepted_count": *c.CompanyAcceptedCount,
				}
				return out
			}
			return Allow()
		},
	}
}

// WeekendRestrictionPolicy blocks hiring decisions on Saturday and Sunday
func WeekendRestrictionPolicy(loc *time.Location, enabled bool) Policy {
	return Policy{
		Name:        PolicyWeekendRestriction,
		Description: "No hiring decisions on weekends",
		Priority:    50,
		Enabled:     enabled,
		Intents:     []workflow.Intent{workflow.IntentAcceptCandidate, workflow.IntentRejectCandidate},
		Evaluate: func(in PolicyInput) Outcome {
			if in.Context == nil || in.Context.Now == nil {
				return Allow()
			}
			now := localTime(*in.Context.Now, loc)
			if isWeekend(now) {
				out := Deny(workflow.ReasonWeekendRestricted, "")
				out.Metadata = map[string]interface{}{"weekday": now.Weekday().String()}
				return out
			}
			return Allow()
		},
	}
}

// HighRiskApplicationPolicy flags acceptances with a low match score
func HighRiskApplicationPolicy(threshold float64) Policy {
	return Policy{
		Name:        PolicyHighRiskApplication,
		Description: "Low match scores are accepted but flagged for manual review",
		Priority:    10,
		Enabled:     true,
		Intents:     []workflow.Intent{workflow.IntentAcceptCandidate},
		Evaluate: func(in PolicyInput) Outcome {
			if in.Context == nil || in.Context.MatchScore == nil {
				return Allow()
			}
			score := *in.Context.MatchScore
			if score < threshold {
				return AllowWithWarning("Candidate match score is below the review threshold.", map[string]interface{}{
					"match_score":    score,
					"threshold":      threshold,
					"recommendation": "manual_review",
				})
			}
			return Allow()
		},
	}
}

func localTime(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
