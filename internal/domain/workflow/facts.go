package workflow

import "time"

// InternshipStatus is the publication state of the internship an application targets
type InternshipStatus string

const (
	InternshipDraft     InternshipStatus = "DRAFT"
	InternshipPublished InternshipStatus = "PUBLISHED"
	InternshipClosed    InternshipStatus = "CLOSED"
)

// KYCStatus is the verification state of an employer
type KYCStatus string

const (
	KYCNotSubmitted KYCStatus = "NOT_SUBMITTED"
	KYCPending      KYCStatus = "PENDING"
	KYCApproved     KYCStatus = "APPROVED"
	KYCRejected     KYCStatus = "REJECTED"
)

// ApplicationContext carries the real-world facts a caller knows about an
// application. Every field is optional: a nil field means the rule that
// needs it is not evaluated. Values are built through the With methods,
// which return modified copies.
type ApplicationContext struct {
	InternshipStatus     *InternshipStatus `json:"internship_status,omitempty"`
	ApplicationDeadline  *time.Time        `json:"application_deadline,omitempty"`
	Now                  *time.Time        `json:"now,omitempty"`
	MaxApplicants        *int              `json:"max_applicants,omitempty"`
	AcceptedCount        *int              `json:"accepted_count,omitempty"`
	CompanyHiringLimit   *int              `json:"company_hiring_limit,omitempty"`
	CompanyAcceptedCount *int              `json:"company_accepted_count,omitempty"`
	KYCStatus            *KYCStatus        `json:"kyc_status,omitempty"`
	MatchScore           *float64          `json:"match_score,omitempty"`
	IsWithdrawn          *bool             `json:"is_withdrawn,omitempty"`
	ActorOwnsInternship  *bool             `json:"actor_owns_internship,omitempty"`
	ActorOwnsApplication *bool             `json:"actor_owns_application,omitempty"`
}

// NewApplicationContext returns an empty context
func NewApplicationContext() ApplicationContext {
	return ApplicationContext{}
}

// WithInternshipStatus sets the internship status
func (c ApplicationContext) WithInternshipStatus(s InternshipStatus) ApplicationContext {
	c.InternshipStatus = &s
	return c
}

// WithDeadline sets the application deadline
func (c ApplicationContext) WithDeadline(t time.Time) ApplicationContext {
	c.ApplicationDeadline = &t
	return c
}

// WithNow pins the evaluation time
func (c ApplicationContext) WithNow(t time.Time) ApplicationContext {
	c.Now = &t
	return c
}

// WithCapacity sets the internship's applicant cap and accepted count
func (c ApplicationContext) WithCapacity(maxApplicants, accepted int) ApplicationContext {
	c.MaxApplicants = &maxApplicants
	c.AcceptedCount = &accepted
	return c
}

// WithCompanyHiring sets the company-wide cap and accepted count
func (c ApplicationContext) WithCompanyHiring(limit, accepted int) ApplicationContext {
	c.CompanyHiringLimit = &limit
	c.CompanyAcceptedCount = &accepted
	return c
}

// WithKYC sets the actor's KYC status
func (c ApplicationContext) WithKYC(s KYCStatus) ApplicationContext {
	c.KYCStatus = &s
	return c
}

// WithMatchScore sets the 0-100 skill match score
func (c ApplicationContext) WithMatchScore(score float64) ApplicationContext {
	c.MatchScore = &score
	return c
}

// WithWithdrawn sets the withdrawn flag
func (c ApplicationContext) WithWithdrawn(withdrawn bool) ApplicationContext {
	c.IsWithdrawn = &withdrawn
	return c
}

// WithOwnership sets both ownership facts
func (c ApplicationContext) WithOwnership(ownsInternship, ownsApplication bool) ApplicationContext {
	c.ActorOwnsInternship = &ownsInternship
	c.ActorOwnsApplication = &ownsApplication
	return c
}

// WithInternshipOwnership sets whether the actor owns the internship
func (c ApplicationContext) WithInternshipOwnership(owns bool) ApplicationContext {
	c.ActorOwnsInternship = &owns
	return c
}

// WithApplicationOwnership sets whether the actor owns the application
func (c ApplicationContext) WithApplicationOwnership(owns bool) ApplicationContext {
	c.ActorOwnsApplication = &owns
	return c
}

// Ptr returns a pointer to the context, for callers of APIs taking an
// optional *ApplicationContext
func (c ApplicationContext) Ptr() *ApplicationContext {
	return &c
}

// NowOr returns the pinned evaluation time, or fallback() when none was set
func (c *ApplicationContext) NowOr(fallback func() time.Time) time.Time {
	if c != nil && c.Now != nil {
		return *c.Now
	}
	return fallback()
}
