package workflow

import "fmt"

// Intent represents a semantic business action on an application
type Intent string

const (
	IntentSubmitApplication  Intent = "SUBMIT_APPLICATION"
	IntentStartReview        Intent = "START_REVIEW"
	IntentShortlistCandidate Intent = "SHORTLIST_CANDIDATE"
	IntentScheduleInterview  Intent = "SCHEDULE_INTERVIEW"
	IntentAcceptCandidate    Intent = "ACCEPT_CANDIDATE"
	IntentRejectCandidate    Intent = "REJECT_CANDIDATE"
	IntentWithdraw           Intent = "WITHDRAW_APPLICATION"
	IntentAdminOverride      Intent = "ADMIN_OVERRIDE"
)

// Severity tells a UI how loudly to present an action
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Category groups intents for display
type Category string

const (
	CategorySubmission Category = "submission"
	CategoryReview     Category = "review"
	CategoryInterview  Category = "interview"
	CategoryDecision   Category = "decision"
	CategoryAdmin      Category = "admin"
)

// Metadata is the display information of an intent
type Metadata struct {
	Label                string   `json:"label"`
	Icon                 string   `json:"icon"`
	RequiresConfirmation bool     `json:"requires_confirmation"`
	Severity             Severity `json:"severity"`
	Category             Category `json:"category"`
}

// Resolver maps the current status to the status an intent leads to. The
// second return value is false when the intent has no fixed target.
type Resolver func(current Status) (Status, bool)

// Definition is the static description of an intent
type Definition struct {
	Intent       Intent
	AllowedRoles []Role
	Resolve      Resolver
	Metadata     Metadata
}

// AllowsRole reports whether role may invoke the intent
func (d Definition) AllowsRole(role Role) bool {
	for _, r := range d.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// AllIntents returns the intent catalog in display order
func AllIntents() []Intent {
	return []Intent{
		IntentSubmitApplication,
		IntentStartReview,
		IntentShortlistCandidate,
		IntentScheduleInterview,
		IntentAcceptCandidate,
		IntentRejectCandidate,
		IntentWithdraw,
		IntentAdminOverride,
	}
}

// ParseIntent converts a raw string to an Intent
func ParseIntent(s string) (Intent, error) {
	i := Intent(s)
	if _, err := Define(i); err != nil {
		return "", err
	}
	return i, nil
}

// String returns the string representation of the intent
func (i Intent) String() string {
	return string(i)
}

// IsEmployerFacing reports whether the intent is a review-side action
func (i Intent) IsEmployerFacing() bool {
	switch i {
	case IntentStartReview, IntentShortlistCandidate, IntentScheduleInterview,
		IntentAcceptCandidate, IntentRejectCandidate:
		return true
	}
	return false
}

// MutatesStatus reports whether the intent changes an existing application
func (i Intent) MutatesStatus() bool {
	return i != IntentSubmitApplication
}

var employerSide = []Role{RoleEmployer, RoleAdmin}

// Define returns the static definition of an intent. Every intent of
// AllIntents must have a case here.
func Define(i Intent) (Definition, error) {
	switch i {
	case IntentSubmitApplication:
		return Definition{
			Intent:       i,
			AllowedRoles: []Role{RoleStudent},
			Resolve:      always(StatusSubmitted),
			Metadata: Metadata{
				Label:    "Submit Application",
				Icon:     "send",
				Severity: SeverityInfo,
				Category: CategorySubmission,
			},
		}, nil
	case IntentStartReview:
		return Definition{
			Intent:       i,
			AllowedRoles: employerSide,
			Resolve:      always(StatusUnderReview),
			Metadata: Metadata{
				Label:    "Start Review",
				Icon:     "eye",
				Severity: SeverityInfo,
				Category: CategoryReview,
			},
		}, nil
	case IntentShortlistCandidate:
		return Definition{
			Intent:       i,
			AllowedRoles: employerSide,
			Resolve:      always(StatusShortlisted),
			Metadata: Metadata{
				Label:    "Shortlist Candidate",
				Icon:     "star",
				Severity: SeveritySuccess,
				Category: CategoryReview,
			},
		}, nil
	case IntentScheduleInterview:
		return Definition{
			Intent:       i,
			AllowedRoles: employerSide,
			Resolve:      always(StatusInterviewScheduled),
			Metadata: Metadata{
				Label:    "Schedule Interview",
				Icon:     "calendar",
				Severity: SeverityInfo,
				Category: CategoryInterview,
			},
		}, nil
	case IntentAcceptCandidate:
		return Definition{
			Intent:       i,
			AllowedRoles: employerSide,
			Resolve:      always(StatusAccepted),
			Metadata: Metadata{
				Label:                "Accept Candidate",
				Icon:                 "check-circle",
				RequiresConfirmation: true,
				Severity:             SeveritySuccess,
				Category:             CategoryDecision,
			},
		}, nil
	case IntentRejectCandidate:
		return Definition{
			Intent:       i,
			AllowedRoles: employerSide,
			Resolve:      always(StatusRejected),
			Metadata: Metadata{
				Label:                "Reject Candidate",
				Icon:                 "x-circle",
				RequiresConfirmation: true,
				Severity:             SeverityDanger,
				Category:             CategoryDecision,
			},
		}, nil
	case IntentWithdraw:
		return Definition{
			Intent:       i,
			AllowedRoles: []Role{RoleStudent},
			Resolve:      always(StatusWithdrawn),
			Metadata: Metadata{
				Label:                "Withdraw Application",
				Icon:                 "undo",
				RequiresConfirmation: true,
				Severity:             SeverityWarning,
				Category:             CategorySubmission,
			},
		}, nil
	case IntentAdminOverride:
		return Definition{
			Intent:       i,
			AllowedRoles: []Role{RoleAdmin},
			Resolve:      explicitOnly,
			Metadata: Metadata{
				Label:                "Admin Override",
				Icon:                 "shield",
				RequiresConfirmation: true,
				Severity:             SeverityDanger,
				Category:             CategoryAdmin,
			},
		}, nil
	}
	return Definition{}, fmt.Errorf("%w: %q", ErrUnknownIntent, string(i))
}

func always(target Status) Resolver {
	return func(Status) (Status, bool) {
		return target, true
	}
}

func explicitOnly(Status) (Status, bool) {
	return "", false
}
