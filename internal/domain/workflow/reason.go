package workflow

// ReasonCode is a machine-readable denial reason
type ReasonCode string

const (
	// Permission
	ReasonInsufficientPermissions ReasonCode = "INSUFFICIENT_PERMISSIONS"
	ReasonNotOwner                ReasonCode = "NOT_OWNER"

	// Status
	ReasonTerminalStatus    ReasonCode = "TERMINAL_STATUS"
	ReasonInvalidTransition ReasonCode = "INVALID_TRANSITION"
	ReasonAlreadyWithdrawn  ReasonCode = "ALREADY_WITHDRAWN"

	// Internship
	ReasonInternshipDraft      ReasonCode = "INTERNSHIP_DRAFT"
	ReasonInternshipClosed     ReasonCode = "INTERNSHIP_CLOSED"
	ReasonDeadlineExpired      ReasonCode = "DEADLINE_EXPIRED"
	ReasonMaxApplicantsReached ReasonCode = "MAX_APPLICANTS_REACHED"

	// KYC
	ReasonKYCNotApproved ReasonCode = "KYC_NOT_APPROVED"
	ReasonKYCPending     ReasonCode = "KYC_PENDING"
	ReasonKYCRejected    ReasonCode = "KYC_REJECTED"

	// Policy
	ReasonPolicyViolation      ReasonCode = "POLICY_VIOLATION"
	ReasonOutsideBusinessHours ReasonCode = "OUTSIDE_BUSINESS_HOURS"
	ReasonCompanyHiringLimit   ReasonCode = "COMPANY_HIRING_LIMIT"
	ReasonWeekendRestricted    ReasonCode = "WEEKEND_RESTRICTED"

	// Generic
	ReasonTargetStatusRequired ReasonCode = "TARGET_STATUS_REQUIRED"
	ReasonUnknownIntent        ReasonCode = "UNKNOWN_INTENT"
	ReasonInvalidStatus        ReasonCode = "INVALID_STATUS"
	ReasonUnknownError         ReasonCode = "UNKNOWN_ERROR"
)

// Layer names the validation layer a reason code belongs to
type Layer string

const (
	LayerPermission   Layer = "permission"
	LayerStatus       Layer = "status"
	LayerBusinessRule Layer = "business_rule"
	LayerPolicy       Layer = "policy"
	LayerGeneric      Layer = "generic"
)

var reasonMessages = map[ReasonCode]string{
	ReasonInsufficientPermissions: "You do not have permission to perform this action.",
	ReasonNotOwner:                "You can only act on resources you own.",
	ReasonTerminalStatus:          "This application is in a final state and cannot be changed.",
	ReasonInvalidTransition:       "This status change is not allowed from the current status.",
	ReasonAlreadyWithdrawn:        "This application has already been withdrawn.",
	ReasonInternshipDraft:         "This internship is not published yet.",
	ReasonInternshipClosed:        "This internship is closed.",
	ReasonDeadlineExpired:         "The application deadline has passed.",
	ReasonMaxApplicantsReached:    "The maximum number of accepted applicants has been reached.",
	ReasonKYCNotApproved:          "Company verification is required before reviewing applications.",
	ReasonKYCPending:              "Company verification is still pending.",
	ReasonKYCRejected:             "Company verification was rejected.",
	ReasonPolicyViolation:         "This action is blocked by an organization policy.",
	ReasonOutsideBusinessHours:    "This action is only allowed between 06:00 and 23:00.",
	ReasonCompanyHiringLimit:      "The company has reached its hiring limit.",
	ReasonWeekendRestricted:       "Hiring decisions cannot be made on weekends.",
	ReasonTargetStatusRequired:    "A target status is required for this action.",
	ReasonUnknownIntent:           "The requested action is not recognized.",
	ReasonInvalidStatus:           "The application status is not recognized.",
	ReasonUnknownError:            "An unexpected error occurred.",
}

// AllReasonCodes returns every known reason code
func AllReasonCodes() []ReasonCode {
	return []ReasonCode{
		ReasonInsufficientPermissions, ReasonNotOwner,
		ReasonTerminalStatus, ReasonInvalidTransition, ReasonAlreadyWithdrawn,
		ReasonInternshipDraft, ReasonInternshipClosed, ReasonDeadlineExpired, ReasonMaxApplicantsReached,
		ReasonKYCNotApproved, ReasonKYCPending, ReasonKYCRejected,
		ReasonPolicyViolation, ReasonOutsideBusinessHours, ReasonCompanyHiringLimit, ReasonWeekendRestricted,
		ReasonTargetStatusRequired, ReasonUnknownIntent, ReasonInvalidStatus, ReasonUnknownError,
	}
}

// Message returns the canonical en-US message of the code
func (c ReasonCode) Message() string {
	if msg, ok := reasonMessages[c]; ok {
		return msg
	}
	return reasonMessages[ReasonUnknownError]
}

// String returns the string representation of the code
func (c ReasonCode) String() string {
	return string(c)
}

// Layer returns the validation layer that produces the code
func (c ReasonCode) Layer() Layer {
	switch c {
	case ReasonInsufficientPermissions, ReasonNotOwner:
		return LayerPermission
	case ReasonTerminalStatus, ReasonInvalidTransition, ReasonAlreadyWithdrawn:
		return LayerStatus
	case ReasonInternshipDraft, ReasonInternshipClosed, ReasonDeadlineExpired, ReasonMaxApplicantsReached,
		ReasonKYCNotApproved, ReasonKYCPending, ReasonKYCRejected:
		return LayerBusinessRule
	case ReasonPolicyViolation, ReasonOutsideBusinessHours, ReasonCompanyHiringLimit, ReasonWeekendRestricted:
		return LayerPolicy
	}
	return LayerGeneric
}

// Denial is a structured refusal produced by a validation layer
type Denial struct {
	Code     ReasonCode
	Message  string
	Metadata map[string]interface{}
}

// NewDenial builds a denial carrying the canonical message of code
func NewDenial(code ReasonCode) *Denial {
	return &Denial{Code: code, Message: code.Message()}
}

// WithMetadata returns a copy of the denial with an added metadata entry
func (d *Denial) WithMetadata(key string, value interface{}) *Denial {
	metadata := make(map[string]interface{}, len(d.Metadata)+1)
	for k, v := range d.Metadata {
		metadata[k] = v
	}
	metadata[key] = value
	return &Denial{Code: d.Code, Message: d.Message, Metadata: metadata}
}
