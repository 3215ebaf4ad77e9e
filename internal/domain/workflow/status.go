package workflow

import "fmt"

// Status represents a lifecycle state of an internship application
type Status string

const (
	StatusSubmitted          Status = "SUBMITTED"
	StatusUnderReview        Status = "UNDER_REVIEW"
	StatusShortlisted        Status = "SHORTLISTED"
	StatusInterviewScheduled Status = "INTERVIEW_SCHEDULED"
	StatusAccepted           Status = "ACCEPTED"
	StatusRejected           Status = "REJECTED"
	StatusWithdrawn          Status = "WITHDRAWN"
)

var validStatuses = map[Status]bool{
	StatusSubmitted:          true,
	StatusUnderReview:        true,
	StatusShortlisted:        true,
	StatusInterviewScheduled: true,
	StatusAccepted:           true,
	StatusRejected:           true,
	StatusWithdrawn:          true,
}

var terminalStatuses = map[Status]bool{
	StatusAccepted:  true,
	StatusRejected:  true,
	StatusWithdrawn: true,
}

// AllStatuses returns every status in lifecycle order
func AllStatuses() []Status {
	return []Status{
		StatusSubmitted,
		StatusUnderReview,
		StatusShortlisted,
		StatusInterviewScheduled,
		StatusAccepted,
		StatusRejected,
		StatusWithdrawn,
	}
}

// ParseStatus converts a raw string to a Status
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// IsTerminal returns true if no ordinary transition leaves the status
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsValid returns true if the status belongs to the lifecycle
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether the status is terminal
func IsTerminal(s Status) bool {
	return s.IsTerminal()
}
