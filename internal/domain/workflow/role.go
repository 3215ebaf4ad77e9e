package workflow

import "fmt"

// Role identifies the kind of actor requesting a change
type Role string

const (
	RoleStudent  Role = "STUDENT"
	RoleEmployer Role = "EMPLOYER"
	RoleAdmin    Role = "ADMIN"
)

// Capabilities describes what a role may do to an application
type Capabilities struct {
	CanInitiate         []Status `json:"can_initiate"`
	CanTransitionTo     []Status `json:"can_transition_to"`
	CanOverrideTerminal bool     `json:"can_override_terminal"`
}

// Allows reports whether the role may move an application into status
func (c Capabilities) Allows(status Status) bool {
	for _, s := range c.CanTransitionTo {
		if s == status {
			return true
		}
	}
	return false
}

// AllRoles returns every known role
func AllRoles() []Role {
	return []Role{RoleStudent, RoleEmployer, RoleAdmin}
}

// ParseRole converts a raw string to a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// IsValid returns true for known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleEmployer, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Capabilities returns the capability record of the role. Unknown roles get
// an empty record.
func (r Role) Capabilities() Capabilities {
	switch r {
	case RoleStudent:
		return Capabilities{
			CanInitiate:     []Status{StatusSubmitted},
			CanTransitionTo: []Status{StatusSubmitted, StatusWithdrawn},
		}
	case RoleEmployer:
		return Capabilities{
			CanInitiate: []Status{},
			CanTransitionTo: []Status{
				StatusUnderReview,
				StatusShortlisted,
				StatusInterviewScheduled,
				StatusAccepted,
				StatusRejected,
			},
		}
	case RoleAdmin:
		return Capabilities{
			CanInitiate:         AllStatuses(),
			CanTransitionTo:     AllStatuses(),
			CanOverrideTerminal: true,
		}
	}
	return Capabilities{}
}

// CanOverrideTerminal is the single admin-bypass decision consulted by
// every validation layer.
func (r Role) CanOverrideTerminal() bool {
	return r.Capabilities().CanOverrideTerminal
}
