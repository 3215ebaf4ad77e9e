package workflow

import (
	"errors"
	"testing"
)

func TestStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   Status
		expected bool
	}{
		{StatusSubmitted, false},
		{StatusUnderReview, false},
		{StatusShortlisted, false},
		{StatusInterviewScheduled, false},
		{StatusAccepted, true},
		{StatusRejected, true},
		{StatusWithdrawn, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("Status.IsTerminal() = %v, want %v", got, tt.expected)
			}
			if got := IsTerminal(tt.status); got != tt.expected {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStatus_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		status   Status
		expected bool
	}{
		{"valid status", StatusSubmitted, true},
		{"valid terminal status", StatusWithdrawn, true},
		{"invalid status", Status("HIRED"), false},
		{"empty status", StatusNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.expected {
				t.Errorf("Status.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus("SHORTLISTED")
	if err != nil {
		t.Fatalf("ParseStatus() error = %v", err)
	}
	if got != StatusShortlisted {
		t.Errorf("ParseStatus() = %v, want %v", got, StatusShortlisted)
	}

	if _, err := ParseStatus("shortlisted"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("ParseStatus() error = %v, want ErrInvalidStatus", err)
	}
}

func TestAllStatuses(t *testing.T) {
	statuses := AllStatuses()
	if len(statuses) != len(validStatuses) {
		t.Fatalf("AllStatuses() returned %d statuses, want %d", len(statuses), len(validStatuses))
	}
	for _, s := range statuses {
		if !s.IsValid() {
			t.Errorf("AllStatuses() contains invalid status %s", s)
		}
	}
}

func TestRole_Capabilities(t *testing.T) {
	tests := []struct {
		role          Role
		canOverride   bool
		allowed       []Status
		notAllowed    []Status
		initiatesSelf bool
	}{
		{
			role:          RoleStudent,
			canOverride:   false,
			allowed:       []Status{StatusSubmitted, StatusWithdrawn},
			notAllowed:    []Status{StatusAccepted, StatusShortlisted},
			initiatesSelf: true,
		},
		{
			role:        RoleEmployer,
			canOverride: false,
			allowed:     []Status{StatusUnderReview, StatusShortlisted, StatusInterviewScheduled, StatusAccepted, StatusRejected},
			notAllowed:  []Status{StatusSubmitted, StatusWithdrawn},
		},
		{
			role:          RoleAdmin,
			canOverride:   true,
			allowed:       AllStatuses(),
			initiatesSelf: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.role.String(), func(t *testing.T) {
			caps := tt.role.Capabilities()
			if caps.CanOverrideTerminal != tt.canOverride {
				t.Errorf("CanOverrideTerminal = %v, want %v", caps.CanOverrideTerminal, tt.canOverride)
			}
			if tt.role.CanOverrideTerminal() != tt.canOverride {
				t.Errorf("Role.CanOverrideTerminal() = %v, want %v", tt.role.CanOverrideTerminal(), tt.canOverride)
			}
			for _, s := range tt.allowed {
				if !caps.Allows(s) {
					t.Errorf("Allows(%s) = false, want true", s)
				}
			}
			for _, s := range tt.notAllowed {
				if caps.Allows(s) {
					t.Errorf("Allows(%s) = true, want false", s)
				}
			}
			if got := len(caps.CanInitiate) > 0; got != tt.initiatesSelf {
				t.Errorf("has initiate statuses = %v, want %v", got, tt.initiatesSelf)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	if _, err := ParseRole("RECRUITER"); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("ParseRole() error = %v, want ErrInvalidRole", err)
	}
	got, err := ParseRole("ADMIN")
	if err != nil || got != RoleAdmin {
		t.Errorf("ParseRole() = %v, %v, want ADMIN", got, err)
	}
	if Role("GUEST").Capabilities().CanOverrideTerminal {
		t.Error("unknown role must not override")
	}
}
