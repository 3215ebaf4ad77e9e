package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type statusName string

func (s statusName) String() string { return string(s) }

func TestType_IsValid(t *testing.T) {
	tests := []struct {
		name      string
		eventType Type
		want      bool
	}{
		{"status changed", TypeStatusChanged, true},
		{"workflow completed", TypeWorkflowCompleted, true},
		{"workflow failed", TypeWorkflowFailed, true},
		{"workflow rolled back", TypeWorkflowRolledBack, true},
		{"workflow denied", TypeWorkflowDenied, true},
		{"unknown type", Type("instance.created"), false},
		{"empty string", Type(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("Type.IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(TypeStatusChanged, "app-1", "exec-1", map[string]interface{}{
		"previous_status": "SUBMITTED",
	})

	if _, err := uuid.Parse(event.ID); err != nil {
		t.Errorf("Event ID %q is not a uuid: %v", event.ID, err)
	}
	if event.Type != TypeStatusChanged {
		t.Errorf("Event Type = %v, want %v", event.Type, TypeStatusChanged)
	}
	if event.ApplicationID != "app-1" || event.ExecutionID != "exec-1" {
		t.Errorf("Event ids = %s/%s, want app-1/exec-1", event.ApplicationID, event.ExecutionID)
	}
	if time.Since(event.Timestamp) > time.Second {
		t.Error("Event Timestamp should be recent")
	}

	empty := NewEvent(TypeWorkflowDenied, "app-1", "exec-2", nil)
	if empty.Payload == nil {
		t.Error("nil payload should be replaced by an empty map")
	}
	if empty.ID == event.ID {
		t.Error("event ids must be unique")
	}
}

func TestEvent_WithPayload(t *testing.T) {
	original := NewEvent(TypeWorkflowCompleted, "app-1", "exec-1", map[string]interface{}{
		"intent": "ACCEPT_CANDIDATE",
	})

	modified := original.WithPayload("next_status", "ACCEPTED")

	if _, exists := original.Payload["next_status"]; exists {
		t.Error("Original event should not be modified")
	}
	if modified.Payload["intent"] != "ACCEPT_CANDIDATE" || modified.Payload["next_status"] != "ACCEPTED" {
		t.Errorf("Modified payload = %v", modified.Payload)
	}
	if modified.ID != original.ID || modified.ExecutionID != original.ExecutionID {
		t.Error("Modified event should keep identifiers")
	}
}

func TestEvent_PayloadAccessors(t *testing.T) {
	event := NewEvent(TypeWorkflowRolledBack, "app-1", "exec-1", map[string]interface{}{
		"status":       "ACCEPTED",
		"typed_status": statusName("REJECTED"),
		"commands":     []string{"database.update_status"},
		"decoded":      []interface{}{"audit.log", 3},
		"rolled_back":  true,
		"number":       5,
	})

	if got := event.GetPayloadString("status"); got != "ACCEPTED" {
		t.Errorf("GetPayloadString(status) = %v", got)
	}
	if got := event.GetPayloadString("typed_status"); got != "REJECTED" {
		t.Errorf("GetPayloadString(typed_status) = %v", got)
	}
	if got := event.GetPayloadString("number"); got != "" {
		t.Errorf("GetPayloadString(number) = %v, want empty", got)
	}
	if got := event.GetPayloadStrings("commands"); len(got) != 1 || got[0] != "database.update_status" {
		t.Errorf("GetPayloadStrings(commands) = %v", got)
	}
	if got := event.GetPayloadStrings("decoded"); len(got) != 1 || got[0] != "audit.log" {
		t.Errorf("GetPayloadStrings(decoded) = %v", got)
	}
	if !event.GetPayloadBool("rolled_back") {
		t.Error("GetPayloadBool(rolled_back) = false")
	}
	if event.GetPayloadBool("missing") {
		t.Error("GetPayloadBool(missing) = true")
	}
}
