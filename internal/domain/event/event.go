package event

import (
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event raised by a workflow execution
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	ApplicationID string                 `json:"application_id"`
	ExecutionID   string                 `json:"execution_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
}

// NewEvent creates a new domain event with auto-generated ID and timestamp
func NewEvent(eventType Type, applicationID, executionID string, payload map[string]interface{}) *Event {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ApplicationID: applicationID,
		ExecutionID:   executionID,
		Payload:       payload,
		Timestamp:     time.Now(),
	}
}

// WithPayload returns a new Event with an added payload key-value pair (immutable operation)
func (e *Event) WithPayload(key string, value interface{}) *Event {
	newPayload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		newPayload[k] = v
	}
	newPayload[key] = value

	return &Event{
		ID:            e.ID,
		Type:          e.Type,
		ApplicationID: e.ApplicationID,
		ExecutionID:   e.ExecutionID,
		Payload:       newPayload,
		Timestamp:     e.Timestamp,
	}
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case string:
			return v
		case interface{ String() string }:
			return v.String()
		}
	}
	return ""
}

// GetPayloadStrings retrieves a string slice from the payload
func (e *Event) GetPayloadStrings(key string) []string {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case []string:
			return v
		case []interface{}:
			out := make([]string, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok {
					out = append(out, s)
				}
			}
			return out
		}
	}
	return nil
}

// GetPayloadBool retrieves a bool value from the payload
func (e *Event) GetPayloadBool(key string) bool {
	if val, ok := e.Payload[key]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return false
}
