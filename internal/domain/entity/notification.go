package entity

import "time"

// Notification is an in-app message shown to a user
type Notification struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"user_id"`
	ApplicationID string    `json:"application_id"`
	ExecutionID   string    `json:"execution_id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	Severity      string    `json:"severity"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"created_at"`
}
