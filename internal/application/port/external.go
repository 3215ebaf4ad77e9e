package port

import (
	"context"
	"time"

	"github.com/garyjia/sip-workflow/internal/domain/matching"
)

// EmailSender delivers email to a single recipient
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// WebhookPayload is the JSON body posted to subscribers of workflow events
type WebhookPayload struct {
	Event          string                 `json:"event"`
	ExecutionID    string                 `json:"execution_id"`
	ApplicationID  string                 `json:"application_id"`
	Intent         string                 `json:"intent"`
	PreviousStatus string                 `json:"previous_status"`
	NewStatus      string                 `json:"new_status"`
	ActorID        string                 `json:"actor_id,omitempty"`
	OccurredAt     time.Time              `json:"occurred_at"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// WebhookSender posts workflow events to an external endpoint
type WebhookSender interface {
	Send(ctx context.Context, payload WebhookPayload) error
}

// MatchRequest asks for a skill match score
type MatchRequest struct {
	StudentSkills    []string `json:"student_skills"`
	InternshipSkills []string `json:"internship_skills"`
}

// MatchScorer scores a student against an internship
type MatchScorer interface {
	Score(ctx context.Context, req MatchRequest) (*matching.Result, error)
}

// ResumeAnalyzer reads skills and experience from resume text
type ResumeAnalyzer interface {
	AnalyzeResume(ctx context.Context, text string) (*matching.ResumeAnalysis, error)
}

// DocumentTextExtractor turns an uploaded document into plain text
type DocumentTextExtractor interface {
	ExtractText(data []byte) (string, error)
}
