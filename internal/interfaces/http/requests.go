package http

import (
	"fmt"

	"github.com/garyjia/sip-workflow/internal/application/command"
	"github.com/garyjia/sip-workflow/internal/application/decision"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// IntentRequest is the body of POST /api/intents/evaluate
type IntentRequest struct {
	Intent        string                       `json:"intent" binding:"required"`
	Role          string                       `json:"role" binding:"required"`
	CurrentStatus string                       `json:"current_status"`
	TargetStatus  string                       `json:"target_status"`
	Trace         bool                         `json:"trace"`
	Context       *workflow.ApplicationContext `json:"context"`
}

// WorkflowRequest is the body of the workflow endpoints
type WorkflowRequest struct {
	IntentRequest
	Command    command.CommandContext `json:"command"`
	CommandIDs []string               `json:"command_ids"`
	MaxRetries int                    `json:"max_retries"`
}

// MatchRequest is the body of POST /api/match/skills
type MatchRequest struct {
	StudentSkills    []string `json:"student_skills"`
	InternshipSkills []string `json:"internship_skills"`
}

// ResumeRequest is the JSON body of POST /api/analyze/resume. Multipart
// uploads carry the same fields as a "resume" file and form values.
type ResumeRequest struct {
	ResumeText       string   `json:"resume_text" binding:"required"`
	InternshipSkills []string `json:"internship_skills"`
}

// toIntentContext converts the request into the engine's input. Intent and
// status values are passed through unparsed so that the engine reports
// unknown ones as denials.
func (r IntentRequest) toIntentContext() (decision.IntentContext, error) {
	role, err := workflow.ParseRole(r.Role)
	if err != nil {
		return decision.IntentContext{}, fmt.Errorf("invalid role: %w", err)
	}

	ic := decision.IntentContext{
		Intent:        workflow.Intent(r.Intent),
		Role:          role,
		CurrentStatus: workflow.Status(r.CurrentStatus),
		Trace:         r.Trace,
	}
	if r.TargetStatus != "" {
		target := workflow.Status(r.TargetStatus)
		ic.TargetStatus = &target
	}
	return ic, nil
}
