package entity

import (
	"time"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// Application is a student's application to an internship
type Application struct {
	ID           string          `json:"id"`
	StudentID    string          `json:"student_id"`
	InternshipID string          `json:"internship_id"`
	EmployerID   string          `json:"employer_id"`
	Status       workflow.Status `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
