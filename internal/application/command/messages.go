package command

import (
	"fmt"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// Audience is the party told about a status change
type Audience string

const (
	AudienceStudent  Audience = "student"
	AudienceEmployer Audience = "employer"
)

// message is the text sent for one intent
type message struct {
	audience Audience
	title    string
	body     string
	severity workflow.Severity
}

// messageFor returns the notification text for an approved intent
func messageFor(inv Invocation) message {
	switch inv.Intent {
	case workflow.IntentSubmitApplication:
		return message{
			audience: AudienceEmployer,
			title:    "New application received",
			body:     "A student applied to your internship. Review the application when you are ready.",
			severity: workflow.SeverityInfo,
		}
	case workflow.IntentWithdraw:
		return message{
			audience: AudienceEmployer,
			title:    "Application withdrawn",
			body:     "A candidate withdrew their application.",
			severity: workflow.SeverityWarning,
		}
	case workflow.IntentStartReview:
		return message{
			audience: AudienceStudent,
			title:    "Your application is under review",
			body:     "The employer started reviewing your application.",
			severity: workflow.SeverityInfo,
		}
	case workflow.IntentShortlistCandidate:
		return message{
			audience: AudienceStudent,
			title:    "You have been shortlisted",
			body:     "Good news! The employer shortlisted your application.",
			severity: workflow.SeveritySuccess,
		}
	case workflow.IntentScheduleInterview:
		return message{
			audience: AudienceStudent,
			title:    "Interview scheduled",
			body:     "The employer scheduled an interview. Check your inbox for details.",
			severity: workflow.SeverityInfo,
		}
	case workflow.IntentAcceptCandidate:
		return message{
			audience: AudienceStudent,
			title:    "Congratulations, you have been accepted",
			body:     "The employer accepted your application.",
			severity: workflow.SeveritySuccess,
		}
	case workflow.IntentRejectCandidate:
		return message{
			audience: AudienceStudent,
			title:    "Application update",
			body:     "Unfortunately the employer decided not to move forward with your application.",
			severity: workflow.SeverityDanger,
		}
	default:
		return message{
			audience: AudienceStudent,
			title:    "Application status changed",
			body:     fmt.Sprintf("Your application moved from %s to %s.", inv.PreviousStatus, inv.NextStatus),
			severity: workflow.SeverityWarning,
		}
	}
}

// recipientID returns the user id of the audience
func recipientID(inv Invocation, audience Audience) string {
	if audience == AudienceEmployer {
		return inv.Context.EmployerID
	}
	return inv.Context.StudentID
}

// recipientEmail reads the audience address from the context metadata
// ("student_email" or "employer_email")
func recipientEmail(inv Invocation, audience Audience) string {
	return inv.Context.MetadataString(string(audience) + "_email")
}

func emailSubject(m message, inv Invocation) string {
	return fmt.Sprintf("[Internship] %s (application %s)", m.title, inv.Context.ApplicationID)
}

func emailBody(m message, inv Invocation) string {
	return fmt.Sprintf(`Hello,

%s

Application: %s
Status: %s

This message was sent automatically, please do not reply.
`,
		m.body,
		inv.Context.ApplicationID,
		inv.NextStatus,
	)
}
