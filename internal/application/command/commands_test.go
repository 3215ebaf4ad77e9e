package command

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) }

func acceptInvocation() Invocation {
	return Invocation{
		ExecutionID:    "exec-1",
		Intent:         workflow.IntentAcceptCandidate,
		Role:           workflow.RoleEmployer,
		PreviousStatus: workflow.StatusShortlisted,
		NextStatus:     workflow.StatusAccepted,
		Context: CommandContext{
			ApplicationID: "app-1",
			UserID:        "emp-user",
			StudentID:     "stu-1",
			EmployerID:    "emp-1",
			Metadata:      map[string]interface{}{"student_email": "stu@example.com"},
		},
		Warnings: []string{"low match score"},
		Trace:    []string{"permission:role=passed"},
	}
}

func TestUpdateStatusCommand_ExecuteAndRollback(t *testing.T) {
	apps := newMockApplicationRepo(&entity.Application{ID: "app-1", Status: workflow.StatusShortlisted})
	history := newMockHistoryRepo()
	tx := &mockTxManager{}
	cmd := NewUpdateStatusCommand(apps, history, tx, nil)
	cmd.now = fixedNow
	inv := acceptInvocation()

	out, err := cmd.Execute(context.Background(), inv)
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusAccepted, apps.status("app-1"))
	id, ok := out.Int64(OutHistoryID)
	require.True(t, ok)
	record := history.records[id]
	require.NotNil(t, record)
	assert.Equal(t, workflow.StatusShortlisted, record.PreviousStatus)
	assert.Equal(t, workflow.IntentAcceptCandidate, record.Intent)
	assert.Equal(t, "emp-user", record.ActorID)

	require.NoError(t, cmd.Rollback(context.Background(), inv, out))
	assert.Equal(t, workflow.StatusShortlisted, apps.status("app-1"))
	assert.Empty(t, history.records)
	assert.Equal(t, 2, tx.calls)
}

func TestUpdateStatusCommand_Conflict(t *testing.T) {
	apps := newMockApplicationRepo(&entity.Application{ID: "app-1", Status: workflow.StatusRejected})
	history := newMockHistoryRepo()
	cmd := NewUpdateStatusCommand(apps, history, &mockTxManager{}, nil)

	_, err := cmd.Execute(context.Background(), acceptInvocation())

	assert.ErrorIs(t, err, port.ErrStatusConflict)
	assert.Empty(t, history.records)
}

func TestUpdateStatusCommand_SubmissionCreatesApplication(t *testing.T) {
	apps := newMockApplicationRepo()
	history := newMockHistoryRepo()
	cmd := NewUpdateStatusCommand(apps, history, &mockTxManager{}, nil)
	inv := Invocation{
		ExecutionID:    "exec-2",
		Intent:         workflow.IntentSubmitApplication,
		Role:           workflow.RoleStudent,
		PreviousStatus: workflow.StatusNone,
		NextStatus:     workflow.StatusSubmitted,
		Context:        CommandContext{ApplicationID: "app-2", UserID: "stu-1", StudentID: "stu-1", InternshipID: "int-1"},
	}

	out, err := cmd.Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, out.Bool(OutCreated))
	assert.Equal(t, workflow.StatusSubmitted, apps.status("app-2"))

	require.NoError(t, cmd.Rollback(context.Background(), inv, out))
	assert.Equal(t, workflow.StatusNone, apps.status("app-2"))
	assert.Empty(t, history.records)
}

func TestAuditLogCommand(t *testing.T) {
	repo := newMockAuditRepo()
	cmd := NewAuditLogCommand(repo)
	cmd.now = fixedNow
	inv := acceptInvocation()

	out, err := cmd.Execute(context.Background(), inv)
	require.NoError(t, err)

	id, ok := out.Int64(OutAuditID)
	require.True(t, ok)
	entry := repo.entries[id]
	assert.Equal(t, workflow.StatusAccepted, entry.NewStatus)
	assert.Equal(t, fixedNow(), entry.CreatedAt)

	var details AuditDetails
	require.NoError(t, json.Unmarshal([]byte(entry.Details), &details))
	assert.Equal(t, []string{"low match score"}, details.Warnings)
	assert.Equal(t, "stu@example.com", details.Metadata["student_email"])

	require.NoError(t, cmd.Rollback(context.Background(), inv, out))
	require.Len(t, repo.entries, 2)
	assert.Same(t, entry, repo.entries[id], "original entry is kept")

	reversal := repo.entries[id+1]
	assert.Equal(t, inv.ExecutionID, reversal.ExecutionID)
	assert.Equal(t, inv.NextStatus, reversal.PreviousStatus)
	assert.Equal(t, inv.PreviousStatus, reversal.NewStatus)
	var reversed AuditDetails
	require.NoError(t, json.Unmarshal([]byte(reversal.Details), &reversed))
	assert.Equal(t, id, reversed.Compensates)
	assert.Equal(t, []string{"rolled back"}, reversed.Trace)
}

func TestAuditLogCommand_RollbackWithoutEntry(t *testing.T) {
	repo := newMockAuditRepo()
	cmd := NewAuditLogCommand(repo)

	require.NoError(t, cmd.Rollback(context.Background(), acceptInvocation(), Output{}))
	assert.Empty(t, repo.entries)
}

func TestInAppNotificationCommand(t *testing.T) {
	t.Run("notifies the student of employer decisions", func(t *testing.T) {
		repo := newMockNotificationRepo()
		cmd := NewInAppNotificationCommand(repo, nil)

		out, err := cmd.Execute(context.Background(), acceptInvocation())
		require.NoError(t, err)

		assert.Equal(t, "stu-1", out[OutRecipient])
		id, _ := out.Int64(OutNotificationID)
		assert.Equal(t, string(workflow.SeveritySuccess), repo.records[id].Severity)

		require.NoError(t, cmd.Rollback(context.Background(), acceptInvocation(), out))
		assert.Empty(t, repo.records)
	})

	t.Run("notifies the employer of withdrawals", func(t *testing.T) {
		repo := newMockNotificationRepo()
		cmd := NewInAppNotificationCommand(repo, nil)
		inv := acceptInvocation()
		inv.Intent = workflow.IntentWithdraw

		out, err := cmd.Execute(context.Background(), inv)
		require.NoError(t, err)
		assert.Equal(t, "emp-1", out[OutRecipient])
	})

	t.Run("skips without recipient", func(t *testing.T) {
		repo := newMockNotificationRepo()
		cmd := NewInAppNotificationCommand(repo, nil)
		inv := acceptInvocation()
		inv.Context.StudentID = ""

		out, err := cmd.Execute(context.Background(), inv)
		require.NoError(t, err)
		assert.True(t, out.Bool(OutSkipped))
		assert.NoError(t, cmd.Rollback(context.Background(), inv, out))
	})

	t.Run("propagates repository errors", func(t *testing.T) {
		repo := newMockNotificationRepo()
		repo.err = errors.New("disk full")
		cmd := NewInAppNotificationCommand(repo, nil)

		_, err := cmd.Execute(context.Background(), acceptInvocation())
		assert.ErrorContains(t, err, "disk full")
	})
}

func TestEmailCommand(t *testing.T) {
	sender := &mockEmailSender{}
	cmd := NewEmailCommand(sender, nil)

	assert.False(t, IsReversible(cmd))
	assert.ErrorIs(t, Rollback(context.Background(), cmd, acceptInvocation(), nil), ErrIrreversible)

	out, err := cmd.Execute(context.Background(), acceptInvocation())
	require.NoError(t, err)
	assert.Equal(t, "stu@example.com", out[OutRecipient])
	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0], "accepted")

	inv := acceptInvocation()
	inv.Context.Metadata = nil
	out, err = cmd.Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, out.Bool(OutSkipped))

	inv.Context.Metadata = map[string]interface{}{"student_email": "not-an-address"}
	out, err = cmd.Execute(context.Background(), inv)
	require.NoError(t, err)
	assert.True(t, out.Bool(OutSkipped))
	assert.Len(t, sender.sent, 1)

	sender.err = errors.New("smtp down")
	_, err = cmd.Execute(context.Background(), acceptInvocation())
	assert.ErrorContains(t, err, "smtp down")
}

func TestWebhookCommand(t *testing.T) {
	sender := &mockWebhookSender{}
	cmd := NewWebhookCommand(sender)
	cmd.now = fixedNow

	_, err := cmd.Execute(context.Background(), acceptInvocation())
	require.NoError(t, err)

	require.Len(t, sender.payloads, 1)
	p := sender.payloads[0]
	assert.Equal(t, WebhookEvent, p.Event)
	assert.Equal(t, "SHORTLISTED", p.PreviousStatus)
	assert.Equal(t, "ACCEPTED", p.NewStatus)
	assert.Equal(t, "exec-1", p.ExecutionID)
	assert.Equal(t, fixedNow(), p.OccurredAt)
}

func TestMessageFor_EveryIntent(t *testing.T) {
	for _, intent := range workflow.AllIntents() {
		inv := acceptInvocation()
		inv.Intent = intent
		msg := messageFor(inv)
		assert.NotEmpty(t, msg.title, intent)
		assert.NotEmpty(t, msg.body, intent)
		assert.NotEmpty(t, msg.audience, intent)
	}
}
