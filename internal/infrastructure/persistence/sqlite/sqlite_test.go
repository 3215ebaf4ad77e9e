package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/command"
	"github.com/garyjia/sip-workflow/internal/application/decision"
	"github.com/garyjia/sip-workflow/internal/application/orchestrator"
	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
	"github.com/garyjia/sip-workflow/migrations"
	"github.com/garyjia/sip-workflow/pkg/database"
)

type testStore struct {
	db            *DB
	apps          *ApplicationRepository
	history       *StatusHistoryRepository
	notifications *NotificationRepository
	audit         *AuditLogRepository
}

func newTestStore(t *testing.T) *testStore {
	t.Helper()
	logger := zap.NewNop()

	raw, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "sip.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, database.NewMigrator(raw, logger).RunMigrationsFS(migrations.FS))

	return &testStore{
		db:            NewDB(raw.DB, logger),
		apps:          NewApplicationRepository(raw.DB, logger),
		history:       NewStatusHistoryRepository(raw.DB, logger),
		notifications: NewNotificationRepository(raw.DB, logger),
		audit:         NewAuditLogRepository(raw.DB, logger),
	}
}

func seedApplication(t *testing.T, s *testStore, id string, status workflow.Status) {
	t.Helper()
	require.NoError(t, s.apps.Create(context.Background(), &entity.Application{
		ID:           id,
		StudentID:    "stu-1",
		InternshipID: "int-1",
		EmployerID:   "emp-1",
		Status:       status,
	}))
}

func TestApplicationRepository_CompareAndSetStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedApplication(t, s, "app-1", workflow.StatusSubmitted)

	require.NoError(t, s.apps.CompareAndSetStatus(ctx, "app-1", workflow.StatusSubmitted, workflow.StatusUnderReview))

	app, err := s.apps.GetByID(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusUnderReview, app.Status)
	assert.Equal(t, "emp-1", app.EmployerID)

	err = s.apps.CompareAndSetStatus(ctx, "app-1", workflow.StatusSubmitted, workflow.StatusRejected)
	assert.ErrorIs(t, err, port.ErrStatusConflict)

	err = s.apps.CompareAndSetStatus(ctx, "missing", workflow.StatusSubmitted, workflow.StatusRejected)
	assert.ErrorIs(t, err, port.ErrNotFound)

	_, err = s.apps.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, port.ErrNotFound)

	require.NoError(t, s.apps.Delete(ctx, "app-1"))
	assert.ErrorIs(t, s.apps.Delete(ctx, "app-1"), port.ErrNotFound)
}

func TestDB_WithTransactionRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedApplication(t, s, "app-1", workflow.StatusSubmitted)
	errAbort := errors.New("abort")

	err := s.db.WithTransaction(ctx, func(txCtx context.Context) error {
		require.NoError(t, s.apps.CompareAndSetStatus(txCtx, "app-1", workflow.StatusSubmitted, workflow.StatusShortlisted))
		require.NoError(t, s.history.Create(txCtx, &entity.StatusHistory{
			ApplicationID:  "app-1",
			PreviousStatus: workflow.StatusSubmitted,
			NewStatus:      workflow.StatusShortlisted,
			Intent:         workflow.IntentShortlistCandidate,
			ActorRole:      workflow.RoleEmployer,
			Timestamp:      time.Now(),
		}))

		// nested calls join the outer transaction
		return s.db.WithTransaction(txCtx, func(context.Context) error { return errAbort })
	})
	require.ErrorIs(t, err, errAbort)

	status, err := s.apps.GetStatus(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusSubmitted, status)

	records, err := s.history.ListByApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestNotificationRepository(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.notifications.Create(ctx, &entity.Notification{
			UserID:    "stu-1",
			Title:     "update",
			Severity:  "info",
			CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, s.notifications.Create(ctx, &entity.Notification{UserID: "other", Title: "x", CreatedAt: time.Now()}))

	list, err := s.notifications.ListByUser(ctx, "stu-1", 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID, "newest first")

	require.NoError(t, s.notifications.Delete(ctx, list[0].ID))
	list, err = s.notifications.ListByUser(ctx, "stu-1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestAuditLogRepository(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	entry := &entity.AuditEntry{
		ApplicationID:  "app-1",
		ExecutionID:    "exec-1",
		Intent:         workflow.IntentAcceptCandidate,
		ActorID:        "emp-user",
		ActorRole:      workflow.RoleEmployer,
		PreviousStatus: workflow.StatusShortlisted,
		NewStatus:      workflow.StatusAccepted,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, s.audit.Append(ctx, entry))
	assert.NotZero(t, entry.ID)

	list, err := s.audit.ListByApplication(ctx, "app-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "{}", list[0].Details)
	assert.Equal(t, workflow.StatusAccepted, list[0].NewStatus)
}

type failingEmail struct{}

func (failingEmail) SendEmail(context.Context, string, string, string) error {
	return errors.New("mail relay unavailable")
}

type noopWebhook struct{}

func (noopWebhook) Send(context.Context, port.WebhookPayload) error { return nil }

func TestWorkflow_FailedEmailRestoresDatabase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedApplication(t, s, "app-1", workflow.StatusShortlisted)

	registry, err := command.NewDefaultRegistry(command.Dependencies{
		Applications:  s.apps,
		History:       s.history,
		Notifications: s.notifications,
		Audit:         s.audit,
		TxManager:     s.db,
		Email:         failingEmail{},
		Webhook:       noopWebhook{},
	})
	require.NoError(t, err)
	o := orchestrator.NewOrchestrator(decision.NewEngine(), registry)

	result := o.ExecuteWorkflow(ctx, orchestrator.WorkflowContext{
		Intent: decision.IntentContext{
			Intent:        workflow.IntentAcceptCandidate,
			Role:          workflow.RoleAdmin,
			CurrentStatus: workflow.StatusShortlisted,
		},
		Command: command.CommandContext{
			ApplicationID: "app-1",
			UserID:        "admin-1",
			StudentID:     "stu-1",
			EmployerID:    "emp-1",
			Metadata:      map[string]interface{}{"student_email": "stu@example.com"},
		},
		CommandIDs: []string{command.IDDatabaseUpdateStatus, command.IDAuditLog, command.IDNotificationInApp, command.IDEmailSend},
	})

	require.False(t, result.Success)
	assert.Equal(t, []string{command.IDDatabaseUpdateStatus, command.IDAuditLog, command.IDNotificationInApp}, result.CommandsExecuted)
	assert.Equal(t, []string{command.IDEmailSend}, result.CommandsFailed)
	require.True(t, result.RollbackExecuted)
	for _, rb := range result.Rollbacks {
		assert.Equal(t, orchestrator.RolledBack, rb.Status, rb.CommandID)
	}

	status, err := s.apps.GetStatus(ctx, "app-1")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusShortlisted, status)

	history, err := s.history.ListByApplication(ctx, "app-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	audit, err := s.audit.ListByApplication(ctx, "app-1")
	require.NoError(t, err)
	require.Len(t, audit, 2, "the failed attempt stays on record with its reversal")
	assert.Equal(t, workflow.StatusShortlisted, audit[0].PreviousStatus)
	assert.Equal(t, workflow.StatusAccepted, audit[0].NewStatus)
	assert.Equal(t, workflow.StatusAccepted, audit[1].PreviousStatus)
	assert.Equal(t, workflow.StatusShortlisted, audit[1].NewStatus)
	assert.Equal(t, result.ExecutionID, audit[1].ExecutionID)
	assert.Contains(t, audit[1].Details, `"compensates":`)

	notes, err := s.notifications.ListByUser(ctx, "stu-1", 10)
	require.NoError(t, err)
	assert.Empty(t, notes)
}

func TestWorkflow_SubmissionPersistsApplication(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	registry, err := command.NewDefaultRegistry(command.Dependencies{
		Applications:  s.apps,
		History:       s.history,
		Notifications: s.notifications,
		Audit:         s.audit,
		TxManager:     s.db,
		Email:         failingEmail{},
		Webhook:       noopWebhook{},
	})
	require.NoError(t, err)
	o := orchestrator.NewOrchestrator(decision.NewEngine(), registry)

	result := o.ExecuteWorkflow(ctx, orchestrator.WorkflowContext{
		Intent: decision.IntentContext{
			Intent: workflow.IntentSubmitApplication,
			Role:   workflow.RoleStudent,
		},
		Command: command.CommandContext{
			UserID:       "stu-1",
			StudentID:    "stu-1",
			EmployerID:   "emp-1",
			InternshipID: "int-1",
		},
	})

	// no employer email in the metadata, so the email step is skipped
	require.True(t, result.Success, result.Error)

	app, err := s.apps.GetByID(ctx, result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusSubmitted, app.Status)

	history, err := s.history.ListByApplication(ctx, result.ApplicationID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, workflow.StatusNone, history[0].PreviousStatus)
	assert.Equal(t, result.ExecutionID, history[0].ExecutionID)

	notes, err := s.notifications.ListByUser(ctx, "emp-1", 10)
	require.NoError(t, err)
	assert.Len(t, notes, 1)
}
