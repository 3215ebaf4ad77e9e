package command

import (
	"context"
	"sync"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/entity"
	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// mockApplicationRepo is an in-memory ApplicationRepository
type mockApplicationRepo struct {
	mu      sync.Mutex
	apps    map[string]*entity.Application
	casErr  error
	created int
}

func newMockApplicationRepo(apps ...*entity.Application) *mockApplicationRepo {
	m := &mockApplicationRepo{apps: make(map[string]*entity.Application)}
	for _, a := range apps {
		m.apps[a.ID] = a
	}
	return m
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *entity.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created++
	m.apps[app.ID] = app
	return nil
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id string) (*entity.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return app, nil
}

func (m *mockApplicationRepo) CompareAndSetStatus(ctx context.Context, id string, expected, next workflow.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.casErr != nil {
		return m.casErr
	}
	app, ok := m.apps[id]
	if !ok {
		return port.ErrNotFound
	}
	if app.Status != expected {
		return port.ErrStatusConflict
	}
	app.Status = next
	return nil
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.apps, id)
	return nil
}

func (m *mockApplicationRepo) status(id string) workflow.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if app, ok := m.apps[id]; ok {
		return app.Status
	}
	return workflow.StatusNone
}

// mockHistoryRepo is an in-memory StatusHistoryRepository
type mockHistoryRepo struct {
	nextID  int64
	records map[int64]*entity.StatusHistory
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{records: make(map[int64]*entity.StatusHistory)}
}

func (m *mockHistoryRepo) Create(ctx context.Context, h *entity.StatusHistory) error {
	m.nextID++
	h.ID = m.nextID
	m.records[h.ID] = h
	return nil
}

func (m *mockHistoryRepo) Delete(ctx context.Context, id int64) error {
	delete(m.records, id)
	return nil
}

func (m *mockHistoryRepo) ListByApplication(ctx context.Context, applicationID string) ([]*entity.StatusHistory, error) {
	var out []*entity.StatusHistory
	for _, h := range m.records {
		if h.ApplicationID == applicationID {
			out = append(out, h)
		}
	}
	return out, nil
}

// mockNotificationRepo is an in-memory NotificationRepository
type mockNotificationRepo struct {
	nextID  int64
	records map[int64]*entity.Notification
	err     error
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{records: make(map[int64]*entity.Notification)}
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	if m.err != nil {
		return m.err
	}
	m.nextID++
	n.ID = m.nextID
	m.records[n.ID] = n
	return nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id int64) error {
	delete(m.records, id)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range m.records {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

// mockAuditRepo is an in-memory AuditLogRepository
type mockAuditRepo struct {
	nextID  int64
	entries map[int64]*entity.AuditEntry
}

func newMockAuditRepo() *mockAuditRepo {
	return &mockAuditRepo{entries: make(map[int64]*entity.AuditEntry)}
}

func (m *mockAuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	m.nextID++
	e.ID = m.nextID
	m.entries[e.ID] = e
	return nil
}

func (m *mockAuditRepo) ListByApplication(ctx context.Context, applicationID string) ([]*entity.AuditEntry, error) {
	var out []*entity.AuditEntry
	for _, e := range m.entries {
		if e.ApplicationID == applicationID {
			out = append(out, e)
		}
	}
	return out, nil
}

// mockTxManager runs fn directly
type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

// mockEmailSender records sent mail
type mockEmailSender struct {
	sent []string
	err  error
}

func (m *mockEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to+"|"+subject)
	return nil
}

// mockWebhookSender records payloads
type mockWebhookSender struct {
	payloads []port.WebhookPayload
	err      error
}

func (m *mockWebhookSender) Send(ctx context.Context, payload port.WebhookPayload) error {
	if m.err != nil {
		return m.err
	}
	m.payloads = append(m.payloads, payload)
	return nil
}
