package command

import "github.com/garyjia/sip-workflow/internal/application/port"

// Dependencies are the collaborators of the reference commands
type Dependencies struct {
	Applications  port.ApplicationRepository
	History       port.StatusHistoryRepository
	Notifications port.NotificationRepository
	Audit         port.AuditLogRepository
	TxManager     port.TransactionManager
	Email         port.EmailSender
	Webhook       port.WebhookSender
	Logger        port.Logger
}

// NewDefaultRegistry registers the reference commands and binds them to
// every intent
func NewDefaultRegistry(deps Dependencies) (*Registry, error) {
	r := NewRegistry()
	cmds := []Command{
		NewUpdateStatusCommand(deps.Applications, deps.History, deps.TxManager, deps.Logger),
		NewAuditLogCommand(deps.Audit),
		NewInAppNotificationCommand(deps.Notifications, deps.Logger),
		NewEmailCommand(deps.Email, deps.Logger),
		NewWebhookCommand(deps.Webhook),
	}
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			return nil, err
		}
	}
	if err := BindDefaults(r); err != nil {
		return nil, err
	}
	return r, nil
}
