package command

import (
	"fmt"
	"sort"
	"sync"

	"github.com/garyjia/sip-workflow/internal/domain/workflow"
)

// Reference command ids
const (
	IDDatabaseUpdateStatus = "database.update_status"
	IDAuditLog             = "audit.log"
	IDNotificationInApp    = "notification.in_app"
	IDEmailSend            = "email.send"
	IDWebhookTrigger       = "webhook.trigger"
)

// Registry holds commands by id and the commands bound to each intent
type Registry struct {
	mu       sync.RWMutex
	commands map[string]Command
	order    map[string]int
	bindings map[workflow.Intent][]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
		order:    make(map[string]int),
		bindings: make(map[workflow.Intent][]string),
	}
}

// Register adds a command. Every command must declare its reversibility.
func (r *Registry) Register(cmd Command) error {
	desc := cmd.Descriptor()
	if desc.ID == "" {
		return fmt.Errorf("register command: empty id")
	}
	if desc.Irreversible == IsReversible(cmd) {
		return fmt.Errorf("register %s: %w", desc.ID, ErrReversibilityUndeclared)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.commands[desc.ID]; exists {
		return fmt.Errorf("register %s: %w", desc.ID, ErrDuplicateCommand)
	}
	r.order[desc.ID] = len(r.order)
	r.commands[desc.ID] = cmd
	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(cmds ...Command) {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
}

// Get returns the command registered under id
func (r *Registry) Get(id string) (Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmd, ok := r.commands[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrUnknownCommand)
	}
	return cmd, nil
}

// Descriptors lists registered commands in registration order
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, len(r.order))
	for id, i := range r.order {
		out[i] = r.commands[id].Descriptor()
	}
	return out
}

// Bind replaces the commands run for intent
func (r *Registry) Bind(intent workflow.Intent, ids ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if _, ok := r.commands[id]; !ok {
			return fmt.Errorf("bind %s: %s: %w", intent, id, ErrUnknownCommand)
		}
	}
	r.bindings[intent] = append([]string(nil), ids...)
	return nil
}

// Bindings returns the command ids bound to intent
func (r *Registry) Bindings(intent workflow.Intent) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.bindings[intent]...)
}

// CommandsFor returns the commands bound to intent in execution order
func (r *Registry) CommandsFor(intent workflow.Intent) []Command {
	cmds, _ := r.Resolve(r.Bindings(intent))
	return cmds
}

// Resolve looks up ids and orders them by descending priority, ties
// broken by registration order
func (r *Registry) Resolve(ids []string) ([]Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cmds := make([]Command, 0, len(ids))
	for _, id := range ids {
		cmd, ok := r.commands[id]
		if !ok {
			return nil, fmt.Errorf("%s: %w", id, ErrUnknownCommand)
		}
		cmds = append(cmds, cmd)
	}

	sort.SliceStable(cmds, func(i, j int) bool {
		pi, pj := cmds[i].Descriptor().Priority, cmds[j].Descriptor().Priority
		if pi != pj {
			return pi > pj
		}
		return r.order[cmds[i].Descriptor().ID] < r.order[cmds[j].Descriptor().ID]
	})
	return cmds, nil
}

// SortByPriority orders ad hoc commands by descending priority, keeping the
// given order for equal priorities
func SortByPriority(cmds []Command) []Command {
	out := append([]Command(nil), cmds...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Descriptor().Priority > out[j].Descriptor().Priority
	})
	return out
}

// DefaultBindings returns the reference command ids for intent
func DefaultBindings(intent workflow.Intent) []string {
	switch intent {
	case workflow.IntentAdminOverride:
		return []string{IDDatabaseUpdateStatus, IDAuditLog, IDWebhookTrigger}
	case workflow.IntentSubmitApplication,
		workflow.IntentStartReview,
		workflow.IntentShortlistCandidate,
		workflow.IntentScheduleInterview,
		workflow.IntentAcceptCandidate,
		workflow.IntentRejectCandidate,
		workflow.IntentWithdraw:
		return []string{IDDatabaseUpdateStatus, IDAuditLog, IDNotificationInApp, IDEmailSend, IDWebhookTrigger}
	default:
		return nil
	}
}

// BindDefaults binds the reference commands to every intent. The reference
// commands must already be registered.
func BindDefaults(r *Registry) error {
	for _, intent := range workflow.AllIntents() {
		if err := r.Bind(intent, DefaultBindings(intent)...); err != nil {
			return err
		}
	}
	return nil
}
