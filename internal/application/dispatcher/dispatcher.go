package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/garyjia/sip-workflow/internal/application/port"
	"github.com/garyjia/sip-workflow/internal/domain/event"
)

// ErrClosed is returned when publishing on a closed dispatcher
var ErrClosed = errors.New("dispatcher is closed")

// Dispatcher fans workflow events out to subscribers
type Dispatcher interface {
	// Subscribe registers a named handler for one event type
	Subscribe(eventType event.Type, name string, handler Handler)

	// SubscribeAll registers a named handler for every event type
	SubscribeAll(name string, handler Handler)

	// Unsubscribe removes every handler registered under name
	Unsubscribe(name string)

	// Publish runs all matching handlers in registration order and joins
	// their errors. A failing handler does not stop the others.
	Publish(ctx context.Context, evt *event.Event) error

	// PublishAsync runs matching handlers in the background
	PublishAsync(ctx context.Context, evt *event.Event)

	// Handlers returns the handlers that would receive eventType
	Handlers(eventType event.Type) []HandlerInfo

	// Close stops accepting events and waits for background handlers
	Close() error
}

type eventDispatcher struct {
	mu       sync.RWMutex
	handlers []HandlerInfo
	logger   port.Logger

	// state guards closed and every wg.Add so Close cannot start waiting
	// while a PublishAsync is still registering goroutines
	state  sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger port.Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{logger: port.NopLogger{}}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.add(HandlerInfo{Name: name, EventType: eventType, Handler: handler})
}

func (d *eventDispatcher) SubscribeAll(name string, handler Handler) {
	d.add(HandlerInfo{Name: name, Handler: handler})
}

func (d *eventDispatcher) add(info HandlerInfo) {
	d.mu.Lock()
	d.handlers = append(d.handlers, info)
	d.mu.Unlock()

	d.logger.Info("Handler registered", "event_type", info.EventType, "handler_name", info.Name)
}

func (d *eventDispatcher) Unsubscribe(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	kept := d.handlers[:0:0]
	for _, h := range d.handlers {
		if h.Name != name {
			kept = append(kept, h)
		}
	}
	d.handlers = kept
}

func (d *eventDispatcher) Publish(ctx context.Context, evt *event.Event) error {
	if d.isClosed() {
		return ErrClosed
	}

	var errs []error
	for _, info := range d.matching(evt.Type) {
		if err := d.safeExecute(ctx, evt, info); err != nil {
			d.logger.Error("Handler error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", info.Name,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("handler %s: %w", info.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (d *eventDispatcher) PublishAsync(ctx context.Context, evt *event.Event) {
	d.state.RLock()
	defer d.state.RUnlock()
	if d.closed {
		d.logger.Error("Cannot publish event, dispatcher is closed",
			"event_type", evt.Type,
			"event_id", evt.ID,
		)
		return
	}

	// handlers outlive the request that raised the event
	ctx = context.WithoutCancel(ctx)
	for _, info := range d.matching(evt.Type) {
		d.wg.Add(1)
		go func(h HandlerInfo) {
			defer d.wg.Done()
			if err := d.safeExecute(ctx, evt, h); err != nil {
				d.logger.Error("Async handler error",
					"event_type", evt.Type,
					"event_id", evt.ID,
					"handler_name", h.Name,
					"error", err,
				)
			}
		}(info)
	}
}

func (d *eventDispatcher) Handlers(eventType event.Type) []HandlerInfo {
	matched := d.matching(eventType)
	out := make([]HandlerInfo, len(matched))
	for i, h := range matched {
		out[i] = HandlerInfo{Name: h.Name, EventType: h.EventType}
	}
	return out
}

func (d *eventDispatcher) Close() error {
	d.state.Lock()
	if d.closed {
		d.state.Unlock()
		return ErrClosed
	}
	d.closed = true
	d.state.Unlock()

	d.logger.Info("Closing dispatcher, waiting for async handlers")
	d.wg.Wait()
	return nil
}

func (d *eventDispatcher) isClosed() bool {
	d.state.RLock()
	defer d.state.RUnlock()
	return d.closed
}

func (d *eventDispatcher) matching(eventType event.Type) []HandlerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]HandlerInfo, 0, len(d.handlers))
	for _, h := range d.handlers {
		if h.EventType == "" || h.EventType == eventType {
			out = append(out, h)
		}
	}
	return out
}

// safeExecute runs a handler with panic recovery
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, info HandlerInfo) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
			d.logger.Error("Handler panic recovered",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"handler_name", info.Name,
				"panic", r,
			)
		}
	}()

	return info.Handler(ctx, evt)
}
