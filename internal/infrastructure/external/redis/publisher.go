package redis

import (
	"context"
	"encoding/json"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/dispatcher"
	"github.com/garyjia/sip-workflow/internal/domain/event"
)

// DefaultChannel receives workflow events when no channel is configured
const DefaultChannel = "EVENT_APPLICATION_STATUS"

// handlerName identifies the publisher's dispatcher subscriptions
const handlerName = "redis.publisher"

// ForwardedTypes are the event types fanned out to Redis subscribers
var ForwardedTypes = []event.Type{
	event.TypeStatusChanged,
	event.TypeWorkflowRolledBack,
}

// channelPublisher is the slice of the Redis client the publisher needs
type channelPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *goredis.IntCmd
}

// Message is the JSON published for each forwarded event
type Message struct {
	Type          string                 `json:"type"`
	EventID       string                 `json:"eventId"`
	ApplicationID string                 `json:"applicationId"`
	ExecutionID   string                 `json:"executionId"`
	Payload       map[string]interface{} `json:"payload,omitempty"`
	Timestamp     int64                  `json:"timestamp"`
}

// Publisher forwards dispatcher events to a Redis pub/sub channel
type Publisher struct {
	rdb     channelPublisher
	channel string
	logger  *zap.Logger
}

// NewPublisher creates a publisher for the given channel
func NewPublisher(rdb channelPublisher, channel string, logger *zap.Logger) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{rdb: rdb, channel: channel, logger: logger}
}

// Attach subscribes the publisher to the forwarded event types
func (p *Publisher) Attach(d dispatcher.Dispatcher) {
	for _, t := range ForwardedTypes {
		d.Subscribe(t, handlerName, p.Handle)
	}
}

// Handle publishes one event. Publish failures are logged and swallowed so
// that a Redis outage never fails a workflow.
func (p *Publisher) Handle(ctx context.Context, evt *event.Event) error {
	body, err := json.Marshal(Message{
		Type:          evt.Type.String(),
		EventID:       evt.ID,
		ApplicationID: evt.ApplicationID,
		ExecutionID:   evt.ExecutionID,
		Payload:       evt.Payload,
		Timestamp:     evt.Timestamp.UnixMilli(),
	})
	if err != nil {
		p.logger.Warn("encode event failed",
			zap.String("event_id", evt.ID),
			zap.Error(err))
		return nil
	}

	if err := p.rdb.Publish(ctx, p.channel, body).Err(); err != nil {
		p.logger.Warn("publish event failed",
			zap.String("channel", p.channel),
			zap.String("event_type", evt.Type.String()),
			zap.Error(err))
		return nil
	}

	p.logger.Debug("Event published",
		zap.String("channel", p.channel),
		zap.String("event_type", evt.Type.String()),
		zap.String("application_id", evt.ApplicationID))
	return nil
}
