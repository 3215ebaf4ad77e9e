package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/port"
)

// DefaultTimeout bounds a single delivery
const DefaultTimeout = 10 * time.Second

// Config holds the delivery endpoint settings
type Config struct {
	URL     string
	Secret  string
	Timeout time.Duration
}

// Sender posts signed workflow payloads to a subscriber endpoint
type Sender struct {
	url    string
	secret string
	client *http.Client
	logger *zap.Logger
	now    func() time.Time
	nonce  func() string
}

// NewSender creates a webhook sender
func NewSender(cfg Config, logger *zap.Logger) *Sender {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sender{
		url:    cfg.URL,
		secret: cfg.Secret,
		client: &http.Client{Timeout: timeout},
		logger: logger,
		now:    time.Now,
		nonce:  uuid.NewString,
	}
}

// Send implements port.WebhookSender
func (s *Sender) Send(ctx context.Context, payload port.WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	nonce := s.nonce()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderTimestamp, timestamp)
	req.Header.Set(HeaderNonce, nonce)
	req.Header.Set(HeaderSignature, Sign(timestamp, nonce, s.secret, body))

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook endpoint returned %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	s.logger.Info("Webhook delivered",
		zap.String("event", payload.Event),
		zap.String("application_id", payload.ApplicationID),
		zap.Int("status_code", resp.StatusCode))
	return nil
}

// NoopSender logs deliveries instead of sending them
type NoopSender struct {
	logger *zap.Logger
}

// NewNoopSender creates a sender used when webhooks are disabled
func NewNoopSender(logger *zap.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send implements port.WebhookSender
func (n *NoopSender) Send(_ context.Context, payload port.WebhookPayload) error {
	n.logger.Debug("Webhook disabled, skipping delivery",
		zap.String("event", payload.Event),
		zap.String("application_id", payload.ApplicationID))
	return nil
}

// Verify interface compliance
var (
	_ port.WebhookSender = (*Sender)(nil)
	_ port.WebhookSender = (*NoopSender)(nil)
)
