package lark

import (
	"context"
	"encoding/json"
	"fmt"

	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/sip-workflow/internal/application/port"
)

// Receive id types accepted by the im/v1 message API
const (
	ReceiveIDTypeEmail  = "email"
	ReceiveIDTypeOpenID = "open_id"
)

// messageCreator posts one im/v1 message body
type messageCreator interface {
	Create(ctx context.Context, receiveIDType string, body *larkim.CreateMessageReqBody) (*larkim.CreateMessageResp, error)
}

// sdkMessages is the im/v1 message resource of the SDK client
type sdkMessages interface {
	Create(ctx context.Context, req *larkim.CreateMessageReq, options ...larkcore.RequestOptionFunc) (*larkim.CreateMessageResp, error)
}

// sdkMessageCreator builds the SDK request around a message body
type sdkMessageCreator struct {
	messages sdkMessages
}

func (c sdkMessageCreator) Create(ctx context.Context, receiveIDType string, body *larkim.CreateMessageReqBody) (*larkim.CreateMessageResp, error) {
	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(body).
		Build()
	return c.messages.Create(ctx, req)
}

// Messenger delivers workflow mail through Lark messages and implements
// port.EmailSender
type Messenger struct {
	messages messageCreator
	logger   *zap.Logger
}

// NewMessenger creates a new Lark message sender adapter
func NewMessenger(sdk *SDKClient, logger *zap.Logger) *Messenger {
	return &Messenger{
		messages: sdkMessageCreator{messages: sdk.GetClient().Im.Message},
		logger:   logger,
	}
}

// SendEmail posts a rich-text message to the user registered under an
// email address
func (m *Messenger) SendEmail(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return fmt.Errorf("recipient email cannot be empty")
	}

	content, err := postContent(subject, body)
	if err != nil {
		return err
	}

	messageID, err := m.send(ctx, ReceiveIDTypeEmail, to, "post", content)
	if err != nil {
		return err
	}

	m.logger.Info("Email message sent",
		zap.String("email", to),
		zap.String("subject", subject),
		zap.String("message_id", messageID))
	return nil
}

// SendText sends a plain text message to a user
func (m *Messenger) SendText(ctx context.Context, openID, text string) error {
	if openID == "" {
		return fmt.Errorf("openID cannot be empty")
	}
	if text == "" {
		return fmt.Errorf("content cannot be empty")
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal text content: %w", err)
	}

	_, err = m.send(ctx, ReceiveIDTypeOpenID, openID, "text", string(content))
	return err
}

func (m *Messenger) send(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	body := larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(receiveID).
		MsgType(msgType).
		Content(content).
		Build()

	resp, err := m.messages.Create(ctx, receiveIDType, body)
	if err != nil {
		m.logger.Error("Failed to send message",
			zap.String("receive_id", receiveID),
			zap.Error(err))
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("API returned failure",
			zap.String("receive_id", receiveID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return "", fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}
	return messageID, nil
}

// postElement is one inline element of a Lark post message
type postElement struct {
	Tag  string `json:"tag"`
	Text string `json:"text"`
}

type postBody struct {
	Title   string          `json:"title"`
	Content [][]postElement `json:"content"`
}

// postContent renders a Lark "post" message, one paragraph per body line
func postContent(title, body string) (string, error) {
	var paragraphs [][]postElement
	for _, line := range splitLines(body) {
		paragraphs = append(paragraphs, []postElement{{Tag: "text", Text: line}})
	}

	data, err := json.Marshal(map[string]postBody{
		"en_us": {Title: title, Content: paragraphs},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal post content: %w", err)
	}
	return string(data), nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// NoopEmailSender logs messages instead of sending them, used when Lark is
// disabled
type NoopEmailSender struct {
	logger *zap.Logger
}

// NewNoopEmailSender creates a sender that only logs
func NewNoopEmailSender(logger *zap.Logger) *NoopEmailSender {
	return &NoopEmailSender{logger: logger}
}

// SendEmail implements port.EmailSender
func (s *NoopEmailSender) SendEmail(ctx context.Context, to, subject, body string) error {
	s.logger.Info("Lark disabled, email not sent",
		zap.String("email", to),
		zap.String("subject", subject))
	return nil
}

// Verify interface compliance
var (
	_ port.EmailSender = (*Messenger)(nil)
	_ port.EmailSender = (*NoopEmailSender)(nil)
)
