package email

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
	"github.com/seu-repo/jarvis/internal/service/agent"
)

const role = `You are an Email Management Agent. Your role is to send and draft emails for the user.
Contact details looked up earlier may be included in the request; use the email address they give.
Always compose professional, well-formatted emails.`

// Tools exposes the email handler's actions.
type Tools struct {
	mail ports.EmailService
	log  *zap.Logger
}

func NewTools(mail ports.EmailService, log *zap.Logger) *Tools {
	return &Tools{mail: mail, log: log}
}

// NewHandler builds the email domain handler.
func NewHandler(model ports.ChatModel, tools *Tools, log *zap.Logger) *agent.Agent {
	return agent.New(domain.HandlerEmail, role, model, []agent.Tool{
		{
			Name:        "send_email",
			Description: `Send an email. Input: {"to": "address", "subject": "...", "body": "..."}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return tools.SendEmail(ctx, in.String("to"), in.String("subject"), in.String("body"))
			},
		},
		{
			Name:        "draft_email",
			Description: `Draft an email without sending it. Input: {"to": "...", "subject": "...", "body": "..."}`,
			Run: func(ctx context.Context, in agent.Input) (string, error) {
				return DraftEmail(in.String("to"), in.String("subject"), in.String("body")), nil
			},
		},
	}, log)
}

func (t *Tools) SendEmail(ctx context.Context, to, subject, body string) (string, error) {
	if to == "" {
		return "", t.fail(errors.New("recipient address is required"))
	}
	err := t.mail.SendTemplate(ctx, to, TemplateMessage, map[string]interface{}{
		"Subject": subject,
		"Body":    body,
	})
	if err != nil {
		return "", t.fail(err)
	}
	return fmt.Sprintf("Email sent successfully to %s", to), nil
}

// DraftEmail renders a draft as plain text.
func DraftEmail(to, subject, body string) string {
	return fmt.Sprintf("Email Draft:\nTo: %s\nSubject: %s\n\n%s", to, subject, body)
}

func (t *Tools) fail(err error) error {
	return &domain.HandlerError{Handler: domain.HandlerEmail, Op: "sending email", Err: err}
}
