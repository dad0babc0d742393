package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"go.uber.org/zap"
)

// Provider defines the interface for email providers
type Provider interface {
	Send(ctx context.Context, to, subject, body string, isHTML bool) error
}

// Config holds email service configuration
type Config struct {
	// Provider type: "sendgrid" or "smtp"
	Provider string

	FromEmail string
	FromName  string

	SendGridAPIKey string

	// SMTP configuration (Mailhog locally, STARTTLS or implicit TLS in production)
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPUseTLS   bool
}

// DefaultConfig returns a default configuration for development (Mailhog)
func DefaultConfig() *Config {
	return &Config{
		Provider:  "smtp",
		FromEmail: "jarvis@localhost",
		FromName:  "Jarvis",
		SMTPHost:  "localhost",
		SMTPPort:  1025,
	}
}

// Service implements ports.EmailService
type Service struct {
	config    *Config
	provider  Provider
	templates map[string]*template.Template
	log       *zap.Logger
}

func NewService(config *Config, log *zap.Logger) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var provider Provider
	switch config.Provider {
	case "sendgrid":
		if config.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SendGrid API key is required")
		}
		provider = NewSendGridProvider(config.SendGridAPIKey, config.FromEmail, config.FromName)
	case "smtp":
		provider = NewSMTPProvider(
			config.SMTPHost,
			config.SMTPPort,
			config.SMTPUsername,
			config.SMTPPassword,
			config.FromEmail,
			config.FromName,
			config.SMTPUseTLS,
		)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", config.Provider)
	}

	return newService(config, provider, log), nil
}

func newService(config *Config, provider Provider, log *zap.Logger) *Service {
	s := &Service{
		config:    config,
		provider:  provider,
		templates: make(map[string]*template.Template),
		log:       log,
	}
	s.templates[TemplateMessage] = mustLayout(TemplateMessage, messageTemplate)
	s.templates[TemplateEventInvitation] = mustLayout(TemplateEventInvitation, eventInvitationTemplate)
	return s
}

const (
	TemplateMessage         = "message"
	TemplateEventInvitation = "event_invitation"
)

func mustLayout(name, content string) *template.Template {
	return template.Must(template.Must(template.New(name).Parse(layoutTemplate)).Parse(content))
}

func (s *Service) Send(ctx context.Context, to, subject, body string) error {
	s.log.Info("Sending email", zap.String("to", to), zap.String("subject", subject))

	if err := s.provider.Send(ctx, to, subject, body, false); err != nil {
		s.log.Error("Failed to send email", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *Service) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	s.log.Info("Sending HTML email", zap.String("to", to), zap.String("subject", subject))

	if err := s.provider.Send(ctx, to, subject, htmlBody, true); err != nil {
		s.log.Error("Failed to send HTML email", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("failed to send HTML email: %w", err)
	}
	return nil
}

// SendTemplate renders a named template. data["Subject"] sets the subject.
func (s *Service) SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return fmt.Errorf("template not found: %s", templateName)
	}

	if data == nil {
		data = make(map[string]interface{})
	}
	data["FromName"] = s.config.FromName
	if body, ok := data["Body"].(string); ok {
		data["Paragraphs"] = paragraphs(body)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject, ok := data["Subject"].(string)
	if !ok {
		subject = "A message from " + s.config.FromName
	}
	return s.SendHTML(ctx, to, subject, buf.String())
}

func paragraphs(body string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
