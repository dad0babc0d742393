package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/mocks"
)

// MockProvider is a mock email provider for testing
type MockProvider struct {
	SentEmails []MockEmail
	ShouldFail bool
	FailError  error
}

type MockEmail struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

func (m *MockProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	if m.ShouldFail {
		if m.FailError != nil {
			return m.FailError
		}
		return errors.New("mock send failed")
	}

	m.SentEmails = append(m.SentEmails, MockEmail{To: to, Subject: subject, Body: body, IsHTML: isHTML})
	return nil
}

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newTestService(provider *MockProvider) *Service {
	return newService(&Config{
		Provider:  "mock",
		FromEmail: "jarvis@stark.com",
		FromName:  "Jarvis",
	}, provider, newTestLogger())
}

func TestService_Send_Success(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	// Act
	err := service.Send(context.Background(), "user@example.com", "Test Subject", "Test Body")

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(mockProvider.SentEmails) != 1 {
		t.Fatalf("expected 1 email sent, got %d", len(mockProvider.SentEmails))
	}
	email := mockProvider.SentEmails[0]
	if email.To != "user@example.com" || email.Subject != "Test Subject" || email.Body != "Test Body" {
		t.Errorf("unexpected email %+v", email)
	}
	if email.IsHTML {
		t.Error("expected plain text email, got HTML")
	}
}

func TestService_Send_Failure(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{ShouldFail: true, FailError: errors.New("SMTP connection failed")}
	service := newTestService(mockProvider)

	// Act
	err := service.Send(context.Background(), "user@example.com", "Test Subject", "Test Body")

	// Assert
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "SMTP connection failed") {
		t.Errorf("expected error to contain 'SMTP connection failed', got '%s'", err.Error())
	}
}

func TestService_SendTemplate_Message(t *testing.T) {
	// Arrange
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	// Act
	err := service.SendTemplate(context.Background(), "pepper@stark.com", TemplateMessage, map[string]interface{}{
		"Subject": "Dinner",
		"Body":    "Hello Pepper,\n\nDinner at 8?",
	})

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	email := mockProvider.SentEmails[0]
	if !email.IsHTML || email.Subject != "Dinner" {
		t.Errorf("unexpected email %+v", email)
	}
	if !strings.Contains(email.Body, "<p>Hello Pepper,</p>") || !strings.Contains(email.Body, "<p>Dinner at 8?</p>") {
		t.Errorf("paragraphs not rendered: %s", email.Body)
	}
	if !strings.Contains(email.Body, "Sent on behalf of Jarvis") {
		t.Error("layout footer missing")
	}
}

func TestService_SendTemplate_EscapesBody(t *testing.T) {
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	_ = service.SendTemplate(context.Background(), "a@b.com", TemplateMessage, map[string]interface{}{"Body": "<script>x</script>"})

	if strings.Contains(mockProvider.SentEmails[0].Body, "<script>") {
		t.Error("body must be HTML-escaped")
	}
	if mockProvider.SentEmails[0].Subject != "A message from Jarvis" {
		t.Errorf("unexpected default subject %q", mockProvider.SentEmails[0].Subject)
	}
}

func TestService_SendTemplate_EventInvitation(t *testing.T) {
	mockProvider := &MockProvider{}
	service := newTestService(mockProvider)

	err := service.SendTemplate(context.Background(), "happy@stark.com", TemplateEventInvitation, map[string]interface{}{
		"Subject":  "Invitation: Board meeting",
		"Title":    "Board meeting",
		"StartsAt": "2024-05-03 14:00",
		"EndsAt":   "2024-05-03 15:00",
		"Location": "Stark Tower",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	body := mockProvider.SentEmails[0].Body
	if !strings.Contains(body, "Board meeting") || !strings.Contains(body, "Stark Tower") {
		t.Errorf("invitation details missing: %s", body)
	}
}

func TestService_SendTemplate_NotFound(t *testing.T) {
	service := newTestService(&MockProvider{})

	err := service.SendTemplate(context.Background(), "a@b.com", "nonexistent", nil)

	if err == nil || !strings.Contains(err.Error(), "template not found") {
		t.Errorf("expected template not found error, got %v", err)
	}
}

func TestNewService_Providers(t *testing.T) {
	if _, err := NewService(&Config{Provider: "sendgrid", SendGridAPIKey: "SG.key", FromEmail: "a@b.com"}, newTestLogger()); err != nil {
		t.Errorf("sendgrid: unexpected error %v", err)
	}
	if _, err := NewService(&Config{Provider: "smtp", SMTPHost: "localhost", SMTPPort: 1025}, newTestLogger()); err != nil {
		t.Errorf("smtp: unexpected error %v", err)
	}
	if _, err := NewService(&Config{Provider: "pigeon"}, newTestLogger()); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewService(&Config{Provider: "sendgrid"}, newTestLogger()); err == nil {
		t.Error("expected error for missing SendGrid key")
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "smtp" || config.SMTPPort != 1025 {
		t.Errorf("unexpected default config %+v", config)
	}
}

func TestSMTPProvider_BuildMessage(t *testing.T) {
	p := NewSMTPProvider("localhost", 1025, "", "", "jarvis@stark.com", "Jarvis", false)

	msg := p.buildMessage("tony@stark.com", "Hi", "Body", false)

	if !strings.HasPrefix(msg, "From: \"Jarvis\" <jarvis@stark.com>\r\nTo: tony@stark.com\r\nSubject: Hi\r\n") {
		t.Errorf("unexpected headers: %q", msg)
	}
	if !strings.HasSuffix(msg, "\r\n\r\nBody") {
		t.Errorf("body not separated from headers: %q", msg)
	}
	if p.auth() != nil {
		t.Error("no auth expected without credentials")
	}
}

func TestSMTPProvider_HeadersCannotBeInjected(t *testing.T) {
	p := NewSMTPProvider("localhost", 1025, "", "", "jarvis@stark.com", "Jarvis", false)

	msg := p.buildMessage("tony@stark.com", "Hi\r\nBcc: pepper@stark.com", "Body", false)

	if strings.Contains(msg, "\r\nBcc:") {
		t.Errorf("subject line break leaked into headers: %q", msg)
	}
}

func TestSMTPProvider_RejectsInvalidRecipient(t *testing.T) {
	p := NewSMTPProvider("localhost", 1, "", "", "jarvis@stark.com", "Jarvis", false)

	err := p.Send(context.Background(), "not an address", "s", "b", false)

	if err == nil || !strings.Contains(err.Error(), "invalid recipient") {
		t.Errorf("expected invalid recipient error, got %v", err)
	}
}

func TestPlainText(t *testing.T) {
	got := plainText("<html><head><style>p{}</style></head><body><p>Hello &amp; welcome</p><p>Bye</p></body></html>")

	if got != "Hello & welcome\n\nBye" {
		t.Errorf("got %q", got)
	}
}

func TestHandler_SendEmail(t *testing.T) {
	// Arrange
	mail := &mocks.MockEmailService{}
	model := &mocks.MockChatModel{Responses: []string{`{"tool":"send_email","input":{"to":"john@x.com","subject":"Lunch","body":"Noon?"}}`}}
	h := NewHandler(model, NewTools(mail, zap.NewNop()), zap.NewNop())

	// Act
	got := h.Run(context.Background(), "Send an email to John about lunch")

	// Assert
	if got != "Email sent successfully to john@x.com" {
		t.Errorf("got %q", got)
	}
	if len(mail.Sent) != 1 || mail.Sent[0].To != "john@x.com" {
		t.Errorf("unexpected sent mail %+v", mail.Sent)
	}
}

func TestHandler_SendEmailFailure(t *testing.T) {
	mail := &mocks.MockEmailService{
		SendTemplateFunc: func(ctx context.Context, to, name string, data map[string]interface{}) error {
			return errors.New("dial tcp: connection refused")
		},
	}
	model := &mocks.MockChatModel{Responses: []string{`{"tool":"send_email","input":{"to":"a@b.com","subject":"s","body":"b"}}`}}
	h := NewHandler(model, NewTools(mail, zap.NewNop()), zap.NewNop())

	got := h.Run(context.Background(), "send it")

	if got != "Error sending email: dial tcp: connection refused" {
		t.Errorf("got %q", got)
	}
}

func TestDraftEmail(t *testing.T) {
	got := DraftEmail("a@b.com", "Hello", "Body text")

	if got != "Email Draft:\nTo: a@b.com\nSubject: Hello\n\nBody text" {
		t.Errorf("got %q", got)
	}
}
