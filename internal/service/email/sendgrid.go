package email

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridProvider delivers through the SendGrid v3 mail API.
type SendGridProvider struct {
	from     *mail.Email
	client   *sendgrid.Client
	category string
}

func NewSendGridProvider(apiKey, fromEmail, fromName string) *SendGridProvider {
	return &SendGridProvider{
		from:     mail.NewEmail(fromName, fromEmail),
		client:   sendgrid.NewSendClient(apiKey),
		category: "jarvis",
	}
}

// Send builds a single-recipient message. HTML bodies also carry a plain
// text part; SendGrid requires text/plain to come first.
func (p *SendGridProvider) Send(ctx context.Context, to, subject, body string, isHTML bool) error {
	m := mail.NewV3Mail()
	m.SetFrom(p.from)
	m.Subject = subject
	m.AddCategories(p.category)

	recipient := mail.NewPersonalization()
	recipient.AddTos(mail.NewEmail("", to))
	m.AddPersonalizations(recipient)

	if isHTML {
		m.AddContent(mail.NewContent("text/plain", plainText(body)), mail.NewContent("text/html", body))
	} else {
		m.AddContent(mail.NewContent("text/plain", body))
	}

	resp, err := p.client.SendWithContext(ctx, m)
	if err != nil {
		return fmt.Errorf("sendgrid: send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

var (
	styleBlock = regexp.MustCompile(`(?is)<(style|head)[^>]*>.*?</(style|head)>`)
	tag        = regexp.MustCompile(`<[^>]+>`)
	blankLines = regexp.MustCompile(`\n\s*\n+`)
)

func plainText(htmlBody string) string {
	s := styleBlock.ReplaceAllString(htmlBody, "")
	s = tag.ReplaceAllString(s, "\n")
	s = html.UnescapeString(s)
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}
