package ports

import (
	"context"

	"github.com/seu-repo/jarvis/internal/domain"
)

// DomainHandler serves one domain. Run never fails: internal errors are
// rendered into the returned text.
type DomainHandler interface {
	Name() domain.HandlerName
	Run(ctx context.Context, instruction string) string
}

// Classifier is the language-model backend behind the router.
type Classifier interface {
	Classify(ctx context.Context, systemInstructions, utterance string) (string, error)
}

// Generator is the language-model backend behind the persona rewriter.
type Generator interface {
	Generate(ctx context.Context, systemInstructions, userText string) (string, error)
}

type Router interface {
	Decide(ctx context.Context, utterance string) (domain.RoutingDecision, error)
}

type PersonaRewriter interface {
	Rewrite(ctx context.Context, draft string) (string, error)
}

// Orchestrator turns one utterance into one final response.
type Orchestrator interface {
	Process(ctx context.Context, utterance string) (string, error)
}

// ChatMessage is one turn sent to a chat-completion model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatModel drives the tool-selecting agents inside domain handlers.
type ChatModel interface {
	ChatCompletion(ctx context.Context, messages []ChatMessage) (string, error)
}

type Embedder interface {
	GetEmbeddings(ctx context.Context, text string) ([]float64, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, clip domain.AudioClip) (string, error)
}

type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// EmailService sends outbound mail for the email handler.
type EmailService interface {
	// Send sends a plain text email
	Send(ctx context.Context, to, subject, body string) error

	// SendHTML sends an HTML email
	SendHTML(ctx context.Context, to, subject, htmlBody string) error

	// SendTemplate sends an email using a named template
	SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (string, string, error) // token, refresh, err
	RefreshToken(ctx context.Context, token string) (string, error)
	ValidateToken(ctx context.Context, token string) (*domain.User, error)
	Logout(ctx context.Context, token string) error
}

// MemoryService keeps free-form notes per session.
type MemoryService interface {
	Add(ctx context.Context, sessionID, text string) error
	List(ctx context.Context, sessionID string) ([]string, error)
	Clear(ctx context.Context, sessionID string) error
}

// EventPublisher receives orchestration events for the live feed.
type EventPublisher interface {
	Publish(evt domain.Event)
}

// Messenger is an outbound chat transport such as the Telegram Bot API.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendVoice(ctx context.Context, chatID int64, audio []byte) error
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}
