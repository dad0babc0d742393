package mocks

import (
	"context"
	"sync"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
)

// MockHandler is a DomainHandler that records every instruction it receives.
type MockHandler struct {
	HandlerName domain.HandlerName
	RunFunc     func(ctx context.Context, instruction string) string

	mu    sync.Mutex
	Calls []string
}

func NewMockHandler(name domain.HandlerName, output string) *MockHandler {
	return &MockHandler{
		HandlerName: name,
		RunFunc: func(ctx context.Context, instruction string) string {
			return output
		},
	}
}

func (m *MockHandler) Name() domain.HandlerName {
	return m.HandlerName
}

func (m *MockHandler) Run(ctx context.Context, instruction string) string {
	m.mu.Lock()
	m.Calls = append(m.Calls, instruction)
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, instruction)
	}
	return ""
}

// MockClassifier is a mock implementation of ports.Classifier
type MockClassifier struct {
	ClassifyFunc func(ctx context.Context, systemInstructions, utterance string) (string, error)
	CallCount    int
}

func (m *MockClassifier) Classify(ctx context.Context, systemInstructions, utterance string) (string, error) {
	m.CallCount++
	if m.ClassifyFunc != nil {
		return m.ClassifyFunc(ctx, systemInstructions, utterance)
	}
	return "end", nil
}

// MockGenerator is a mock implementation of ports.Generator
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, systemInstructions, userText string) (string, error)
	LastSystem   string
	LastUser     string
}

func (m *MockGenerator) Generate(ctx context.Context, systemInstructions, userText string) (string, error) {
	m.LastSystem = systemInstructions
	m.LastUser = userText
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, systemInstructions, userText)
	}
	return userText, nil
}

// MockRouter is a mock implementation of ports.Router
type MockRouter struct {
	DecideFunc func(ctx context.Context, utterance string) (domain.RoutingDecision, error)
}

func (m *MockRouter) Decide(ctx context.Context, utterance string) (domain.RoutingDecision, error) {
	if m.DecideFunc != nil {
		return m.DecideFunc(ctx, utterance)
	}
	return domain.DecisionEnd, nil
}

// MockPersona is a mock implementation of ports.PersonaRewriter
type MockPersona struct {
	RewriteFunc func(ctx context.Context, draft string) (string, error)
	Drafts      []string
}

func (m *MockPersona) Rewrite(ctx context.Context, draft string) (string, error) {
	m.Drafts = append(m.Drafts, draft)
	if m.RewriteFunc != nil {
		return m.RewriteFunc(ctx, draft)
	}
	return draft, nil
}

// MockOrchestrator is a mock implementation of ports.Orchestrator
type MockOrchestrator struct {
	ProcessFunc func(ctx context.Context, utterance string) (string, error)

	mu         sync.Mutex
	Utterances []string
}

func (m *MockOrchestrator) Process(ctx context.Context, utterance string) (string, error) {
	m.mu.Lock()
	m.Utterances = append(m.Utterances, utterance)
	m.mu.Unlock()
	if m.ProcessFunc != nil {
		return m.ProcessFunc(ctx, utterance)
	}
	return "Certainly, sir.", nil
}

// Calls returns how many utterances were processed.
func (m *MockOrchestrator) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Utterances)
}

// MockChatModel replays scripted completions in order.
type MockChatModel struct {
	ChatCompletionFunc func(ctx context.Context, messages []ports.ChatMessage) (string, error)
	Responses          []string
	Requests           [][]ports.ChatMessage
}

func (m *MockChatModel) ChatCompletion(ctx context.Context, messages []ports.ChatMessage) (string, error) {
	m.Requests = append(m.Requests, messages)
	if m.ChatCompletionFunc != nil {
		return m.ChatCompletionFunc(ctx, messages)
	}
	if len(m.Responses) == 0 {
		return "", nil
	}
	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	return resp, nil
}

// MockEmbedder is a mock implementation of ports.Embedder
type MockEmbedder struct {
	GetEmbeddingsFunc func(ctx context.Context, text string) ([]float64, error)
}

func (m *MockEmbedder) GetEmbeddings(ctx context.Context, text string) ([]float64, error) {
	if m.GetEmbeddingsFunc != nil {
		return m.GetEmbeddingsFunc(ctx, text)
	}
	return []float64{1, 0, 0}, nil
}

// MockTranscriber is a mock implementation of ports.Transcriber
type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, clip domain.AudioClip) (string, error)
}

func (m *MockTranscriber) Transcribe(ctx context.Context, clip domain.AudioClip) (string, error) {
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, clip)
	}
	return "", nil
}

// MockSynthesizer is a mock implementation of ports.Synthesizer
type MockSynthesizer struct {
	SynthesizeFunc func(ctx context.Context, text string) ([]byte, error)
	Texts          []string
}

func (m *MockSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	m.Texts = append(m.Texts, text)
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text)
	}
	return []byte("audio"), nil
}

// SentEmail is one message captured by MockEmailService.
type SentEmail struct {
	To      string
	Subject string
	Body    string
	HTML    bool
}

// MockEmailService is a mock implementation of ports.EmailService
type MockEmailService struct {
	SendFunc         func(ctx context.Context, to, subject, body string) error
	SendHTMLFunc     func(ctx context.Context, to, subject, htmlBody string) error
	SendTemplateFunc func(ctx context.Context, to, templateName string, data map[string]interface{}) error
	Sent             []SentEmail
}

func (m *MockEmailService) Send(ctx context.Context, to, subject, body string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, body)
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *MockEmailService) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if m.SendHTMLFunc != nil {
		return m.SendHTMLFunc(ctx, to, subject, htmlBody)
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: subject, Body: htmlBody, HTML: true})
	return nil
}

func (m *MockEmailService) SendTemplate(ctx context.Context, to, templateName string, data map[string]interface{}) error {
	if m.SendTemplateFunc != nil {
		return m.SendTemplateFunc(ctx, to, templateName, data)
	}
	m.Sent = append(m.Sent, SentEmail{To: to, Subject: templateName, HTML: true})
	return nil
}

// MockMemoryService is a mock implementation of ports.MemoryService
type MockMemoryService struct {
	AddFunc func(ctx context.Context, sessionID, text string) error

	mu      sync.Mutex
	entries map[string][]string
}

func NewMockMemoryService() *MockMemoryService {
	return &MockMemoryService{entries: make(map[string][]string)}
}

func (m *MockMemoryService) Add(ctx context.Context, sessionID, text string) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, sessionID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[sessionID] = append(m.entries[sessionID], text)
	return nil
}

func (m *MockMemoryService) List(ctx context.Context, sessionID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.entries[sessionID]...), nil
}

func (m *MockMemoryService) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// MockEventPublisher collects published events.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []domain.Event
}

func (m *MockEventPublisher) Publish(evt domain.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, evt)
}

// Types returns the event types in publish order.
func (m *MockEventPublisher) Types() []domain.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.EventType, 0, len(m.Events))
	for _, e := range m.Events {
		out = append(out, e.Type)
	}
	return out
}

// MockMessenger is a mock implementation of ports.Messenger
type MockMessenger struct {
	SendMessageFunc  func(ctx context.Context, chatID int64, text string) error
	SendVoiceFunc    func(ctx context.Context, chatID int64, audio []byte) error
	DownloadFileFunc func(ctx context.Context, fileID string) ([]byte, error)

	mu       sync.Mutex
	Messages []string
	Voices   int
	Order    []string
}

func (m *MockMessenger) SendMessage(ctx context.Context, chatID int64, text string) error {
	m.mu.Lock()
	m.Order = append(m.Order, "text")
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, chatID, text)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, text)
	return nil
}

func (m *MockMessenger) SendVoice(ctx context.Context, chatID int64, audio []byte) error {
	m.mu.Lock()
	m.Order = append(m.Order, "voice")
	m.mu.Unlock()
	if m.SendVoiceFunc != nil {
		return m.SendVoiceFunc(ctx, chatID, audio)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Voices++
	return nil
}

func (m *MockMessenger) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	if m.DownloadFileFunc != nil {
		return m.DownloadFileFunc(ctx, fileID)
	}
	return []byte("ogg"), nil
}
