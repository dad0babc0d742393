package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/seu-repo/jarvis/internal/observability/telemetry"
)

const DefaultModel = "gemini-2.5-flash"

// Client wraps the Gemini API. It implements ports.Classifier and
// ports.Generator.
type Client struct {
	client *genai.Client
	model  string
	log    *zap.Logger
}

type Config struct {
	APIKey  string
	Model   string
	BaseURL string // override for tests and proxies
	Timeout time.Duration
}

func NewClient(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	log.Info("Gemini client initialized", zap.String("model", cfg.Model))
	return &Client{client: client, model: cfg.Model, log: log}, nil
}

// Classify returns the model's raw answer. Temperature is zero so the same
// utterance routes the same way. Thinking is disabled: on 2.5 models thought
// tokens count against MaxOutputTokens and would leave no room for the answer.
func (c *Client) Classify(ctx context.Context, systemInstructions, utterance string) (string, error) {
	return c.generate(ctx, systemInstructions, utterance, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0),
		MaxOutputTokens: 16,
		ThinkingConfig:  &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
}

func (c *Client) Generate(ctx context.Context, systemInstructions, userText string) (string, error) {
	return c.generate(ctx, systemInstructions, userText, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.7),
	})
}

func (c *Client) generate(ctx context.Context, system, user string, cfg *genai.GenerateContentConfig) (string, error) {
	cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(user), cfg)
	telemetry.ExternalCallLatency.WithLabelValues("gemini").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}
