package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/jarvis/internal/observability/telemetry"
	"github.com/seu-repo/jarvis/internal/ports"
)

const (
	DefaultBaseURL            = "https://api.openai.com/v1"
	DefaultChatModel          = "gpt-4o-mini"
	DefaultEmbeddingModel     = "text-embedding-3-small"
	DefaultTranscriptionModel = "whisper-1"
)

// Client provides access to OpenAI chat, embeddings and transcription.
// It implements ports.ChatModel, ports.Embedder and ports.Transcriber.
type Client struct {
	apiKey             string
	baseURL            string
	chatModel          string
	embeddingModel     string
	transcriptionModel string
	httpClient         circuitbreaker.Doer
	log                *zap.Logger
}

type Config struct {
	APIKey             string
	BaseURL            string
	ChatModel          string
	EmbeddingModel     string
	TranscriptionModel string
}

func NewClient(cfg Config, httpClient circuitbreaker.Doer, log *zap.Logger) *Client {
	c := &Client{
		apiKey:             cfg.APIKey,
		baseURL:            firstNonEmpty(cfg.BaseURL, DefaultBaseURL),
		chatModel:          firstNonEmpty(cfg.ChatModel, DefaultChatModel),
		embeddingModel:     firstNonEmpty(cfg.EmbeddingModel, DefaultEmbeddingModel),
		transcriptionModel: firstNonEmpty(cfg.TranscriptionModel, DefaultTranscriptionModel),
		httpClient:         httpClient,
		log:                log,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return c
}

func firstNonEmpty(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// --- Chat Completion ---

type chatRequest struct {
	Model       string              `json:"model"`
	Messages    []ports.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message ports.ChatMessage `json:"message"`
	} `json:"choices"`
}

func (c *Client) ChatCompletion(ctx context.Context, messages []ports.ChatMessage) (string, error) {
	var result chatResponse
	if err := c.postJSON(ctx, "/chat/completions", chatRequest{
		Model:       c.chatModel,
		Messages:    messages,
		Temperature: 0,
	}, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices returned")
	}
	return result.Choices[0].Message.Content, nil
}

// --- Embeddings ---

type embeddingsRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingsResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// EmbedBatch generates one embedding per text, in input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	var result embeddingsResponse
	if err := c.postJSON(ctx, "/embeddings", embeddingsRequest{Input: texts, Model: c.embeddingModel}, &result); err != nil {
		return nil, err
	}

	embeddings := make([][]float64, len(texts))
	for _, d := range result.Data {
		if d.Index < 0 || d.Index >= len(embeddings) {
			return nil, fmt.Errorf("openai: embedding index %d out of range", d.Index)
		}
		embeddings[d.Index] = d.Embedding
	}

	c.log.Debug("Generated embeddings",
		zap.Int("count", len(texts)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)
	return embeddings, nil
}

func (c *Client) GetEmbeddings(ctx context.Context, text string) ([]float64, error) {
	out, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 || len(out[0]) == 0 {
		return nil, fmt.Errorf("openai: no embedding returned")
	}
	return out[0], nil
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("openai: API key not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	telemetry.ExternalCallLatency.WithLabelValues("openai").Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("openai: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("openai: API error status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("openai: decode response: %w", err)
	}
	return nil
}
