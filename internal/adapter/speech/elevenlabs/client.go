package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/jarvis/internal/observability/telemetry"
)

const (
	DefaultBaseURL = "https://api.elevenlabs.io/v1"
	DefaultModel   = "eleven_monolingual_v1"
)

// Client synthesizes speech with the ElevenLabs text-to-speech API.
// It implements ports.Synthesizer.
type Client struct {
	apiKey     string
	voiceID    string
	model      string
	baseURL    string
	httpClient circuitbreaker.Doer
	log        *zap.Logger
}

type Config struct {
	APIKey  string
	VoiceID string
	Model   string
	BaseURL string
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type ttsRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

func NewClient(cfg Config, httpClient circuitbreaker.Doer, log *zap.Logger) *Client {
	c := &Client{
		apiKey:     cfg.APIKey,
		voiceID:    cfg.VoiceID,
		model:      cfg.Model,
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		log:        log,
	}
	if c.model == "" {
		c.model = DefaultModel
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return c
}

// Synthesize returns MPEG audio for text. Every failure is a
// *domain.SynthesisError.
func (c *Client) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" || c.voiceID == "" {
		return nil, &domain.SynthesisError{Err: fmt.Errorf("elevenlabs: API key or voice ID not configured")}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return nil, &domain.SynthesisError{Err: fmt.Errorf("elevenlabs: nothing to synthesize")}
	}

	payload, err := json.Marshal(ttsRequest{
		Text:          cleaned,
		ModelID:       c.model,
		VoiceSettings: voiceSettings{Stability: 0.5, SimilarityBoost: 0.5},
	})
	if err != nil {
		return nil, &domain.SynthesisError{Err: fmt.Errorf("elevenlabs: marshal request: %w", err)}
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.SynthesisError{Err: fmt.Errorf("elevenlabs: create request: %w", err)}
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	telemetry.ExternalCallLatency.WithLabelValues("elevenlabs").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, &domain.SynthesisError{Err: fmt.Errorf("elevenlabs: send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &domain.SynthesisError{Err: fmt.Errorf("elevenlabs: TTS API error: %d - %s", resp.StatusCode, string(body))}
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.SynthesisError{Err: fmt.Errorf("elevenlabs: read audio: %w", err)}
	}

	c.log.Debug("Speech synthesized", zap.Int("chars", len(cleaned)), zap.Int("bytes", len(audio)))
	return audio, nil
}

// CleanText flattens text to a single line without markdown emphasis.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.ReplaceAll(text, "\t", " ")
	text = strings.ReplaceAll(text, "*", "")
	return strings.Join(strings.Fields(text), " ")
}
