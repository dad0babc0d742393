package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/jarvis/internal/observability/telemetry"
)

const DefaultBaseURL = "https://api.telegram.org"

// Client implements ports.Messenger over the Telegram Bot API.
type Client struct {
	token      string
	baseURL    string
	httpClient circuitbreaker.Doer
	log        *zap.Logger
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

type fileResult struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileSize int    `json:"file_size"`
}

// NewClient creates a Bot API client. baseURL may be empty.
func NewClient(token, baseURL string, httpClient circuitbreaker.Doer, log *zap.Logger) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: bot token is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{token: token, baseURL: baseURL, httpClient: httpClient, log: log}, nil
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

// SendMessage sends a plain text message to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	_, err = c.call(req)
	return err
}

// SendVoice uploads MPEG audio as a voice message.
func (c *Client) SendVoice(ctx context.Context, chatID int64, audio []byte) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return fmt.Errorf("telegram: write chat_id: %w", err)
	}
	part, err := w.CreateFormFile("voice", "reply.mp3")
	if err != nil {
		return fmt.Errorf("telegram: create voice part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return fmt.Errorf("telegram: write voice: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("telegram: close multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendVoice"), &body)
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	_, err = c.call(req)
	return err
}

// DownloadFile resolves a file_id with getFile and fetches its bytes.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	reqURL := c.methodURL("getFile") + "?file_id=" + url.QueryEscape(fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: create request: %w", err)
	}

	raw, err := c.call(req)
	if err != nil {
		return nil, err
	}

	var file fileResult
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("telegram: decode file: %w", err)
	}
	if file.FilePath == "" {
		return nil, fmt.Errorf("telegram: file %s has no path", fileID)
	}

	dlURL := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, file.FilePath)
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, dlURL, nil)
	if err != nil {
		return nil, fmt.Errorf("telegram: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram: download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// SetWebhook registers the public webhook URL together with the secret token
// Telegram echoes in X-Telegram-Bot-Api-Secret-Token.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	payload, err := json.Marshal(map[string]interface{}{
		"url":             webhookURL,
		"secret_token":    secret,
		"allowed_updates": []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("telegram: marshal webhook: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("setWebhook"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("telegram: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.call(req); err != nil {
		return err
	}
	c.log.Info("Telegram webhook registered", zap.String("url", webhookURL))
	return nil
}

func (c *Client) call(req *http.Request) (json.RawMessage, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	telemetry.ExternalCallLatency.WithLabelValues("telegram").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("telegram: send request: %w", err)
	}
	defer resp.Body.Close()

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("telegram: decode response: %w", err)
	}

	if !result.OK {
		return nil, fmt.Errorf("telegram error: %s (code: %d)", result.Description, result.ErrorCode)
	}
	return result.Result, nil
}
