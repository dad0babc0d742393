package openai

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/seu-repo/jarvis/internal/domain"
)

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe converts speech to text with the Whisper endpoint. An empty
// transcript is a *domain.TranscriptionError.
func (c *Client) Transcribe(ctx context.Context, clip domain.AudioClip) (string, error) {
	if c.apiKey == "" {
		return "", &domain.TranscriptionError{Err: fmt.Errorf("openai: API key not configured")}
	}
	if len(clip.Data) == 0 {
		return "", &domain.TranscriptionError{Err: fmt.Errorf("empty audio")}
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("model", c.transcriptionModel); err != nil {
		return "", &domain.TranscriptionError{Err: err}
	}
	part, err := w.CreateFormFile("file", filenameFor(clip))
	if err != nil {
		return "", &domain.TranscriptionError{Err: err}
	}
	if _, err := part.Write(clip.Data); err != nil {
		return "", &domain.TranscriptionError{Err: err}
	}
	if err := w.Close(); err != nil {
		return "", &domain.TranscriptionError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", &domain.TranscriptionError{Err: fmt.Errorf("openai: create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	var result transcriptionResponse
	if err := c.do(req, &result); err != nil {
		return "", &domain.TranscriptionError{Err: err}
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		return "", &domain.TranscriptionError{Err: fmt.Errorf("no speech recognised")}
	}
	return text, nil
}

func filenameFor(clip domain.AudioClip) string {
	if clip.Filename != "" {
		return clip.Filename
	}
	switch {
	case strings.Contains(clip.MimeType, "ogg"):
		return "audio.ogg"
	case strings.Contains(clip.MimeType, "mpeg"), strings.Contains(clip.MimeType, "mp3"):
		return "audio.mp3"
	case strings.Contains(clip.MimeType, "wav"):
		return "audio.wav"
	case strings.Contains(clip.MimeType, "webm"):
		return "audio.webm"
	case strings.Contains(clip.MimeType, "mp4"), strings.Contains(clip.MimeType, "m4a"):
		return "audio.m4a"
	default:
		return "audio.ogg"
	}
}
