package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil, zap.NewNop())
}

func TestChatCompletion(t *testing.T) {
	// Arrange
	var req chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" || r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"tool\":\"respond\"}"}}]}`))
	})

	// Act
	out, err := c.ChatCompletion(context.Background(), []ports.ChatMessage{{Role: "user", Content: "hi"}})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"tool":"respond"}` {
		t.Errorf("got %q", out)
	}
	if req.Model != DefaultChatModel || len(req.Messages) != 1 {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestChatCompletion_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	if _, err := c.ChatCompletion(context.Background(), nil); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestGetEmbeddings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2],"index":0}],"usage":{"total_tokens":3}}`))
	})

	vec, err := c.GetEmbeddings(context.Background(), "pizza")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || vec[1] != 0.2 {
		t.Errorf("got %v", vec)
	}
}

func TestTranscribe(t *testing.T) {
	// Arrange
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart body: %v", err)
		}
		if r.FormValue("model") != DefaultTranscriptionModel {
			t.Errorf("unexpected model %q", r.FormValue("model"))
		}
		_, hdr, err := r.FormFile("file")
		if err != nil || hdr.Filename != "audio.ogg" {
			t.Errorf("unexpected file part %v %v", hdr, err)
		}
		_, _ = w.Write([]byte(`{"text":"  What's on my calendar?  "}`))
	})

	// Act
	text, err := c.Transcribe(context.Background(), domain.AudioClip{Data: []byte("OggS"), MimeType: "audio/ogg"})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "What's on my calendar?" {
		t.Errorf("got %q", text)
	}
}

func TestTranscribe_EmptyResultIsTranscriptionError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":"   "}`))
	})

	_, err := c.Transcribe(context.Background(), domain.AudioClip{Data: []byte("x")})

	if !errors.Is(err, domain.ErrTranscription) {
		t.Errorf("expected transcription error, got %v", err)
	}
}

func TestTranscribe_APIErrorIsTranscriptionError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad audio", http.StatusBadRequest)
	})

	_, err := c.Transcribe(context.Background(), domain.AudioClip{Data: []byte("x")})

	if !errors.Is(err, domain.ErrTranscription) {
		t.Errorf("expected transcription error, got %v", err)
	}
}
