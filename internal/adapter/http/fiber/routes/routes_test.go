package routes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/seu-repo/jarvis/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/jarvis/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/mocks"
	"github.com/seu-repo/jarvis/internal/service/auth"
	"github.com/seu-repo/jarvis/internal/service/channel"
)

const webhookSecret = "tg-secret"

type testEnv struct {
	app       *fiber.App
	orch      *mocks.MockOrchestrator
	memory    *mocks.MockMemoryService
	messenger *mocks.MockMessenger
	tokens    *auth.JWTService
	users     map[string]*domain.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()

	hashed, err := bcrypt.GenerateFromPassword([]byte("jarvis123"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	users := map[string]*domain.User{
		"owner": {ID: "owner", Email: "tony@stark.com", Password: string(hashed), Role: domain.UserRoleOwner, Status: "Active"},
		"guest": {ID: "guest", Email: "happy@stark.com", Password: string(hashed), Role: domain.UserRoleGuest, Status: "Active"},
	}
	repo := &mocks.MockUserRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.User, error) {
			if u, ok := users[id]; ok {
				return u, nil
			}
			return nil, domain.ErrNotFound
		},
		FindByEmailFunc: func(ctx context.Context, email string) (*domain.User, error) {
			for _, u := range users {
				if u.Email == email {
					return u, nil
				}
			}
			return nil, domain.ErrNotFound
		},
	}

	cache := mocks.NewMockCache()
	tokens := auth.NewJWTService("test-secret", 15*time.Minute, time.Hour, cache, log)
	authService := auth.NewService(repo, tokens, log)

	orch := &mocks.MockOrchestrator{}
	memory := mocks.NewMockMemoryService()
	messenger := &mocks.MockMessenger{}
	transcriber := &mocks.MockTranscriber{
		TranscribeFunc: func(ctx context.Context, clip domain.AudioClip) (string, error) {
			return "What's on my calendar?", nil
		},
	}
	ch := channel.NewService(orch, transcriber, &mocks.MockSynthesizer{}, memory, log)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(log)})
	Register(app, Deps{
		AuthService: authService,
		RBAC:        auth.NewRBACService(log),
		Auth:        handlers.NewAuthHandler(authService, log),
		Assistant:   handlers.NewAssistantHandler(ch, log),
		Memory:      handlers.NewMemoryHandler(memory, log),
		Telegram:    handlers.NewTelegramHandler(ch, messenger, cache, webhookSecret, log),
	})

	return &testEnv{app: app, orch: orch, memory: memory, messenger: messenger, tokens: tokens, users: users}
}

func (e *testEnv) token(t *testing.T, userID string) string {
	t.Helper()
	token, err := e.tokens.GenerateAccessToken(e.users[userID])
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}, headers ...string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	var out map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp, out
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{"valid", map[string]string{"email": "Tony@Stark.com", "password": "jarvis123"}, fiber.StatusOK},
		{"wrong password", map[string]string{"email": "tony@stark.com", "password": "nope"}, fiber.StatusUnauthorized},
		{"missing fields", map[string]string{"email": "tony@stark.com"}, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(t, http.MethodPost, "/api/v1/auth/login", "", tt.body)

			if resp.StatusCode != tt.wantCode {
				t.Fatalf("expected %d, got %d (%v)", tt.wantCode, resp.StatusCode, body)
			}
			if tt.wantCode == fiber.StatusOK {
				tokens, _ := body["tokens"].(map[string]interface{})
				if tokens["accessToken"] == "" || tokens["refreshToken"] == "" {
					t.Errorf("expected both tokens, got %v", body)
				}
			}
		})
	}
}

func TestLogout_RevokesAccessToken(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	token := env.token(t, "owner")

	// Act
	resp, _ := env.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	after, _ := env.do(t, http.MethodGet, "/api/v1/auth/me", token, nil)

	// Assert
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	if after.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("revoked token should be rejected, got %d", after.StatusCode)
	}
}

func TestAssistantMessage(t *testing.T) {
	// Arrange
	env := newTestEnv(t)
	token := env.token(t, "guest")

	// Act
	resp, body := env.do(t, http.MethodPost, "/api/v1/assistant/message", token,
		map[string]interface{}{"text": "What's on my calendar?", "session_id": "s1", "speak": true})

	// Assert
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if body["response"] != "Certainly, sir." {
		t.Errorf("unexpected response %v", body)
	}
	if body["audio"] != base64.StdEncoding.EncodeToString([]byte("audio")) {
		t.Errorf("expected base64 audio, got %v", body["audio"])
	}
}

func TestAssistantMessage_Unauthenticated(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/assistant/message", "", map[string]string{"text": "hi"})

	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
	if env.orch.Calls() != 0 {
		t.Error("orchestrator must not run for unauthenticated requests")
	}
}

func TestAssistantMessage_FailureIsGeneric(t *testing.T) {
	env := newTestEnv(t)
	env.orch.ProcessFunc = func(ctx context.Context, utterance string) (string, error) {
		return "", &domain.OrchestrationError{Stage: domain.StageRouting, Err: &domain.RoutingError{Err: errors.New("down")}}
	}

	resp, body := env.do(t, http.MethodPost, "/api/v1/assistant/message", env.token(t, "owner"), map[string]string{"text": "hi"})

	if resp.StatusCode != fiber.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
	if body["response"] != channel.GenericFailure {
		t.Errorf("unexpected body %v", body)
	}
}

func TestAssistantVoice(t *testing.T) {
	env := newTestEnv(t)
	audio := base64.StdEncoding.EncodeToString([]byte("ogg-bytes"))

	resp, body := env.do(t, http.MethodPost, "/api/v1/assistant/voice", env.token(t, "owner"),
		map[string]string{"audio": audio, "mime_type": "audio/ogg"})

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", resp.StatusCode, body)
	}
	if env.orch.Calls() != 1 {
		t.Errorf("expected one orchestrator call, got %d", env.orch.Calls())
	}

	bad, _ := env.do(t, http.MethodPost, "/api/v1/assistant/voice", env.token(t, "owner"),
		map[string]string{"audio": "%%%"})
	if bad.StatusCode != fiber.StatusBadRequest {
		t.Errorf("expected 400 for invalid audio, got %d", bad.StatusCode)
	}
}

func TestMemoryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	owner := env.token(t, "owner")

	add, _ := env.do(t, http.MethodPost, "/api/v1/memory/add", owner, map[string]string{"session_id": "s1", "text": "likes tea"})
	_, list := env.do(t, http.MethodPost, "/api/v1/memory/list", owner, map[string]string{"session_id": "s1"})
	clear, _ := env.do(t, http.MethodPost, "/api/v1/memory/clear", owner, map[string]string{"session_id": "s1"})
	_, empty := env.do(t, http.MethodPost, "/api/v1/memory/list", owner, map[string]string{"session_id": "s1"})

	if add.StatusCode != fiber.StatusOK || clear.StatusCode != fiber.StatusOK {
		t.Fatalf("unexpected status add=%d clear=%d", add.StatusCode, clear.StatusCode)
	}
	if entries, _ := list["memory"].([]interface{}); len(entries) != 1 || entries[0] != "likes tea" {
		t.Errorf("unexpected memory %v", list)
	}
	if entries, _ := empty["memory"].([]interface{}); len(entries) != 0 {
		t.Errorf("memory should be empty after clear, got %v", empty)
	}
}

func TestMemoryEndpoints_GuestForbidden(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/memory/add", env.token(t, "guest"), map[string]string{"text": "x"})

	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403, got %d", resp.StatusCode)
	}
}

func TestTelegramWebhook(t *testing.T) {
	update := map[string]interface{}{
		"update_id": 42,
		"message": map[string]interface{}{
			"message_id": 1,
			"chat":       map[string]interface{}{"id": 1001, "type": "private"},
			"text":       "Email John about the meeting",
		},
	}

	t.Run("rejects bad secret", func(t *testing.T) {
		env := newTestEnv(t)
		resp, _ := env.do(t, http.MethodPost, "/webhooks/telegram", "", update, "X-Telegram-Bot-Api-Secret-Token", "wrong")
		if resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("delivers text then voice once", func(t *testing.T) {
		// Arrange
		env := newTestEnv(t)

		// Act
		first, _ := env.do(t, http.MethodPost, "/webhooks/telegram", "", update, "X-Telegram-Bot-Api-Secret-Token", webhookSecret)
		second, _ := env.do(t, http.MethodPost, "/webhooks/telegram", "", update, "X-Telegram-Bot-Api-Secret-Token", webhookSecret)

		// Assert
		if first.StatusCode != fiber.StatusOK || second.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200s, got %d and %d", first.StatusCode, second.StatusCode)
		}
		if env.orch.Calls() != 1 {
			t.Errorf("duplicate update must be dropped, got %d calls", env.orch.Calls())
		}
		if len(env.messenger.Order) != 2 || env.messenger.Order[0] != "text" || env.messenger.Order[1] != "voice" {
			t.Errorf("expected text then voice, got %v", env.messenger.Order)
		}
	})

	t.Run("ignores commands", func(t *testing.T) {
		env := newTestEnv(t)
		cmd := map[string]interface{}{
			"update_id": 7,
			"message":   map[string]interface{}{"message_id": 2, "chat": map[string]interface{}{"id": 1}, "text": "/start"},
		}

		resp, _ := env.do(t, http.MethodPost, "/webhooks/telegram", "", cmd, "X-Telegram-Bot-Api-Secret-Token", webhookSecret)

		if resp.StatusCode != fiber.StatusOK || env.orch.Calls() != 0 {
			t.Errorf("commands should be acknowledged and ignored (status %d, calls %d)", resp.StatusCode, env.orch.Calls())
		}
	})
}
