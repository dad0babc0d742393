package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/jarvis/internal/mocks"
)

type fakeDB struct{ err error }

func (f fakeDB) PingContext(ctx context.Context) error { return f.err }

func TestReady_AllHealthy(t *testing.T) {
	// Arrange
	svc := NewService(&Config{
		Version: "1.0.0",
		DB:      fakeDB{},
		Cache:   mocks.NewMockCache(),
		Queue:   mocks.NewMockMessageQueue(),
	}, zap.NewNop())

	// Act
	resp := svc.Ready(context.Background())

	// Assert
	if !resp.Ready || resp.Status != StatusHealthy {
		t.Errorf("expected ready, got %+v", resp)
	}
	for _, name := range []string{"database", "redis", "queue"} {
		if resp.Checks[name].Status != StatusHealthy {
			t.Errorf("check %s: %+v", name, resp.Checks[name])
		}
	}
}

func TestReady_UnhealthyDependency(t *testing.T) {
	cache := mocks.NewMockCache()
	cache.PingFunc = func() error { return errors.New("connection refused") }
	queue := mocks.NewMockMessageQueue()
	queue.Disconnected = true

	svc := NewService(&Config{DB: fakeDB{}, Cache: cache, Queue: queue}, zap.NewNop())

	resp := svc.Ready(context.Background())

	if resp.Ready || resp.Status != StatusUnhealthy {
		t.Errorf("expected not ready, got %+v", resp)
	}
	if resp.Checks["redis"].Status != StatusUnhealthy || resp.Checks["queue"].Status != StatusUnhealthy {
		t.Errorf("unexpected checks %+v", resp.Checks)
	}
}

func TestReady_OpenBreakerIsDegraded(t *testing.T) {
	// Arrange
	manager := circuitbreaker.NewManager(zap.NewNop())
	b := manager.Get("elevenlabs")
	for i := 0; i < 10; i++ {
		_, _ = b.Execute(context.Background(), func(ctx context.Context) (interface{}, error) { return nil, errors.New("boom") })
	}
	svc := NewService(&Config{Breakers: manager}, zap.NewNop())

	// Act
	resp := svc.Ready(context.Background())

	// Assert
	if !resp.Ready || resp.Status != StatusDegraded {
		t.Errorf("expected ready but degraded, got %+v", resp)
	}
}

func TestFiberHandler(t *testing.T) {
	// Arrange
	queue := mocks.NewMockMessageQueue()
	queue.Disconnected = true
	app := fiber.New()
	NewFiberHandler(NewService(&Config{Version: "1.0.0", Queue: queue}, zap.NewNop())).RegisterRoutes(app)

	// Act
	live, err := app.Test(httptest.NewRequest("GET", "/health", nil), int(time.Second.Milliseconds()))
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	ready, err := app.Test(httptest.NewRequest("GET", "/ready", nil), int(time.Second.Milliseconds()))
	if err != nil {
		t.Fatalf("ready request failed: %v", err)
	}

	// Assert
	if live.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 from /health, got %d", live.StatusCode)
	}
	var body HealthResponse
	_ = json.NewDecoder(live.Body).Decode(&body)
	if body.Version != "1.0.0" {
		t.Errorf("unexpected body %+v", body)
	}
	if ready.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("expected 503 from /ready, got %d", ready.StatusCode)
	}
}
