package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seu-repo/jarvis/internal/infrastructure/circuitbreaker"
	"github.com/seu-repo/jarvis/internal/ports"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

const checkTimeout = 5 * time.Second

// Checker defines a health check function
type Checker func(ctx context.Context) CheckResult

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service runs liveness and readiness checks.
type Service struct {
	startTime time.Time
	version   string
	checkers  map[string]Checker
	log       *zap.Logger
	mu        sync.RWMutex
}

// Config holds the dependencies to probe. Nil fields are skipped.
type Config struct {
	Version  string
	DB       Pinger
	Cache    ports.Cache
	Queue    ports.MessageQueue
	Breakers *circuitbreaker.Manager
}

func NewService(config *Config, log *zap.Logger) *Service {
	s := &Service{
		startTime: time.Now(),
		version:   config.Version,
		checkers:  make(map[string]Checker),
		log:       log,
	}

	if config.DB != nil {
		s.RegisterChecker("database", pingCheck("database", config.DB.PingContext, log))
	}
	if config.Cache != nil {
		s.RegisterChecker("redis", pingCheck("redis", func(context.Context) error { return config.Cache.Ping() }, log))
	}
	if config.Queue != nil {
		s.RegisterChecker("queue", queueCheck(config.Queue))
	}
	if config.Breakers != nil {
		s.RegisterChecker("providers", breakerCheck(config.Breakers))
	}

	return s
}

// RegisterChecker registers a custom health checker
func (s *Service) RegisterChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
	s.log.Info("Registered health checker", zap.String("name", name))
}

// Health performs a basic liveness check
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now(),
	}
}

// Ready runs every checker concurrently, each under its own timeout.
// Degraded checks keep the service ready; a single unhealthy check does not.
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	s.mu.RLock()
	names := make([]string, 0, len(s.checkers))
	checkers := make([]Checker, 0, len(s.checkers))
	for name, checker := range s.checkers {
		names = append(names, name)
		checkers = append(checkers, checker)
	}
	s.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	for i, checker := range checkers {
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
			defer cancel()
			results[i] = checker(checkCtx)
			return nil
		})
	}
	_ = g.Wait()

	resp := &ReadyResponse{
		Ready:     true,
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]CheckResult, len(results)),
	}
	for i, result := range results {
		resp.Checks[names[i]] = result
		switch result.Status {
		case StatusUnhealthy:
			resp.Ready = false
			resp.Status = StatusUnhealthy
		case StatusDegraded:
			if resp.Status == StatusHealthy {
				resp.Status = StatusDegraded
			}
		}
	}
	return resp
}

func pingCheck(name string, ping func(ctx context.Context) error, log *zap.Logger) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		err := ping(ctx)
		result := CheckResult{
			Name:      name,
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}

		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = fmt.Sprintf("ping failed: %v", err)
			log.Warn("Health check failed", zap.String("check", name), zap.Error(err))
		} else {
			result.Status = StatusHealthy
			result.Message = "connection ok"
		}
		return result
	}
}

func queueCheck(q ports.MessageQueue) Checker {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Name: "queue", Timestamp: time.Now()}
		if q.IsConnected() {
			result.Status = StatusHealthy
			result.Message = "connected"
		} else {
			result.Status = StatusUnhealthy
			result.Message = "not connected"
		}
		return result
	}
}

// breakerCheck reports degraded while any provider breaker is open. The
// assistant still answers then, just without that provider.
func breakerCheck(m *circuitbreaker.Manager) Checker {
	return func(ctx context.Context) CheckResult {
		result := CheckResult{Name: "providers", Status: StatusHealthy, Timestamp: time.Now()}

		var open []string
		for name, state := range m.States() {
			if state == gobreaker.StateOpen.String() {
				open = append(open, name)
			}
		}
		if len(open) > 0 {
			sort.Strings(open)
			result.Status = StatusDegraded
			result.Message = fmt.Sprintf("circuit open: %v", open)
		}
		return result
	}
}
