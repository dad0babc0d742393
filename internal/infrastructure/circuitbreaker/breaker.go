package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Settings configures a breaker. A breaker never retries; it only fails
// fast while open.
type Settings struct {
	Name string

	// MaxRequests allowed through while half-open
	MaxRequests uint32

	// Interval after which closed-state counts are cleared
	Interval time.Duration

	// Timeout of the open state before probing again
	Timeout time.Duration

	// ConsecutiveFailures that trip the breaker
	ConsecutiveFailures uint32
}

func DefaultSettings(name string) Settings {
	return Settings{
		Name:                name,
		MaxRequests:         3,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// Breaker wraps gobreaker with context-aware execution.
type Breaker struct {
	cb  *gobreaker.CircuitBreaker
	log *zap.Logger
}

func New(settings Settings, log *zap.Logger) *Breaker {
	threshold := settings.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        settings.Name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// the caller giving up is not the dependency failing
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Breaker{cb: cb, log: log}
}

func (b *Breaker) Name() string {
	return b.cb.Name()
}

func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

// Execute runs fn unless the breaker is open or ctx is already done.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
}

// IsOpen reports whether err was produced by an open or saturated breaker.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Manager hands out one breaker per dependency name.
type Manager struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	defaults Settings
	log      *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return NewManagerWithDefaults(DefaultSettings(""), log)
}

// NewManagerWithDefaults uses defaults for every breaker it creates; only the
// name differs.
func NewManagerWithDefaults(defaults Settings, log *zap.Logger) *Manager {
	return &Manager{breakers: make(map[string]*Breaker), defaults: defaults, log: log}
}

func (m *Manager) Get(name string) *Breaker {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.breakers[name]; ok {
		return b
	}
	settings := m.defaults
	settings.Name = name
	b := New(settings, m.log)
	m.breakers[name] = b
	return b
}

// States reports the state of every breaker, for health checks.
func (m *Manager) States() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.breakers))
	for name, b := range m.breakers {
		out[name] = b.State().String()
	}
	return out
}
