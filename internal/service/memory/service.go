package memory

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/ports"
)

// DefaultSession is used when a caller does not name a session.
const DefaultSession = "default_session"

const keyPrefix = "jarvis:memory:"

// Service keeps an append-only list of notes per session in the cache.
type Service struct {
	cache ports.Cache
	log   *zap.Logger
}

func NewService(cache ports.Cache, log *zap.Logger) *Service {
	return &Service{cache: cache, log: log}
}

func Key(sessionID string) string {
	if strings.TrimSpace(sessionID) == "" {
		sessionID = DefaultSession
	}
	return keyPrefix + sessionID
}

func (s *Service) Add(ctx context.Context, sessionID, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("memory: text is required")
	}
	if err := s.cache.Append(ctx, Key(sessionID), text); err != nil {
		return fmt.Errorf("memory: add: %w", err)
	}
	s.log.Debug("Added memory", zap.String("session_id", sessionID))
	return nil
}

func (s *Service) List(ctx context.Context, sessionID string) ([]string, error) {
	entries, err := s.cache.Range(ctx, Key(sessionID))
	if err != nil {
		return nil, fmt.Errorf("memory: list: %w", err)
	}
	return entries, nil
}

// Clear drops every note of the session. Clearing an unknown session is not
// an error.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.cache.Delete(ctx, Key(sessionID)); err != nil {
		return fmt.Errorf("memory: clear: %w", err)
	}
	s.log.Info("Cleared memories", zap.String("session_id", sessionID))
	return nil
}
