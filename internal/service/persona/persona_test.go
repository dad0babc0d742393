package persona

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/mocks"
)

func TestRewrite_ReturnsModelOutputVerbatim(t *testing.T) {
	// Arrange
	gen := &mocks.MockGenerator{
		GenerateFunc: func(ctx context.Context, system, user string) (string, error) {
			return "  Certainly, sir. Sent to a@b.com.\n", nil
		},
	}
	r := NewRewriter(gen, zap.NewNop())

	// Act
	got, err := r.Rewrite(context.Background(), "Email sent successfully to a@b.com")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "  Certainly, sir. Sent to a@b.com.\n" {
		t.Errorf("output was altered: %q", got)
	}
	if gen.LastUser != "Email sent successfully to a@b.com" {
		t.Errorf("draft not forwarded: %q", gen.LastUser)
	}
	if gen.LastSystem != SystemInstructions {
		t.Error("persona instructions not used")
	}
}

func TestRewrite_FailureIsPersonaError(t *testing.T) {
	gen := &mocks.MockGenerator{
		GenerateFunc: func(ctx context.Context, system, user string) (string, error) {
			return "", errors.New("timeout")
		},
	}
	r := NewRewriter(gen, zap.NewNop())

	got, err := r.Rewrite(context.Background(), "draft")

	if !errors.Is(err, domain.ErrPersona) {
		t.Fatalf("expected persona error, got %v", err)
	}
	if got != "" {
		t.Errorf("expected no fallback text, got %q", got)
	}
}
