package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/mocks"
)

func TestRouter_Decide_NormalisesToken(t *testing.T) {
	cases := map[string]domain.RoutingDecision{
		"calendar":     domain.DecisionCalendar,
		"  Calendar\n": domain.DecisionCalendar,
		"EMAIL":        domain.DecisionEmail,
		"contact ":     domain.DecisionContact,
		"Expense":      domain.DecisionExpense,
		"end":          domain.DecisionEnd,
	}

	for raw, want := range cases {
		backend := &mocks.MockClassifier{
			ClassifyFunc: func(ctx context.Context, system, utterance string) (string, error) {
				return raw, nil
			},
		}
		r := NewRouter(backend, zap.NewNop())

		got, err := r.Decide(context.Background(), "anything")
		if err != nil {
			t.Fatalf("Decide(%q) unexpected error: %v", raw, err)
		}
		if got != want {
			t.Errorf("Decide(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestRouter_Decide_UnknownTokenFailsOpen(t *testing.T) {
	// Arrange
	backend := &mocks.MockClassifier{
		ClassifyFunc: func(ctx context.Context, system, utterance string) (string, error) {
			return "weather", nil
		},
	}
	r := NewRouter(backend, zap.NewNop())

	// Act
	got, err := r.Decide(context.Background(), "What's the weather?")

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != domain.DecisionEnd {
		t.Errorf("expected end, got %q", got)
	}
}

func TestRouter_Decide_BackendFailure(t *testing.T) {
	// Arrange
	backend := &mocks.MockClassifier{
		ClassifyFunc: func(ctx context.Context, system, utterance string) (string, error) {
			return "", errors.New("503 from model")
		},
	}
	r := NewRouter(backend, zap.NewNop())

	// Act
	_, err := r.Decide(context.Background(), "Hello")

	// Assert
	if !errors.Is(err, domain.ErrRouting) {
		t.Fatalf("expected routing error, got %v", err)
	}
	var rerr *domain.RoutingError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *domain.RoutingError, got %T", err)
	}
}

func TestRouter_Decide_SendsFixedInstructionsAndUtterance(t *testing.T) {
	var gotSystem, gotUser string
	backend := &mocks.MockClassifier{
		ClassifyFunc: func(ctx context.Context, system, utterance string) (string, error) {
			gotSystem, gotUser = system, utterance
			return "end", nil
		},
	}
	r := NewRouter(backend, zap.NewNop())

	if _, err := r.Decide(context.Background(), "Hi Jarvis"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUser != "Hi Jarvis" {
		t.Errorf("utterance not forwarded verbatim: %q", gotUser)
	}
	for _, tag := range []string{"calendar", "email", "contact", "expense", "end"} {
		if !strings.Contains(gotSystem, "- "+tag+":") {
			t.Errorf("instructions missing tag %q", tag)
		}
	}
	if backend.CallCount != 1 {
		t.Errorf("expected exactly one classification call, got %d", backend.CallCount)
	}
}
