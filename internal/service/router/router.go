package router

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/observability/telemetry"
	"github.com/seu-repo/jarvis/internal/ports"
)

// SystemInstructions is the fixed classification prompt.
const SystemInstructions = `Analyze the user query and determine which agent should handle it.

Available agents:
- calendar: for calendar, meetings, events, schedules
- email: for sending emails, composing messages
- contact: for contact information, phone numbers, email addresses
- expense: for financial queries, spending, expenses
- end: if the query is a simple greeting or doesn't need an agent

Respond with ONLY the agent name, nothing else.`

// Router classifies an utterance into exactly one routing decision.
type Router struct {
	backend ports.Classifier
	log     *zap.Logger
}

func NewRouter(backend ports.Classifier, log *zap.Logger) *Router {
	return &Router{backend: backend, log: log}
}

// Decide makes one classification call. Unknown tokens become end; backend
// failures are returned as *domain.RoutingError.
func (r *Router) Decide(ctx context.Context, utterance string) (domain.RoutingDecision, error) {
	start := time.Now()
	raw, err := r.backend.Classify(ctx, SystemInstructions, utterance)
	telemetry.StageLatency.WithLabelValues(string(domain.StageRouting)).Observe(time.Since(start).Seconds())
	if err != nil {
		var rerr *domain.RoutingError
		if errors.As(err, &rerr) {
			return "", rerr
		}
		return "", &domain.RoutingError{Err: err}
	}

	decision := domain.ParseRoutingDecision(raw)
	if decision == domain.DecisionEnd && strings.ToLower(strings.TrimSpace(raw)) != string(domain.DecisionEnd) {
		r.log.Warn("Unrecognised routing token, treating as end", zap.String("token", raw))
	}

	r.log.Debug("Routing decision",
		zap.String("decision", decision.String()),
		zap.Duration("latency", time.Since(start)),
	)
	return decision, nil
}
