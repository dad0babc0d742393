package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/observability/telemetry"
	"github.com/seu-repo/jarvis/internal/ports"
	"github.com/seu-repo/jarvis/internal/service/composer"
)

// Orchestrator runs one utterance through routing, the selected domain
// handler, composition and the persona rewrite. Passes share no state.
type Orchestrator struct {
	router   ports.Router
	handlers map[domain.HandlerName]ports.DomainHandler
	persona  ports.PersonaRewriter
	events   ports.EventPublisher
	tracer   trace.Tracer
	log      *zap.Logger
}

// NewOrchestrator requires exactly one handler per domain.
func NewOrchestrator(
	router ports.Router,
	handlers []ports.DomainHandler,
	persona ports.PersonaRewriter,
	events ports.EventPublisher,
	log *zap.Logger,
) (*Orchestrator, error) {
	table := make(map[domain.HandlerName]ports.DomainHandler, len(handlers))
	for _, h := range handlers {
		if _, dup := table[h.Name()]; dup {
			return nil, fmt.Errorf("orchestrator: duplicate handler %q", h.Name())
		}
		table[h.Name()] = h
	}
	for _, name := range domain.AllHandlers {
		if _, ok := table[name]; !ok {
			return nil, fmt.Errorf("orchestrator: missing handler %q", name)
		}
	}
	if len(table) != len(domain.AllHandlers) {
		return nil, fmt.Errorf("orchestrator: unexpected handlers registered")
	}

	return &Orchestrator{
		router:   router,
		handlers: table,
		persona:  persona,
		events:   events,
		tracer:   telemetry.Tracer(),
		log:      log,
	}, nil
}

// Process returns the persona-styled response for utterance, or an
// *domain.OrchestrationError wrapping the routing or persona failure.
func (o *Orchestrator) Process(ctx context.Context, utterance string) (string, error) {
	reqID := RequestID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
		ctx = WithRequestID(ctx, reqID)
	}
	log := o.log.With(zap.String("request_id", reqID))
	start := time.Now()

	ctx, span := o.tracer.Start(ctx, "orchestrator.Process")
	defer span.End()

	state := domain.NewConversationState(utterance)

	// ROUTING
	o.enter(ctx, reqID, domain.StageRouting)
	decision, err := o.router.Decide(ctx, state.LatestUserMessage())
	if err != nil {
		return o.fail(ctx, span, log, reqID, domain.StageRouting, "", err)
	}
	span.SetAttributes(attribute.String("jarvis.decision", decision.String()))
	log.Info("Routed utterance", zap.String("decision", decision.String()))

	// DIRECT | LOOKUP_THEN_HANDLER | HANDLER
	o.dispatch(ctx, reqID, decision, state)

	// COMPOSE
	o.enter(ctx, reqID, domain.StageCompose)
	draft := composer.Compose(state.Messages())

	// PERSONA
	o.enter(ctx, reqID, domain.StagePersona)
	final, err := o.persona.Rewrite(ctx, draft)
	if err != nil {
		return o.fail(ctx, span, log, reqID, domain.StagePersona, decision, err)
	}

	o.publish(domain.Event{Type: domain.EventCompleted, RequestID: reqID, Stage: domain.StageDone, Decision: decision})
	telemetry.RequestsTotal.WithLabelValues(decision.String(), "ok").Inc()
	log.Info("Utterance processed",
		zap.String("decision", decision.String()),
		zap.Int("handler_outputs", state.Len()-1),
		zap.Duration("duration", time.Since(start)),
	)
	return final, nil
}

func (o *Orchestrator) dispatch(ctx context.Context, reqID string, decision domain.RoutingDecision, state *domain.ConversationState) {
	name, ok := decision.Handler()
	if !ok {
		o.enter(ctx, reqID, domain.StageDirect)
		return
	}

	utterance := state.LatestUserMessage()
	if name == domain.HandlerEmail && NeedsContactLookup(utterance) {
		o.enter(ctx, reqID, domain.StageLookupThenHandler)
		if contactName, ok := ContactName(utterance); ok {
			out := o.invoke(ctx, reqID, domain.HandlerContact, LookupInstruction(contactName), "lookup")
			state.AppendHandlerOutput(domain.HandlerContact, out)
		}
	} else {
		o.enter(ctx, reqID, domain.StageHandler)
	}

	out := o.invoke(ctx, reqID, name, utterance, "primary")
	state.AppendHandlerOutput(name, out)
}

func (o *Orchestrator) invoke(ctx context.Context, reqID string, name domain.HandlerName, instruction, reason string) string {
	ctx, span := o.tracer.Start(ctx, "handler."+string(name))
	defer span.End()

	start := time.Now()
	o.publish(domain.Event{Type: domain.EventHandlerCalled, RequestID: reqID, Handler: name, Detail: reason})
	out := o.handlers[name].Run(ctx, instruction)

	telemetry.HandlerInvocations.WithLabelValues(string(name), reason).Inc()
	telemetry.StageLatency.WithLabelValues(string(domain.StageHandler)).Observe(time.Since(start).Seconds())
	return out
}

func (o *Orchestrator) enter(ctx context.Context, reqID string, stage domain.Stage) {
	trace.SpanFromContext(ctx).AddEvent(string(stage))
	o.publish(domain.Event{Type: domain.EventStageEntered, RequestID: reqID, Stage: stage})
}

func (o *Orchestrator) fail(ctx context.Context, span trace.Span, log *zap.Logger, reqID string, stage domain.Stage, decision domain.RoutingDecision, err error) (string, error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	label := decision.String()
	if label == "" {
		label = "none"
	}
	telemetry.RequestsTotal.WithLabelValues(label, "failed").Inc()
	o.publish(domain.Event{
		Type:      domain.EventFailed,
		RequestID: reqID,
		Stage:     domain.StageFailed,
		Decision:  decision,
		Detail:    fmt.Sprintf("%s: %v", stage, err),
	})
	log.Error("Orchestration failed", zap.String("stage", string(stage)), zap.Error(err))

	return "", &domain.OrchestrationError{Stage: stage, Err: err}
}

func (o *Orchestrator) publish(evt domain.Event) {
	if o.events == nil {
		return
	}
	evt.Timestamp = time.Now()
	o.events.Publish(evt)
}
