package domain

import "strings"

// RoutingDecision selects which domain handler (if any) serves a request.
type RoutingDecision string

const (
	DecisionCalendar RoutingDecision = "calendar"
	DecisionEmail    RoutingDecision = "email"
	DecisionContact  RoutingDecision = "contact"
	DecisionExpense  RoutingDecision = "expense"
	DecisionEnd      RoutingDecision = "end"
)

// HandlerName identifies a domain handler. Handler names match the
// non-terminal routing tags.
type HandlerName string

const (
	HandlerCalendar HandlerName = "calendar"
	HandlerEmail    HandlerName = "email"
	HandlerContact  HandlerName = "contact"
	HandlerExpense  HandlerName = "expense"
)

// AllHandlers lists the closed set of domain handlers.
var AllHandlers = []HandlerName{HandlerCalendar, HandlerEmail, HandlerContact, HandlerExpense}

// ParseRoutingDecision normalises a raw classifier token. Unknown tokens map
// to DecisionEnd so that no arbitrary handler is ever invoked.
func ParseRoutingDecision(raw string) RoutingDecision {
	switch d := RoutingDecision(strings.ToLower(strings.TrimSpace(raw))); d {
	case DecisionCalendar, DecisionEmail, DecisionContact, DecisionExpense, DecisionEnd:
		return d
	default:
		return DecisionEnd
	}
}

// Handler returns the handler a decision dispatches to. ok is false for end.
func (d RoutingDecision) Handler() (HandlerName, bool) {
	if d == DecisionEnd || d == "" {
		return "", false
	}
	return HandlerName(d), true
}

func (d RoutingDecision) String() string {
	return string(d)
}

// Stage is a step of the per-request state machine.
type Stage string

const (
	StageRouting           Stage = "ROUTING"
	StageDirect            Stage = "DIRECT"
	StageLookupThenHandler Stage = "LOOKUP_THEN_HANDLER"
	StageHandler           Stage = "HANDLER"
	StageCompose           Stage = "COMPOSE"
	StagePersona           Stage = "PERSONA"
	StageDone              Stage = "DONE"
	StageFailed            Stage = "FAILED"
)
