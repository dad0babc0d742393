package domain

import "time"

type EventType string

const (
	EventStageEntered  EventType = "stage_entered"
	EventHandlerCalled EventType = "handler_called"
	EventCompleted     EventType = "completed"
	EventFailed        EventType = "failed"
)

// Event is one entry of the live orchestration feed.
type Event struct {
	Type      EventType       `json:"type"`
	RequestID string          `json:"request_id"`
	Stage     Stage           `json:"stage,omitempty"`
	Decision  RoutingDecision `json:"decision,omitempty"`
	Handler   HandlerName     `json:"handler,omitempty"`
	Detail    string          `json:"detail,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
