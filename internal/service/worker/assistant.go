package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
)

// Subjects used on the bus.
const (
	SubjectRequests = "assistant.requests"
	SubjectReplies  = "assistant.replies"
)

// Request is one utterance submitted over the bus.
type Request struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

// Response is published on SubjectReplies for every well-formed request.
type Response struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Failed    bool   `json:"failed,omitempty"`
}

// Replier produces the reply for one utterance. channel.Service satisfies it.
type Replier interface {
	Reply(ctx context.Context, utt domain.Utterance, speak bool) domain.Reply
}

// Assistant consumes requests from the bus and publishes replies.
type Assistant struct {
	queue   ports.MessageQueue
	replier Replier
	log     *zap.Logger
}

func NewAssistant(queue ports.MessageQueue, replier Replier, log *zap.Logger) *Assistant {
	return &Assistant{queue: queue, replier: replier, log: log}
}

// Start subscribes to SubjectRequests.
func (a *Assistant) Start() error {
	if err := a.queue.Subscribe(SubjectRequests, a.Handle); err != nil {
		return fmt.Errorf("worker: subscribe: %w", err)
	}
	a.log.Info("Assistant worker started", zap.String("subject", SubjectRequests))
	return nil
}

// Handle processes one raw request. Malformed payloads are rejected without
// a reply.
func (a *Assistant) Handle(ctx context.Context, data []byte) error {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("worker: decode request: %w", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("worker: request %s has no text", req.ID)
	}

	reply := a.replier.Reply(ctx, domain.Utterance{
		ID:        req.ID,
		SessionID: req.SessionID,
		Text:      req.Text,
		Source:    "queue",
	}, false)

	payload, err := json.Marshal(Response{
		ID:        reply.RequestID,
		SessionID: req.SessionID,
		Response:  reply.Text,
		Failed:    reply.Failed,
	})
	if err != nil {
		return fmt.Errorf("worker: encode reply: %w", err)
	}

	if err := a.queue.Publish(ctx, SubjectReplies, payload); err != nil {
		return fmt.Errorf("worker: publish reply: %w", err)
	}
	return nil
}
