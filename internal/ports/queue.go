package ports

import "context"

// MessageQueue is the asynchronous bus used by the assistant worker.
// Subscribers sharing a group compete for messages; an empty group means
// every subscriber receives every message.
type MessageQueue interface {
	Publish(ctx context.Context, subject string, data []byte) error
	Subscribe(subject string, handler func(ctx context.Context, data []byte) error) error
	IsConnected() bool
	Close() error
}
