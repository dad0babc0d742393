package mocks

import (
	"context"
	"sync"
)

// MockMessageQueue delivers published messages synchronously to subscribers.
type MockMessageQueue struct {
	mu          sync.Mutex
	published   map[string][][]byte
	subscribers map[string][]func(ctx context.Context, data []byte) error

	PublishFunc  func(ctx context.Context, subject string, data []byte) error
	Disconnected bool
}

func NewMockMessageQueue() *MockMessageQueue {
	return &MockMessageQueue{
		published:   make(map[string][][]byte),
		subscribers: make(map[string][]func(ctx context.Context, data []byte) error),
	}
}

func (m *MockMessageQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, subject, data)
	}
	m.mu.Lock()
	m.published[subject] = append(m.published[subject], data)
	handlers := append([]func(context.Context, []byte) error(nil), m.subscribers[subject]...)
	m.mu.Unlock()

	for _, h := range handlers {
		_ = h(ctx, data)
	}
	return nil
}

func (m *MockMessageQueue) Subscribe(subject string, handler func(ctx context.Context, data []byte) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers[subject] = append(m.subscribers[subject], handler)
	return nil
}

func (m *MockMessageQueue) IsConnected() bool {
	return !m.Disconnected
}

func (m *MockMessageQueue) Close() error {
	return nil
}

// Published returns every payload published on subject.
func (m *MockMessageQueue) Published(subject string) [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.published[subject]
}
