package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/ports"
)

const (
	reconnectDelay = 5 * time.Second
	// one pass holds several model calls; do not let a replica hoard requests
	prefetchCount = 1
)

type subscription struct {
	subject string
	handler func(ctx context.Context, data []byte) error
}

// RabbitMQQueue implements ports.MessageQueue with one fanout exchange per
// subject. Subscriptions survive reconnects.
type RabbitMQQueue struct {
	url   string
	group string
	log   *zap.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	subs    []subscription
	done    chan struct{}
	closed  bool
}

// NewRabbitMQQueue connects to RabbitMQ. With a group, each subject is
// consumed from a durable queue named "<group>.<subject>" shared by all
// replicas; without one, every subscriber gets an exclusive queue.
func NewRabbitMQQueue(url, group string, log *zap.Logger) (ports.MessageQueue, error) {
	conn, ch, err := dialRabbitMQ(url)
	if err != nil {
		return nil, err
	}

	q := &RabbitMQQueue{
		url:     url,
		group:   group,
		log:     log,
		conn:    conn,
		channel: ch,
		done:    make(chan struct{}),
	}
	go q.monitorConnection(conn)

	log.Info("Connected to RabbitMQ", zap.String("group", group))
	return q, nil
}

func dialRabbitMQ(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("rabbitmq: set qos: %w", err)
	}
	return conn, ch, nil
}

func (q *RabbitMQQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.channel == nil || q.channel.IsClosed() {
		return errors.New("rabbitmq: channel not available")
	}
	if err := declareExchange(q.channel, subject); err != nil {
		return err
	}

	err := q.channel.PublishWithContext(ctx, subject, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         data,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", subject, err)
	}
	return nil
}

func (q *RabbitMQQueue) Subscribe(subject string, handler func(ctx context.Context, data []byte) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.channel == nil || q.channel.IsClosed() {
		return errors.New("rabbitmq: channel not available")
	}

	sub := subscription{subject: subject, handler: handler}
	if err := q.consume(q.channel, sub); err != nil {
		return err
	}
	q.subs = append(q.subs, sub)
	return nil
}

// consume declares the topology for sub on ch and starts its delivery loop.
func (q *RabbitMQQueue) consume(ch *amqp.Channel, sub subscription) error {
	if err := declareExchange(ch, sub.subject); err != nil {
		return err
	}

	name, durable := "", false
	if q.group != "" {
		name, durable = q.group+"."+sub.subject, true
	}
	queue, err := ch.QueueDeclare(name, durable, !durable, !durable, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: declare queue: %w", err)
	}
	if err := ch.QueueBind(queue.Name, "", sub.subject, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: bind queue: %w", err)
	}

	deliveries, err := ch.Consume(queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("rabbitmq: consume: %w", err)
	}

	go q.deliver(sub, deliveries)

	q.log.Info("Subscribed to RabbitMQ exchange",
		zap.String("exchange", sub.subject),
		zap.String("queue", queue.Name),
	)
	return nil
}

// deliver runs until the channel closes. Failed messages are dropped, not
// requeued: a request that failed once will fail the same way again.
func (q *RabbitMQQueue) deliver(sub subscription, deliveries <-chan amqp.Delivery) {
	for msg := range deliveries {
		if err := sub.handler(context.Background(), msg.Body); err != nil {
			q.log.Error("Error processing RabbitMQ message",
				zap.String("exchange", sub.subject),
				zap.Error(err),
			)
			_ = msg.Nack(false, false)
			continue
		}
		_ = msg.Ack(false)
	}
}

func declareExchange(ch *amqp.Channel, subject string) error {
	if err := ch.ExchangeDeclare(subject, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare exchange %s: %w", subject, err)
	}
	return nil
}

func (q *RabbitMQQueue) IsConnected() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.conn != nil && !q.conn.IsClosed()
}

func (q *RabbitMQQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	close(q.done)

	if q.channel != nil {
		_ = q.channel.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}

func (q *RabbitMQQueue) monitorConnection(conn *amqp.Connection) {
	for {
		notify := conn.NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-q.done:
			return
		case reason, ok := <-notify:
			if !ok || reason == nil {
				// graceful close
				return
			}
			q.log.Warn("RabbitMQ connection lost, reconnecting", zap.String("reason", reason.Reason))
		}

		next, ok := q.reconnect()
		if !ok {
			return
		}
		conn = next
	}
}

// reconnect dials until it succeeds or the queue is closed, then restores
// every subscription on the new channel.
func (q *RabbitMQQueue) reconnect() (*amqp.Connection, bool) {
	for {
		select {
		case <-q.done:
			return nil, false
		case <-time.After(reconnectDelay):
		}

		conn, ch, err := dialRabbitMQ(q.url)
		if err != nil {
			q.log.Error("Failed to reconnect to RabbitMQ", zap.Error(err))
			continue
		}

		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			conn.Close()
			return nil, false
		}
		q.conn, q.channel = conn, ch
		for _, sub := range q.subs {
			if err := q.consume(ch, sub); err != nil {
				q.log.Error("Failed to restore subscription", zap.String("exchange", sub.subject), zap.Error(err))
			}
		}
		q.mu.Unlock()

		q.log.Info("Reconnected to RabbitMQ", zap.Int("subscriptions", len(q.subs)))
		return conn, true
	}
}
