package queue

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/ports"
)

// New connects to the configured broker: "nats" or "rabbitmq".
func New(driver, url, group string, log *zap.Logger) (ports.MessageQueue, error) {
	switch driver {
	case "nats", "":
		return NewNATSQueue(url, group, log)
	case "rabbitmq":
		return NewRabbitMQQueue(url, group, log)
	default:
		return nil, fmt.Errorf("unknown queue driver: %s", driver)
	}
}
