package middleware

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/infrastructure/circuitbreaker"
)

var errServerFailure = errors.New("server error response")

// CircuitBreaker fails fast with 503 while the breaker is open. Handler
// errors and 5xx responses count as failures.
func CircuitBreaker(breaker *circuitbreaker.Breaker, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var handlerErr error
		_, err := breaker.Execute(c.UserContext(), func(_ context.Context) (interface{}, error) {
			handlerErr = c.Next()
			if handlerErr != nil {
				return nil, handlerErr
			}
			if c.Response().StatusCode() >= fiber.StatusInternalServerError {
				return nil, errServerFailure
			}
			return nil, nil
		})

		if circuitbreaker.IsOpen(err) {
			log.Warn("API circuit breaker open, request rejected", zap.String("path", c.Path()))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Service temporarily unavailable",
			})
		}

		if handlerErr == nil && err != nil && !errors.Is(err, errServerFailure) {
			return err
		}
		return handlerErr
	}
}
