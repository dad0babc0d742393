package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
)

// ErrorHandler renders errors as {"error": ..., "request_id": ...}. Only
// fiber errors keep their message on 5xx responses.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, public := classify(err)

		message := err.Error()
		if code >= fiber.StatusInternalServerError && !public {
			log.Error("Request failed",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.Int("status", code),
			)
			message = utils.StatusMessage(code)
		}

		body := fiber.Map{"error": message}
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			body["request_id"] = id
		}
		return c.Status(code).JSON(body)
	}
}

// classify maps err to a status and reports whether its message may be shown.
func classify(err error) (int, bool) {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code, true
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, true
	case errors.Is(err, domain.ErrRouting), errors.Is(err, domain.ErrPersona):
		return fiber.StatusBadGateway, false
	case errors.Is(err, domain.ErrTranscription):
		return fiber.StatusUnprocessableEntity, true
	default:
		return fiber.StatusInternalServerError, false
	}
}
