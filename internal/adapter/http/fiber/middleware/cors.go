package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fibercors "github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/seu-repo/jarvis/pkg/config"
)

const (
	defaultCORSMethods = "GET,POST,OPTIONS"
	defaultCORSHeaders = "Origin,Content-Type,Accept,Authorization,X-Request-ID"
	defaultCORSExpose  = "X-Request-ID"
	defaultCORSMaxAge  = 600
)

// NewCORS builds the CORS middleware from config. Empty lists keep the
// defaults the assistant API and the websocket upgrade need.
func NewCORS(cfg config.CORSConfig) fiber.Handler {
	origins := joinOr(cfg.AllowedOrigins, "*")

	maxAge := cfg.MaxAge
	if maxAge <= 0 {
		maxAge = defaultCORSMaxAge
	}

	return fibercors.New(fibercors.Config{
		AllowOrigins:  origins,
		AllowMethods:  joinOr(cfg.AllowedMethods, defaultCORSMethods),
		AllowHeaders:  joinOr(cfg.AllowedHeaders, defaultCORSHeaders),
		ExposeHeaders: joinOr(cfg.ExposeHeaders, defaultCORSExpose),
		// fiber refuses credentials together with a wildcard origin
		AllowCredentials: cfg.Credentials && origins != "*",
		MaxAge:           maxAge,
	})
}

func joinOr(values []string, def string) string {
	if len(values) == 0 {
		return def
	}
	return strings.Join(values, ",")
}
