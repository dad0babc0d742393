package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/seu-repo/jarvis/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/jarvis/internal/adapter/http/fiber/middleware"
	ws "github.com/seu-repo/jarvis/internal/adapter/websocket"
	"github.com/seu-repo/jarvis/internal/ports"
	"github.com/seu-repo/jarvis/internal/service/auth"
	"github.com/seu-repo/jarvis/internal/service/health"
)

// Deps are the handlers mounted by Register. Telegram, Health, Hub and
// Socket may be nil.
type Deps struct {
	AuthService ports.AuthService
	RBAC        middleware.PermissionChecker

	Auth      *handlers.AuthHandler
	Assistant *handlers.AssistantHandler
	Memory    *handlers.MemoryHandler
	Telegram  *handlers.TelegramHandler
	Health    *health.FiberHandler
	Hub       *ws.Hub
	Socket    *ws.AssistantHandler
}

func Register(app *fiber.App, d Deps) {
	if d.Health != nil {
		d.Health.RegisterRoutes(app)
	}

	// Telegram authenticates with its own secret header.
	if d.Telegram != nil {
		app.Post("/webhooks/telegram", d.Telegram.Webhook)
	}

	authRequired := middleware.AuthRequired(d.AuthService)
	can := func(resource, action string) fiber.Handler {
		return middleware.RequirePermission(d.RBAC, resource, action)
	}

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", d.Auth.Login)
	authGroup.Post("/refresh", d.Auth.RefreshToken)
	authGroup.Post("/logout", d.Auth.Logout)
	authGroup.Get("/me", authRequired, d.Auth.Me)

	assistant := api.Group("/assistant", authRequired, can(auth.ResourceAssistant, auth.ActionUse))
	assistant.Post("/message", d.Assistant.Message)
	assistant.Post("/voice", d.Assistant.Voice)

	memory := api.Group("/memory", authRequired)
	memory.Post("/add", can(auth.ResourceMemory, auth.ActionWrite), d.Memory.Add)
	memory.Post("/list", can(auth.ResourceMemory, auth.ActionRead), d.Memory.List)
	memory.Post("/clear", can(auth.ResourceMemory, auth.ActionWrite), d.Memory.Clear)

	if d.Hub != nil && d.Socket != nil {
		app.Use("/ws", ws.Upgrade, authRequired)
		app.Use("/ws/events", can(auth.ResourceEvents, auth.ActionRead))
		app.Use("/ws/assistant", can(auth.ResourceAssistant, auth.ActionUse))
		ws.SetupRoutes(app, d.Hub, d.Socket)
	}
}
