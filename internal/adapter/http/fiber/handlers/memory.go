package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/ports"
	"github.com/seu-repo/jarvis/internal/service/memory"
)

type MemoryHandler struct {
	service ports.MemoryService
	log     *zap.Logger
}

func NewMemoryHandler(service ports.MemoryService, log *zap.Logger) *MemoryHandler {
	return &MemoryHandler{service: service, log: log}
}

type MemoryRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

func (r MemoryRequest) session() string {
	if r.SessionID == "" {
		return memory.DefaultSession
	}
	return r.SessionID
}

func (h *MemoryHandler) Add(c *fiber.Ctx) error {
	var req MemoryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Text is required"})
	}

	if err := h.service.Add(c.UserContext(), req.session(), req.Text); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "Memory added", "session_id": req.session()})
}

func (h *MemoryHandler) List(c *fiber.Ctx) error {
	var req MemoryRequest
	_ = c.BodyParser(&req)

	entries, err := h.service.List(c.UserContext(), req.session())
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []string{}
	}
	return c.JSON(fiber.Map{"session_id": req.session(), "memory": entries})
}

func (h *MemoryHandler) Clear(c *fiber.Ctx) error {
	var req MemoryRequest
	_ = c.BodyParser(&req)

	if err := h.service.Clear(c.UserContext(), req.session()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "Memory cleared", "session_id": req.session()})
}
