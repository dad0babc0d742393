package handlers

import (
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/service/channel"
)

// AssistantHandler exposes the orchestrator over JSON.
type AssistantHandler struct {
	channel *channel.Service
	log     *zap.Logger
}

func NewAssistantHandler(ch *channel.Service, log *zap.Logger) *AssistantHandler {
	return &AssistantHandler{channel: ch, log: log}
}

type MessageRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	Speak     bool   `json:"speak"`
}

type AssistantResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Response  string `json:"response"`
	Audio     string `json:"audio,omitempty"` // Base64
	AudioMIME string `json:"audio_mime,omitempty"`
}

func toResponse(reply domain.Reply) AssistantResponse {
	resp := AssistantResponse{RequestID: reply.RequestID, Response: reply.Text}
	if len(reply.Audio) > 0 {
		resp.Audio = base64.StdEncoding.EncodeToString(reply.Audio)
		resp.AudioMIME = reply.AudioMIME
	}
	return resp
}

// replyStatus maps a failed pass to 502 so clients can tell it from a normal
// answer. The body still carries the user-facing text.
func replyStatus(reply domain.Reply) int {
	if reply.Failed {
		return fiber.StatusBadGateway
	}
	return fiber.StatusOK
}

func (h *AssistantHandler) Message(c *fiber.Ctx) error {
	var req MessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Text is required"})
	}

	reply := h.channel.Reply(c.UserContext(), domain.Utterance{
		SessionID: req.SessionID,
		Text:      req.Text,
		Source:    "http",
	}, req.Speak)

	return c.Status(replyStatus(reply)).JSON(toResponse(reply))
}

func (h *AssistantHandler) Voice(c *fiber.Ctx) error {
	var req domain.VoiceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	audio, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil || len(audio) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid base64 audio"})
	}

	reply := h.channel.ReplyVoice(c.UserContext(), req.SessionID, "http", domain.AudioClip{
		Data:     audio,
		MimeType: req.MimeType,
	}, req.Speak)

	return c.Status(replyStatus(reply)).JSON(toResponse(reply))
}
