package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/adapter/telegram"
	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
	"github.com/seu-repo/jarvis/internal/service/channel"
)

// SecretTokenHeader carries the secret registered with setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const updateTTL = 24 * time.Hour

// TelegramHandler receives Bot API webhook updates.
type TelegramHandler struct {
	channel   *channel.Service
	messenger ports.Messenger
	cache     ports.Cache
	secret    string
	log       *zap.Logger
}

// NewTelegramHandler creates the webhook handler. cache may be nil, which
// disables duplicate detection.
func NewTelegramHandler(ch *channel.Service, messenger ports.Messenger, cache ports.Cache, secret string, log *zap.Logger) *TelegramHandler {
	return &TelegramHandler{channel: ch, messenger: messenger, cache: cache, secret: secret, log: log}
}

// Webhook always answers 200 once the update is accepted so Telegram does
// not redeliver it; processing errors are logged.
func (h *TelegramHandler) Webhook(c *fiber.Ctx) error {
	if h.secret != "" && c.Get(SecretTokenHeader) != h.secret {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	var update telegram.Update
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid update"})
	}

	ctx := c.UserContext()
	if h.duplicate(ctx, update.UpdateID) {
		h.log.Debug("Duplicate Telegram update dropped", zap.Int64("update_id", update.UpdateID))
		return c.SendStatus(fiber.StatusOK)
	}

	if err := h.handle(ctx, update); err != nil {
		h.log.Error("Failed to handle Telegram update",
			zap.Int64("update_id", update.UpdateID),
			zap.Error(err),
		)
	}
	return c.SendStatus(fiber.StatusOK)
}

func (h *TelegramHandler) handle(ctx context.Context, update telegram.Update) error {
	msg := update.Message
	if msg == nil {
		return nil
	}
	session := "telegram:" + strconv.FormatInt(msg.Chat.ID, 10)

	switch {
	case msg.Voice != nil:
		return h.channel.DeliverVoice(ctx, h.messenger, msg.Chat.ID, session, "telegram", msg.Voice.FileID, msg.Voice.MimeType)
	case msg.Text != "" && !msg.IsCommand():
		return h.channel.DeliverText(ctx, h.messenger, msg.Chat.ID, domain.Utterance{
			ID:        fmt.Sprintf("tg-%d", update.UpdateID),
			SessionID: session,
			Text:      msg.Text,
			Source:    "telegram",
		})
	default:
		return nil
	}
}

// duplicate claims the update id. Cache failures let the update through.
func (h *TelegramHandler) duplicate(ctx context.Context, updateID int64) bool {
	if h.cache == nil {
		return false
	}
	fresh, err := h.cache.SetNX(ctx, fmt.Sprintf("telegram:update:%d", updateID), "1", updateTTL)
	if err != nil {
		h.log.Warn("Update dedup unavailable", zap.Error(err))
		return false
	}
	return !fresh
}
