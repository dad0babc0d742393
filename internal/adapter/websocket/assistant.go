package websocket

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/service/channel"
)

// DefaultAudioMIME is assumed for binary frames when the client does not
// pass ?mime=.
const DefaultAudioMIME = "audio/webm"

type inbound struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	Speak     bool   `json:"speak"`
}

type outbound struct {
	RequestID string `json:"request_id,omitempty"`
	Response  string `json:"response"`
	Audio     string `json:"audio,omitempty"`
	AudioMIME string `json:"audio_mime,omitempty"`
}

// AssistantHandler serves the chat socket: a text frame (plain or JSON) or a
// binary audio frame in, one reply frame out.
type AssistantHandler struct {
	channel *channel.Service
	log     *zap.Logger
}

func NewAssistantHandler(ch *channel.Service, log *zap.Logger) *AssistantHandler {
	return &AssistantHandler{channel: ch, log: log}
}

func (h *AssistantHandler) Handle(c *websocket.Conn) {
	session, _ := c.Locals("session_id").(string)
	mime, _ := c.Locals("audio_mime").(string)
	ctx := context.Background()

	for {
		messageType, data, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("Assistant socket closed", zap.Error(err))
			}
			return
		}

		var reply domain.Reply
		switch messageType {
		case websocket.TextMessage:
			msg := parseInbound(data)
			if msg.SessionID == "" {
				msg.SessionID = session
			}
			if strings.TrimSpace(msg.Text) == "" {
				continue
			}
			reply = h.channel.Reply(ctx, domain.Utterance{
				SessionID: msg.SessionID,
				Text:      msg.Text,
				Source:    "websocket",
			}, msg.Speak)
		case websocket.BinaryMessage:
			reply = h.channel.ReplyVoice(ctx, session, "websocket", domain.AudioClip{Data: data, MimeType: mime}, true)
		default:
			continue
		}

		out := outbound{RequestID: reply.RequestID, Response: reply.Text}
		if len(reply.Audio) > 0 {
			out.Audio = base64.StdEncoding.EncodeToString(reply.Audio)
			out.AudioMIME = reply.AudioMIME
		}
		if err := c.WriteJSON(out); err != nil {
			h.log.Warn("Failed to write assistant reply", zap.Error(err))
			return
		}
	}
}

// parseInbound accepts {"text": ...} or a bare utterance.
func parseInbound(data []byte) inbound {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err == nil && msg.Text != "" {
		return msg
	}
	return inbound{Text: string(data)}
}

// Upgrade rejects plain HTTP requests and stashes query parameters for the
// socket handlers.
func Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals("session_id", c.Query("session_id"))
	c.Locals("audio_mime", c.Query("mime", DefaultAudioMIME))
	return c.Next()
}

// SetupRoutes mounts /ws/assistant and /ws/events under r. Authentication
// middleware belongs on r.
func SetupRoutes(r fiber.Router, hub *Hub, assistant *AssistantHandler) {
	r.Use("/ws", Upgrade)
	r.Get("/ws/assistant", websocket.New(assistant.Handle))
	r.Get("/ws/events", websocket.New(func(c *websocket.Conn) {
		userID, _ := c.Locals("user_id").(string)
		hub.Serve(c, userID)
	}))
}
