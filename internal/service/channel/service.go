package channel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/observability/telemetry"
	"github.com/seu-repo/jarvis/internal/ports"
	"github.com/seu-repo/jarvis/internal/service/orchestrator"
)

// User-visible replies for the two recovered failure paths.
const (
	NotUnderstood  = "Sorry, I couldn't understand the audio."
	GenericFailure = "Something went wrong while processing your request. Please try again."
)

// Service sits between a transport and the orchestrator: it turns audio into
// utterances, runs them, and delivers text first and speech second.
type Service struct {
	orch   ports.Orchestrator
	stt    ports.Transcriber
	tts    ports.Synthesizer
	memory ports.MemoryService
	log    *zap.Logger
}

// NewService creates a channel service. stt, tts and memory may be nil.
func NewService(
	orch ports.Orchestrator,
	stt ports.Transcriber,
	tts ports.Synthesizer,
	memory ports.MemoryService,
	log *zap.Logger,
) *Service {
	return &Service{orch: orch, stt: stt, tts: tts, memory: memory, log: log}
}

// Reply processes a text utterance and returns the reply. Audio is attached
// only when speak is set and synthesis succeeded.
func (s *Service) Reply(ctx context.Context, utt domain.Utterance, speak bool) domain.Reply {
	utt = s.stamp(utt)
	telemetry.ChannelMessagesTotal.WithLabelValues(utt.Source, "text").Inc()

	reply := s.respond(ctx, utt)
	if speak && !reply.Failed {
		if audio := s.synthesize(ctx, reply.Text); audio != nil {
			reply.Audio = audio
			reply.AudioMIME = "audio/mpeg"
		}
	}
	return reply
}

// ReplyVoice transcribes clip and then behaves like Reply. An empty or failed
// transcription returns NotUnderstood without reaching the orchestrator.
func (s *Service) ReplyVoice(ctx context.Context, sessionID, source string, clip domain.AudioClip, speak bool) domain.Reply {
	telemetry.ChannelMessagesTotal.WithLabelValues(source, "voice").Inc()

	text, ok := s.transcribe(ctx, clip)
	if !ok {
		return domain.Reply{Text: NotUnderstood}
	}

	utt := s.stamp(domain.Utterance{SessionID: sessionID, Text: text, Source: source})
	reply := s.respond(ctx, utt)
	if speak && !reply.Failed {
		if audio := s.synthesize(ctx, reply.Text); audio != nil {
			reply.Audio = audio
			reply.AudioMIME = "audio/mpeg"
		}
	}
	return reply
}

// DeliverText runs a text utterance and pushes the reply through m: the text
// message first, then a voice note when synthesis is configured and succeeds.
func (s *Service) DeliverText(ctx context.Context, m ports.Messenger, chatID int64, utt domain.Utterance) error {
	utt = s.stamp(utt)
	telemetry.ChannelMessagesTotal.WithLabelValues(utt.Source, "text").Inc()

	return s.deliver(ctx, m, chatID, s.respond(ctx, utt))
}

// DeliverVoice downloads and transcribes a voice message, then delivers the
// reply like DeliverText.
func (s *Service) DeliverVoice(ctx context.Context, m ports.Messenger, chatID int64, sessionID, source, fileID, mimeType string) error {
	telemetry.ChannelMessagesTotal.WithLabelValues(source, "voice").Inc()

	data, err := m.DownloadFile(ctx, fileID)
	if err != nil {
		s.log.Warn("Failed to download voice message", zap.String("file_id", fileID), zap.Error(err))
		telemetry.TranscriptionFailures.Inc()
		return m.SendMessage(ctx, chatID, NotUnderstood)
	}

	text, ok := s.transcribe(ctx, domain.AudioClip{Data: data, MimeType: mimeType})
	if !ok {
		return m.SendMessage(ctx, chatID, NotUnderstood)
	}

	utt := s.stamp(domain.Utterance{SessionID: sessionID, Text: text, Source: source})
	return s.deliver(ctx, m, chatID, s.respond(ctx, utt))
}

func (s *Service) deliver(ctx context.Context, m ports.Messenger, chatID int64, reply domain.Reply) error {
	if err := m.SendMessage(ctx, chatID, reply.Text); err != nil {
		return fmt.Errorf("channel: send text: %w", err)
	}
	if reply.Failed {
		return nil
	}

	audio := s.synthesize(ctx, reply.Text)
	if audio == nil {
		return nil
	}
	if err := m.SendVoice(ctx, chatID, audio); err != nil {
		s.log.Warn("Failed to send voice reply", zap.Int64("chat_id", chatID), zap.Error(err))
	}
	return nil
}

func (s *Service) respond(ctx context.Context, utt domain.Utterance) domain.Reply {
	ctx = orchestrator.WithRequestID(ctx, utt.ID)

	text, err := s.orch.Process(ctx, utt.Text)
	if err != nil {
		s.log.Error("Failed to process utterance",
			zap.String("request_id", utt.ID),
			zap.String("source", utt.Source),
			zap.Error(err),
		)
		return domain.Reply{RequestID: utt.ID, Text: GenericFailure, Failed: true}
	}

	s.remember(ctx, utt, text)
	return domain.Reply{RequestID: utt.ID, Text: text}
}

func (s *Service) transcribe(ctx context.Context, clip domain.AudioClip) (string, bool) {
	if s.stt == nil {
		s.log.Warn("Voice message received but no transcriber is configured")
		telemetry.TranscriptionFailures.Inc()
		return "", false
	}

	text, err := s.stt.Transcribe(ctx, clip)
	if err != nil {
		s.log.Warn("Transcription failed", zap.Error(err))
		telemetry.TranscriptionFailures.Inc()
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		telemetry.TranscriptionFailures.Inc()
		return "", false
	}
	return text, true
}

// synthesize returns nil when speech is unavailable. The failure never
// reaches the caller.
func (s *Service) synthesize(ctx context.Context, text string) []byte {
	if s.tts == nil {
		return nil
	}
	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		s.log.Warn("TTS error", zap.Error(err))
		telemetry.SynthesisFailures.Inc()
		return nil
	}
	return audio
}

func (s *Service) remember(ctx context.Context, utt domain.Utterance, response string) {
	if s.memory == nil || utt.SessionID == "" {
		return
	}
	if err := s.memory.Add(ctx, utt.SessionID, domain.InteractionMemory(utt.Text, response)); err != nil {
		s.log.Warn("Failed to record interaction", zap.String("session_id", utt.SessionID), zap.Error(err))
	}
}

func (s *Service) stamp(utt domain.Utterance) domain.Utterance {
	if utt.ID == "" {
		utt.ID = uuid.New().String()
	}
	if utt.CreatedAt.IsZero() {
		utt.CreatedAt = time.Now().UTC()
	}
	if utt.Source == "" {
		utt.Source = "http"
	}
	return utt
}
