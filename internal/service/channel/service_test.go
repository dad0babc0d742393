package channel

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/mocks"
)

func TestReply_TextWithSpeech(t *testing.T) {
	// Arrange
	orch := &mocks.MockOrchestrator{}
	tts := &mocks.MockSynthesizer{}
	memory := mocks.NewMockMemoryService()
	svc := NewService(orch, nil, tts, memory, zap.NewNop())

	// Act
	reply := svc.Reply(context.Background(), domain.Utterance{SessionID: "s1", Text: "Hello"}, true)

	// Assert
	if reply.Text != "Certainly, sir." || reply.Failed {
		t.Errorf("unexpected reply %+v", reply)
	}
	if string(reply.Audio) != "audio" || reply.AudioMIME != "audio/mpeg" {
		t.Errorf("expected synthesized audio, got %q", reply.Audio)
	}
	if reply.RequestID == "" {
		t.Error("expected a request id")
	}
	entries, _ := memory.List(context.Background(), "s1")
	want := []string{"User asked: 'Hello'. Jarvis responded: 'Certainly, sir.'"}
	if !reflect.DeepEqual(entries, want) {
		t.Errorf("memory = %v, want %v", entries, want)
	}
}

func TestReply_SynthesisFailureKeepsText(t *testing.T) {
	tts := &mocks.MockSynthesizer{
		SynthesizeFunc: func(ctx context.Context, text string) ([]byte, error) {
			return nil, &domain.SynthesisError{Err: errors.New("quota")}
		},
	}
	svc := NewService(&mocks.MockOrchestrator{}, nil, tts, nil, zap.NewNop())

	reply := svc.Reply(context.Background(), domain.Utterance{Text: "Hi"}, true)

	if reply.Text != "Certainly, sir." || reply.Audio != nil {
		t.Errorf("text must survive synthesis failure, got %+v", reply)
	}
}

func TestReply_FatalErrorIsGeneric(t *testing.T) {
	// Arrange
	orch := &mocks.MockOrchestrator{
		ProcessFunc: func(ctx context.Context, utterance string) (string, error) {
			return "", &domain.OrchestrationError{Stage: domain.StageRouting, Err: &domain.RoutingError{Err: errors.New("down")}}
		},
	}
	tts := &mocks.MockSynthesizer{}
	memory := mocks.NewMockMemoryService()
	svc := NewService(orch, nil, tts, memory, zap.NewNop())

	// Act
	reply := svc.Reply(context.Background(), domain.Utterance{SessionID: "s1", Text: "Hi"}, true)

	// Assert
	if reply.Text != GenericFailure || !reply.Failed {
		t.Errorf("unexpected reply %+v", reply)
	}
	if len(tts.Texts) != 0 {
		t.Error("failure replies should not be synthesized")
	}
	if entries, _ := memory.List(context.Background(), "s1"); len(entries) != 0 {
		t.Errorf("failed pass should not be remembered, got %v", entries)
	}
}

func TestReplyVoice_EmptyTranscriptShortCircuits(t *testing.T) {
	tests := []struct {
		name string
		stt  *mocks.MockTranscriber
	}{
		{"empty", &mocks.MockTranscriber{TranscribeFunc: func(ctx context.Context, clip domain.AudioClip) (string, error) {
			return "   ", nil
		}}},
		{"error", &mocks.MockTranscriber{TranscribeFunc: func(ctx context.Context, clip domain.AudioClip) (string, error) {
			return "", &domain.TranscriptionError{Err: errors.New("garbled")}
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orch := &mocks.MockOrchestrator{}
			svc := NewService(orch, tt.stt, nil, nil, zap.NewNop())

			reply := svc.ReplyVoice(context.Background(), "s1", "http", domain.AudioClip{Data: []byte("x")}, false)

			if reply.Text != NotUnderstood {
				t.Errorf("got %q", reply.Text)
			}
			if orch.Calls() != 0 {
				t.Error("orchestrator must not be called")
			}
		})
	}
}

func TestReplyVoice_TranscribedTextIsProcessed(t *testing.T) {
	orch := &mocks.MockOrchestrator{}
	stt := &mocks.MockTranscriber{TranscribeFunc: func(ctx context.Context, clip domain.AudioClip) (string, error) {
		return "What's on my calendar?", nil
	}}
	svc := NewService(orch, stt, nil, nil, zap.NewNop())

	reply := svc.ReplyVoice(context.Background(), "s1", "http", domain.AudioClip{Data: []byte("x")}, false)

	if reply.Text != "Certainly, sir." {
		t.Errorf("got %q", reply.Text)
	}
	if !reflect.DeepEqual(orch.Utterances, []string{"What's on my calendar?"}) {
		t.Errorf("unexpected utterances %v", orch.Utterances)
	}
}

func TestDeliverText_TextBeforeVoice(t *testing.T) {
	// Arrange
	messenger := &mocks.MockMessenger{}
	svc := NewService(&mocks.MockOrchestrator{}, nil, &mocks.MockSynthesizer{}, nil, zap.NewNop())

	// Act
	err := svc.DeliverText(context.Background(), messenger, 7, domain.Utterance{Text: "Hi", Source: "telegram"})

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(messenger.Order, []string{"text", "voice"}) {
		t.Errorf("expected text then voice, got %v", messenger.Order)
	}
}

func TestDeliverText_VoiceSendFailureIsIgnored(t *testing.T) {
	messenger := &mocks.MockMessenger{
		SendVoiceFunc: func(ctx context.Context, chatID int64, audio []byte) error {
			return errors.New("too large")
		},
	}
	svc := NewService(&mocks.MockOrchestrator{}, nil, &mocks.MockSynthesizer{}, nil, zap.NewNop())

	if err := svc.DeliverText(context.Background(), messenger, 7, domain.Utterance{Text: "Hi"}); err != nil {
		t.Errorf("voice failure must not surface, got %v", err)
	}
	if len(messenger.Messages) != 1 {
		t.Errorf("text should still be delivered, got %v", messenger.Messages)
	}
}

func TestDeliverVoice_DownloadFailureRepliesNotUnderstood(t *testing.T) {
	orch := &mocks.MockOrchestrator{}
	messenger := &mocks.MockMessenger{
		DownloadFileFunc: func(ctx context.Context, fileID string) ([]byte, error) {
			return nil, errors.New("gone")
		},
	}
	svc := NewService(orch, &mocks.MockTranscriber{}, nil, nil, zap.NewNop())

	err := svc.DeliverVoice(context.Background(), messenger, 7, "telegram:7", "telegram", "f1", "audio/ogg")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(messenger.Messages, []string{NotUnderstood}) {
		t.Errorf("got %v", messenger.Messages)
	}
	if orch.Calls() != 0 {
		t.Error("orchestrator must not be called")
	}
}

func TestDeliverVoice_Success(t *testing.T) {
	orch := &mocks.MockOrchestrator{}
	stt := &mocks.MockTranscriber{TranscribeFunc: func(ctx context.Context, clip domain.AudioClip) (string, error) {
		if clip.MimeType != "audio/ogg" || string(clip.Data) != "ogg" {
			t.Errorf("unexpected clip %+v", clip)
		}
		return "How much did I spend?", nil
	}}
	messenger := &mocks.MockMessenger{}
	svc := NewService(orch, stt, nil, nil, zap.NewNop())

	if err := svc.DeliverVoice(context.Background(), messenger, 7, "telegram:7", "telegram", "f1", "audio/ogg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(messenger.Messages, []string{"Certainly, sir."}) {
		t.Errorf("got %v", messenger.Messages)
	}
}
