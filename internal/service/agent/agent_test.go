package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/mocks"
	"github.com/seu-repo/jarvis/internal/ports"
)

func echoTool() Tool {
	return Tool{
		Name:        "echo",
		Description: "Echo the text field.",
		Run: func(ctx context.Context, in Input) (string, error) {
			return "echo: " + in.String("text"), nil
		},
	}
}

func TestAgent_RunsSelectedTool(t *testing.T) {
	// Arrange
	model := &mocks.MockChatModel{Responses: []string{`{"tool": "echo", "input": {"text": "hi"}}`}}
	a := New(domain.HandlerContact, "You are a test agent.", model, []Tool{echoTool()}, zap.NewNop())

	// Act
	got := a.Run(context.Background(), "say hi")

	// Assert
	if got != "echo: hi" {
		t.Errorf("got %q", got)
	}
	if len(model.Requests) != 1 {
		t.Fatalf("expected one model call, got %d", len(model.Requests))
	}
	system := model.Requests[0][0]
	if system.Role != "system" || !strings.Contains(system.Content, "- echo: Echo the text field.") {
		t.Errorf("tool table missing from system prompt: %q", system.Content)
	}
	if model.Requests[0][1].Content != "say hi" {
		t.Errorf("instruction not forwarded: %q", model.Requests[0][1].Content)
	}
}

func TestAgent_RespondTool(t *testing.T) {
	model := &mocks.MockChatModel{Responses: []string{"```json\n{\"tool\":\"respond\",\"input\":{\"text\":\"Nothing to do.\"}}\n```"}}
	a := New(domain.HandlerCalendar, "role", model, []Tool{echoTool()}, zap.NewNop())

	if got := a.Run(context.Background(), "hmm"); got != "Nothing to do." {
		t.Errorf("got %q", got)
	}
}

func TestAgent_ToolErrorBecomesText(t *testing.T) {
	failing := Tool{
		Name: "send_email",
		Run: func(ctx context.Context, in Input) (string, error) {
			return "", &domain.HandlerError{Handler: domain.HandlerEmail, Op: "sending email", Err: errors.New("smtp down")}
		},
	}
	model := &mocks.MockChatModel{Responses: []string{`{"tool":"send_email","input":{}}`}}
	a := New(domain.HandlerEmail, "role", model, []Tool{failing}, zap.NewNop())

	got := a.Run(context.Background(), "send it")

	if got != "Error sending email: smtp down" {
		t.Errorf("got %q", got)
	}
}

func TestAgent_PlannerFailureBecomesText(t *testing.T) {
	model := &mocks.MockChatModel{
		ChatCompletionFunc: func(ctx context.Context, messages []ports.ChatMessage) (string, error) {
			return "", errors.New("openai: status 500")
		},
	}
	a := New(domain.HandlerExpense, "role", model, nil, zap.NewNop())

	got := a.Run(context.Background(), "how much?")

	if got != "Error: openai: status 500" {
		t.Errorf("got %q", got)
	}
}

func TestAgent_UnknownTool(t *testing.T) {
	model := &mocks.MockChatModel{Responses: []string{`{"tool":"rm_rf","input":{}}`}}
	a := New(domain.HandlerExpense, "role", model, []Tool{echoTool()}, zap.NewNop())

	got := a.Run(context.Background(), "x")

	if !strings.HasPrefix(got, "Error: unknown tool") {
		t.Errorf("got %q", got)
	}
}

func TestParseToolCall(t *testing.T) {
	cases := []struct {
		raw     string
		tool    string
		wantErr bool
	}{
		{`{"tool":"get_contact","input":{"name":"John"}}`, "get_contact", false},
		{"Sure! {\"tool\":\"get_contact\",\"input\":{}} hope that helps", "get_contact", false},
		{"```\n{\"tool\":\"list_events\"}\n```", "list_events", false},
		{"not json", "", true},
		{`{"input":{}}`, "", true},
	}

	for _, tc := range cases {
		call, err := ParseToolCall(tc.raw)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseToolCall(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseToolCall(%q) unexpected error: %v", tc.raw, err)
			continue
		}
		if call.Tool != tc.tool {
			t.Errorf("ParseToolCall(%q) tool = %q, want %q", tc.raw, call.Tool, tc.tool)
		}
		if call.Input == nil {
			t.Errorf("ParseToolCall(%q) input should default to empty map", tc.raw)
		}
	}
}

func TestInput_Accessors(t *testing.T) {
	in := Input{"n": float64(3), "s": " x ", "list": []interface{}{"a", " b "}, "csv": "c, d", "amt": "$12.5"}

	if in.Int("n", 0) != 3 || in.Int("missing", 7) != 7 {
		t.Error("Int accessor mismatch")
	}
	if in.String("s") != "x" {
		t.Errorf("String = %q", in.String("s"))
	}
	if got := in.Strings("list"); len(got) != 2 || got[1] != "b" {
		t.Errorf("Strings(list) = %v", got)
	}
	if got := in.Strings("csv"); len(got) != 2 || got[0] != "c" {
		t.Errorf("Strings(csv) = %v", got)
	}
	if f, ok := in.Float("amt"); !ok || f != 12.5 {
		t.Errorf("Float = %v %v", f, ok)
	}
	if _, err := in.Require("missing"); err == nil {
		t.Error("Require should fail on missing key")
	}
}
