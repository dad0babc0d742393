package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/observability/telemetry"
	"github.com/seu-repo/jarvis/internal/ports"
)

// RespondTool lets the model answer without running a tool.
const RespondTool = "respond"

// Tool is one action a handler agent can take.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, in Input) (string, error)
}

// Agent asks a chat model to pick one tool for an instruction and runs it.
// It implements ports.DomainHandler.
type Agent struct {
	name   domain.HandlerName
	role   string
	model  ports.ChatModel
	tools  []Tool
	byName map[string]Tool
	log    *zap.Logger
}

func New(name domain.HandlerName, role string, model ports.ChatModel, tools []Tool, log *zap.Logger) *Agent {
	byName := make(map[string]Tool, len(tools))
	for _, t := range tools {
		byName[t.Name] = t
	}
	return &Agent{
		name:   name,
		role:   role,
		model:  model,
		tools:  tools,
		byName: byName,
		log:    log.With(zap.String("handler", string(name))),
	}
}

func (a *Agent) Name() domain.HandlerName {
	return a.name
}

// Run never returns an error; failures come back as text.
func (a *Agent) Run(ctx context.Context, instruction string) string {
	call, err := a.plan(ctx, instruction)
	if err != nil {
		a.log.Warn("Planning failed", zap.Error(err))
		return fmt.Sprintf("Error: %v", err)
	}

	if call.Tool == RespondTool {
		return call.Input.String("text")
	}

	tool, ok := a.byName[call.Tool]
	if !ok {
		a.log.Warn("Model selected unknown tool", zap.String("tool", call.Tool))
		return fmt.Sprintf("Error: unknown tool %q", call.Tool)
	}

	start := time.Now()
	out, err := tool.Run(ctx, call.Input)
	if err != nil {
		telemetry.ToolCalls.WithLabelValues(string(a.name), tool.Name, "error").Inc()
		a.log.Error("Tool failed", zap.String("tool", tool.Name), zap.Error(err))
		var herr *domain.HandlerError
		if errors.As(err, &herr) {
			return herr.Text()
		}
		return fmt.Sprintf("Error: %v", err)
	}

	telemetry.ToolCalls.WithLabelValues(string(a.name), tool.Name, "ok").Inc()
	a.log.Debug("Tool executed", zap.String("tool", tool.Name), zap.Duration("duration", time.Since(start)))
	return out
}

// ToolCall is the model's selection.
type ToolCall struct {
	Tool  string `json:"tool"`
	Input Input  `json:"input"`
}

func (a *Agent) plan(ctx context.Context, instruction string) (*ToolCall, error) {
	raw, err := a.model.ChatCompletion(ctx, []ports.ChatMessage{
		{Role: "system", Content: a.systemPrompt()},
		{Role: "user", Content: instruction},
	})
	if err != nil {
		return nil, err
	}
	return ParseToolCall(raw)
}

func (a *Agent) systemPrompt() string {
	var b strings.Builder
	b.WriteString(a.role)
	b.WriteString("\n\nToday is ")
	b.WriteString(time.Now().Format("Monday, 2006-01-02"))
	b.WriteString(".\n\nTools available:\n")
	for _, t := range a.tools {
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, t.Description)
	}
	fmt.Fprintf(&b, "- %s: Answer directly without a tool. Input: {\"text\": \"...\"}\n", RespondTool)
	b.WriteString("\nChoose exactly one tool. Reply with a single JSON object and nothing else:\n")
	b.WriteString(`{"tool": "<tool name>", "input": {...}}`)
	return b.String()
}

// ParseToolCall decodes a model reply, tolerating markdown code fences.
func ParseToolCall(raw string) (*ToolCall, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	if i := strings.Index(s, "{"); i > 0 {
		s = s[i:]
	}
	if j := strings.LastIndex(s, "}"); j >= 0 && j < len(s)-1 {
		s = s[:j+1]
	}

	var call ToolCall
	if err := json.Unmarshal([]byte(s), &call); err != nil {
		return nil, fmt.Errorf("invalid tool selection: %w", err)
	}
	if call.Tool == "" {
		return nil, errors.New("invalid tool selection: missing tool")
	}
	if call.Input == nil {
		call.Input = Input{}
	}
	return &call, nil
}
