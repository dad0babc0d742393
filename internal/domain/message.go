package domain

import "time"

// MessageRole distinguishes the user's utterance from handler outputs.
type MessageRole string

const (
	RoleUser          MessageRole = "user"
	RoleHandlerOutput MessageRole = "handler_output"
)

// OriginUser is the origin recorded on the seeding user message.
const OriginUser = "user"

// Message is one entry of a ConversationState.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
	Origin  string      `json:"origin"`
}

// ConversationState is the ordered, append-only message log of one
// orchestration pass. It always starts with exactly one user message.
type ConversationState struct {
	messages []Message
}

// NewConversationState seeds a state with the utterance.
func NewConversationState(utterance string) *ConversationState {
	return &ConversationState{
		messages: []Message{{Role: RoleUser, Content: utterance, Origin: OriginUser}},
	}
}

// AppendHandlerOutput records a handler's result in invocation order.
func (s *ConversationState) AppendHandlerOutput(handler HandlerName, content string) {
	s.messages = append(s.messages, Message{
		Role:    RoleHandlerOutput,
		Content: content,
		Origin:  string(handler),
	})
}

// LatestUserMessage returns the content of the most recent user message.
func (s *ConversationState) LatestUserMessage() string {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Role == RoleUser {
			return s.messages[i].Content
		}
	}
	return ""
}

// Messages returns a copy of the log.
func (s *ConversationState) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages recorded so far.
func (s *ConversationState) Len() int {
	return len(s.messages)
}

// Utterance is one unit of inbound user input together with where it came from.
type Utterance struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Text      string    `json:"text"`
	Source    string    `json:"source"` // http, telegram, websocket, queue
	CreatedAt time.Time `json:"created_at"`
}

// Reply is what a channel delivers back to the user.
type Reply struct {
	RequestID string `json:"request_id,omitempty"`
	Text      string `json:"response"`
	Audio     []byte `json:"-"`
	AudioMIME string `json:"audio_mime,omitempty"`
	Failed    bool   `json:"failed,omitempty"`
}
