package composer

import (
	"strings"

	"github.com/seu-repo/jarvis/internal/domain"
)

// ReadyPhrase is returned when no handler produced output.
const ReadyPhrase = "I'm ready to assist you. What would you like help with?"

const separator = "\n\n"

// Compose joins every handler output in order. User messages are excluded.
func Compose(messages []domain.Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m.Role == domain.RoleHandlerOutput {
			parts = append(parts, m.Content)
		}
	}
	if len(parts) == 0 {
		return ReadyPhrase
	}
	return strings.Join(parts, separator)
}
