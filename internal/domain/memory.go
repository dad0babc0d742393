package domain

import "fmt"

// InteractionMemory is the sentence recorded after a successful exchange.
func InteractionMemory(utterance, response string) string {
	return fmt.Sprintf("User asked: '%s'. Jarvis responded: '%s'", utterance, response)
}

type MemoryEntry struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}
