package domain

// VoiceResponse is returned by the voice endpoints.
type VoiceResponse struct {
	Text  string `json:"response"`
	Audio string `json:"audio,omitempty"` // Base64 encoded audio
	MIME  string `json:"audio_mime,omitempty"`
}

// VoiceRequest carries base64-encoded audio from a client.
type VoiceRequest struct {
	Audio     string `json:"audio"`
	MimeType  string `json:"mime_type"`
	SessionID string `json:"session_id"`
	Speak     bool   `json:"speak"`
}

// AudioClip is raw inbound audio with its container type.
type AudioClip struct {
	Data     []byte
	MimeType string
	Filename string
}
