package chat

import "time"

// Roles a transcript turn can have.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a transcript. Transcripts are append-only and live in memory.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}
