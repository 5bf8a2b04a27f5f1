package journal

import "time"

// Entry is a journal entry that was saved together with its reflection.
type Entry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Summary   string    `json:"summary"`
	Tone      string    `json:"tone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
