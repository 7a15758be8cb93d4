package models

import "time"

// Message roles. The stored role strings match what the text-generation
// providers expect, so histories can be replayed without translation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single entry in a session's chat history. Messages are
// immutable once appended; ordering is append order.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatHistory holds the ordered message sequence for one session. It only
// ever grows; there is no deletion operation.
type ChatHistory struct {
	Messages []Message `json:"messages"`
}

// SessionSummary describes one session in a listing.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	LastUpdated  time.Time `json:"last_updated"`
}
