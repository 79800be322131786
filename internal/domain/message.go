package domain

import "time"

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MaxHistoryMessages caps a session's stored conversation history. Oldest
// entries are dropped first whenever appending would exceed the bound.
const MaxHistoryMessages = 20

// HistoryTTL is how long an inactive session's history survives in the cache.
// The expiration is sliding: every write refreshes it.
const HistoryTTL = 24 * time.Hour

// ConversationMessage is a single turn in a session, append-only within a
// conversation.
type ConversationMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// IsValid reports whether the message role is one the engine understands.
func (m ConversationMessage) IsValid() bool {
	return m.Role == RoleUser || m.Role == RoleAssistant
}

// TrimHistory returns the most recent max messages, preserving order. The
// result is always a suffix of the input.
func TrimHistory(history []ConversationMessage, max int) []ConversationMessage {
	if max <= 0 || len(history) <= max {
		return history
	}
	return history[len(history)-max:]
}
