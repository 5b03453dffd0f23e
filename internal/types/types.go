package types

import (
	"sort"
	"time"
)

// Chat is a conversation thread as returned by the backend.
type Chat struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
	// Messages holds at most one entry: the latest message of the chat.
	Messages []*Message `json:"messages,omitempty"`
}

// Preview returns the latest message of the chat, or nil if it has none.
func (c *Chat) Preview() *Message {
	if c == nil || len(c.Messages) == 0 {
		return nil
	}
	return c.Messages[0]
}

// Message is a single immutable entry of a chat.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id,omitempty"`
	Content   string    `json:"content"`
	IsBot     bool      `json:"is_bot"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthStatus mirrors the auth provider's status stream.
type AuthStatus struct {
	IsAuthenticated bool
	IsLoading       bool
}

// SortMessages orders messages by creation time, oldest first.
// Messages created at the same instant are ordered by ID so the result is stable.
func SortMessages(messages []*Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		a, b := messages[i], messages[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// CloneMessages returns a shallow copy of the slice.
func CloneMessages(messages []*Message) []*Message {
	if messages == nil {
		return nil
	}
	out := make([]*Message, len(messages))
	copy(out, messages)
	return out
}
