package model

import (
	"sync"
)

// DefaultHistoryLimit caps how many messages a Conversation keeps.
const DefaultHistoryLimit = 100

// Conversation is the ordered message history shown to the user.
// Insertion order is preserved; once the limit is reached the oldest
// messages are dropped.
type Conversation struct {
	mu       sync.RWMutex
	messages []ChatMessage
	limit    int
}

// NewConversation creates a conversation holding at most limit messages.
// A limit <= 0 means DefaultHistoryLimit.
func NewConversation(limit int) *Conversation {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &Conversation{limit: limit}
}

// Append adds messages at the end of the history.
func (c *Conversation) Append(msgs ...ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = append(c.messages, msgs...)
	if over := len(c.messages) - c.limit; over > 0 {
		c.messages = append([]ChatMessage(nil), c.messages[over:]...)
	}
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []ChatMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages held.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

// Last returns the most recent message.
func (c *Conversation) Last() (ChatMessage, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.messages) == 0 {
		return ChatMessage{}, false
	}
	return c.messages[len(c.messages)-1], true
}

// Clear drops the history and optionally seeds it with new messages.
func (c *Conversation) Clear(seed ...ChatMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append([]ChatMessage(nil), seed...)
}
