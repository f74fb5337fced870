// Package model defines data structures for the legal assistant.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a message sender on the wire.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatMessage is one entry of the visible conversation. Values are never
// modified after construction.
type ChatMessage struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	IsFromUser bool      `json:"is_from_user"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewUserMessage creates a message authored by the user.
func NewUserMessage(text string) ChatMessage {
	return newMessage(text, true)
}

// NewAssistantMessage creates a message authored by the assistant.
func NewAssistantMessage(text string) ChatMessage {
	return newMessage(text, false)
}

func newMessage(text string, fromUser bool) ChatMessage {
	return ChatMessage{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Text:       text,
		IsFromUser: fromUser,
		CreatedAt:  time.Now().UTC(),
	}
}

// Role returns the wire role of the message.
func (m ChatMessage) Role() Role {
	if m.IsFromUser {
		return RoleUser
	}
	return RoleAssistant
}

// Reply is a validated answer from the remote assistant.
type Reply struct {
	Text     string        `json:"text"`
	Model    string        `json:"model,omitempty"`
	Protocol string        `json:"protocol"`
	Latency  time.Duration `json:"latency"`
}

// RateWindow is a snapshot of the admission counters.
type RateWindow struct {
	MessageCount  int       `json:"message_count"`
	DayCount      int       `json:"day_count"`
	WindowStart   time.Time `json:"window_start"`
	LastMessageAt time.Time `json:"last_message_at,omitempty"`
}
