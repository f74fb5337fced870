// Package llm builds, sends and validates requests to an OpenAI-style
// assistant endpoint.
package llm

import (
	"context"

	"github.com/capitalize-ai/legal-assistant/internal/model"
)

// Protocol names.
const (
	ProtocolCompletion = "completion"
	ProtocolThread     = "thread"
)

// Protocol is a way of turning one admitted user text into a reply.
type Protocol interface {
	// Reply sends text and returns the validated answer.
	Reply(ctx context.Context, text string) (*model.Reply, error)

	// Reset drops any remote conversation state.
	Reset()

	// Name returns the protocol name.
	Name() string
}

// Deps groups the collaborators every protocol needs.
type Deps struct {
	Builder   *Builder
	Transport Transport
	Validator *Validator
}
