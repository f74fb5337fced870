package llm

import (
	"context"
	"time"

	"github.com/capitalize-ai/legal-assistant/internal/model"
)

// CompletionProtocol sends each text as an independent chat completion.
// It keeps no state between calls.
type CompletionProtocol struct {
	Deps
}

// NewCompletionProtocol creates the stateless protocol.
func NewCompletionProtocol(deps Deps) *CompletionProtocol {
	return &CompletionProtocol{Deps: deps}
}

// Name returns the protocol name.
func (p *CompletionProtocol) Name() string {
	return ProtocolCompletion
}

// Reset does nothing; there is no remote state.
func (p *CompletionProtocol) Reset() {}

// Reply sends one completion request.
func (p *CompletionProtocol) Reply(ctx context.Context, text string) (*model.Reply, error) {
	start := time.Now()

	desc, err := p.Builder.Text(text)
	if err != nil {
		return nil, err
	}
	return Complete(ctx, p.Deps, desc, start, ProtocolCompletion)
}

// Complete sends a completion descriptor and validates the body.
func Complete(ctx context.Context, deps Deps, desc *Descriptor, start time.Time, protocol string) (*model.Reply, error) {
	raw, err := deps.Transport.Do(ctx, desc)
	if err != nil {
		return nil, err
	}
	content, err := deps.Validator.Completion(raw)
	if err != nil {
		return nil, err
	}
	return &model.Reply{
		Text:     content,
		Model:    desc.Model,
		Protocol: protocol,
		Latency:  time.Since(start),
	}, nil
}
