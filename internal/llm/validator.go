package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/capitalize-ai/legal-assistant/internal/model"
)

var (
	ErrNoChoices       = errors.New("response has no choices")
	ErrEmptyContent    = errors.New("response content is empty")
	ErrContentTooLong  = errors.New("response content exceeds maximum length")
	ErrNoAssistantText = errors.New("thread has no assistant message")
	ErrMissingID       = errors.New("response has no id")
)

// Validator turns raw response bodies into sanitized reply text.
type Validator struct {
	maxLen int
}

// NewValidator creates a validator rejecting replies longer than maxLen runes.
func NewValidator(maxLen int) *Validator {
	return &Validator{maxLen: maxLen}
}

// Completion extracts the first choice of a chat completion body.
func (v *Validator) Completion(raw []byte) (string, error) {
	var resp openai.ChatCompletionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", invalid(fmt.Errorf("failed to decode completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return "", invalid(ErrNoChoices)
	}
	return v.sanitize(resp.Choices[0].Message.Content)
}

// ThreadMessages extracts the newest assistant text from a message list.
// Messages are expected newest first.
func (v *Validator) ThreadMessages(raw []byte) (string, error) {
	var list openai.MessagesList
	if err := json.Unmarshal(raw, &list); err != nil {
		return "", invalid(fmt.Errorf("failed to decode messages: %w", err))
	}
	for _, msg := range list.Messages {
		if msg.Role != string(model.RoleAssistant) {
			continue
		}
		for _, c := range msg.Content {
			if c.Text != nil {
				return v.sanitize(c.Text.Value)
			}
		}
	}
	return "", invalid(ErrNoAssistantText)
}

// Thread extracts the id of a created thread.
func (v *Validator) Thread(raw []byte) (string, error) {
	var th openai.Thread
	if err := json.Unmarshal(raw, &th); err != nil {
		return "", invalid(fmt.Errorf("failed to decode thread: %w", err))
	}
	if th.ID == "" {
		return "", invalid(ErrMissingID)
	}
	return th.ID, nil
}

// Run extracts a run's id and status.
func (v *Validator) Run(raw []byte) (string, openai.RunStatus, error) {
	var run openai.Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return "", "", invalid(fmt.Errorf("failed to decode run: %w", err))
	}
	if run.ID == "" {
		return "", "", invalid(ErrMissingID)
	}
	return run.ID, run.Status, nil
}

func (v *Validator) sanitize(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", invalid(ErrEmptyContent)
	}
	if v.maxLen > 0 && utf8.RuneCountInString(text) > v.maxLen {
		return "", invalid(ErrContentTooLong)
	}
	return text, nil
}

func invalid(err error) error {
	return model.NewError(model.KindInvalidResponse, err)
}
