package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/capitalize-ai/legal-assistant/internal/model"
	"github.com/capitalize-ai/legal-assistant/pkg/local"
	"github.com/capitalize-ai/legal-assistant/pkg/logger"
)

// Session is the state a chat front end keeps: the visible history, the
// display language and the last text that failed transiently. Rejected
// input leaves the history untouched. Nothing is sent again unless the
// user asks for it.
type Session struct {
	assistant *Assistant
	history   *model.Conversation
	lang      local.Language
	logger    *logger.Logger

	mu      sync.Mutex
	pending string
}

// NewSession creates a session seeded with the localized greeting.
func NewSession(a *Assistant, lang local.Language, historyLimit int, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Global()
	}
	s := &Session{
		assistant: a,
		history:   model.NewConversation(historyLimit),
		lang:      lang,
		logger:    log.Named("session"),
	}
	s.history.Append(model.NewAssistantMessage(local.Greeting.Text(lang)))
	return s
}

// Language returns the display language.
func (s *Session) Language() local.Language {
	return s.lang
}

// History returns a copy of the visible messages.
func (s *Session) History() []model.ChatMessage {
	return s.history.Messages()
}

// Ask sends text once and appends the exchange to the history on success.
// A transient or rate-limit failure keeps text as Pending so the user can
// resend it.
func (s *Session) Ask(ctx context.Context, text string) (model.ChatMessage, error) {
	reply, err := s.assistant.SendText(ctx, text)
	if err != nil {
		if resendable(err) {
			s.setPending(text)
		} else {
			s.setPending("")
		}
		return model.ChatMessage{}, err
	}
	s.setPending("")

	answer := model.NewAssistantMessage(reply.Text)
	s.history.Append(model.NewUserMessage(text), answer)
	return answer, nil
}

// AskImage sends an image once and appends the exchange to the history on
// success. label is what the history shows for the user's turn.
func (s *Session) AskImage(ctx context.Context, data []byte, label string) (model.ChatMessage, error) {
	reply, err := s.assistant.SendImage(ctx, data)
	if err != nil {
		return model.ChatMessage{}, err
	}

	answer := model.NewAssistantMessage(reply.Text)
	s.history.Append(model.NewUserMessage(local.ImageSent.Format(s.lang, label)), answer)
	return answer, nil
}

// resendable reports whether sending the same text later may succeed.
func resendable(err error) bool {
	return model.IsRetryable(err) || errors.Is(err, model.ErrRateLimited)
}

// Pending returns the last text worth resending, or "" when there is none.
func (s *Session) Pending() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Session) setPending(text string) {
	s.mu.Lock()
	s.pending = text
	s.mu.Unlock()
}

// Clear resets the history to the greeting and forgets remote thread state.
func (s *Session) Clear() {
	s.assistant.Reset()
	s.setPending("")
	s.history.Clear(model.NewAssistantMessage(local.Greeting.Text(s.lang)))
	s.logger.Debug("conversation cleared")
}

// Describe returns the localized text for err.
func (s *Session) Describe(err error) string {
	return s.assistant.Describe(err, s.lang)
}

// Usage returns the localized admission counters.
func (s *Session) Usage() string {
	w := s.assistant.Window()
	cfg := s.assistant.cfg.Limits
	s.logger.Debug("usage requested", zap.Int("period", w.MessageCount), zap.Int("day", w.DayCount))
	return local.Usage.Format(s.lang, w.MessageCount, cfg.MaxPerMinute, w.DayCount, cfg.MaxPerDay)
}
