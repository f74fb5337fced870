package filter

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/capitalize-ai/legal-assistant/internal/model"
)

var (
	ErrEmpty       = errors.New("content cannot be empty")
	ErrTooLong     = errors.New("content exceeds maximum length")
	ErrInvalidUTF8 = errors.New("content must be valid UTF-8")
)

// ValidateInput trims text and checks it is non-empty, valid UTF-8 and at
// most maxLen runes long. It returns the trimmed text. Failures are
// classified as InvalidInput.
func ValidateInput(text string, maxLen int) (string, error) {
	if !utf8.ValidString(text) {
		return "", model.NewError(model.KindInvalidInput, ErrInvalidUTF8)
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", model.NewError(model.KindInvalidInput, ErrEmpty)
	}
	if maxLen > 0 && utf8.RuneCountInString(trimmed) > maxLen {
		return "", model.NewError(model.KindInvalidInput, ErrTooLong)
	}
	return trimmed, nil
}
