package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capitalize-ai/legal-assistant/internal/model"
)

func TestClassifyDenylist(t *testing.T) {
	t.Parallel()

	f, err := New(DefaultWords, nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		text    string
		allowed bool
		match   string
	}{
		{"plain question", "¿Qué es un contrato?", true, ""},
		{"denied word", "this is spam", false, "spam"},
		{"upper case", "Esto es SPAM puro", false, "spam"},
		{"phrase", "un Test Repetitivo más", false, "test repetitivo"},
		{"empty is not blocked", "", true, ""},
		{"whitespace is not blocked", "   ", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := f.Classify(tt.text)
			assert.Equal(t, tt.allowed, v.Allowed)
			assert.Equal(t, tt.match, v.Match)
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	t.Parallel()

	f, err := New(DefaultWords, []string{URLPattern})
	require.NoError(t, err)

	for _, text := range []string{"hola", "ver https://example.com", "abuso"} {
		first := f.Classify(text)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, f.Classify(text))
		}
	}
}

func TestClassifyPatterns(t *testing.T) {
	t.Parallel()

	f, err := New(nil, []string{RepetitionPattern, URLPattern})
	require.NoError(t, err)

	assert.False(t, f.Allowed(strings.Repeat("ab", 11)))
	assert.True(t, f.Allowed(strings.Repeat("ab", 5)))
	assert.False(t, f.Allowed("mira http://example.com/x"))
	assert.True(t, f.Allowed("http sin enlace"))
}

func TestNoPatternsByDefault(t *testing.T) {
	t.Parallel()

	f, err := New(DefaultWords, nil)
	require.NoError(t, err)
	assert.True(t, f.Allowed(strings.Repeat("ab", 20)+" https://example.com"))
}

func TestNewRejectsBadPattern(t *testing.T) {
	t.Parallel()

	_, err := New(nil, []string{"(unclosed"})
	assert.Error(t, err)
}

func TestValidateInput(t *testing.T) {
	t.Parallel()

	got, err := ValidateInput("  ¿Qué es un contrato?  ", 2000)
	require.NoError(t, err)
	assert.Equal(t, "¿Qué es un contrato?", got)

	_, err = ValidateInput(" \n\t ", 2000)
	assert.ErrorIs(t, err, ErrEmpty)
	assert.Equal(t, model.KindInvalidInput, model.KindOf(err))

	_, err = ValidateInput(strings.Repeat("é", 2001), 2000)
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = ValidateInput(strings.Repeat("é", 2000), 2000)
	assert.NoError(t, err)

	_, err = ValidateInput(string([]byte{0xff, 0xfe}), 2000)
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}
