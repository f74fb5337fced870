// Package filter moderates user text before it is allowed to leave the device.
package filter

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// Patterns that can be enabled through configuration.
const (
	// RepetitionPattern matches a two-character unit repeated eleven or more times.
	RepetitionPattern = `(..)\1{10,}`
	// URLPattern matches http and https links.
	URLPattern = `http[s]?://[^\s]+`
)

// DefaultWords is the denylist used when none is configured.
var DefaultWords = []string{"spam", "test repetitivo", "abuso", "insulto", "ofensivo"}

const matchTimeout = 100 * time.Millisecond

// Verdict is the outcome of classifying a text.
type Verdict struct {
	Allowed bool
	// Match is the denylist word or pattern that blocked the text.
	Match string
}

// Filter is a denylist plus optional pattern checks. It holds no mutable
// state and is safe for concurrent use.
type Filter struct {
	words    []string
	patterns []*regexp2.Regexp
}

// New creates a filter. Words are matched case-insensitively as substrings.
// Patterns that fail to compile are returned as an error.
func New(words []string, patterns []string) (*Filter, error) {
	f := &Filter{}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			f.words = append(f.words, w)
		}
	}
	for _, p := range patterns {
		if strings.TrimSpace(p) == "" {
			continue
		}
		re, err := regexp2.Compile(p, regexp2.IgnoreCase)
		if err != nil {
			return nil, err
		}
		re.MatchTimeout = matchTimeout
		f.patterns = append(f.patterns, re)
	}
	return f, nil
}

// Classify decides whether text may be sent. Empty text is allowed here;
// rejecting it is the caller's job.
func (f *Filter) Classify(text string) Verdict {
	lower := strings.ToLower(text)
	for _, w := range f.words {
		if strings.Contains(lower, w) {
			return Verdict{Match: w}
		}
	}
	for _, re := range f.patterns {
		// a pattern that errors or times out counts as no match
		if ok, err := re.MatchString(text); err == nil && ok {
			return Verdict{Match: re.String()}
		}
	}
	return Verdict{Allowed: true}
}

// Allowed is shorthand for Classify(text).Allowed.
func (f *Filter) Allowed(text string) bool {
	return f.Classify(text).Allowed
}
