// Package local holds user-facing strings and their translations.
package local

import (
	"fmt"
	"strings"
)

type Language string

const (
	Es = Language("es")
	En = Language("en")
	Fr = Language("fr")
	Zh = Language("zh")
)

// Default is used when no translation exists.
const Default = Es

// Languages lists the supported languages, default first.
var Languages = []Language{Es, En, Fr, Zh}

// ParseLanguage maps a tag such as "en-US" or "fr_FR" to a supported
// language, falling back to Default.
func ParseLanguage(tag string) Language {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	for _, l := range Languages {
		if string(l) == tag {
			return l
		}
	}
	return Default
}

type Localization struct {
	language Language
	text     string
}

// TextSet is one string in the default language plus its translations.
type TextSet struct {
	Default          string
	translationsText map[Language]string
}

func NewTrans(language Language, text string) Localization {
	return Localization{
		language: language,
		text:     text,
	}
}

func NewSet(defaultText string, localizations ...Localization) TextSet {
	set := TextSet{
		Default:          defaultText,
		translationsText: make(map[Language]string),
	}
	for _, localization := range localizations {
		set.translationsText[localization.language] = localization.text
	}
	return set
}

func (l TextSet) Text(language Language) string {
	if text, ok := l.translationsText[language]; ok {
		return text
	}
	return l.Default
}

func (l TextSet) DefaultFormat(a ...any) string {
	return fmt.Sprintf(l.Default, a...)
}

func (l TextSet) Format(language Language, a ...any) string {
	return fmt.Sprintf(l.Text(language), a...)
}
