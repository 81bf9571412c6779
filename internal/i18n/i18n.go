// Package i18n renders user-facing messages in the language negotiated for a request.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Key identifies a message in the catalog.
type Key string

var (
	Portuguese = language.BrazilianPortuguese
	English    = language.English

	supported = []language.Tag{Portuguese, English}
	matcher   = language.NewMatcher(supported)
)

func init() {
	for key, text := range catalog {
		_ = message.SetString(Portuguese, string(key), text.pt)
		_ = message.SetString(English, string(key), text.en)
	}
}

// Parse resolves a configured language name, falling back to Portuguese.
func Parse(name string) language.Tag {
	tag, err := language.Parse(name)
	if err != nil {
		return Portuguese
	}
	return Match(tag.String(), Portuguese)
}

// Match picks the supported language that best fits an Accept-Language header.
func Match(acceptLanguage string, fallback language.Tag) language.Tag {
	if acceptLanguage == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}
	return supported[index]
}

// Sprintf renders key in the given language.
func Sprintf(tag language.Tag, key Key, args ...any) string {
	return message.NewPrinter(tag).Sprintf(string(key), args...)
}
