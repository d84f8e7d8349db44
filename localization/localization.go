// Package localization picks, out of a localizable text, the translation
// that best matches the reader's preferred languages.
package localization

import (
	"golang.org/x/text/language"

	"go.vocdoni.io/explorer/log"
	"go.vocdoni.io/explorer/types"
)

// Translator resolves a localizable text into a single string. It never fails.
type Translator interface {
	Translate(text types.InternationalizedText) string
}

// TranslatorFunc adapts a function to the Translator interface.
type TranslatorFunc func(text types.InternationalizedText) string

// Translate calls f(text).
func (f TranslatorFunc) Translate(text types.InternationalizedText) string {
	return f(text)
}

// Localizer is a Translator driven by an ordered list of preferred languages.
// The zero value prefers nothing and always picks the first translation.
type Localizer struct {
	preferred []language.Tag
}

// New returns a Localizer for the given BCP 47 language tags, most preferred
// first. Invalid tags are skipped.
func New(languages ...string) *Localizer {
	l := &Localizer{}
	for _, s := range languages {
		tag, err := language.Parse(s)
		if err != nil {
			log.Debugw("ignoring invalid language tag", "tag", s, "error", err)
			continue
		}
		l.preferred = append(l.preferred, tag)
	}
	return l
}

// FromAcceptLanguage returns a Localizer for the languages listed in an HTTP
// Accept-Language header, falling back to the given default languages if the
// header is empty or invalid.
func FromAcceptLanguage(header string, fallback ...string) *Localizer {
	if header != "" {
		tags, _, err := language.ParseAcceptLanguage(header)
		if err == nil && len(tags) > 0 {
			return &Localizer{preferred: tags}
		}
		log.Debugw("invalid accept-language header", "header", header, "error", err)
	}
	return New(fallback...)
}

// Languages returns the preferred languages in order.
func (l *Localizer) Languages() []string {
	s := make([]string, 0, len(l.preferred))
	for _, t := range l.preferred {
		s = append(s, t.String())
	}
	return s
}

// Translate returns the value whose language best matches the preferred
// languages. If none matches, the first value is returned; an empty text
// resolves to the empty string.
func (l *Localizer) Translate(text types.InternationalizedText) string {
	switch len(text.Text) {
	case 0:
		return ""
	case 1:
		return text.Text[0].Value
	}
	supported := make([]language.Tag, 0, len(text.Text))
	for _, t := range text.Text {
		tag, err := language.Parse(t.Language)
		if err != nil {
			tag = language.Und
		}
		supported = append(supported, tag)
	}
	// The matcher returns the first supported tag when there is no match.
	_, index, confidence := language.NewMatcher(supported).Match(l.preferred...)
	if confidence == language.No || index < 0 || index >= len(text.Text) {
		return text.Text[0].Value
	}
	return text.Text[index].Value
}
