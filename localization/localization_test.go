package localization

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/explorer/types"
)

func TestTranslate(t *testing.T) {
	c := qt.New(t)
	text := types.NewText("en", "Yes", "es", "Sí", "ca", "Sí, és clar")

	c.Assert(New("es").Translate(text), qt.Equals, "Sí")
	c.Assert(New("en-US").Translate(text), qt.Equals, "Yes")
	c.Assert(New("ca").Translate(text), qt.Equals, "Sí, és clar")

	// no match falls back to the first translation
	c.Assert(New("fr").Translate(text), qt.Equals, "Yes")
	c.Assert(New().Translate(text), qt.Equals, "Yes")
	c.Assert((&Localizer{}).Translate(text), qt.Equals, "Yes")

	// invalid tags are ignored
	c.Assert(New("not a tag!", "es").Translate(text), qt.Equals, "Sí")

	c.Assert(New("es").Translate(types.InternationalizedText{}), qt.Equals, "")
	c.Assert(New("es").Translate(types.NewText("en", "Only")), qt.Equals, "Only")
}

func TestFromAcceptLanguage(t *testing.T) {
	c := qt.New(t)
	text := types.NewText("en", "No", "es", "No, gracias")

	l := FromAcceptLanguage("fr-CH, fr;q=0.9, es;q=0.8")
	c.Assert(l.Translate(text), qt.Equals, "No, gracias")

	l = FromAcceptLanguage("", "es")
	c.Assert(l.Languages(), qt.DeepEquals, []string{"es"})
	c.Assert(l.Translate(text), qt.Equals, "No, gracias")
}

func TestTranslatorFunc(t *testing.T) {
	var tr Translator = TranslatorFunc(func(text types.InternationalizedText) string {
		return "[" + text.Text[0].Value + "]"
	})
	qt.Assert(t, tr.Translate(types.NewText("en", "x")), qt.Equals, "[x]")
}
