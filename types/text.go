package types

// Language is a single translation of a localizable text.
type Language struct {
	Value    string `json:"value"`
	Language string `json:"language"`
}

// InternationalizedText is a localizable text: one value per language, in
// the order the election authority provided them.
type InternationalizedText struct {
	Text []Language `json:"text"`
}

// NewText builds an InternationalizedText from alternating language, value
// pairs, e.g. NewText("en", "Yes", "es", "Sí").
func NewText(langValue ...string) InternationalizedText {
	t := InternationalizedText{}
	for i := 0; i+1 < len(langValue); i += 2 {
		t.Text = append(t.Text, Language{Language: langValue[i], Value: langValue[i+1]})
	}
	return t
}

// Empty reports whether the text has no translation at all.
func (t InternationalizedText) Empty() bool {
	return len(t.Text) == 0
}
