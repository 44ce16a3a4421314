// Package locale resolves trainee-facing labels between the supported languages.
package locale

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported lists the languages labels are written in. The first is the default.
var Supported = []language.Tag{language.English, language.Hindi}

var matcher = language.NewMatcher(Supported)

// Default returns the fallback language.
func Default() language.Tag { return Supported[0] }

// Parse turns a user supplied language string into a supported tag.
func Parse(value string) language.Tag {
	value = strings.TrimSpace(value)
	if value == "" {
		return Default()
	}
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return Default()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default()
	}
	return Supported[idx]
}

// Printer returns a message printer for localized number formatting.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// Text holds one label in several languages keyed by BCP 47 tag ("en", "hi").
type Text map[string]string

// T builds an English-only label.
func T(en string) Text { return Text{"en": en} }

// EnHi builds a label in English and Hindi.
func EnHi(en, hi string) Text { return Text{"en": en, "hi": hi} }

// In returns the best available translation for tag, falling back to English
// and then to any translation.
func (t Text) In(tag language.Tag) string {
	if len(t) == 0 {
		return ""
	}
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	available := make([]language.Tag, 0, len(keys))
	for _, k := range keys {
		available = append(available, language.Make(k))
	}
	m := language.NewMatcher(available)
	_, idx, conf := m.Match(tag)
	if conf != language.No {
		return t[keys[idx]]
	}
	if en, ok := t["en"]; ok {
		return en
	}
	return t[keys[0]]
}

// String returns the English label.
func (t Text) String() string { return t.In(language.English) }
