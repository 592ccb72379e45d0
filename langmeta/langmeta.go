// Package langmeta provides language display metadata (native and English
// names, emoji flags) for catalog language codes, derived from CLDR data.
package langmeta

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Meta describes language display metadata.
type Meta struct {
	Code        string
	Name        string // native name, e.g. "Deutsch"
	EnglishName string
	Flag        string
}

// Label returns "🇩🇪 Deutsch (de)" style text for reports.
func (m Meta) Label() string {
	label := m.Name
	if m.Name != m.Code {
		label += " (" + m.Code + ")"
	}
	if m.Flag != "" {
		label = m.Flag + " " + label
	}
	return label
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 && len(parts[1]) == 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Resolve returns best-effort metadata for a language code such as "de",
// "pt_BR" or "zh-Hans". Unknown codes are passed through as their own name.
func Resolve(lang string) Meta {
	code := canonicalize(lang)
	unknown := Meta{Code: lang, Name: lang, EnglishName: lang}
	if code == "" {
		return unknown
	}

	tag, err := language.Parse(code)
	if err != nil {
		return unknown
	}
	english := display.English.Tags().Name(tag)
	if english == "" {
		return unknown
	}
	native := display.Self.Name(tag)
	if native == "" {
		native = english
	}

	return Meta{
		Code:        code,
		Name:        upperFirst(native),
		EnglishName: english,
		Flag:        flagFor(tag),
	}
}

// flagFor builds a regional-indicator flag from the tag's region, explicit
// or inferred.
func flagFor(tag language.Tag) string {
	region, conf := tag.Region()
	if conf == language.No || !region.IsCountry() {
		return ""
	}
	code := region.String()
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for _, c := range code {
		b.WriteRune(0x1F1E6 + (c - 'A'))
	}
	return b.String()
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
