// Package analyze computes per-language translation coverage of a string
// catalog and the ordered list of keys that still lack a translation.
package analyze

import "github.com/minios-linux/strkit/catalog"

// Store is the read side of a catalog needed for analysis.
type Store interface {
	Keys() []string
	IsSatisfied(key, lang string) bool
	SourceValue(key string) string
}

var _ Store = (*catalog.File)(nil)

// Stats holds coverage numbers for one language. The translation counters
// are filled in by the translation pipeline.
type Stats struct {
	Language    string
	TotalKeys   int
	Translated  int
	Missing     int
	MissingKeys []string

	PatternsCopied  int
	TextsTranslated int
	Errors          int
}

// Percentage returns the translated share in percent (0 for an empty catalog).
func (s *Stats) Percentage() float64 {
	if s.TotalKeys == 0 {
		return 0
	}
	return float64(s.Translated) / float64(s.TotalKeys) * 100
}

// Processed returns how many keys a translation run wrote.
func (s *Stats) Processed() int {
	return s.PatternsCopied + s.TextsTranslated
}

// Language analyzes a single language.
func Language(store Store, lang string) *Stats {
	st := &Stats{Language: lang}
	for _, key := range store.Keys() {
		if catalog.IsBlankKey(key) {
			continue
		}
		st.TotalKeys++
		if store.IsSatisfied(key, lang) {
			st.Translated++
			continue
		}
		st.Missing++
		st.MissingKeys = append(st.MissingKeys, key)
	}
	return st
}

// Analyze analyzes each requested language. It never modifies the store.
func Analyze(store Store, languages []string) map[string]*Stats {
	out := make(map[string]*Stats, len(languages))
	for _, lang := range languages {
		out[lang] = Language(store, lang)
	}
	return out
}
