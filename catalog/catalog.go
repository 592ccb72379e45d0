// Package catalog implements reading, writing and in-memory editing of
// Xcode string catalogs (.xcstrings).
//
// The expected file format is:
//
//	{
//	  "sourceLanguage" : "en",
//	  "strings" : {
//	    "Welcome back" : {
//	      "localizations" : {
//	        "de" : { "stringUnit" : { "state" : "translated", "value" : "Willkommen zurück" } }
//	      }
//	    }
//	  },
//	  "version" : "1.0"
//	}
//
// Keys keep the order they had in the file. A key without a source-language
// localization uses the key itself as its source text.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// StateTranslated is the only stringUnit state that counts as translated.
const StateTranslated = "translated"

// DefaultSourceLanguage is used when the file does not declare one.
const DefaultSourceLanguage = "en"

// ErrMalformed is returned when catalog data cannot be parsed.
var ErrMalformed = errors.New("malformed string catalog")

// StringUnit is a single localized value with its translation state.
type StringUnit struct {
	State string
	Value string
	// Extra holds members strkit does not interpret; they are written back.
	Extra map[string]json.RawMessage
}

// Localization is the per-language variant of an entry. Plural variations
// and substitutions are carried through untouched.
type Localization struct {
	StringUnit    *StringUnit
	Substitutions json.RawMessage
	Variations    json.RawMessage
	Extra         map[string]json.RawMessage
}

// Entry is one catalog record.
type Entry struct {
	Comment         string
	ExtractionState string
	Localizations   *orderedmap.OrderedMap[string, *Localization]
	ShouldTranslate *bool
	Extra           map[string]json.RawMessage
}

// File is a parsed string catalog.
type File struct {
	SourceLanguage string
	Strings        *orderedmap.OrderedMap[string, *Entry]
	Version        string
	Extra          map[string]json.RawMessage
}

// New returns an empty catalog for the given source language.
func New(sourceLang string) *File {
	if sourceLang == "" {
		sourceLang = DefaultSourceLanguage
	}
	return &File{
		SourceLanguage: sourceLang,
		Strings:        orderedmap.New[string, *Entry](),
		Version:        "1.0",
	}
}

// ParseFile reads and parses a string catalog.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse parses string catalog JSON data.
func Parse(data []byte) (*File, error) {
	f := &File{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if f.SourceLanguage == "" {
		f.SourceLanguage = DefaultSourceLanguage
	}
	if f.Version == "" {
		f.Version = "1.0"
	}
	if f.Strings == nil {
		f.Strings = orderedmap.New[string, *Entry]()
	}
	// "key": {} and "key": null are both valid in the wild.
	for pair := f.Strings.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil {
			pair.Value = &Entry{}
		}
	}
	return f, nil
}

// Marshal produces the catalog JSON with 2-space indentation, preserving key
// order and leaving non-ASCII characters unescaped.
func (f *File) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the catalog back to disk.
func (f *File) WriteFile(path string) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// Len returns the number of entries, blank keys included.
func (f *File) Len() int {
	return f.Strings.Len()
}

// Keys returns all non-blank keys in catalog order.
func (f *File) Keys() []string {
	keys := make([]string, 0, f.Strings.Len())
	for pair := f.Strings.Oldest(); pair != nil; pair = pair.Next() {
		if IsBlankKey(pair.Key) {
			continue
		}
		keys = append(keys, pair.Key)
	}
	return keys
}

// IsBlankKey reports whether a key is empty or whitespace only. Such keys are
// never analyzed or translated.
func IsBlankKey(key string) bool {
	return strings.TrimSpace(key) == ""
}

// Entry returns the entry for key.
func (f *File) Entry(key string) (*Entry, bool) {
	return f.Strings.Get(key)
}

// Add inserts or replaces an entry, keeping the original position of an
// existing key.
func (f *File) Add(key string, e *Entry) {
	if e == nil {
		e = &Entry{}
	}
	f.Strings.Set(key, e)
}

// Languages returns every language that has at least one localization, in
// order of first appearance.
func (f *File) Languages() []string {
	seen := make(map[string]bool)
	var langs []string
	for pair := f.Strings.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Value == nil || pair.Value.Localizations == nil {
			continue
		}
		for loc := pair.Value.Localizations.Oldest(); loc != nil; loc = loc.Next() {
			if !seen[loc.Key] {
				seen[loc.Key] = true
				langs = append(langs, loc.Key)
			}
		}
	}
	return langs
}

// SourceValue returns the source-language value of key, or the key itself
// when there is no source localization or its value is empty.
func (f *File) SourceValue(key string) string {
	if unit := f.unit(key, f.SourceLanguage); unit != nil && unit.Value != "" {
		return unit.Value
	}
	return key
}

// IsSatisfied reports whether key has a translated variant for lang.
func (f *File) IsSatisfied(key, lang string) bool {
	unit := f.unit(key, lang)
	return unit != nil && unit.State == StateTranslated
}

// Value returns the stored value for key in lang.
func (f *File) Value(key, lang string) (string, bool) {
	unit := f.unit(key, lang)
	if unit == nil {
		return "", false
	}
	return unit.Value, true
}

// ApplyTranslation stores value as the translated variant of key for lang,
// replacing whatever variant was there. Members of the old localization
// strkit does not model are kept. Applying the same value twice leaves
// the catalog unchanged after the first call.
func (f *File) ApplyTranslation(key, lang, value string) {
	e, ok := f.Strings.Get(key)
	if !ok || e == nil {
		e = &Entry{}
		f.Strings.Set(key, e)
	}
	if e.Localizations == nil {
		e.Localizations = orderedmap.New[string, *Localization]()
	}
	loc := &Localization{
		StringUnit: &StringUnit{State: StateTranslated, Value: value},
	}
	if prev, ok := e.Localizations.Get(lang); ok && prev != nil {
		loc.Extra = prev.Extra
	}
	e.Localizations.Set(lang, loc)
}

func (f *File) unit(key, lang string) *StringUnit {
	e, ok := f.Strings.Get(key)
	if !ok || e == nil || e.Localizations == nil {
		return nil
	}
	loc, ok := e.Localizations.Get(lang)
	if !ok || loc == nil {
		return nil
	}
	return loc.StringUnit
}
