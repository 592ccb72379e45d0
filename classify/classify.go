// Package classify decides whether a catalog value is a pattern that must be
// copied verbatim (symbols, numbers, URLs, bare format strings) or text that
// needs translation, and whether a value carries printf-style format
// specifiers.
package classify

import "regexp"

// Rule is a named pattern recognizer.
type Rule struct {
	Name string
	re   *regexp.Regexp
}

// Match reports whether the rule matches text starting at position 0.
func (r Rule) Match(text string) bool {
	return r.re.MatchString(text)
}

// patternRules are evaluated in order; the first match wins. Every rule is
// anchored at the start of the text only, so trailing characters after a
// recognized prefix do not prevent a match. The blank rule is the exception:
// it has to cover the whole text.
var patternRules = []Rule{
	{"blank", regexp.MustCompile(`^\s*$`)},
	{"symbols", regexp.MustCompile(`^[%@\d.\-+/#•→←]+`)},
	{"placeholder", regexp.MustCompile(`^%[@ld]+`)},
	{"positional-placeholder", regexp.MustCompile(`^%\d*\$?[@ld]+`)},
	{"brackets", regexp.MustCompile(`^[()\[\]{}]+`)},
	{"number", regexp.MustCompile(`^\d+(\.\d+)?`)},
	{"copyright", regexp.MustCompile(`^[©®™]+.*\d{4}`)},
	{"url", regexp.MustCompile(`^https?://`)},
	{"acronym", regexp.MustCompile(`^[A-Z]{2,3}`)},
	{"percentage", regexp.MustCompile(`^\d+(\.\d+)?%`)},
}

// Rules returns the pattern recognizers in evaluation order.
func Rules() []Rule {
	out := make([]Rule, len(patternRules))
	copy(out, patternRules)
	return out
}

// MatchRule returns the name of the first pattern rule matching text, or ""
// when text is translatable.
func MatchRule(text string) string {
	for _, r := range patternRules {
		if r.Match(text) {
			return r.Name
		}
	}
	return ""
}

// IsPatternOnly reports whether text should be copied as-is instead of being
// translated.
func IsPatternOnly(text string) bool {
	return MatchRule(text) != ""
}

// specifierShapes are searched anywhere in the text.
var specifierShapes = []*regexp.Regexp{
	regexp.MustCompile(`%@`),
	regexp.MustCompile(`%\d*\$?@`),
	regexp.MustCompile(`%lld`),
	regexp.MustCompile(`%\d*\$?lld`),
	regexp.MustCompile(`%d`),
	regexp.MustCompile(`%\d*\$?d`),
	regexp.MustCompile(`%f`),
	regexp.MustCompile(`%\d*\.\d*f`),
	regexp.MustCompile(`%%`),
}

// HasFormatSpecifiers reports whether text contains a string, integer or
// float substitution (positional or not) or an escaped percent sign.
func HasFormatSpecifiers(text string) bool {
	for _, re := range specifierShapes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
